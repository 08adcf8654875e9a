package clearance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

type Category string

const (
	CategoryTube           Category = "Tube"
	CategorySubSurfaceOpen Category = "SubSurfaceOpen"
)

// Radius threshold (rounded) at which the large-radius throw formulas apply.
const throwThreshold = 136

const versineChord = 12500.0

// Radii and cant effects are capped to what the calculations table stores.
// At the radius cap both throws already round to zero.
const maxMagnitude = math.MaxInt32

const (
	validationMessage = "All Versine values must be positive, and Cant values must be non-negative."
	radiusMessage     = "Versine is too large: derived radius rounds to zero."
	cantMessage       = "Cant difference is too large."
)

var ErrUnknownCategory = errors.New("unknown track category")

type CategoryInfo struct {
	Category        Category `json:"category"`
	Label           string   `json:"label"`
	BaseClearanceMM int      `json:"base_clearance_mm"`
	ARLMM           int      `json:"arl_mm"`
}

var categories = []CategoryInfo{
	{Category: CategoryTube, Label: "Tube Lines", BaseClearanceMM: 1588, ARLMM: 1289},
	{Category: CategorySubSurfaceOpen, Label: "Sub-surface/Open Lines", BaseClearanceMM: 1842, ARLMM: 2099},
}

// Categories returns the supported track categories in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts either the identifier or the display label, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c.Category)) || strings.EqualFold(s, c.Label) {
			return c.Category, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func lookup(c Category) (CategoryInfo, error) {
	for _, info := range categories {
		if info.Category == c {
			return info, nil
		}
	}
	return CategoryInfo{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
}

// Label returns the display name, or the raw value for unknown categories.
func (c Category) Label() string {
	info, err := lookup(c)
	if err != nil {
		return string(c)
	}
	return info.Label
}

// UnmarshalJSON normalises labels such as "Tube Lines" to their identifier.
// Unrecognised values are kept as-is so Calculate reports ErrUnknownCategory.
func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := ParseCategory(s); err == nil {
		*c = parsed
		return nil
	}
	*c = Category(s)
	return nil
}

// Note is the human-readable summary attached to every result.
func Note(c Category) string {
	return "Minimum 6ft clearance for " + c.Label() + "."
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Input struct {
	Category     Category `json:"category"`
	OuterVersine float64  `json:"outer_versine"`
	OuterCant    float64  `json:"outer_cant"`
	InnerVersine float64  `json:"inner_versine"`
	InnerCant    float64  `json:"inner_cant"`
	Location     string   `json:"location,omitempty"`
}

type Result struct {
	FinalClearanceMM int    `json:"final_clearance_mm"`
	OuterRadius      int    `json:"outer_radius"`
	InnerRadius      int    `json:"inner_radius"`
	BaseClearanceMM  int    `json:"base_clearance_mm"`
	CentreThrowMM    int    `json:"centre_throw_mm"`
	EndThrowMM       int    `json:"end_throw_mm"`
	CantEffectMM     int    `json:"cant_effect_mm"` // signed
	Notes            string `json:"notes"`
}

// Validate reports whether the measurements are usable. NaN fails every
// comparison and is rejected along with non-positive versines.
func (in Input) Validate() error {
	if !(in.OuterVersine > 0) || !(in.InnerVersine > 0) || !(in.OuterCant >= 0) || !(in.InnerCant >= 0) {
		return &ValidationError{Message: validationMessage}
	}
	for _, v := range []float64{in.OuterVersine, in.OuterCant, in.InnerVersine, in.InnerCant} {
		if math.IsInf(v, 0) {
			return &ValidationError{Message: validationMessage}
		}
	}
	return nil
}

func Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	info, err := lookup(in.Category)
	if err != nil {
		return Result{}, err
	}

	rOuter := radius(in.OuterVersine)
	rInner := radius(in.InnerVersine)
	if rOuter < 1 || rInner < 1 {
		return Result{}, &ValidationError{Message: radiusMessage}
	}

	ct := roundHalfUp(centreThrow(float64(rOuter)))
	et := roundHalfUp(endThrow(float64(rInner)))

	ceRaw := math.Abs(in.OuterCant-in.InnerCant) * float64(info.ARLMM) / 1505
	if ceRaw > maxMagnitude {
		return Result{}, &ValidationError{Message: cantMessage}
	}
	ce := roundHalfUp(ceRaw)
	if in.OuterCant < in.InnerCant {
		ce = -ce
	}

	return Result{
		FinalClearanceMM: info.BaseClearanceMM + ct + et + ce,
		OuterRadius:      rOuter,
		InnerRadius:      rInner,
		BaseClearanceMM:  info.BaseClearanceMM,
		CentreThrowMM:    ct,
		EndThrowMM:       et,
		CantEffectMM:     ce,
		Notes:            Note(in.Category),
	}, nil
}

// radius converts a versine to a rounded radius, clamped so that tiny
// versines do not overflow the integer conversion.
func radius(versine float64) int {
	r := versineChord / versine
	if r > maxMagnitude {
		return maxMagnitude
	}
	return roundHalfUp(r)
}

func centreThrow(r float64) float64 {
	if r >= throwThreshold {
		return 14653 / r
	}
	return 25110/r - 77
}

func endThrow(r float64) float64 {
	if r >= throwThreshold {
		return 18011 / r
	}
	return 21713 / r
}

// roundHalfUp rounds .5 away from zero for non-negative values, never to even.
func roundHalfUp(x float64) int {
	return int(math.Trunc(x + 0.5))
}
