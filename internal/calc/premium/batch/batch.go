package batch

import (
	"errors"
	"fmt"

	"Sixfoot/internal/calc/clearance"
)

const DefaultLimit = 500

var ErrNoItems = errors.New("no items")

type ClearanceBatchInput struct {
	Items []clearance.Input `json:"items"`
}

type ItemResult struct {
	Index  int               `json:"index"`
	Result *clearance.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type ClearanceBatchResult struct {
	Count   int          `json:"count"`
	Failed  int          `json:"failed"`
	Results []ItemResult `json:"results"`
}

// CalculateClearance computes every item independently. A failing item is
// recorded against its index and does not stop the rest of the batch.
func CalculateClearance(in ClearanceBatchInput, limit int) (ClearanceBatchResult, error) {
	if len(in.Items) == 0 {
		return ClearanceBatchResult{}, ErrNoItems
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(in.Items) > limit {
		return ClearanceBatchResult{}, fmt.Errorf("too many items: %d (limit %d)", len(in.Items), limit)
	}
	out := ClearanceBatchResult{Count: len(in.Items), Results: make([]ItemResult, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := clearance.Calculate(item)
		if err != nil {
			out.Failed++
			out.Results = append(out.Results, ItemResult{Index: i, Error: itemError(err)})
			continue
		}
		out.Results = append(out.Results, ItemResult{Index: i, Result: &res})
	}
	return out, nil
}

func itemError(err error) string {
	var verr *clearance.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, clearance.ErrUnknownCategory) {
		return clearance.ErrUnknownCategory.Error()
	}
	return "calculation error"
}
