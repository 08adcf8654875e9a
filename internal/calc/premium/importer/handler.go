package importer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"Sixfoot/internal/calc/clearance"

	"github.com/xuri/excelize/v2"
)

const MaxUploadSize = 10 << 20 // 10MB

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct{}

type Row struct {
	SheetRow int               `json:"sheet_row"`
	Input    clearance.Input   `json:"input"`
	Result   *clearance.Result `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type ClearanceImportResult struct {
	Count  int   `json:"count"`
	Failed int   `json:"failed"`
	Rows   []Row `json:"rows"`
}

func (h *Handler) Clearance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	out, err := Import(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename=\"clearance-results.xlsx\"")
		if err := Export(w, out.Rows); err != nil {
			log.Printf("importer: export workbook: %v", err)
		}
		return
	}
	clearance.WriteJSON(w, http.StatusOK, out)
}

// Import reads the first sheet of an XLSX survey and calculates each row
// after the header. Expected columns: category, outer versine, outer cant,
// inner versine, inner cant, location (optional).
func Import(r io.Reader) (ClearanceImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ClearanceImportResult{}, fmt.Errorf("invalid file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return ClearanceImportResult{}, fmt.Errorf("empty sheet")
	}

	out := ClearanceImportResult{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		item := Row{SheetRow: i + 1}
		input, err := parseClearanceRow(row)
		item.Input = input
		if err != nil {
			item.Error = err.Error()
		} else if res, err := clearance.Calculate(input); err != nil {
			item.Error = calcError(err)
		} else {
			item.Result = &res
		}
		if item.Error != "" {
			out.Failed++
		}
		out.Rows = append(out.Rows, item)
	}
	out.Count = len(out.Rows)
	return out, nil
}

func parseClearanceRow(row []string) (clearance.Input, error) {
	if len(row) < 5 {
		return clearance.Input{}, fmt.Errorf("bad row: want at least 5 columns, got %d", len(row))
	}
	category, err := clearance.ParseCategory(row[0])
	if err != nil {
		return clearance.Input{}, err
	}
	in := clearance.Input{Category: category}
	fields := []*float64{&in.OuterVersine, &in.OuterCant, &in.InnerVersine, &in.InnerCant}
	names := []string{"outer versine", "outer cant", "inner versine", "inner cant"}
	for i, dst := range fields {
		v, err := toFloat(row[i+1])
		if err != nil {
			return clearance.Input{}, fmt.Errorf("bad %s %q", names[i], row[i+1])
		}
		*dst = v
	}
	if len(row) > 5 {
		in.Location = strings.TrimSpace(row[5])
	}
	return in, nil
}

func calcError(err error) string {
	var verr *clearance.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
