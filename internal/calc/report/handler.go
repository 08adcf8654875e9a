package report

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"Sixfoot/internal/calc/clearance"
)

type Input struct {
	Meta
	Input clearance.Input `json:"input"`
}

type Handler struct{}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, clearance.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := clearance.Calculate(input.Input)
	if err != nil {
		clearance.WriteError(w, err)
		return
	}
	WritePDF(w, input.Meta, input.Input, res, time.Now())
}

// WritePDF renders into a buffer first so a render failure can still be
// reported with a proper status code.
func WritePDF(w http.ResponseWriter, meta Meta, in clearance.Input, res clearance.Result, date time.Time) {
	var buf bytes.Buffer
	if err := Render(&buf, meta, in, res, date); err != nil {
		log.Printf("report: render pdf: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"clearance-report.pdf\"")
	w.Write(buf.Bytes())
}
