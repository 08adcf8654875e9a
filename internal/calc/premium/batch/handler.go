package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	"Sixfoot/internal/calc/clearance"
)

// Request bodies are capped in proportion to the item limit.
const bytesPerItem = 1 << 10

type Handler struct {
	Limit int
}

func (h *Handler) maxBytes() int64 {
	limit := h.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return int64(limit)*bytesPerItem + clearance.MaxBodySize
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) Clearance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes())
	var input ClearanceBatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			clearance.WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
		clearance.WriteJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request payload"})
		return
	}
	res, err := CalculateClearance(input, h.Limit)
	if err != nil {
		clearance.WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	clearance.WriteJSON(w, http.StatusOK, res)
}
