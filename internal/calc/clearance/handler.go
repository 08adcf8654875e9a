package clearance

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// MaxBodySize caps single-calculation request bodies.
const MaxBodySize = 1 << 20

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, Categories())
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteError maps calculator errors onto status codes. Anything that is not
// a known calculator error is logged and hidden from the client.
func WriteError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Message})
	case errors.Is(err, ErrUnknownCategory):
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: ErrUnknownCategory.Error()})
	default:
		log.Printf("clearance: calculation error: %v", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("clearance: encode response: %v", err)
	}
}
