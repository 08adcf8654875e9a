package history

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"Sixfoot/internal/auth"
	"Sixfoot/internal/calc/clearance"
	"Sixfoot/internal/calc/report"
	"Sixfoot/internal/repo"

	"github.com/gorilla/mux"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type HistoryHandler struct {
	Repo repo.Repository
}

func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input clearance.Input
	r.Body = http.MaxBytesReader(w, r.Body, clearance.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := clearance.Calculate(input)
	if err != nil {
		clearance.WriteError(w, err)
		return
	}

	saved, err := h.Repo.SaveCalculation(r.Context(), userID, input, res)
	if err != nil {
		log.Printf("SaveCalculation Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	clearance.WriteJSON(w, http.StatusCreated, saved)
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(max(n, 1), maxLimit)
	}

	items, err := h.Repo.ListCalculations(r.Context(), userID, limit)
	if err != nil {
		log.Printf("ListCalculations Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	clearance.WriteJSON(w, http.StatusOK, items)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	clearance.WriteJSON(w, http.StatusOK, c)
}

func (h *HistoryHandler) PDF(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	meta := report.Meta{
		Author: auth.UserLogin(r.Context()),
		Title:  report.DefaultTitle,
		Notes:  "Saved calculation #" + strconv.Itoa(c.ID) + ".",
	}
	report.WritePDF(w, meta, c.Input, c.Result, c.CreatedAt)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ids(w, r)
	if !ok {
		return
	}
	err := h.Repo.DeleteCalculation(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Calculation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("DeleteCalculation Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) load(w http.ResponseWriter, r *http.Request) (repo.Calculation, bool) {
	userID, id, ok := ids(w, r)
	if !ok {
		return repo.Calculation{}, false
	}
	c, err := h.Repo.GetCalculation(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Calculation not found", http.StatusNotFound)
		return repo.Calculation{}, false
	}
	if err != nil {
		log.Printf("GetCalculation Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return repo.Calculation{}, false
	}
	return c, true
}

func ids(w http.ResponseWriter, r *http.Request) (userID, id int, ok bool) {
	userID, ok = auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, 0, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, id, true
}
