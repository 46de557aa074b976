package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/core"
)

type netWorthEntryResponse struct {
	ID       uuid.UUID `json:"id"`
	Total    string    `json:"total"`
	Currency string    `json:"currency"`
	Date     time.Time `json:"date"`
}

func toNetWorthResponse(e core.NetWorthEntry) netWorthEntryResponse {
	return netWorthEntryResponse{
		ID:       e.ID,
		Total:    e.TotalValue.Decimal(),
		Currency: e.TotalValue.Currency,
		Date:     e.Date,
	}
}

// handleNetWorthHistory returns snapshots newest first, optionally bounded
// by from/to query parameters (YYYY-MM-DD, inclusive).
func (s *Server) handleNetWorthHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date: expected YYYY-MM-DD")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date: expected YYYY-MM-DD")
			return
		}
		// The bound is the whole day, not its midnight.
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}

	entries, err := s.netWorth.History(r.Context(), userID, from, to)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := make([]netWorthEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toNetWorthResponse(e))
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleNetWorthSnapshot computes and records a snapshot on demand.
func (s *Server) handleNetWorthSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	entry, err := s.netWorth.Snapshot(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toNetWorthResponse(entry))
}
