package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/core"
	"splitbook/internal/extract"
)

type processReceiptRequest struct {
	ImageURL string `json:"image_url"`
}

type processReceiptResponse struct {
	ReceiptID  uuid.UUID             `json:"receipt_id"`
	Suggestion extract.ReceiptFields `json:"suggestion"`
}

type categoryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Icon  string    `json:"icon"`
}

// handleProcessReceipt runs extraction on a receipt image and stores the raw
// result. The suggestion is advisory: extraction failure still records the
// receipt and returns an empty suggestion, never an error.
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	var req processReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ImageURL == "" {
		respondError(w, http.StatusBadRequest, "image_url is required")
		return
	}

	var (
		fields extract.ReceiptFields
		raw    []byte
	)
	if s.extractor != nil {
		var err error
		fields, raw, err = s.extractor.ExtractFields(r.Context(), extract.Request{
			ImageURL:        req.ImageURL,
			DefaultCurrency: s.defaultCurrency,
		})
		if err != nil {
			slog.WarnContext(r.Context(), "Receipt extraction failed",
				"error", err, "user_id", userID)
			fields = extract.ReceiptFields{}
		}
	}

	receipt := core.Receipt{
		ID:         uuid.New(),
		URL:        req.ImageURL,
		ScanData:   raw,
		UploadedBy: userID,
		Date:       time.Now().UTC(),
	}
	if err := s.storage.CreateReceipt(r.Context(), receipt); err != nil {
		respondServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Receipt processed",
		"receipt_id", receipt.ID,
		"user_id", userID,
		"has_total", fields.Total != "",
		"confidence", fields.Confidence)

	respondJSON(w, http.StatusCreated, processReceiptResponse{
		ReceiptID:  receipt.ID,
		Suggestion: fields,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.storage.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon})
	}
	respondJSON(w, http.StatusOK, resp)
}
