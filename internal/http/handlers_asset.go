package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"splitbook/internal/core"
	"splitbook/internal/services"
)

type createAssetRequest struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
	Type     string `json:"type"`
}

type updateAssetRequest struct {
	Name     *string `json:"name,omitempty"`
	Value    *string `json:"value,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Type     *string `json:"type,omitempty"`
}

type assetResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	Currency    string    `json:"currency"`
	Type        string    `json:"type"`
	LastUpdated time.Time `json:"last_updated"`
}

func toAssetResponse(a core.Asset) assetResponse {
	return assetResponse{
		ID:          a.ID,
		Name:        a.Name,
		Value:       a.Value.Decimal(),
		Currency:    a.Value.Currency,
		Type:        string(a.Type),
		LastUpdated: a.LastUpdated,
	}
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	assets, err := s.assets.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		resp = append(resp, toAssetResponse(a))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	value, err := core.ParseMoney(req.Value, currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid value: "+err.Error())
		return
	}

	asset, err := s.assets.Create(r.Context(), userID, req.Name, value, core.AssetType(req.Type))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Asset created",
		"asset_id", asset.ID, "user_id", userID, "type", asset.Type)

	respondJSON(w, http.StatusCreated, toAssetResponse(asset))
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in := services.UpdateAssetInput{Name: req.Name}
	if req.Value != nil {
		currency := req.Currency
		if currency == "" {
			currency = s.defaultCurrency
		}
		value, err := core.ParseMoney(*req.Value, currency)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid value: "+err.Error())
			return
		}
		in.Value = &value
	}
	if req.Type != nil {
		typ := core.AssetType(*req.Type)
		in.Type = &typ
	}

	asset, err := s.assets.Update(r.Context(), userID, id, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toAssetResponse(asset))
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if err := s.assets.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Asset deleted", "asset_id", id, "user_id", userID)
	respondJSON(w, http.StatusNoContent, nil)
}
