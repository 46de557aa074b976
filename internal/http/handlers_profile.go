package http

import (
	"net/http"

	"splitbook/internal/core"
	"splitbook/internal/services"
)

type profileResponse struct {
	UserID          string `json:"user_id"`
	MonthlyIncome   string `json:"monthly_income"`
	Currency        string `json:"currency"`
	ThemePreference string `json:"theme_preference"`
}

type upsertProfileRequest struct {
	MonthlyIncome   *string `json:"monthly_income,omitempty"`
	Currency        *string `json:"currency,omitempty"`
	ThemePreference *string `json:"theme_preference,omitempty"`
}

func toProfileResponse(p core.UserProfile) profileResponse {
	return profileResponse{
		UserID:          p.UserID,
		MonthlyIncome:   p.MonthlyIncome.Decimal(),
		Currency:        p.Currency,
		ThemePreference: p.ThemePreference,
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	profile, err := s.profiles.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	var req upsertProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in := services.UpsertProfileInput{
		Currency:        req.Currency,
		ThemePreference: req.ThemePreference,
	}
	if req.MonthlyIncome != nil {
		currency := s.defaultCurrency
		if req.Currency != nil {
			currency = *req.Currency
		}
		income, err := core.ParseMoney(*req.MonthlyIncome, currency)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid monthly income: "+err.Error())
			return
		}
		in.MonthlyIncome = &income
	}

	profile, err := s.profiles.Upsert(r.Context(), userID, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(profile))
}
