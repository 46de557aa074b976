package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"splitbook/internal/core"
	"splitbook/internal/services"
)

// shareRequest is one participant's entry in a split. Percent and amount
// are decimal strings; which one is required depends on the mode.
type shareRequest struct {
	UserID  string `json:"user_id"`
	Percent string `json:"percent,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

type splitRequest struct {
	Mode   string         `json:"mode"`
	Shares []shareRequest `json:"shares"`
}

type createExpenseRequest struct {
	Description string        `json:"description"`
	Amount      string        `json:"amount"`
	Currency    string        `json:"currency,omitempty"`
	Date        string        `json:"date"` // YYYY-MM-DD
	CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
	ReceiptID   *uuid.UUID    `json:"receipt_id,omitempty"`
	Split       *splitRequest `json:"split,omitempty"`
}

type splitResponse struct {
	UserID     string `json:"user_id"`
	AmountOwed string `json:"amount_owed"`
	Currency   string `json:"currency"`
	Percent    string `json:"percent"`
}

type expenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	PayerID     string          `json:"payer_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	ReceiptID   *uuid.UUID      `json:"receipt_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Splits      []splitResponse `json:"splits,omitempty"`
}

func toExpenseResponse(e core.Expense, splits []core.ExpenseSplit) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.Decimal(),
		Currency:    e.Amount.Currency,
		Date:        e.Date.Format("2006-01-02"),
		PayerID:     e.PayerID,
		CategoryID:  e.CategoryID,
		ReceiptID:   e.ReceiptID,
		CreatedAt:   e.CreatedAt,
	}
	for _, sp := range splits {
		resp.Splits = append(resp.Splits, splitResponse{
			UserID:     sp.UserID,
			AmountOwed: sp.AmountOwed.Decimal(),
			Currency:   sp.AmountOwed.Currency,
			Percent:    core.FormatPercent(sp.PercentBP),
		})
	}
	return resp
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in, err := s.buildCreateInput(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, splits, err := s.ledger.Create(r.Context(), userID, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		"expense_id", expense.ID,
		"payer_id", userID,
		"amount", expense.Amount.Decimal(),
		"currency", expense.Amount.Currency,
		"splits", len(splits))

	respondJSON(w, http.StatusCreated, toExpenseResponse(expense, splits))
}

func (s *Server) buildCreateInput(req createExpenseRequest) (services.CreateExpenseInput, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	amount, err := core.ParseMoney(req.Amount, currency)
	if err != nil {
		return services.CreateExpenseInput{}, fmt.Errorf("invalid amount: %w", err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return services.CreateExpenseInput{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", req.Date)
	}

	in := services.CreateExpenseInput{
		Description: req.Description,
		Amount:      amount,
		Date:        date,
		CategoryID:  req.CategoryID,
		ReceiptID:   req.ReceiptID,
	}

	if req.Split != nil {
		mode := core.SplitMode(req.Split.Mode)
		if !mode.Valid() {
			return services.CreateExpenseInput{}, fmt.Errorf("invalid split mode %q", req.Split.Mode)
		}
		shares, err := parseShares(mode, req.Split.Shares, currency)
		if err != nil {
			return services.CreateExpenseInput{}, err
		}
		in.SplitMode = mode
		in.Shares = shares
	}

	return in, nil
}

func parseShares(mode core.SplitMode, reqs []shareRequest, currency string) ([]core.SplitShare, error) {
	shares := make([]core.SplitShare, 0, len(reqs))
	for i, sr := range reqs {
		share := core.SplitShare{UserID: sr.UserID}

		switch mode {
		case core.SplitPercentage:
			bp, err := core.ParsePercent(sr.Percent)
			if err != nil {
				return nil, fmt.Errorf("share %d: invalid percent: %w", i, err)
			}
			share.PercentBP = bp
		case core.SplitExplicit:
			amount, err := core.ParseMoney(sr.Amount, currency)
			if err != nil {
				return nil, fmt.Errorf("share %d: invalid amount: %w", i, err)
			}
			share.Amount = amount
		}

		shares = append(shares, share)
	}
	return shares, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	expenses, err := s.ledger.List(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, toExpenseResponse(e, nil))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSharedExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	expenses, err := s.ledger.ListShared(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, toExpenseResponse(e, nil))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	expense, splits, err := s.ledger.Get(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toExpenseResponse(expense, splits))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.ledger.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense deleted", "expense_id", id, "user_id", userID)
	respondJSON(w, http.StatusNoContent, nil)
}
