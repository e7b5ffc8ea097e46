package http

import (
	"fmt"
	"net/http"

	"finanzas/internal/core"
)

type entryRequest struct {
	Day         int    `json:"day"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

type entryResponse struct {
	ID          int64  `json:"id"`
	Day         int    `json:"day"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

func (req entryRequest) toExpense() (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount: %w", err)
	}
	return core.Expense{
		Date:        core.NewDate(req.Year, req.Month, req.Day),
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
	}, nil
}

func (req entryRequest) toIncome() (core.Income, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Income{}, fmt.Errorf("invalid amount: %w", err)
	}
	return core.Income{
		Date:        core.NewDate(req.Year, req.Month, req.Day),
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	e, err := req.toExpense()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := e.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateExpense(r.Context(), &e); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummary(e.Date.Year(), e.Date.Month())
	respondJSON(w, http.StatusCreated, entryResponse{
		ID:          e.ID,
		Day:         e.Date.Day(),
		Month:       e.Date.Month(),
		Year:        e.Date.Year(),
		Description: e.Description,
		Amount:      e.Amount.String(),
		Category:    e.Category,
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryMonthYear(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	expenses, err := s.store.ListExpenses(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]entryResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, entryResponse{
			ID:          e.ID,
			Day:         e.Date.Day(),
			Month:       e.Date.Month(),
			Year:        e.Date.Year(),
			Description: e.Description,
			Amount:      e.Amount.String(),
			Category:    e.Category,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "expenseID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	e, err := s.store.GetExpense(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummary(e.Date.Year(), e.Date.Month())
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	in, err := req.toIncome()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateIncome(r.Context(), &in); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummary(in.Date.Year(), in.Date.Month())
	respondJSON(w, http.StatusCreated, entryResponse{
		ID:          in.ID,
		Day:         in.Date.Day(),
		Month:       in.Date.Month(),
		Year:        in.Date.Year(),
		Description: in.Description,
		Amount:      in.Amount.String(),
		Category:    in.Category,
	})
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryMonthYear(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	incomes, err := s.store.ListIncomes(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]entryResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, entryResponse{
			ID:          in.ID,
			Day:         in.Date.Day(),
			Month:       in.Date.Month(),
			Year:        in.Date.Year(),
			Description: in.Description,
			Amount:      in.Amount.String(),
			Category:    in.Category,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "incomeID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	in, err := s.store.GetIncome(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.DeleteIncome(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummary(in.Date.Year(), in.Date.Month())
	respondJSON(w, http.StatusNoContent, nil)
}

type categoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type summaryResponse struct {
	Year              int                      `json:"year"`
	Month             int                      `json:"month"`
	ExpenseTotal      string                   `json:"expense_total"`
	IncomeTotal       string                   `json:"income_total"`
	Net               string                   `json:"net"`
	ExpenseByCategory []categoryAmountResponse `json:"expense_by_category"`
	IncomeByCategory  []categoryAmountResponse `json:"income_by_category"`
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryMonthYear(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	key := summaryKey(year, month)
	sum, hit := s.summaryCache.Get(key)
	if !hit {
		sum, err = s.store.MonthSummary(r.Context(), year, month)
		if err != nil {
			respondError(w, r, err)
			return
		}
		s.summaryCache.Set(key, sum)
	}
	if s.metrics != nil {
		outcome := "miss"
		if hit {
			outcome = "hit"
		}
		s.metrics.CacheHits.WithLabelValues(outcome).Inc()
	}

	resp := summaryResponse{
		Year:              sum.Year,
		Month:             sum.Month,
		ExpenseTotal:      sum.ExpenseTotal.String(),
		IncomeTotal:       sum.IncomeTotal.String(),
		Net:               sum.Net.String(),
		ExpenseByCategory: toCategoryResponses(sum.ExpenseByCategory),
		IncomeByCategory:  toCategoryResponses(sum.IncomeByCategory),
	}
	respondJSON(w, http.StatusOK, resp)
}

func toCategoryResponses(in []core.CategoryAmount) []categoryAmountResponse {
	out := make([]categoryAmountResponse, 0, len(in))
	for _, c := range in {
		out = append(out, categoryAmountResponse{Category: c.Category, Amount: c.Amount.String()})
	}
	return out
}

func summaryKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (s *Server) invalidateSummary(year, month int) {
	s.summaryCache.Delete(summaryKey(year, month))
}
