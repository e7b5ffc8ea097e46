package http

import (
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/loan"
	"finanzas/internal/scheduler"
)

type accountRequest struct {
	Name string `json:"name"`
	Bank string `json:"bank,omitempty"`
}

type accountResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Bank    string `json:"bank,omitempty"`
	Balance string `json:"balance"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Bank: a.Bank, Balance: a.Balance.String()}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	a := core.Account{Name: req.Name, Bank: req.Bank}
	if err := a.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateAccount(r.Context(), &a); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "accountID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	a, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(*a))
}

type transactionResponse struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Amount    string    `json:"amount"`
	Kind      string    `json:"kind"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "accountID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionResponse{
			ID:        t.ID,
			AccountID: t.AccountID,
			Amount:    t.Amount.String(),
			Kind:      t.Kind,
			Reference: t.Reference,
			CreatedAt: t.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type depositRequest struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "accountID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		badRequest(w, "invalid amount")
		return
	}

	entry := core.AccountTransaction{
		AccountID: id,
		Amount:    core.Money{Cents: cents},
		Kind:      "deposit",
		Reference: req.Reference,
	}
	if err := s.store.AppendTransaction(r.Context(), &entry); err != nil {
		respondError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.LedgerEntries.WithLabelValues(entry.Kind).Inc()
	}
	respondJSON(w, http.StatusCreated, transactionResponse{
		ID:        entry.ID,
		AccountID: entry.AccountID,
		Amount:    entry.Amount.String(),
		Kind:      entry.Kind,
		Reference: entry.Reference,
		CreatedAt: entry.CreatedAt,
	})
}

type loanRequest struct {
	Description string  `json:"description"`
	Principal   string  `json:"principal"`
	AnnualRate  float64 `json:"annual_rate"`
	TermMonths  int     `json:"term_months"`
	StartMonth  int     `json:"start_month"`
	StartYear   int     `json:"start_year"`
}

type loanResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Principal   string  `json:"principal"`
	AnnualRate  float64 `json:"annual_rate"`
	TermMonths  int     `json:"term_months"`
	StartMonth  int     `json:"start_month"`
	StartYear   int     `json:"start_year"`
}

func toLoanResponse(l core.Loan) loanResponse {
	return loanResponse{
		ID:          l.ID,
		Description: l.Description,
		Principal:   l.Principal.String(),
		AnnualRate:  l.AnnualRate,
		TermMonths:  l.TermMonths,
		StartMonth:  l.StartMonth,
		StartYear:   l.StartYear,
	}
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Principal)
	if err != nil {
		badRequest(w, "invalid principal")
		return
	}

	l := core.Loan{
		Description: req.Description,
		Principal:   core.Money{Cents: cents},
		AnnualRate:  req.AnnualRate,
		TermMonths:  req.TermMonths,
		StartMonth:  req.StartMonth,
		StartYear:   req.StartYear,
	}
	if err := l.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateLoan(r.Context(), &l); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toLoanResponse(l))
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.store.ListLoans(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "loanID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	l, err := s.store.GetLoan(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toLoanResponse(*l))
}

type installmentResponse struct {
	Number    int                 `json:"number"`
	Due       scheduler.MonthYear `json:"due"`
	Payment   string              `json:"payment"`
	Interest  string              `json:"interest"`
	Principal string              `json:"principal"`
	Balance   string              `json:"balance"`
}

func (s *Server) handleLoanSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "loanID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	l, err := s.store.GetLoan(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	installments, err := loan.Schedule(*l)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]installmentResponse, 0, len(installments))
	for _, inst := range installments {
		out = append(out, installmentResponse{
			Number:    inst.Number,
			Due:       inst.Due,
			Payment:   inst.Payment.String(),
			Interest:  inst.Interest.String(),
			Principal: inst.Principal.String(),
			Balance:   inst.Balance.String(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type savingsPlanRequest struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	TargetMonth int    `json:"target_month"`
	TargetYear  int    `json:"target_year"`
}

type savingsPlanResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Target      string `json:"target"`
	Saved       string `json:"saved"`
	TargetMonth int    `json:"target_month"`
	TargetYear  int    `json:"target_year"`
}

func toSavingsPlanResponse(sp core.SavingsPlan) savingsPlanResponse {
	return savingsPlanResponse{
		ID:          sp.ID,
		Name:        sp.Name,
		Target:      sp.Target.String(),
		Saved:       sp.Saved.String(),
		TargetMonth: sp.TargetMonth,
		TargetYear:  sp.TargetYear,
	}
}

func (s *Server) handleCreateSavingsPlan(w http.ResponseWriter, r *http.Request) {
	var req savingsPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Target)
	if err != nil {
		badRequest(w, "invalid target amount")
		return
	}

	sp := core.SavingsPlan{
		Name:        req.Name,
		Target:      core.Money{Cents: cents},
		TargetMonth: req.TargetMonth,
		TargetYear:  req.TargetYear,
	}
	if err := sp.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateSavingsPlan(r.Context(), &sp); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSavingsPlanResponse(sp))
}

func (s *Server) handleListSavingsPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListSavingsPlans(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]savingsPlanResponse, 0, len(plans))
	for _, sp := range plans {
		out = append(out, toSavingsPlanResponse(sp))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSavingsDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "planID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		badRequest(w, "invalid amount")
		return
	}

	if err := s.store.AddSavingsDeposit(r.Context(), id, core.Money{Cents: cents}); err != nil {
		respondError(w, r, err)
		return
	}
	sp, err := s.store.GetSavingsPlan(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSavingsPlanResponse(*sp))
}
