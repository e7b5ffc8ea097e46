package http

import (
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/scheduler"
)

type groupRequest struct {
	Name              string `json:"name"`
	MonthlyAmount     string `json:"monthly_amount"`
	TotalParticipants int    `json:"total_participants"`
	StartMonth        int    `json:"start_month"`
	StartYear         int    `json:"start_year"`
}

type groupResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	MonthlyAmount     string `json:"monthly_amount"`
	TotalParticipants int    `json:"total_participants"`
	CurrentRound      int    `json:"current_round"`
	StartMonth        int    `json:"start_month"`
	StartYear         int    `json:"start_year"`
	Completed         bool   `json:"completed"`
}

func toGroupResponse(g core.Group) groupResponse {
	return groupResponse{
		ID:                g.ID,
		Name:              g.Name,
		MonthlyAmount:     g.MonthlyAmount.String(),
		TotalParticipants: g.TotalParticipants,
		CurrentRound:      g.CurrentRound,
		StartMonth:        g.StartMonth,
		StartYear:         g.StartYear,
		Completed:         g.Completed,
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.MonthlyAmount)
	if err != nil {
		badRequest(w, "invalid monthly amount")
		return
	}

	g := core.Group{
		Name:              req.Name,
		MonthlyAmount:     core.Money{Cents: cents},
		TotalParticipants: req.TotalParticipants,
		CurrentRound:      1,
		StartMonth:        req.StartMonth,
		StartYear:         req.StartYear,
	}
	if err := g.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateGroup(r.Context(), &g); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	g, err := s.store.GetGroup(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupResponse(*g))
}

type currentRoundResponse struct {
	Round     int                 `json:"round"`
	Scheduled scheduler.MonthYear `json:"scheduled"`
	Completed bool                `json:"completed"`
}

func (s *Server) handleCurrentRound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	g, err := s.store.GetGroup(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	scheduled, err := scheduler.CurrentRoundSchedule(*g)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, currentRoundResponse{
		Round:     g.CurrentRound,
		Scheduled: scheduled,
		Completed: g.Completed,
	})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.store.DeleteGroup(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type participantRequest struct {
	Name           string `json:"name"`
	AssignedNumber int    `json:"assigned_number"`
	AccountID      int64  `json:"account_id,omitempty"`
}

type participantResponse struct {
	ID             int64  `json:"id"`
	GroupID        int64  `json:"group_id"`
	Name           string `json:"name"`
	AssignedNumber int    `json:"assigned_number"`
	AccountID      int64  `json:"account_id,omitempty"`
}

func toParticipantResponse(p core.Participant) participantResponse {
	return participantResponse{
		ID:             p.ID,
		GroupID:        p.GroupID,
		Name:           p.Name,
		AssignedNumber: p.AssignedNumber,
		AccountID:      p.AccountID,
	}
}

func (s *Server) handleCreateParticipant(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req participantRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	g, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	p := core.Participant{
		GroupID:        groupID,
		Name:           req.Name,
		AssignedNumber: req.AssignedNumber,
		AccountID:      req.AccountID,
	}
	if err := p.Validate(g.TotalParticipants); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateParticipant(r.Context(), &p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toParticipantResponse(p))
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	participants, err := s.store.ListParticipants(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteParticipant(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	participantID, err := pathID(r, "participantID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.store.DeleteParticipant(r.Context(), groupID, participantID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type paymentResponse struct {
	ID            int64      `json:"id"`
	ParticipantID int64      `json:"participant_id"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	Paid          bool       `json:"paid"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
}

func toPaymentResponse(p core.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		ParticipantID: p.ParticipantID,
		Month:         p.Month,
		Year:          p.Year,
		Paid:          p.Paid,
		PaymentDate:   p.PaymentDate,
		TransactionID: p.TransactionID,
	}
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var payments []core.Payment
	if r.URL.Query().Get("month") != "" || r.URL.Query().Get("year") != "" {
		year, month, err := queryMonthYear(r)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		payments, err = s.store.ListPaymentsByMonth(r.Context(), groupID, month, year)
		if err != nil {
			respondError(w, r, err)
			return
		}
	} else {
		payments, err = s.store.ListPayments(r.Context(), groupID)
		if err != nil {
			respondError(w, r, err)
			return
		}
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGeneratePayments(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	created, err := s.payments.GeneratePayments(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"created": created})
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	pay, err := s.payments.MarkPaid(r.Context(), groupID, paymentID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.PaymentsPaid.Inc()
	}
	respondJSON(w, http.StatusOK, toPaymentResponse(*pay))
}

type statusRowResponse struct {
	Participant participantResponse `json:"participant"`
	Scheduled   scheduler.MonthYear `json:"scheduled"`
	Status      string              `json:"status"`
	Payment     *paymentResponse    `json:"payment,omitempty"`
}

func (s *Server) handleGroupStatus(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rows, err := s.payments.StatusView(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]statusRowResponse, 0, len(rows))
	for _, row := range rows {
		resp := statusRowResponse{
			Participant: toParticipantResponse(row.Participant),
			Scheduled:   row.Scheduled,
			Status:      string(row.Status),
		}
		if row.Payment != nil {
			p := toPaymentResponse(*row.Payment)
			resp.Payment = &p
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

type cellResponse struct {
	Round     int                 `json:"round"`
	Scheduled scheduler.MonthYear `json:"scheduled"`
	Status    string              `json:"status"`
	Payment   *paymentResponse    `json:"payment,omitempty"`
}

type cycleRowResponse struct {
	Participant participantResponse `json:"participant"`
	Cells       []cellResponse      `json:"cells"`
}

func (s *Server) handleGroupCycle(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rows, err := s.payments.CycleMatrix(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]cycleRowResponse, 0, len(rows))
	for _, row := range rows {
		resp := cycleRowResponse{
			Participant: toParticipantResponse(row.Participant),
			Cells:       make([]cellResponse, 0, len(row.Cells)),
		}
		for _, cell := range row.Cells {
			c := cellResponse{
				Round:     cell.Round,
				Scheduled: cell.Scheduled,
				Status:    string(cell.Status),
			}
			if cell.Payment != nil {
				p := toPaymentResponse(*cell.Payment)
				c.Payment = &p
			}
			resp.Cells = append(resp.Cells, c)
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	advanced, err := s.rounds.ProcessGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if advanced && s.metrics != nil {
		s.metrics.RoundsClosed.Inc()
	}
	respondJSON(w, http.StatusOK, map[string]bool{"advanced": advanced})
}

func (s *Server) handleExportCycle(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "export not configured"})
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	g, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := s.payments.CycleMatrix(r.Context(), groupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.exporter.ExportCycleMatrix(r.Context(), *g, rows); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "exported"})
}
