// Package services orchestrates group, payment and round operations across
// the SQLite store and the AMQP broker.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/scheduler"
	"finanzas/internal/storage"
)

// ErrGroupCompleted is returned for operations on a group whose cycle ended.
var ErrGroupCompleted = errors.New("group cycle already completed")

// Publisher is the slice of the AMQP client the services need.
type Publisher interface {
	PublishPaymentPaid(ctx context.Context, msg *amqp.PaymentPaidMessage) error
	PublishRoundAdvanced(ctx context.Context, msg *amqp.RoundAdvancedMessage) error
}

// PaymentService coordinates contribution generation and settlement for
// pasanaco groups.
type PaymentService struct {
	store     storage.Store
	publisher Publisher
}

func NewPaymentService(store storage.Store, publisher Publisher) *PaymentService {
	return &PaymentService{store: store, publisher: publisher}
}

// GeneratePayments creates the pending contribution rows for the group's
// current round month, one per participant. Already-existing rows are left
// untouched, so the operation is safe to repeat. Returns the number of rows
// created.
func (s *PaymentService) GeneratePayments(ctx context.Context, groupID int64) (int, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("load group: %w", err)
	}
	if g.Completed {
		return 0, ErrGroupCompleted
	}

	due, err := scheduler.CurrentRoundSchedule(*g)
	if err != nil {
		return 0, fmt.Errorf("schedule round %d: %w", g.CurrentRound, err)
	}

	participants, err := s.store.ListParticipants(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("list participants: %w", err)
	}

	created := 0
	for _, p := range participants {
		pay := &core.Payment{
			GroupID:       groupID,
			ParticipantID: p.ID,
			Month:         due.Month,
			Year:          due.Year,
		}
		err := s.store.CreatePayment(ctx, pay)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create payment for participant %d: %w", p.ID, err)
		}
		created++
	}

	slog.InfoContext(ctx, "Generated round payments",
		"group_id", groupID,
		"round", g.CurrentRound,
		"month", due.Month,
		"year", due.Year,
		"created", created,
		"participants", len(participants))

	return created, nil
}

// MarkPaid settles a pending contribution, stamping it with a fresh
// transaction id, and publishes the event for the ledger worker. A payment
// already settled surfaces storage.ErrConflict unchanged.
func (s *PaymentService) MarkPaid(ctx context.Context, groupID, paymentID int64) (*core.Payment, error) {
	pay, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if pay.GroupID != groupID {
		return nil, storage.ErrNotFound
	}

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	txID := uuid.New().String()
	paidAt := time.Now().UTC()
	if err := s.store.MarkPaymentPaid(ctx, paymentID, paidAt, txID); err != nil {
		return nil, err
	}

	pay.Paid = true
	pay.PaymentDate = &paidAt
	pay.TransactionID = txID

	if s.publisher != nil {
		msg := &amqp.PaymentPaidMessage{
			PaymentID:     pay.ID,
			GroupID:       pay.GroupID,
			ParticipantID: pay.ParticipantID,
			AmountCents:   g.MonthlyAmount.Cents,
			Month:         pay.Month,
			Year:          pay.Year,
			TransactionID: txID,
			Timestamp:     paidAt,
		}
		if err := s.publisher.PublishPaymentPaid(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish payment paid message",
				"payment_id", pay.ID, "error", err)
			// The settlement is committed; the ledger catches up later.
		}
	}

	return pay, nil
}

// StatusView returns one row per participant with the payment status for the
// month of their own round. Duplicate payment rows are reported here once and
// never break the view.
func (s *PaymentService) StatusView(ctx context.Context, groupID int64) ([]scheduler.ParticipantStatus, error) {
	g, participants, payments, err := s.loadGroupData(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rows, anomalies := scheduler.BuildStatusView(*g, participants, payments)
	s.logAnomalies(ctx, groupID, anomalies)
	return rows, nil
}

// CycleMatrix returns the full participants-by-rounds payment grid.
func (s *PaymentService) CycleMatrix(ctx context.Context, groupID int64) ([]scheduler.ParticipantRow, error) {
	g, participants, payments, err := s.loadGroupData(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rows, anomalies := scheduler.BuildCycleMatrix(*g, participants, payments)
	s.logAnomalies(ctx, groupID, anomalies)
	return rows, nil
}

func (s *PaymentService) loadGroupData(ctx context.Context, groupID int64) (*core.Group, []core.Participant, []core.Payment, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load group: %w", err)
	}
	participants, err := s.store.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list participants: %w", err)
	}
	payments, err := s.store.ListPayments(ctx, groupID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list payments: %w", err)
	}
	return g, participants, payments, nil
}

func (s *PaymentService) logAnomalies(ctx context.Context, groupID int64, anomalies []scheduler.Anomaly) {
	for _, a := range anomalies {
		slog.WarnContext(ctx, "Duplicate payments for scheduled month",
			"group_id", groupID,
			"participant_id", a.ParticipantID,
			"month", a.Scheduled.Month,
			"year", a.Scheduled.Year,
			"payment_ids", a.PaymentIDs)
	}
}
