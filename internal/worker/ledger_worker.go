// Package worker applies pasanaco events from AMQP to the account ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

const (
	KindContribution = "pasanaco_contribution"
	KindPayout       = "pasanaco_payout"
)

// LedgerWorker consumes payment and round events and books the matching
// ledger entries on the participants' linked accounts. Participants without a
// linked account are skipped, not failed, so the queue keeps draining.
type LedgerWorker struct {
	store storage.Store
}

func NewLedgerWorker(store storage.Store) *LedgerWorker {
	return &LedgerWorker{store: store}
}

// HandleEnvelope dispatches one message by type. Unknown types are dropped
// with a warning instead of being requeued forever.
func (w *LedgerWorker) HandleEnvelope(ctx context.Context, env *amqp.Envelope) error {
	switch env.Type {
	case amqp.TypePaymentPaid:
		var msg amqp.PaymentPaidMessage
		if err := env.DecodePayload(&msg); err != nil {
			return fmt.Errorf("decode payment paid payload: %w", err)
		}
		return w.HandlePaymentPaid(ctx, &msg)
	case amqp.TypeRoundAdvanced:
		var msg amqp.RoundAdvancedMessage
		if err := env.DecodePayload(&msg); err != nil {
			return fmt.Errorf("decode round advanced payload: %w", err)
		}
		return w.HandleRoundAdvanced(ctx, &msg)
	default:
		slog.WarnContext(ctx, "Dropping message of unknown type", "type", env.Type)
		return nil
	}
}

// HandlePaymentPaid debits the contribution from the payer's linked account.
func (w *LedgerWorker) HandlePaymentPaid(ctx context.Context, msg *amqp.PaymentPaidMessage) error {
	slog.InfoContext(ctx, "Processing payment paid message",
		"payment_id", msg.PaymentID,
		"participant_id", msg.ParticipantID)

	participant, err := w.store.GetParticipant(ctx, msg.ParticipantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Participant gone, skipping ledger entry",
				"participant_id", msg.ParticipantID)
			return nil
		}
		return fmt.Errorf("get participant: %w", err)
	}
	if participant.AccountID == 0 {
		slog.DebugContext(ctx, "Participant has no linked account",
			"participant_id", msg.ParticipantID)
		return nil
	}

	entry := &core.AccountTransaction{
		AccountID: participant.AccountID,
		Amount:    core.Money{Cents: -msg.AmountCents},
		Kind:      KindContribution,
		Reference: msg.TransactionID,
	}
	if err := w.store.AppendTransaction(ctx, entry); err != nil {
		return fmt.Errorf("book contribution: %w", err)
	}

	slog.InfoContext(ctx, "Booked contribution",
		"account_id", participant.AccountID,
		"amount_cents", entry.Amount.Cents,
		"transaction_id", msg.TransactionID)
	return nil
}

// HandleRoundAdvanced credits the round payout to the recipient's account.
func (w *LedgerWorker) HandleRoundAdvanced(ctx context.Context, msg *amqp.RoundAdvancedMessage) error {
	slog.InfoContext(ctx, "Processing round advanced message",
		"group_id", msg.GroupID,
		"completed_round", msg.CompletedRound)

	if msg.RecipientParticipantID == 0 {
		slog.WarnContext(ctx, "Round has no recipient, payout unbooked",
			"group_id", msg.GroupID,
			"completed_round", msg.CompletedRound)
		return nil
	}

	recipient, err := w.store.GetParticipant(ctx, msg.RecipientParticipantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Recipient gone, skipping payout",
				"participant_id", msg.RecipientParticipantID)
			return nil
		}
		return fmt.Errorf("get recipient: %w", err)
	}
	if recipient.AccountID == 0 {
		slog.DebugContext(ctx, "Recipient has no linked account",
			"participant_id", msg.RecipientParticipantID)
		return nil
	}

	entry := &core.AccountTransaction{
		AccountID: recipient.AccountID,
		Amount:    core.Money{Cents: msg.PayoutCents},
		Kind:      KindPayout,
		Reference: fmt.Sprintf("group %d round %d", msg.GroupID, msg.CompletedRound),
	}
	if err := w.store.AppendTransaction(ctx, entry); err != nil {
		return fmt.Errorf("book payout: %w", err)
	}

	slog.InfoContext(ctx, "Booked payout",
		"account_id", recipient.AccountID,
		"amount_cents", msg.PayoutCents,
		"group_id", msg.GroupID)
	return nil
}
