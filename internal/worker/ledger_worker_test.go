package worker

import (
	"context"
	"testing"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type fakeStore struct {
	storage.Store

	participants map[int64]*core.Participant
	entries      []core.AccountTransaction
}

func (f *fakeStore) GetParticipant(_ context.Context, id int64) (*core.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) AppendTransaction(_ context.Context, tx *core.AccountTransaction) error {
	f.entries = append(f.entries, *tx)
	return nil
}

func newWorkerStore() *fakeStore {
	return &fakeStore{
		participants: map[int64]*core.Participant{
			11: {ID: 11, GroupID: 1, Name: "Ana", AssignedNumber: 1, AccountID: 5},
			12: {ID: 12, GroupID: 1, Name: "Luis", AssignedNumber: 2}, // no account
		},
	}
}

func TestHandlePaymentPaidDebitsAccount(t *testing.T) {
	f := newWorkerStore()
	w := NewLedgerWorker(f)

	msg := &amqp.PaymentPaidMessage{
		PaymentID:     1,
		GroupID:       1,
		ParticipantID: 11,
		AmountCents:   10000,
		TransactionID: "tx-1",
	}
	if err := w.HandlePaymentPaid(context.Background(), msg); err != nil {
		t.Fatalf("HandlePaymentPaid: %v", err)
	}

	if len(f.entries) != 1 {
		t.Fatalf("booked %d entries, want 1", len(f.entries))
	}
	e := f.entries[0]
	if e.AccountID != 5 || e.Amount.Cents != -10000 || e.Kind != KindContribution || e.Reference != "tx-1" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestHandlePaymentPaidNoLinkedAccount(t *testing.T) {
	f := newWorkerStore()
	w := NewLedgerWorker(f)

	msg := &amqp.PaymentPaidMessage{ParticipantID: 12, AmountCents: 10000}
	if err := w.HandlePaymentPaid(context.Background(), msg); err != nil {
		t.Fatalf("HandlePaymentPaid: %v", err)
	}
	if len(f.entries) != 0 {
		t.Errorf("booked %d entries, want 0", len(f.entries))
	}
}

func TestHandlePaymentPaidMissingParticipant(t *testing.T) {
	f := newWorkerStore()
	w := NewLedgerWorker(f)

	msg := &amqp.PaymentPaidMessage{ParticipantID: 99, AmountCents: 10000}
	if err := w.HandlePaymentPaid(context.Background(), msg); err != nil {
		t.Errorf("missing participant should be skipped, got %v", err)
	}
}

func TestHandleRoundAdvancedCreditsPayout(t *testing.T) {
	f := newWorkerStore()
	w := NewLedgerWorker(f)

	msg := &amqp.RoundAdvancedMessage{
		GroupID:                1,
		CompletedRound:         1,
		RecipientParticipantID: 11,
		PayoutCents:            30000,
	}
	if err := w.HandleRoundAdvanced(context.Background(), msg); err != nil {
		t.Fatalf("HandleRoundAdvanced: %v", err)
	}

	if len(f.entries) != 1 {
		t.Fatalf("booked %d entries, want 1", len(f.entries))
	}
	e := f.entries[0]
	if e.AccountID != 5 || e.Amount.Cents != 30000 || e.Kind != KindPayout {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestHandleRoundAdvancedNoRecipient(t *testing.T) {
	f := newWorkerStore()
	w := NewLedgerWorker(f)

	msg := &amqp.RoundAdvancedMessage{GroupID: 1, CompletedRound: 2, PayoutCents: 30000}
	if err := w.HandleRoundAdvanced(context.Background(), msg); err != nil {
		t.Errorf("missing recipient should be skipped, got %v", err)
	}
	if len(f.entries) != 0 {
		t.Errorf("booked %d entries, want 0", len(f.entries))
	}
}

func TestHandleEnvelopeDispatch(t *testing.T) {
	f := newWorkerStore()
	w := NewLedgerWorker(f)
	ctx := context.Background()

	env, err := amqp.NewEnvelope(amqp.TypePaymentPaid, &amqp.PaymentPaidMessage{
		ParticipantID: 11, AmountCents: 10000, TransactionID: "tx-2",
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if err := w.HandleEnvelope(ctx, env); err != nil {
		t.Fatalf("HandleEnvelope: %v", err)
	}
	if len(f.entries) != 1 {
		t.Fatalf("booked %d entries, want 1", len(f.entries))
	}

	unknown := &amqp.Envelope{Type: "mystery", Payload: []byte(`{}`)}
	if err := w.HandleEnvelope(ctx, unknown); err != nil {
		t.Errorf("unknown type should be dropped, got %v", err)
	}
}
