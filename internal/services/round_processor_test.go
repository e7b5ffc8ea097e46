package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/core"
)

func settleAll(t *testing.T, f *fakeStore, svc *PaymentService) {
	t.Helper()
	ctx := context.Background()
	for id := range f.payments {
		if f.payments[id].Paid {
			continue
		}
		if err := f.MarkPaymentPaid(ctx, id, time.Now(), "tx"); err != nil {
			t.Fatalf("settle payment %d: %v", id, err)
		}
	}
}

func TestProcessGroupNotFullyCollected(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	svc := NewPaymentService(f, nil)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}

	proc := NewRoundProcessor(f, nil)
	advanced, err := proc.ProcessGroup(ctx, 1)
	if err != nil {
		t.Fatalf("ProcessGroup: %v", err)
	}
	if advanced {
		t.Error("round advanced with pending payments")
	}
	if len(f.roundUpdates) != 0 {
		t.Errorf("unexpected round updates: %+v", f.roundUpdates)
	}
}

func TestProcessGroupAdvancesRound(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	svc := NewPaymentService(f, nil)
	pub := &fakePublisher{}
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	settleAll(t, f, svc)

	proc := NewRoundProcessor(f, pub)
	advanced, err := proc.ProcessGroup(ctx, 1)
	if err != nil {
		t.Fatalf("ProcessGroup: %v", err)
	}
	if !advanced {
		t.Fatal("expected round to advance")
	}

	g, _ := f.GetGroup(ctx, 1)
	if g.CurrentRound != 2 || g.Completed {
		t.Errorf("round = %d, completed = %v, want 2, false", g.CurrentRound, g.Completed)
	}

	if len(pub.advanced) != 1 {
		t.Fatalf("published %d round messages, want 1", len(pub.advanced))
	}
	msg := pub.advanced[0]
	if msg.CompletedRound != 1 {
		t.Errorf("completed round = %d, want 1", msg.CompletedRound)
	}
	if msg.RecipientParticipantID != 11 {
		t.Errorf("recipient = %d, want 11 (assigned number 1)", msg.RecipientParticipantID)
	}
	if msg.PayoutCents != 30000 {
		t.Errorf("payout = %d, want 30000", msg.PayoutCents)
	}
}

func TestProcessGroupCompletesFinalRound(t *testing.T) {
	f := newFakeStore()
	g := seedGroup(f)
	g.CurrentRound = 3
	svc := NewPaymentService(f, nil)
	pub := &fakePublisher{}
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	settleAll(t, f, svc)

	proc := NewRoundProcessor(f, pub)
	advanced, err := proc.ProcessGroup(ctx, 1)
	if err != nil {
		t.Fatalf("ProcessGroup: %v", err)
	}
	if !advanced {
		t.Fatal("expected final round to close")
	}

	got, _ := f.GetGroup(ctx, 1)
	if !got.Completed {
		t.Error("group should be completed after the last round")
	}
	if got.CurrentRound != 3 {
		t.Errorf("round = %d, want 3 (counter stays on the last round)", got.CurrentRound)
	}
	if len(pub.advanced) != 1 || pub.advanced[0].RecipientParticipantID != 13 {
		t.Errorf("unexpected payout messages: %+v", pub.advanced)
	}
}

func TestProcessGroupAlreadyCompleted(t *testing.T) {
	f := newFakeStore()
	g := seedGroup(f)
	g.Completed = true
	proc := NewRoundProcessor(f, nil)

	if _, err := proc.ProcessGroup(context.Background(), 1); !errors.Is(err, ErrGroupCompleted) {
		t.Errorf("err = %v, want ErrGroupCompleted", err)
	}
}

func TestProcessAllSkipsCompletedGroups(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	f.groups[2] = &core.Group{
		ID:                2,
		Name:              "cerrado",
		MonthlyAmount:     core.Money{Cents: 5000},
		TotalParticipants: 2,
		CurrentRound:      2,
		StartMonth:        1,
		StartYear:         2024,
		Completed:         true,
	}
	svc := NewPaymentService(f, nil)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	settleAll(t, f, svc)

	proc := NewRoundProcessor(f, nil)
	advanced, err := proc.ProcessAll(ctx)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if advanced != 1 {
		t.Errorf("advanced = %d, want 1", advanced)
	}
}
