package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// fakeStore is an in-memory Store for service tests. Unimplemented methods
// panic via the embedded nil interface.
type fakeStore struct {
	storage.Store

	groups       map[int64]*core.Group
	participants map[int64][]core.Participant
	payments     map[int64]*core.Payment
	nextPayment  int64

	roundUpdates []roundUpdate
}

type roundUpdate struct {
	groupID   int64
	round     int
	completed bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:       make(map[int64]*core.Group),
		participants: make(map[int64][]core.Participant),
		payments:     make(map[int64]*core.Payment),
		nextPayment:  1,
	}
}

func (f *fakeStore) GetGroup(_ context.Context, id int64) (*core.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) ListGroups(_ context.Context) ([]core.Group, error) {
	var out []core.Group
	for _, g := range f.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeStore) UpdateGroupRound(_ context.Context, id int64, round int, completed bool) error {
	g, ok := f.groups[id]
	if !ok {
		return storage.ErrNotFound
	}
	g.CurrentRound = round
	g.Completed = completed
	f.roundUpdates = append(f.roundUpdates, roundUpdate{id, round, completed})
	return nil
}

func (f *fakeStore) ListParticipants(_ context.Context, groupID int64) ([]core.Participant, error) {
	return f.participants[groupID], nil
}

func (f *fakeStore) CreatePayment(_ context.Context, p *core.Payment) error {
	for _, existing := range f.payments {
		if existing.GroupID == p.GroupID && existing.ParticipantID == p.ParticipantID &&
			existing.Month == p.Month && existing.Year == p.Year {
			return storage.ErrConflict
		}
	}
	p.ID = f.nextPayment
	f.nextPayment++
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPayment(_ context.Context, id int64) (*core.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPayments(_ context.Context, groupID int64) ([]core.Payment, error) {
	var out []core.Payment
	for _, p := range f.payments {
		if p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPaymentsByMonth(_ context.Context, groupID int64, month, year int) ([]core.Payment, error) {
	var out []core.Payment
	for _, p := range f.payments {
		if p.GroupID == groupID && p.Month == month && p.Year == year {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkPaymentPaid(_ context.Context, id int64, paidAt time.Time, transactionID string) error {
	p, ok := f.payments[id]
	if !ok {
		return storage.ErrNotFound
	}
	if p.Paid {
		return storage.ErrConflict
	}
	p.Paid = true
	p.PaymentDate = &paidAt
	p.TransactionID = transactionID
	return nil
}

type fakePublisher struct {
	paid     []*amqp.PaymentPaidMessage
	advanced []*amqp.RoundAdvancedMessage
	err      error
}

func (f *fakePublisher) PublishPaymentPaid(_ context.Context, msg *amqp.PaymentPaidMessage) error {
	if f.err != nil {
		return f.err
	}
	f.paid = append(f.paid, msg)
	return nil
}

func (f *fakePublisher) PublishRoundAdvanced(_ context.Context, msg *amqp.RoundAdvancedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.advanced = append(f.advanced, msg)
	return nil
}

func seedGroup(f *fakeStore) *core.Group {
	g := &core.Group{
		ID:                1,
		Name:              "familia",
		MonthlyAmount:     core.Money{Cents: 10000},
		TotalParticipants: 3,
		CurrentRound:      1,
		StartMonth:        11,
		StartYear:         2024,
	}
	f.groups[1] = g
	f.participants[1] = []core.Participant{
		{ID: 11, GroupID: 1, Name: "Ana", AssignedNumber: 1},
		{ID: 12, GroupID: 1, Name: "Luis", AssignedNumber: 2},
		{ID: 13, GroupID: 1, Name: "Marta", AssignedNumber: 3},
	}
	return g
}

func TestGeneratePaymentsCreatesOnePerParticipant(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	svc := NewPaymentService(f, nil)

	created, err := svc.GeneratePayments(context.Background(), 1)
	if err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	if created != 3 {
		t.Errorf("created = %d, want 3", created)
	}
	for _, p := range f.payments {
		if p.Month != 11 || p.Year != 2024 {
			t.Errorf("payment scheduled for %d/%d, want 11/2024", p.Month, p.Year)
		}
		if p.Paid {
			t.Error("new payment must start pending")
		}
	}
}

func TestGeneratePaymentsIdempotent(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	svc := NewPaymentService(f, nil)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("first GeneratePayments: %v", err)
	}
	created, err := svc.GeneratePayments(ctx, 1)
	if err != nil {
		t.Fatalf("second GeneratePayments: %v", err)
	}
	if created != 0 {
		t.Errorf("second run created = %d, want 0", created)
	}
	if len(f.payments) != 3 {
		t.Errorf("total payments = %d, want 3", len(f.payments))
	}
}

func TestGeneratePaymentsUsesCurrentRoundMonth(t *testing.T) {
	f := newFakeStore()
	g := seedGroup(f)
	g.CurrentRound = 3 // start 11/2024, round 3 lands in 1/2025
	svc := NewPaymentService(f, nil)

	if _, err := svc.GeneratePayments(context.Background(), 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	for _, p := range f.payments {
		if p.Month != 1 || p.Year != 2025 {
			t.Errorf("payment scheduled for %d/%d, want 1/2025", p.Month, p.Year)
		}
	}
}

func TestGeneratePaymentsCompletedGroup(t *testing.T) {
	f := newFakeStore()
	g := seedGroup(f)
	g.Completed = true
	svc := NewPaymentService(f, nil)

	if _, err := svc.GeneratePayments(context.Background(), 1); !errors.Is(err, ErrGroupCompleted) {
		t.Errorf("err = %v, want ErrGroupCompleted", err)
	}
}

func TestMarkPaidPublishesEvent(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	pub := &fakePublisher{}
	svc := NewPaymentService(f, pub)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}

	pay, err := svc.MarkPaid(ctx, 1, 1)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !pay.Paid || pay.TransactionID == "" || pay.PaymentDate == nil {
		t.Errorf("payment not settled: %+v", pay)
	}

	if len(pub.paid) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.paid))
	}
	msg := pub.paid[0]
	if msg.PaymentID != 1 || msg.AmountCents != 10000 || msg.TransactionID != pay.TransactionID {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestMarkPaidTwiceConflicts(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	svc := NewPaymentService(f, nil)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, 1, 1); err != nil {
		t.Fatalf("first MarkPaid: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, 1, 1); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second MarkPaid err = %v, want ErrConflict", err)
	}
}

func TestMarkPaidWrongGroup(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	svc := NewPaymentService(f, nil)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, 99, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkPaidPublishFailureDoesNotUndoSettlement(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewPaymentService(f, pub)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	pay, err := svc.MarkPaid(ctx, 1, 1)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !pay.Paid {
		t.Error("payment should stay settled when publish fails")
	}
}

func TestStatusViewJoinsPayments(t *testing.T) {
	f := newFakeStore()
	seedGroup(f)
	pub := &fakePublisher{}
	svc := NewPaymentService(f, pub)
	ctx := context.Background()

	if _, err := svc.GeneratePayments(ctx, 1); err != nil {
		t.Fatalf("GeneratePayments: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, 1, 1); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	rows, err := svc.StatusView(ctx, 1)
	if err != nil {
		t.Fatalf("StatusView: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Scheduled.Month != 11 || rows[0].Scheduled.Year != 2024 {
		t.Errorf("first participant scheduled %+v, want 11/2024", rows[0].Scheduled)
	}
}
