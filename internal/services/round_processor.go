package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/scheduler"
	"finanzas/internal/storage"

	"finanzas/internal/amqp"
)

// RoundProcessor advances group rounds once every contribution for the
// current round month is settled. The round recipient is the participant
// whose assigned number equals the round.
type RoundProcessor struct {
	store     storage.Store
	publisher Publisher
}

func NewRoundProcessor(store storage.Store, publisher Publisher) *RoundProcessor {
	return &RoundProcessor{store: store, publisher: publisher}
}

// ProcessAll checks every open group and advances the ones that are fully
// collected. Returns the number of groups advanced.
func (p *RoundProcessor) ProcessAll(ctx context.Context) (int, error) {
	groups, err := p.store.ListGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("list groups: %w", err)
	}

	advanced := 0
	for _, g := range groups {
		if g.Completed {
			continue
		}
		ok, err := p.ProcessGroup(ctx, g.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process group round",
				"group_id", g.ID, "error", err)
			continue
		}
		if ok {
			advanced++
		}
	}
	return advanced, nil
}

// ProcessGroup advances one group if its current round is fully collected.
// Advancing the last round marks the group completed instead of moving the
// round counter past the cycle length. Reports whether the round advanced.
func (p *RoundProcessor) ProcessGroup(ctx context.Context, groupID int64) (bool, error) {
	g, err := p.store.GetGroup(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("load group: %w", err)
	}
	if g.Completed {
		return false, ErrGroupCompleted
	}

	due, err := scheduler.CurrentRoundSchedule(*g)
	if err != nil {
		return false, fmt.Errorf("schedule round %d: %w", g.CurrentRound, err)
	}

	payments, err := p.store.ListPaymentsByMonth(ctx, groupID, due.Month, due.Year)
	if err != nil {
		return false, fmt.Errorf("list payments: %w", err)
	}

	paid := 0
	for _, pay := range payments {
		if pay.Paid {
			paid++
		}
	}
	if paid < g.TotalParticipants {
		slog.DebugContext(ctx, "Round not fully collected",
			"group_id", groupID,
			"round", g.CurrentRound,
			"paid", paid,
			"participants", g.TotalParticipants)
		return false, nil
	}

	completedRound := g.CurrentRound
	nextRound := g.CurrentRound + 1
	completed := nextRound > g.TotalParticipants
	if completed {
		nextRound = g.CurrentRound
	}

	if err := p.store.UpdateGroupRound(ctx, groupID, nextRound, completed); err != nil {
		return false, fmt.Errorf("advance round: %w", err)
	}

	recipientID := p.recipientFor(ctx, groupID, completedRound)
	payout := g.MonthlyAmount.Cents * int64(g.TotalParticipants)

	slog.InfoContext(ctx, "Round collected",
		"group_id", groupID,
		"completed_round", completedRound,
		"recipient_participant_id", recipientID,
		"payout_cents", payout,
		"group_completed", completed)

	if p.publisher != nil {
		msg := &amqp.RoundAdvancedMessage{
			GroupID:                groupID,
			CompletedRound:         completedRound,
			RecipientParticipantID: recipientID,
			PayoutCents:            payout,
			Timestamp:              time.Now().UTC(),
		}
		if err := p.publisher.PublishRoundAdvanced(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish round advanced message",
				"group_id", groupID, "error", err)
		}
	}

	return true, nil
}

// recipientFor resolves the participant receiving the payout for the round.
// Missing participants yield 0; the payout event still goes out so the gap is
// visible downstream.
func (p *RoundProcessor) recipientFor(ctx context.Context, groupID int64, round int) int64 {
	participants, err := p.store.ListParticipants(ctx, groupID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve round recipient",
			"group_id", groupID, "round", round, "error", err)
		return 0
	}
	for _, pt := range participants {
		if pt.AssignedNumber == round {
			return pt.ID
		}
	}
	slog.WarnContext(ctx, "No participant assigned to round",
		"group_id", groupID, "round", round)
	return 0
}

// Run re-checks all groups on every tick until the context ends.
func (p *RoundProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Round processor started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Round processor stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Round processing pass failed", "error", err)
			}
		}
	}
}
