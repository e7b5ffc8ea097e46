package scheduler

import "finanzas/internal/core"

// CellStatus is the reconciliation state of one (participant, round) cell.
//
// Unscheduled is terminal: the schedule computation failed for that round and
// the cell must never be matched against payments. The remaining states form
// the forward-only chain NotGenerated -> Pending -> Paid; un-marking a paid
// contribution is not modeled.
type CellStatus string

const (
	StatusUnscheduled  CellStatus = "unscheduled"
	StatusNotGenerated CellStatus = "not_generated"
	StatusPending      CellStatus = "pending"
	StatusPaid         CellStatus = "paid"
)

// ParticipantStatus is one row of the status view: a participant, the month
// their own round falls in, and the payment found for that month (nil when
// none has been generated yet).
type ParticipantStatus struct {
	Participant core.Participant
	Scheduled   MonthYear // meaningless when Status == StatusUnscheduled
	Status      CellStatus
	Payment     *core.Payment
}

// Anomaly flags a data-integrity violation found while joining payments to
// the schedule: more than one payment for the same (participant, month, year)
// triple. The first match was used; the caller should log the rest.
type Anomaly struct {
	ParticipantID int64
	Scheduled     MonthYear
	PaymentIDs    []int64
}

// Cell is one entry of the full-cycle matrix.
type Cell struct {
	Round     int
	Scheduled MonthYear
	Status    CellStatus
	Payment   *core.Payment
}

// ParticipantRow is one row of the full-cycle matrix: a participant and their
// status for every round from 1 to the group's cycle length.
type ParticipantRow struct {
	Participant core.Participant
	Cells       []Cell
}

// BuildStatusView computes, for each participant, the month of their own round
// and their payment status for it. Inputs are read-only; participants keep
// their input order.
func BuildStatusView(g core.Group, participants []core.Participant, payments []core.Payment) ([]ParticipantStatus, []Anomaly) {
	rows := make([]ParticipantStatus, 0, len(participants))
	var anomalies []Anomaly

	for _, p := range participants {
		my, err := ScheduleFor(g.StartMonth, g.StartYear, p.AssignedNumber)
		if err != nil {
			rows = append(rows, ParticipantStatus{
				Participant: p,
				Status:      StatusUnscheduled,
			})
			continue
		}

		pay, extra := lookupPayment(payments, p.ID, my)
		if len(extra) > 0 {
			anomalies = append(anomalies, Anomaly{
				ParticipantID: p.ID,
				Scheduled:     my,
				PaymentIDs:    extra,
			})
		}

		rows = append(rows, ParticipantStatus{
			Participant: p,
			Scheduled:   my,
			Status:      statusOf(pay),
			Payment:     pay,
		})
	}

	return rows, anomalies
}

// BuildCycleMatrix computes the full participant x round table for rounds 1
// through g.TotalParticipants. The three-way distinction between no record,
// record-unpaid and record-paid is preserved; collapsing it into a binary
// glyph is the presentation layer's decision.
func BuildCycleMatrix(g core.Group, participants []core.Participant, payments []core.Payment) ([]ParticipantRow, []Anomaly) {
	rows := make([]ParticipantRow, 0, len(participants))
	var anomalies []Anomaly

	for _, p := range participants {
		row := ParticipantRow{
			Participant: p,
			Cells:       make([]Cell, 0, g.TotalParticipants),
		}
		for round := 1; round <= g.TotalParticipants; round++ {
			my, err := ScheduleFor(g.StartMonth, g.StartYear, round)
			if err != nil {
				row.Cells = append(row.Cells, Cell{Round: round, Status: StatusUnscheduled})
				continue
			}

			pay, extra := lookupPayment(payments, p.ID, my)
			if len(extra) > 0 {
				anomalies = append(anomalies, Anomaly{
					ParticipantID: p.ID,
					Scheduled:     my,
					PaymentIDs:    extra,
				})
			}

			row.Cells = append(row.Cells, Cell{
				Round:     round,
				Scheduled: my,
				Status:    statusOf(pay),
				Payment:   pay,
			})
		}
		rows = append(rows, row)
	}

	return rows, anomalies
}

// lookupPayment returns the first payment matching (participantID, my) in
// input order, plus the IDs of any further matches. First-match-wins keeps
// the join deterministic when the backend data is inconsistent.
func lookupPayment(payments []core.Payment, participantID int64, my MonthYear) (*core.Payment, []int64) {
	var found *core.Payment
	var extra []int64
	for i := range payments {
		pay := &payments[i]
		if pay.ParticipantID != participantID || pay.Month != my.Month || pay.Year != my.Year {
			continue
		}
		if found == nil {
			found = pay
		} else {
			extra = append(extra, pay.ID)
		}
	}
	if found == nil {
		return nil, nil
	}
	// Copy so callers can't mutate the input slice through the result.
	cp := *found
	return &cp, extra
}

func statusOf(pay *core.Payment) CellStatus {
	switch {
	case pay == nil:
		return StatusNotGenerated
	case pay.Paid:
		return StatusPaid
	default:
		return StatusPending
	}
}
