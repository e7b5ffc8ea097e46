// Package scheduler maps a rotating-savings group's configuration to calendar
// months and reconciles payment records against that schedule.
//
// Everything here is pure computation over snapshots the caller already
// fetched: no I/O, no locks, no hidden state. Callers recompute from fresh
// snapshots after every mutation.
package scheduler

import (
	"errors"

	"finanzas/internal/core"
)

// ErrInvalidScheduleInput is returned when a start month, start year or round
// is out of domain. Callers must treat the accompanying MonthYear as unknown:
// never join it with payment records or render it as a date.
var ErrInvalidScheduleInput = errors.New("invalid schedule input")

// MonthYear identifies a calendar month. Month is 1-based.
type MonthYear struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ScheduleFor returns the calendar month in which the given 1-based round
// falls: round 1 is the start month, each subsequent round advances exactly
// one calendar month with year rollover at month 13.
//
// The mapping is stateless and total over its valid domain, so results are
// safe to memoize per (startMonth, startYear, round) triple.
func ScheduleFor(startMonth, startYear, round int) (MonthYear, error) {
	if startMonth < 1 || startMonth > 12 {
		return MonthYear{}, ErrInvalidScheduleInput
	}
	if startYear < core.MinStartYear {
		return MonthYear{}, ErrInvalidScheduleInput
	}
	if round < 1 {
		return MonthYear{}, ErrInvalidScheduleInput
	}

	// Explicit integer arithmetic rather than date-object overflow tricks:
	// month normalization differs subtly across date libraries.
	offset := startMonth - 1 + round - 1
	return MonthYear{
		Month: offset%12 + 1,
		Year:  startYear + offset/12,
	}, nil
}

// CurrentRoundSchedule returns the calendar month of the group's current
// round, the month whose contributions are being collected right now.
func CurrentRoundSchedule(g core.Group) (MonthYear, error) {
	return ScheduleFor(g.StartMonth, g.StartYear, g.CurrentRound)
}
