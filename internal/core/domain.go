package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// MinStartYear is the lower bound for group start years. Anything older is
	// assumed to be a data-entry mistake.
	MinStartYear = 2000

	maxDescriptionLen = 200
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Group is a rotating-savings group (pasanaco): every round one participant
	// receives the pooled monthly contributions, in assigned-number order.
	Group struct {
		ID                int64
		Name              string
		MonthlyAmount     Money
		TotalParticipants int
		CurrentRound      int // 1-based round currently collecting contributions
		StartMonth        int // 1-12
		StartYear         int
		Completed         bool
	}

	// Participant belongs to a group. AssignedNumber is both the draw order and
	// the round in which the participant receives the payout; unique per group.
	Participant struct {
		ID             int64
		GroupID        int64
		Name           string
		AssignedNumber int
		AccountID      int64 // optional linked bank account, 0 when unlinked
	}

	// Payment records whether a participant's contribution for a specific
	// scheduled month has been settled.
	Payment struct {
		ID            int64
		GroupID       int64
		ParticipantID int64
		Month         int // 1-12
		Year          int
		Paid          bool
		PaymentDate   *time.Time
		TransactionID string
	}

	Expense struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Category    string
	}

	Income struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Category    string
	}

	Account struct {
		ID      int64
		Name    string
		Bank    string
		Balance Money
	}

	// AccountTransaction is a ledger entry applied to an account. Amount is
	// signed: negative for debits, positive for credits.
	AccountTransaction struct {
		ID        int64
		AccountID int64
		Amount    Money
		Kind      string // "pasanaco_contribution", "pasanaco_payout", "deposit", ...
		Reference string
		CreatedAt time.Time
	}

	Loan struct {
		ID          int64
		Description string
		Principal   Money
		AnnualRate  float64 // nominal annual interest rate, e.g. 0.065
		TermMonths  int
		StartMonth  int
		StartYear   int
	}

	SavingsPlan struct {
		ID          int64
		Name        string
		Target      Money
		Saved       Money
		TargetMonth int
		TargetYear  int
	}
)

var (
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidRound        = errors.New("invalid round")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidParticipants = errors.New("invalid participant count")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	if d.Time.Year() < MinStartYear {
		return ErrInvalidYear
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the 1-based month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.MonthlyAmount.Validate(); err != nil {
		return err
	}
	if g.TotalParticipants < 2 {
		return ErrInvalidParticipants
	}
	if g.CurrentRound < 1 || g.CurrentRound > g.TotalParticipants {
		return ErrInvalidRound
	}
	if g.StartMonth < 1 || g.StartMonth > 12 {
		return ErrInvalidMonth
	}
	if g.StartYear < MinStartYear {
		return ErrInvalidYear
	}
	return nil
}

// Validate checks a participant against the owning group's size. The
// assigned-number uniqueness invariant is enforced by the storage layer.
func (p Participant) Validate(totalParticipants int) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.AssignedNumber < 1 || p.AssignedNumber > totalParticipants {
		return ErrInvalidRound
	}
	return nil
}

func (p Payment) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < MinStartYear {
		return ErrInvalidYear
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(i.Description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (l Loan) Validate() error {
	if len(strings.TrimSpace(l.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := l.Principal.Validate(); err != nil {
		return err
	}
	if l.AnnualRate < 0 {
		return ErrInvalidAmount
	}
	if l.TermMonths < 1 {
		return errors.New("term must be at least one month")
	}
	if l.StartMonth < 1 || l.StartMonth > 12 {
		return ErrInvalidMonth
	}
	if l.StartYear < MinStartYear {
		return ErrInvalidYear
	}
	return nil
}

func (sp SavingsPlan) Validate() error {
	if strings.TrimSpace(sp.Name) == "" {
		return ErrEmptyName
	}
	if err := sp.Target.Validate(); err != nil {
		return err
	}
	if sp.TargetMonth < 1 || sp.TargetMonth > 12 {
		return ErrInvalidMonth
	}
	if sp.TargetYear < MinStartYear {
		return ErrInvalidYear
	}
	return nil
}
