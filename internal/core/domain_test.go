package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{NewDate(1999, 6, 1), false}, // before MinStartYear
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGroupValidate(t *testing.T) {
	good := Group{
		Name:              "Familia",
		MonthlyAmount:     Money{Cents: 50000},
		TotalParticipants: 10,
		CurrentRound:      1,
		StartMonth:        3,
		StartYear:         2025,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Group)
	}{
		{"empty name", func(g *Group) { g.Name = "  " }},
		{"zero amount", func(g *Group) { g.MonthlyAmount = Money{} }},
		{"one participant", func(g *Group) { g.TotalParticipants = 1 }},
		{"round zero", func(g *Group) { g.CurrentRound = 0 }},
		{"round past cycle", func(g *Group) { g.CurrentRound = 11 }},
		{"month 13", func(g *Group) { g.StartMonth = 13 }},
		{"month 0", func(g *Group) { g.StartMonth = 0 }},
		{"ancient year", func(g *Group) { g.StartYear = 1999 }},
	}
	for _, tc := range cases {
		g := good
		tc.mutate(&g)
		if err := g.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestParticipantValidate(t *testing.T) {
	p := Participant{Name: "Ana", AssignedNumber: 3}
	if err := p.Validate(10); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := p.Validate(2); err == nil {
		t.Fatalf("assigned number above group size should fail")
	}
	p.AssignedNumber = 0
	if err := p.Validate(10); err == nil {
		t.Fatalf("assigned number zero should fail")
	}
	p = Participant{Name: "", AssignedNumber: 1}
	if err := p.Validate(10); err == nil {
		t.Fatalf("empty name should fail")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Description: "market",
		Amount:      Money{Cents: 100},
		Category:    "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Description: "a", Amount: Money{Cents: 1}, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "", Amount: Money{Cents: 1}, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestLoanValidate(t *testing.T) {
	good := Loan{
		Description: "car",
		Principal:   Money{Cents: 1_000_000},
		AnnualRate:  0.06,
		TermMonths:  24,
		StartMonth:  1,
		StartYear:   2025,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.TermMonths = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("zero term should fail")
	}
	bad = good
	bad.AnnualRate = -0.01
	if err := bad.Validate(); err == nil {
		t.Fatalf("negative rate should fail")
	}
}
