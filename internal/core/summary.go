package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// MonthSummary is a compact income/expense picture for a specific year+month.
type MonthSummary struct {
	Year              int
	Month             int // 1-12
	ExpenseTotal      Money
	IncomeTotal       Money
	Net               Money
	ExpenseByCategory []CategoryAmount
	IncomeByCategory  []CategoryAmount
}
