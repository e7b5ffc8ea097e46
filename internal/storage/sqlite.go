package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a single SQLite file using the pure Go
// driver, so no CGO is needed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// translate maps driver errors to the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE") {
		return ErrConflict
	}
	return err
}

// Groups

func (s *SQLiteStore) CreateGroup(ctx context.Context, g *core.Group) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (name, monthly_amount_cents, total_participants, current_round, start_month, start_year, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.MonthlyAmount.Cents, g.TotalParticipants, g.CurrentRound, g.StartMonth, g.StartYear, g.Completed,
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", translate(err))
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("group id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGroup(ctx context.Context, id int64) (*core.Group, error) {
	var g core.Group
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, monthly_amount_cents, total_participants, current_round, start_month, start_year, completed
		 FROM groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.MonthlyAmount.Cents, &g.TotalParticipants, &g.CurrentRound, &g.StartMonth, &g.StartYear, &g.Completed)
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, translate(err))
	}
	return &g, nil
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]core.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, monthly_amount_cents, total_participants, current_round, start_month, start_year, completed
		 FROM groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []core.Group
	for rows.Next() {
		var g core.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.MonthlyAmount.Cents, &g.TotalParticipants, &g.CurrentRound, &g.StartMonth, &g.StartYear, &g.Completed); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *SQLiteStore) UpdateGroupRound(ctx context.Context, id int64, round int, completed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET current_round = ?, completed = ? WHERE id = ?`,
		round, completed, id,
	)
	if err != nil {
		return fmt.Errorf("update group round: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update group round: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Participants

func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *core.Participant) error {
	var account any
	if p.AccountID != 0 {
		account = p.AccountID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (group_id, name, assigned_number, account_id) VALUES (?, ?, ?, ?)`,
		p.GroupID, p.Name, p.AssignedNumber, account,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", translate(err))
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("participant id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListParticipants(ctx context.Context, groupID int64) ([]core.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, name, assigned_number, account_id
		 FROM participants WHERE group_id = ? ORDER BY assigned_number`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []core.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetParticipant(ctx context.Context, id int64) (*core.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, assigned_number, account_id FROM participants WHERE id = ?`, id)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("get participant %d: %w", id, translate(err))
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row scanner) (core.Participant, error) {
	var p core.Participant
	var account sql.NullInt64
	if err := row.Scan(&p.ID, &p.GroupID, &p.Name, &p.AssignedNumber, &account); err != nil {
		return core.Participant{}, err
	}
	if account.Valid {
		p.AccountID = account.Int64
	}
	return p, nil
}

func (s *SQLiteStore) DeleteParticipant(ctx context.Context, groupID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM participants WHERE id = ? AND group_id = ?`, id, groupID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Payments

func (s *SQLiteStore) CreatePayment(ctx context.Context, p *core.Payment) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (group_id, participant_id, month, year, paid, payment_date, transaction_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.GroupID, p.ParticipantID, p.Month, p.Year, p.Paid, p.PaymentDate, nullString(p.TransactionID),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", translate(err))
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("payment id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListPayments(ctx context.Context, groupID int64) ([]core.Payment, error) {
	return s.queryPayments(ctx,
		`SELECT id, group_id, participant_id, month, year, paid, payment_date, transaction_id
		 FROM payments WHERE group_id = ? ORDER BY year, month, id`, groupID)
}

func (s *SQLiteStore) ListPaymentsByMonth(ctx context.Context, groupID int64, month, year int) ([]core.Payment, error) {
	return s.queryPayments(ctx,
		`SELECT id, group_id, participant_id, month, year, paid, payment_date, transaction_id
		 FROM payments WHERE group_id = ? AND month = ? AND year = ? ORDER BY id`, groupID, month, year)
}

func (s *SQLiteStore) queryPayments(ctx context.Context, query string, args ...any) ([]core.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetPayment(ctx context.Context, id int64) (*core.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, participant_id, month, year, paid, payment_date, transaction_id
		 FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, translate(err))
	}
	return &p, nil
}

func scanPayment(row scanner) (core.Payment, error) {
	var p core.Payment
	var paidAt sql.NullTime
	var txID sql.NullString
	if err := row.Scan(&p.ID, &p.GroupID, &p.ParticipantID, &p.Month, &p.Year, &p.Paid, &paidAt, &txID); err != nil {
		return core.Payment{}, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		p.PaymentDate = &t
	}
	if txID.Valid {
		p.TransactionID = txID.String
	}
	return p, nil
}

// MarkPaymentPaid flips a pending payment to paid. Re-marking an already paid
// payment returns ErrConflict so callers can surface the double-settlement.
func (s *SQLiteStore) MarkPaymentPaid(ctx context.Context, id int64, paidAt time.Time, transactionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET paid = 1, payment_date = ?, transaction_id = ? WHERE id = ? AND paid = 0`,
		paidAt, transactionID, id,
	)
	if err != nil {
		return fmt.Errorf("mark payment paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark payment paid: %w", err)
	}
	if n == 0 {
		if _, err := s.GetPayment(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Accounts and ledger

func (s *SQLiteStore) CreateAccount(ctx context.Context, a *core.Account) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (name, bank, balance_cents) VALUES (?, ?, ?)`,
		a.Name, a.Bank, a.Balance.Cents,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", translate(err))
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("account id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (*core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, bank, balance_cents FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Bank, &a.Balance.Cents)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, translate(err))
	}
	return &a, nil
}

func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, bank, balance_cents FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Bank, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AppendTransaction records the ledger entry and adjusts the account balance
// in one transaction so the two never drift apart.
func (s *SQLiteStore) AppendTransaction(ctx context.Context, t *core.AccountTransaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO account_transactions (account_id, amount_cents, kind, reference, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.AccountID, t.Amount.Cents, t.Kind, t.Reference, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", translate(err))
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ledger entry id: %w", err)
	}

	upd, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`,
		t.Amount.Cents, t.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	n, err := upd.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, accountID int64) ([]core.AccountTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, amount_cents, kind, reference, created_at
		 FROM account_transactions WHERE account_id = ? ORDER BY id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.AccountTransaction
	for rows.Next() {
		var t core.AccountTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount.Cents, &t.Kind, &t.Reference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Expenses and incomes

func (s *SQLiteStore) CreateExpense(ctx context.Context, e *core.Expense) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (day, month, year, description, amount_cents, category) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Date.Day(), e.Date.Month(), e.Date.Year(), e.Description, e.Amount.Cents, e.Category,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", translate(err))
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("expense id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, year, month int) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day, month, year, description, amount_cents, category
		 FROM expenses WHERE year = ? AND month = ? ORDER BY day, id`, year, month)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var day, m, y int
		if err := rows.Scan(&e.ID, &day, &m, &y, &e.Description, &e.Amount.Cents, &e.Category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = core.NewDate(y, m, day)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	var e core.Expense
	var day, m, y int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, day, month, year, description, amount_cents, category FROM expenses WHERE id = ?`, id,
	).Scan(&e.ID, &day, &m, &y, &e.Description, &e.Amount.Cents, &e.Category)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", translate(err))
	}
	e.Date = core.NewDate(y, m, day)
	return &e, nil
}

func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "expenses", id)
}

func (s *SQLiteStore) CreateIncome(ctx context.Context, i *core.Income) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO incomes (day, month, year, description, amount_cents, category) VALUES (?, ?, ?, ?, ?, ?)`,
		i.Date.Day(), i.Date.Month(), i.Date.Year(), i.Description, i.Amount.Cents, i.Category,
	)
	if err != nil {
		return fmt.Errorf("insert income: %w", translate(err))
	}
	i.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("income id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListIncomes(ctx context.Context, year, month int) ([]core.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day, month, year, description, amount_cents, category
		 FROM incomes WHERE year = ? AND month = ? ORDER BY day, id`, year, month)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var i core.Income
		var day, m, y int
		if err := rows.Scan(&i.ID, &day, &m, &y, &i.Description, &i.Amount.Cents, &i.Category); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		i.Date = core.NewDate(y, m, day)
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetIncome(ctx context.Context, id int64) (*core.Income, error) {
	var i core.Income
	var day, m, y int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, day, month, year, description, amount_cents, category FROM incomes WHERE id = ?`, id,
	).Scan(&i.ID, &day, &m, &y, &i.Description, &i.Amount.Cents, &i.Category)
	if err != nil {
		return nil, fmt.Errorf("get income: %w", translate(err))
	}
	i.Date = core.NewDate(y, m, day)
	return &i, nil
}

func (s *SQLiteStore) DeleteIncome(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "incomes", id)
}

func (s *SQLiteStore) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MonthSummary aggregates expenses and incomes for one month, grouped by
// category, entirely in SQL.
func (s *SQLiteStore) MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	sum := core.MonthSummary{Year: year, Month: month}

	expenses, err := s.categoryTotals(ctx, "expenses", year, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	sum.ExpenseByCategory = expenses
	for _, c := range expenses {
		sum.ExpenseTotal.Cents += c.Amount.Cents
	}

	incomes, err := s.categoryTotals(ctx, "incomes", year, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	sum.IncomeByCategory = incomes
	for _, c := range incomes {
		sum.IncomeTotal.Cents += c.Amount.Cents
	}

	sum.Net.Cents = sum.IncomeTotal.Cents - sum.ExpenseTotal.Cents
	return sum, nil
}

func (s *SQLiteStore) categoryTotals(ctx context.Context, table string, year, month int) ([]core.CategoryAmount, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT category, SUM(amount_cents) FROM %s WHERE year = ? AND month = ? GROUP BY category ORDER BY category`, table),
		year, month)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", table, err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var c core.CategoryAmount
		if err := rows.Scan(&c.Category, &c.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan %s summary: %w", table, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Loans

func (s *SQLiteStore) CreateLoan(ctx context.Context, l *core.Loan) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO loans (description, principal_cents, annual_rate, term_months, start_month, start_year)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.Description, l.Principal.Cents, l.AnnualRate, l.TermMonths, l.StartMonth, l.StartYear,
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", translate(err))
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("loan id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLoan(ctx context.Context, id int64) (*core.Loan, error) {
	var l core.Loan
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, principal_cents, annual_rate, term_months, start_month, start_year
		 FROM loans WHERE id = ?`, id,
	).Scan(&l.ID, &l.Description, &l.Principal.Cents, &l.AnnualRate, &l.TermMonths, &l.StartMonth, &l.StartYear)
	if err != nil {
		return nil, fmt.Errorf("get loan %d: %w", id, translate(err))
	}
	return &l, nil
}

func (s *SQLiteStore) ListLoans(ctx context.Context) ([]core.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, principal_cents, annual_rate, term_months, start_month, start_year
		 FROM loans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []core.Loan
	for rows.Next() {
		var l core.Loan
		if err := rows.Scan(&l.ID, &l.Description, &l.Principal.Cents, &l.AnnualRate, &l.TermMonths, &l.StartMonth, &l.StartYear); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Savings plans

func (s *SQLiteStore) CreateSavingsPlan(ctx context.Context, sp *core.SavingsPlan) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO savings_plans (name, target_cents, saved_cents, target_month, target_year)
		 VALUES (?, ?, ?, ?, ?)`,
		sp.Name, sp.Target.Cents, sp.Saved.Cents, sp.TargetMonth, sp.TargetYear,
	)
	if err != nil {
		return fmt.Errorf("insert savings plan: %w", translate(err))
	}
	sp.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("savings plan id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSavingsPlan(ctx context.Context, id int64) (*core.SavingsPlan, error) {
	var sp core.SavingsPlan
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, target_cents, saved_cents, target_month, target_year
		 FROM savings_plans WHERE id = ?`, id,
	).Scan(&sp.ID, &sp.Name, &sp.Target.Cents, &sp.Saved.Cents, &sp.TargetMonth, &sp.TargetYear)
	if err != nil {
		return nil, fmt.Errorf("get savings plan %d: %w", id, translate(err))
	}
	return &sp, nil
}

func (s *SQLiteStore) ListSavingsPlans(ctx context.Context) ([]core.SavingsPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target_cents, saved_cents, target_month, target_year
		 FROM savings_plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list savings plans: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsPlan
	for rows.Next() {
		var sp core.SavingsPlan
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Target.Cents, &sp.Saved.Cents, &sp.TargetMonth, &sp.TargetYear); err != nil {
			return nil, fmt.Errorf("scan savings plan: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddSavingsDeposit(ctx context.Context, id int64, amount core.Money) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE savings_plans SET saved_cents = saved_cents + ? WHERE id = ?`,
		amount.Cents, id,
	)
	if err != nil {
		return fmt.Errorf("add savings deposit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add savings deposit: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
