// Package postgres provides the pgx-backed store. It maps domain entities to
// SQL rows; multi-write operations (transaction + balance adjustments, owner
// seeding, owner purge) run inside a single database transaction. Schema
// migrations live under db/migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/ledger"
	"github.com/jfenske/homeledger/internal/tags"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

const accountCols = `id, owner_id, name, type, parent_category, sub_category, icon, color,
	active, opening_balance_minor, current_balance_minor, created_at, updated_at`

func scanAccount(row pgx.Row) (ledger.Account, error) {
	var a ledger.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.ParentCategory, &a.SubCategory,
		&a.Icon, &a.Color, &a.Active, &a.OpeningBalanceMinor, &a.CurrentBalanceMinor,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// --- Account reads ---

func (s *Store) ListAccounts(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select `+accountCols+`
		from accounts
		where owner_id = $1
		order by created_at asc, id asc
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, accountID uuid.UUID) (ledger.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `
		select `+accountCols+`
		from accounts
		where id = $1
	`, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, accountID)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

func (s *Store) AccountsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]ledger.Account{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		select `+accountCols+`
		from accounts
		where id = any($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]ledger.Account, len(ids))
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

// --- Account writes ---

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Account{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := ensureProfile(ctx, tx, a.OwnerID); err != nil {
		return ledger.Account{}, err
	}
	if err := insertAccount(ctx, tx, a); err != nil {
		return ledger.Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// UpdateAccount updates mutable fields. The current balance is owned by the
// ledger engine's adjustments and is never written here.
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	ct, err := s.pool.Exec(ctx, `
		update accounts
		set name=$1, icon=$2, color=$3, active=$4, updated_at=$5
		where id=$6 and owner_id=$7
	`, a.Name, a.Icon, a.Color, a.Active, a.UpdatedAt, a.ID, a.OwnerID)
	if err != nil {
		return ledger.Account{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.Account{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, a.ID)
	}
	return a, nil
}

// --- Transaction reads ---

const txnCols = `id, owner_id, date, amount_minor, debit_account_id, credit_account_id,
	note, tags, created_at, updated_at`

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var tx ledger.Transaction
	var tg []string
	err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Date, &tx.AmountMinor, &tx.DebitAccountID,
		&tx.CreditAccountID, &tx.Note, &tg, &tx.CreatedAt, &tx.UpdatedAt)
	tx.Tags = tags.Tags(tg)
	return tx, err
}

func (s *Store) GetTransaction(ctx context.Context, transactionID uuid.UUID) (ledger.Transaction, error) {
	tx, err := scanTransaction(s.pool.QueryRow(ctx, `
		select `+txnCols+`
		from transactions
		where id = $1
	`, transactionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s", errs.ErrNotFound, transactionID)
	}
	if err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string) ([]ledger.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		select `+txnCols+`
		from transactions
		where owner_id = $1
		order by date desc, id asc
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// --- Transaction writes ---

func (s *Store) CreateTransaction(ctx context.Context, txn ledger.Transaction, adjustments []ledger.BalanceAdjustment) (ledger.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `
		insert into transactions (`+txnCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, txn.ID, txn.OwnerID, txn.Date, txn.AmountMinor, txn.DebitAccountID, txn.CreditAccountID,
		txn.Note, []string(txn.Tags), txn.CreatedAt, txn.UpdatedAt); err != nil {
		return ledger.Transaction{}, err
	}
	if err := applyAdjustments(ctx, tx, adjustments); err != nil {
		return ledger.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Transaction{}, err
	}
	return txn, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, txn ledger.Transaction, adjustments []ledger.BalanceAdjustment) (ledger.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	ct, err := tx.Exec(ctx, `
		update transactions
		set date=$1, amount_minor=$2, debit_account_id=$3, credit_account_id=$4,
		    note=$5, tags=$6, updated_at=$7
		where id=$8 and owner_id=$9
	`, txn.Date, txn.AmountMinor, txn.DebitAccountID, txn.CreditAccountID,
		txn.Note, []string(txn.Tags), txn.UpdatedAt, txn.ID, txn.OwnerID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s", errs.ErrNotFound, txn.ID)
	}
	if err := applyAdjustments(ctx, tx, adjustments); err != nil {
		return ledger.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Transaction{}, err
	}
	return txn, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID string, transactionID uuid.UUID, adjustments []ledger.BalanceAdjustment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	ct, err := tx.Exec(ctx, `
		delete from transactions where id=$1 and owner_id=$2
	`, transactionID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", errs.ErrNotFound, transactionID)
	}
	// Reversals against accounts deleted since the read match zero rows and
	// are dropped, matching the delete tolerance for missing accounts.
	for _, adj := range adjustments {
		if _, err := tx.Exec(ctx, `
			update accounts
			set current_balance_minor = current_balance_minor + $1
			where id = $2
		`, adj.DeltaMinor, adj.AccountID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// --- Recurring transactions ---

const recurringCols = `id, owner_id, amount_minor, debit_account_id, credit_account_id,
	frequency, day_of_recurrence, start_date, end_date, next_occurrence, last_created_date,
	notify_before_days, note, active, created_at, updated_at`

func scanRecurring(row pgx.Row) (ledger.RecurringTransaction, error) {
	var rt ledger.RecurringTransaction
	err := row.Scan(&rt.ID, &rt.OwnerID, &rt.AmountMinor, &rt.DebitAccountID, &rt.CreditAccountID,
		&rt.Frequency, &rt.DayOfRecurrence, &rt.StartDate, &rt.EndDate, &rt.NextOccurrence,
		&rt.LastCreatedDate, &rt.NotifyBeforeDays, &rt.Note, &rt.Active, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

func (s *Store) GetRecurring(ctx context.Context, recurringID uuid.UUID) (ledger.RecurringTransaction, error) {
	rt, err := scanRecurring(s.pool.QueryRow(ctx, `
		select `+recurringCols+`
		from recurring_transactions
		where id = $1
	`, recurringID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", errs.ErrNotFound, recurringID)
	}
	if err != nil {
		return ledger.RecurringTransaction{}, err
	}
	return rt, nil
}

func (s *Store) ListRecurring(ctx context.Context, ownerID string) ([]ledger.RecurringTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		select `+recurringCols+`
		from recurring_transactions
		where owner_id = $1
		order by next_occurrence asc, id asc
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.RecurringTransaction, 0)
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (s *Store) CreateRecurring(ctx context.Context, rt ledger.RecurringTransaction) (ledger.RecurringTransaction, error) {
	_, err := s.pool.Exec(ctx, `
		insert into recurring_transactions (`+recurringCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, rt.ID, rt.OwnerID, rt.AmountMinor, rt.DebitAccountID, rt.CreditAccountID,
		rt.Frequency, rt.DayOfRecurrence, rt.StartDate, rt.EndDate, rt.NextOccurrence,
		rt.LastCreatedDate, rt.NotifyBeforeDays, rt.Note, rt.Active, rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		return ledger.RecurringTransaction{}, err
	}
	return rt, nil
}

func (s *Store) UpdateRecurring(ctx context.Context, rt ledger.RecurringTransaction) (ledger.RecurringTransaction, error) {
	ct, err := s.pool.Exec(ctx, `
		update recurring_transactions
		set amount_minor=$1, debit_account_id=$2, credit_account_id=$3, frequency=$4,
		    day_of_recurrence=$5, start_date=$6, end_date=$7, next_occurrence=$8,
		    last_created_date=$9, notify_before_days=$10, note=$11, active=$12, updated_at=$13
		where id=$14 and owner_id=$15
	`, rt.AmountMinor, rt.DebitAccountID, rt.CreditAccountID, rt.Frequency,
		rt.DayOfRecurrence, rt.StartDate, rt.EndDate, rt.NextOccurrence,
		rt.LastCreatedDate, rt.NotifyBeforeDays, rt.Note, rt.Active, rt.UpdatedAt,
		rt.ID, rt.OwnerID)
	if err != nil {
		return ledger.RecurringTransaction{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", errs.ErrNotFound, rt.ID)
	}
	return rt, nil
}

func (s *Store) DeleteRecurring(ctx context.Context, ownerID string, recurringID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `
		delete from recurring_transactions where id=$1 and owner_id=$2
	`, recurringID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: recurring transaction %s", errs.ErrNotFound, recurringID)
	}
	return nil
}

// --- Owner lifecycle ---

// SeedOwner records the profile and inserts the default accounts in one
// transaction. A concurrent seed of the same owner loses on the profile
// insert's unique constraint and rolls back cleanly.
func (s *Store) SeedOwner(ctx context.Context, ownerID string, accounts []ledger.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `
		insert into profiles (owner_id) values ($1)
	`, ownerID); err != nil {
		return fmt.Errorf("%w: owner %s already provisioned", errs.ErrConflict, ownerID)
	}
	for _, a := range accounts {
		if err := insertAccount(ctx, tx, a); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// PurgeOwner removes all of an owner's rows in one transaction and reports
// per-kind counts.
func (s *Store) PurgeOwner(ctx context.Context, ownerID string) (ledger.PurgeCounts, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.PurgeCounts{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	var counts ledger.PurgeCounts
	ct, err := tx.Exec(ctx, `delete from transactions where owner_id=$1`, ownerID)
	if err != nil {
		return ledger.PurgeCounts{}, err
	}
	counts.Transactions = int(ct.RowsAffected())
	ct, err = tx.Exec(ctx, `delete from recurring_transactions where owner_id=$1`, ownerID)
	if err != nil {
		return ledger.PurgeCounts{}, err
	}
	counts.Recurring = int(ct.RowsAffected())
	ct, err = tx.Exec(ctx, `delete from accounts where owner_id=$1`, ownerID)
	if err != nil {
		return ledger.PurgeCounts{}, err
	}
	counts.Accounts = int(ct.RowsAffected())
	if _, err := tx.Exec(ctx, `delete from profiles where owner_id=$1`, ownerID); err != nil {
		return ledger.PurgeCounts{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.PurgeCounts{}, err
	}
	return counts, nil
}

func ensureProfile(ctx context.Context, tx pgx.Tx, ownerID string) error {
	_, err := tx.Exec(ctx, `
		insert into profiles (owner_id) values ($1)
		on conflict (owner_id) do nothing
	`, ownerID)
	return err
}

func insertAccount(ctx context.Context, tx pgx.Tx, a ledger.Account) error {
	_, err := tx.Exec(ctx, `
		insert into accounts (`+accountCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, a.ID, a.OwnerID, a.Name, a.Type, a.ParentCategory, a.SubCategory, a.Icon, a.Color,
		a.Active, a.OpeningBalanceMinor, a.CurrentBalanceMinor, a.CreatedAt, a.UpdatedAt)
	return err
}

func applyAdjustments(ctx context.Context, tx pgx.Tx, adjustments []ledger.BalanceAdjustment) error {
	for _, adj := range adjustments {
		ct, err := tx.Exec(ctx, `
			update accounts
			set current_balance_minor = current_balance_minor + $1
			where id = $2
		`, adj.DeltaMinor, adj.AccountID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s", errs.ErrNotFound, adj.AccountID)
		}
	}
	return nil
}
