// Package entry implements the ledger engine: transaction validation, balance
// delta computation, and atomic application of transaction writes together
// with their balance adjustments.
package entry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/field"
	"github.com/jfenske/homeledger/internal/ledger"
	"github.com/jfenske/homeledger/internal/tags"
)

// maxFutureWindow bounds how far in the future a transaction may be dated.
const maxFutureWindow = 365 * 24 * time.Hour

// Repo defines read operations needed by the service.
type Repo interface {
	AccountsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error)
	GetTransaction(ctx context.Context, transactionID uuid.UUID) (ledger.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string) ([]ledger.Transaction, error)
}

// Writer defines write operations. Every method commits the record write and
// all balance adjustments in one atomic unit: either every write lands or none
// do. Adjustments are expressed as commutative increments so independent
// concurrent operations on the same account compose without coordination.
type Writer interface {
	CreateTransaction(ctx context.Context, tx ledger.Transaction, adjustments []ledger.BalanceAdjustment) (ledger.Transaction, error)
	UpdateTransaction(ctx context.Context, tx ledger.Transaction, adjustments []ledger.BalanceAdjustment) (ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID string, transactionID uuid.UUID, adjustments []ledger.BalanceAdjustment) error
}

// CreateInput carries the fields accepted by Create.
type CreateInput struct {
	Date            time.Time
	AmountMinor     int64
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Note            string
	Tags            []string
}

// UpdateInput carries the PATCH fields for Update. Absent fields keep the
// stored value; Note distinguishes clearing (null/empty) from not supplied.
type UpdateInput struct {
	Date            field.Field[time.Time]
	AmountMinor     field.Field[int64]
	DebitAccountID  field.Field[uuid.UUID]
	CreditAccountID field.Field[uuid.UUID]
	Note            field.Field[string]
	Tags            field.Field[[]string]
}

type Service interface {
	Create(ctx context.Context, ownerID string, in CreateInput) (ledger.Transaction, error)
	Get(ctx context.Context, ownerID string, transactionID uuid.UUID) (ledger.Transaction, error)
	List(ctx context.Context, ownerID string) ([]ledger.Transaction, error)
	Update(ctx context.Context, ownerID string, transactionID uuid.UUID, in UpdateInput) (ledger.Transaction, error)
	Delete(ctx context.Context, ownerID string, transactionID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, now: time.Now}
}

func (s *service) Create(ctx context.Context, ownerID string, in CreateInput) (ledger.Transaction, error) {
	if ownerID == "" {
		return ledger.Transaction{}, errs.ErrUnauthenticated
	}
	// Fail fast: all validation happens before any write is issued.
	if err := s.validateDate(in.Date); err != nil {
		return ledger.Transaction{}, err
	}
	if in.AmountMinor <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: amount must be > 0", errs.ErrInvalid)
	}
	if in.DebitAccountID == uuid.Nil || in.CreditAccountID == uuid.Nil {
		return ledger.Transaction{}, fmt.Errorf("%w: debit and credit accounts are required", errs.ErrInvalid)
	}
	if in.DebitAccountID == in.CreditAccountID {
		return ledger.Transaction{}, fmt.Errorf("%w: debit and credit accounts must differ", errs.ErrInvalid)
	}

	accs, err := s.loadOwnedAccounts(ctx, ownerID, []uuid.UUID{in.DebitAccountID, in.CreditAccountID})
	if err != nil {
		return ledger.Transaction{}, err
	}
	debit, credit := accs[in.DebitAccountID], accs[in.CreditAccountID]
	if !debit.Active {
		return ledger.Transaction{}, fmt.Errorf("%w: debit account is inactive", errs.ErrInactiveAccount)
	}
	if !credit.Active {
		return ledger.Transaction{}, fmt.Errorf("%w: credit account is inactive", errs.ErrInactiveAccount)
	}

	tg := tags.New(in.Tags)
	if err := tg.Validate(); err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	now := s.now().UTC()
	tx := ledger.Transaction{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Date:            in.Date,
		AmountMinor:     in.AmountMinor,
		DebitAccountID:  in.DebitAccountID,
		CreditAccountID: in.CreditAccountID,
		Tags:            tg,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Note != "" {
		note := in.Note
		tx.Note = &note
	}

	adj := make([]ledger.BalanceAdjustment, 0, 2)
	if d := ledger.Delta(debit.Type, in.AmountMinor, ledger.SideDebit); d != 0 {
		adj = append(adj, ledger.BalanceAdjustment{AccountID: debit.ID, DeltaMinor: d})
	}
	if d := ledger.Delta(credit.Type, in.AmountMinor, ledger.SideCredit); d != 0 {
		adj = append(adj, ledger.BalanceAdjustment{AccountID: credit.ID, DeltaMinor: d})
	}
	return s.writer.CreateTransaction(ctx, tx, adj)
}

func (s *service) Get(ctx context.Context, ownerID string, transactionID uuid.UUID) (ledger.Transaction, error) {
	if transactionID == uuid.Nil {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction id is required", errs.ErrInvalid)
	}
	tx, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if tx.OwnerID != ownerID {
		return ledger.Transaction{}, errs.ErrForbidden
	}
	return tx, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]ledger.Transaction, error) {
	if ownerID == "" {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.ListTransactions(ctx, ownerID)
}

// Update edits any subset of date/amount/debit/credit/note/tags. Prior balance
// effects are reversed and new ones applied in a single signed adjustment per
// touched account, committed atomically with the field updates. Each edit is
// individually atomic; concurrent edits of the same transaction are not
// serialized against each other.
func (s *service) Update(ctx context.Context, ownerID string, transactionID uuid.UUID, in UpdateInput) (ledger.Transaction, error) {
	old, err := s.Get(ctx, ownerID, transactionID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	// Resolve effective values: supplied fields override, otherwise keep.
	newDebit := in.DebitAccountID.Or(old.DebitAccountID)
	newCredit := in.CreditAccountID.Or(old.CreditAccountID)
	newAmount := in.AmountMinor.Or(old.AmountMinor)
	if newDebit == uuid.Nil || newCredit == uuid.Nil {
		return ledger.Transaction{}, fmt.Errorf("%w: debit and credit accounts are required", errs.ErrInvalid)
	}
	if newDebit == newCredit {
		return ledger.Transaction{}, fmt.Errorf("%w: debit and credit accounts must differ", errs.ErrInvalid)
	}
	if newAmount <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: amount must be > 0", errs.ErrInvalid)
	}
	if date, ok := in.Date.Get(); ok {
		if err := s.validateDate(date); err != nil {
			return ledger.Transaction{}, err
		}
		old.Date = date
	} else if in.Date.Cleared() {
		return ledger.Transaction{}, fmt.Errorf("%w: date must not be null", errs.ErrInvalid)
	}

	// Load the deduplicated union of old and new accounts once each.
	union := dedupe(old.DebitAccountID, old.CreditAccountID, newDebit, newCredit)
	accs, err := s.loadOwnedAccounts(ctx, ownerID, union)
	if err != nil {
		return ledger.Transaction{}, err
	}

	// Accumulate one signed adjustment per account: subtract the old effects,
	// add the new ones. An account appearing in both roles nets to the single
	// correct delta instead of two separate writes.
	deltas := make(map[uuid.UUID]int64, len(union))
	deltas[old.DebitAccountID] -= ledger.Delta(accs[old.DebitAccountID].Type, old.AmountMinor, ledger.SideDebit)
	deltas[old.CreditAccountID] -= ledger.Delta(accs[old.CreditAccountID].Type, old.AmountMinor, ledger.SideCredit)
	deltas[newDebit] += ledger.Delta(accs[newDebit].Type, newAmount, ledger.SideDebit)
	deltas[newCredit] += ledger.Delta(accs[newCredit].Type, newAmount, ledger.SideCredit)

	adj := make([]ledger.BalanceAdjustment, 0, len(deltas))
	for _, id := range union {
		if d := deltas[id]; d != 0 {
			adj = append(adj, ledger.BalanceAdjustment{AccountID: id, DeltaMinor: d})
		}
	}

	old.DebitAccountID = newDebit
	old.CreditAccountID = newCredit
	old.AmountMinor = newAmount
	if note, ok := in.Note.Get(); ok && note != "" {
		old.Note = &note
	} else if !in.Note.Absent() {
		// Supplied as null or empty: explicit clear, stored as null.
		old.Note = nil
	}
	if raw, ok := in.Tags.Get(); ok {
		// Tags are replaced wholesale only when a non-empty set is supplied.
		if tg := tags.New(raw); len(tg) > 0 {
			if err := tg.Validate(); err != nil {
				return ledger.Transaction{}, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
			}
			old.Tags = tg
		}
	}
	old.UpdatedAt = s.now().UTC()

	return s.writer.UpdateTransaction(ctx, old, adj)
}

// Delete removes the transaction and reverses its balance effects. A debit or
// credit account that no longer exists is tolerated: its reversal is skipped
// silently rather than failing the whole delete.
func (s *service) Delete(ctx context.Context, ownerID string, transactionID uuid.UUID) error {
	tx, err := s.Get(ctx, ownerID, transactionID)
	if err != nil {
		return err
	}
	accs, err := s.repo.AccountsByIDs(ctx, dedupe(tx.DebitAccountID, tx.CreditAccountID))
	if err != nil {
		return err
	}
	adj := make([]ledger.BalanceAdjustment, 0, 2)
	if acc, ok := accs[tx.DebitAccountID]; ok {
		if d := ledger.Delta(acc.Type, tx.AmountMinor, ledger.SideDebit); d != 0 {
			adj = append(adj, ledger.BalanceAdjustment{AccountID: acc.ID, DeltaMinor: -d})
		}
	}
	if acc, ok := accs[tx.CreditAccountID]; ok {
		if d := ledger.Delta(acc.Type, tx.AmountMinor, ledger.SideCredit); d != 0 {
			adj = append(adj, ledger.BalanceAdjustment{AccountID: acc.ID, DeltaMinor: -d})
		}
	}
	return s.writer.DeleteTransaction(ctx, ownerID, transactionID, adj)
}

func (s *service) validateDate(date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", errs.ErrInvalid)
	}
	if date.After(s.now().Add(maxFutureWindow)) {
		return fmt.Errorf("%w: date more than a year in the future", errs.ErrInvalid)
	}
	return nil
}

// loadOwnedAccounts fetches the given accounts, failing not_found for a
// missing id and permission_denied for an ownership mismatch.
func (s *service) loadOwnedAccounts(ctx context.Context, ownerID string, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	accs, err := s.repo.AccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		acc, ok := accs[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
		}
		if acc.OwnerID != ownerID {
			return nil, fmt.Errorf("%w: account %s", errs.ErrForbidden, id)
		}
	}
	return accs, nil
}

func dedupe(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
