// Package memory provides an in-process store used for local development and
// tests. Multi-write operations hold the mutex for their whole duration, which
// gives the same atomicity the postgres store gets from a transaction.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/ledger"
)

type Store struct {
	mu        sync.RWMutex
	owners    map[string]struct{}
	accounts  map[uuid.UUID]ledger.Account
	txns      map[uuid.UUID]ledger.Transaction
	recurring map[uuid.UUID]ledger.RecurringTransaction
}

func New() *Store {
	return &Store{
		owners:    make(map[string]struct{}),
		accounts:  make(map[uuid.UUID]ledger.Account),
		txns:      make(map[uuid.UUID]ledger.Transaction),
		recurring: make(map[uuid.UUID]ledger.RecurringTransaction),
	}
}

// --- accounts ---

func (s *Store) ListAccounts(_ context.Context, ownerID string) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, accountID uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, accountID)
	}
	return cloneAccount(a), nil
}

func (s *Store) AccountsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]ledger.Account, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out[id] = cloneAccount(a)
		}
	}
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return ledger.Account{}, fmt.Errorf("%w: account %s", errs.ErrConflict, a.ID)
	}
	s.owners[a.OwnerID] = struct{}{}
	s.accounts[a.ID] = cloneAccount(a)
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[a.ID]
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, a.ID)
	}
	// Balances are owned by the ledger engine's adjustments, not by account edits.
	a.CurrentBalanceMinor = stored.CurrentBalanceMinor
	s.accounts[a.ID] = cloneAccount(a)
	return a, nil
}

// --- transactions ---

func (s *Store) GetTransaction(_ context.Context, transactionID uuid.UUID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txns[transactionID]
	if !ok {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s", errs.ErrNotFound, transactionID)
	}
	return cloneTransaction(tx), nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transaction, 0)
	for _, tx := range s.txns {
		if tx.OwnerID == ownerID {
			out = append(out, cloneTransaction(tx))
		}
	}
	// Newest first, id as tiebreaker for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx ledger.Transaction, adjustments []ledger.BalanceAdjustment) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[tx.ID]; ok {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s", errs.ErrConflict, tx.ID)
	}
	if err := s.checkAdjustments(adjustments); err != nil {
		return ledger.Transaction{}, err
	}
	s.txns[tx.ID] = cloneTransaction(tx)
	s.applyAdjustments(adjustments)
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx ledger.Transaction, adjustments []ledger.BalanceAdjustment) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[tx.ID]; !ok {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s", errs.ErrNotFound, tx.ID)
	}
	if err := s.checkAdjustments(adjustments); err != nil {
		return ledger.Transaction{}, err
	}
	s.txns[tx.ID] = cloneTransaction(tx)
	s.applyAdjustments(adjustments)
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID string, transactionID uuid.UUID, adjustments []ledger.BalanceAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txns[transactionID]
	if !ok {
		return fmt.Errorf("%w: transaction %s", errs.ErrNotFound, transactionID)
	}
	if tx.OwnerID != ownerID {
		return fmt.Errorf("%w: transaction %s", errs.ErrForbidden, transactionID)
	}
	delete(s.txns, transactionID)
	// Adjustments for accounts deleted since the read are dropped, matching
	// the delete-reversal tolerance for missing accounts.
	for _, adj := range adjustments {
		if a, ok := s.accounts[adj.AccountID]; ok {
			a.CurrentBalanceMinor += adj.DeltaMinor
			s.accounts[adj.AccountID] = a
		}
	}
	return nil
}

// --- recurring transactions ---

func (s *Store) GetRecurring(_ context.Context, recurringID uuid.UUID) (ledger.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.recurring[recurringID]
	if !ok {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", errs.ErrNotFound, recurringID)
	}
	return cloneRecurring(rt), nil
}

func (s *Store) ListRecurring(_ context.Context, ownerID string) ([]ledger.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.RecurringTransaction, 0)
	for _, rt := range s.recurring {
		if rt.OwnerID == ownerID {
			out = append(out, cloneRecurring(rt))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextOccurrence.Equal(out[j].NextOccurrence) {
			return out[i].NextOccurrence.Before(out[j].NextOccurrence)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) CreateRecurring(_ context.Context, rt ledger.RecurringTransaction) (ledger.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[rt.ID]; ok {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", errs.ErrConflict, rt.ID)
	}
	s.recurring[rt.ID] = cloneRecurring(rt)
	return rt, nil
}

func (s *Store) UpdateRecurring(_ context.Context, rt ledger.RecurringTransaction) (ledger.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[rt.ID]; !ok {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", errs.ErrNotFound, rt.ID)
	}
	s.recurring[rt.ID] = cloneRecurring(rt)
	return rt, nil
}

func (s *Store) DeleteRecurring(_ context.Context, ownerID string, recurringID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.recurring[recurringID]
	if !ok {
		return fmt.Errorf("%w: recurring transaction %s", errs.ErrNotFound, recurringID)
	}
	if rt.OwnerID != ownerID {
		return fmt.Errorf("%w: recurring transaction %s", errs.ErrForbidden, recurringID)
	}
	delete(s.recurring, recurringID)
	return nil
}

// --- owner lifecycle ---

func (s *Store) SeedOwner(_ context.Context, ownerID string, accounts []ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			return fmt.Errorf("%w: owner %s already has accounts", errs.ErrConflict, ownerID)
		}
	}
	s.owners[ownerID] = struct{}{}
	for _, a := range accounts {
		s.accounts[a.ID] = cloneAccount(a)
	}
	return nil
}

func (s *Store) PurgeOwner(_ context.Context, ownerID string) (ledger.PurgeCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts ledger.PurgeCounts
	for id, tx := range s.txns {
		if tx.OwnerID == ownerID {
			delete(s.txns, id)
			counts.Transactions++
		}
	}
	for id, rt := range s.recurring {
		if rt.OwnerID == ownerID {
			delete(s.recurring, id)
			counts.Recurring++
		}
	}
	for id, a := range s.accounts {
		if a.OwnerID == ownerID {
			delete(s.accounts, id)
			counts.Accounts++
		}
	}
	delete(s.owners, ownerID)
	return counts, nil
}

// Reset drops all data. Test helper.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners = make(map[string]struct{})
	s.accounts = make(map[uuid.UUID]ledger.Account)
	s.txns = make(map[uuid.UUID]ledger.Transaction)
	s.recurring = make(map[uuid.UUID]ledger.RecurringTransaction)
}

func (s *Store) checkAdjustments(adjustments []ledger.BalanceAdjustment) error {
	for _, adj := range adjustments {
		if _, ok := s.accounts[adj.AccountID]; !ok {
			return fmt.Errorf("%w: account %s", errs.ErrNotFound, adj.AccountID)
		}
	}
	return nil
}

func (s *Store) applyAdjustments(adjustments []ledger.BalanceAdjustment) {
	for _, adj := range adjustments {
		a := s.accounts[adj.AccountID]
		a.CurrentBalanceMinor += adj.DeltaMinor
		s.accounts[adj.AccountID] = a
	}
}

func cloneAccount(a ledger.Account) ledger.Account {
	return a
}

func cloneTransaction(tx ledger.Transaction) ledger.Transaction {
	out := tx
	if tx.Note != nil {
		n := *tx.Note
		out.Note = &n
	}
	out.Tags = tx.Tags.Clone()
	return out
}

func cloneRecurring(rt ledger.RecurringTransaction) ledger.RecurringTransaction {
	out := rt
	if rt.EndDate != nil {
		e := *rt.EndDate
		out.EndDate = &e
	}
	if rt.LastCreatedDate != nil {
		l := *rt.LastCreatedDate
		out.LastCreatedDate = &l
	}
	if rt.NotifyBeforeDays != nil {
		n := *rt.NotifyBeforeDays
		out.NotifyBeforeDays = &n
	}
	if rt.Note != nil {
		n := *rt.Note
		out.Note = &n
	}
	return out
}
