package entry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/field"
	"github.com/jfenske/homeledger/internal/ledger"
	"github.com/jfenske/homeledger/internal/service/entry"
	"github.com/jfenske/homeledger/internal/storage/memory"
)

const owner = "user-1"

func seedAccount(t *testing.T, store *memory.Store, ownerID, name string, typ ledger.AccountType, opening int64) ledger.Account {
	t.Helper()
	now := time.Now().UTC()
	acc, err := store.CreateAccount(context.Background(), ledger.Account{
		ID:                  uuid.New(),
		OwnerID:             ownerID,
		Name:                name,
		Type:                typ,
		ParentCategory:      "general",
		SubCategory:         "general",
		Active:              true,
		OpeningBalanceMinor: opening,
		CurrentBalanceMinor: opening,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	require.NoError(t, err)
	return acc
}

func balance(t *testing.T, store *memory.Store, id uuid.UUID) int64 {
	t.Helper()
	acc, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.CurrentBalanceMinor
}

func TestCreateUpdateDeleteBalances(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	groceries := seedAccount(t, store, owner, "Groceries", ledger.AccountTypeExpense, 0)

	// Spend 200: expense debited (no balance), bank credited down.
	tx, err := svc.Create(ctx, owner, entry.CreateInput{
		Date:            time.Now(),
		AmountMinor:     200,
		DebitAccountID:  groceries.ID,
		CreditAccountID: bank.ID,
		Note:            "weekly shop",
		Tags:            []string{"food"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800), balance(t, store, bank.ID))
	assert.Equal(t, int64(0), balance(t, store, groceries.ID))

	// Amend the amount to 300: net effect is a single further -100 on bank.
	updated, err := svc.Update(ctx, owner, tx.ID, entry.UpdateInput{
		AmountMinor: field.Set[int64](300),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), updated.AmountMinor)
	assert.Equal(t, int64(700), balance(t, store, bank.ID))

	// Delete reverses everything back to the opening balance.
	require.NoError(t, svc.Delete(ctx, owner, tx.ID))
	assert.Equal(t, int64(1000), balance(t, store, bank.ID))

	_, err = svc.Get(ctx, owner, tx.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	groceries := seedAccount(t, store, owner, "Groceries", ledger.AccountTypeExpense, 0)

	tests := []struct {
		name    string
		in      entry.CreateInput
		wantErr error
	}{
		{
			name: "zero amount",
			in: entry.CreateInput{
				Date: time.Now(), AmountMinor: 0,
				DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
			},
			wantErr: errs.ErrInvalid,
		},
		{
			name: "negative amount",
			in: entry.CreateInput{
				Date: time.Now(), AmountMinor: -50,
				DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
			},
			wantErr: errs.ErrInvalid,
		},
		{
			name: "same debit and credit",
			in: entry.CreateInput{
				Date: time.Now(), AmountMinor: 100,
				DebitAccountID: bank.ID, CreditAccountID: bank.ID,
			},
			wantErr: errs.ErrInvalid,
		},
		{
			name: "zero date",
			in: entry.CreateInput{
				AmountMinor:    100,
				DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
			},
			wantErr: errs.ErrInvalid,
		},
		{
			name: "date too far in the future",
			in: entry.CreateInput{
				Date: time.Now().AddDate(2, 0, 0), AmountMinor: 100,
				DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
			},
			wantErr: errs.ErrInvalid,
		},
		{
			name: "unknown account",
			in: entry.CreateInput{
				Date: time.Now(), AmountMinor: 100,
				DebitAccountID: uuid.New(), CreditAccountID: bank.ID,
			},
			wantErr: errs.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateRejectsInactiveAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	closed := seedAccount(t, store, owner, "Old Card", ledger.AccountTypeLiability, 0)
	closed.Active = false
	_, err := store.UpdateAccount(ctx, closed)
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 100,
		DebitAccountID: bank.ID, CreditAccountID: closed.ID,
	})
	assert.ErrorIs(t, err, errs.ErrInactiveAccount)
}

func TestOwnershipChecks(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	groceries := seedAccount(t, store, owner, "Groceries", ledger.AccountTypeExpense, 0)
	other := seedAccount(t, store, "user-2", "Their Bank", ledger.AccountTypeAsset, 500)

	// Referencing someone else's account is permission denied, not not-found.
	_, err := svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 100,
		DebitAccountID: groceries.ID, CreditAccountID: other.ID,
	})
	assert.ErrorIs(t, err, errs.ErrForbidden)

	tx, err := svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 100,
		DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
	})
	require.NoError(t, err)

	// Another owner reading or deleting the transaction is forbidden.
	_, err = svc.Get(ctx, "user-2", tx.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	err = svc.Delete(ctx, "user-2", tx.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}

func TestUpdateMovesBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	savings := seedAccount(t, store, owner, "Savings", ledger.AccountTypeAsset, 2000)
	groceries := seedAccount(t, store, owner, "Groceries", ledger.AccountTypeExpense, 0)

	tx, err := svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 250,
		DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(750), balance(t, store, bank.ID))

	// Repoint the credit side to savings: bank restored, savings drops.
	_, err = svc.Update(ctx, owner, tx.ID, entry.UpdateInput{
		CreditAccountID: field.Set(savings.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance(t, store, bank.ID))
	assert.Equal(t, int64(1750), balance(t, store, savings.ID))
}

func TestUpdateNoteAndTags(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	groceries := seedAccount(t, store, owner, "Groceries", ledger.AccountTypeExpense, 0)

	tx, err := svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 100,
		DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
		Note: "initial", Tags: []string{"b", "a"},
	})
	require.NoError(t, err)
	require.NotNil(t, tx.Note)
	require.Equal(t, []string{"a", "b"}, []string(tx.Tags))

	// Absent note keeps the stored value.
	got, err := svc.Update(ctx, owner, tx.ID, entry.UpdateInput{
		AmountMinor: field.Set[int64](150),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Note)
	assert.Equal(t, "initial", *got.Note)

	// Explicit null clears it.
	got, err = svc.Update(ctx, owner, tx.ID, entry.UpdateInput{
		Note: field.Clear[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, got.Note)

	// Tags replaced wholesale when a non-empty set is supplied.
	got, err = svc.Update(ctx, owner, tx.ID, entry.UpdateInput{
		Tags: field.Set([]string{"z", "y"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z"}, []string(got.Tags))
}

func TestUpdateRejectsNullDate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := entry.New(store, store)

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	groceries := seedAccount(t, store, owner, "Groceries", ledger.AccountTypeExpense, 0)

	tx, err := svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 100,
		DebitAccountID: groceries.ID, CreditAccountID: bank.ID,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, tx.ID, entry.UpdateInput{
		Date: field.Clear[time.Time](),
	})
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

// hidingRepo wraps the memory store but pretends one account does not exist,
// simulating a referenced account disappearing out from under a transaction.
type hidingRepo struct {
	*memory.Store
	hidden uuid.UUID
}

func (h hidingRepo) AccountsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	out, err := h.Store.AccountsByIDs(ctx, ids)
	delete(out, h.hidden)
	return out, err
}

func TestDeleteToleratesMissingAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	bank := seedAccount(t, store, owner, "Bank", ledger.AccountTypeAsset, 1000)
	savings := seedAccount(t, store, owner, "Savings", ledger.AccountTypeAsset, 500)

	svc := entry.New(store, store)
	tx, err := svc.Create(ctx, owner, entry.CreateInput{
		Date: time.Now(), AmountMinor: 100,
		DebitAccountID: savings.ID, CreditAccountID: bank.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(900), balance(t, store, bank.ID))
	require.Equal(t, int64(600), balance(t, store, savings.ID))

	// With savings gone, delete still succeeds and reverses what it can.
	svc = entry.New(hidingRepo{Store: store, hidden: savings.ID}, store)
	require.NoError(t, svc.Delete(ctx, owner, tx.ID))
	assert.Equal(t, int64(1000), balance(t, store, bank.ID))
	assert.Equal(t, int64(600), balance(t, store, savings.ID))
}
