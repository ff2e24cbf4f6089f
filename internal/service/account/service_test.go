package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/field"
	"github.com/jfenske/homeledger/internal/ledger"
	"github.com/jfenske/homeledger/internal/service/account"
	"github.com/jfenske/homeledger/internal/storage/memory"
)

const owner = "user-1"

func newService() (account.Service, *memory.Store) {
	store := memory.New()
	return account.New(store, store), store
}

func create(t *testing.T, svc account.Service, in account.CreateInput) ledger.Account {
	t.Helper()
	acc, err := svc.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return acc
}

func TestCreate(t *testing.T) {
	svc, _ := newService()
	opening := int64(1500)
	acc := create(t, svc, account.CreateInput{
		Name:                "Bank",
		Type:                ledger.AccountTypeAsset,
		ParentCategory:      "cash",
		SubCategory:         "checking",
		OpeningBalanceMinor: &opening,
	})
	assert.Equal(t, "Bank", acc.Name)
	assert.True(t, acc.Active)
	assert.Equal(t, int64(1500), acc.OpeningBalanceMinor)
	assert.Equal(t, int64(1500), acc.CurrentBalanceMinor)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	neg := int64(-1)
	opening := int64(100)

	tests := []struct {
		name string
		in   account.CreateInput
	}{
		{"empty name", account.CreateInput{Type: ledger.AccountTypeAsset, ParentCategory: "a", SubCategory: "b"}},
		{"blank name", account.CreateInput{Name: "   ", Type: ledger.AccountTypeAsset, ParentCategory: "a", SubCategory: "b"}},
		{"missing parent category", account.CreateInput{Name: "x", Type: ledger.AccountTypeAsset, SubCategory: "b"}},
		{"missing sub category", account.CreateInput{Name: "x", Type: ledger.AccountTypeAsset, ParentCategory: "a"}},
		{"bad type", account.CreateInput{Name: "x", Type: "equity", ParentCategory: "a", SubCategory: "b"}},
		{"negative opening balance", account.CreateInput{Name: "x", Type: ledger.AccountTypeAsset, ParentCategory: "a", SubCategory: "b", OpeningBalanceMinor: &neg}},
		{"opening balance on expense", account.CreateInput{Name: "x", Type: ledger.AccountTypeExpense, ParentCategory: "a", SubCategory: "b", OpeningBalanceMinor: &opening}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, tt.in)
			assert.ErrorIs(t, err, errs.ErrInvalid)
		})
	}
}

func TestCreateNameConflict(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	create(t, svc, account.CreateInput{Name: "Groceries", Type: ledger.AccountTypeExpense, ParentCategory: "food", SubCategory: "daily"})

	// Case-insensitive match against active accounts.
	_, err := svc.Create(ctx, owner, account.CreateInput{Name: "groceries", Type: ledger.AccountTypeExpense, ParentCategory: "food", SubCategory: "daily"})
	assert.ErrorIs(t, err, errs.ErrConflict)

	// A different owner can reuse the name freely.
	_, err = svc.Create(ctx, "user-2", account.CreateInput{Name: "Groceries", Type: ledger.AccountTypeExpense, ParentCategory: "food", SubCategory: "daily"})
	assert.NoError(t, err)
}

func TestNameReusableAfterDeactivation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	acc := create(t, svc, account.CreateInput{Name: "Groceries", Type: ledger.AccountTypeExpense, ParentCategory: "food", SubCategory: "daily"})
	require.NoError(t, svc.Deactivate(ctx, owner, acc.ID))

	_, err := svc.Create(ctx, owner, account.CreateInput{Name: "Groceries", Type: ledger.AccountTypeExpense, ParentCategory: "food", SubCategory: "daily"})
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	acc := create(t, svc, account.CreateInput{Name: "Bank", Type: ledger.AccountTypeAsset, ParentCategory: "cash", SubCategory: "checking"})

	got, err := svc.Update(ctx, owner, acc.ID, account.UpdateInput{
		Name:  field.Set("Main Bank"),
		Icon:  field.Set("bank"),
		Color: field.Set("#336699"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Main Bank", got.Name)
	assert.Equal(t, "bank", got.Icon)
	assert.Equal(t, "#336699", got.Color)

	// Renaming onto an existing active name conflicts.
	create(t, svc, account.CreateInput{Name: "Savings", Type: ledger.AccountTypeAsset, ParentCategory: "cash", SubCategory: "savings"})
	_, err = svc.Update(ctx, owner, acc.ID, account.UpdateInput{Name: field.Set("savings")})
	assert.ErrorIs(t, err, errs.ErrConflict)

	// Clearing the name is invalid.
	_, err = svc.Update(ctx, owner, acc.ID, account.UpdateInput{Name: field.Clear[string]()})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	// Renaming to the same name, different case, is allowed.
	got, err = svc.Update(ctx, owner, acc.ID, account.UpdateInput{Name: field.Set("MAIN BANK")})
	require.NoError(t, err)
	assert.Equal(t, "MAIN BANK", got.Name)
}

func TestDeactivateIdempotent(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	acc := create(t, svc, account.CreateInput{Name: "Bank", Type: ledger.AccountTypeAsset, ParentCategory: "cash", SubCategory: "checking"})

	require.NoError(t, svc.Deactivate(ctx, owner, acc.ID))
	require.NoError(t, svc.Deactivate(ctx, owner, acc.ID))

	got, err := store.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestGetDistinguishesNotFoundFromForbidden(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	acc := create(t, svc, account.CreateInput{Name: "Bank", Type: ledger.AccountTypeAsset, ParentCategory: "cash", SubCategory: "checking"})

	_, err := svc.Get(ctx, owner, acc.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, "user-2", acc.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = svc.Get(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
