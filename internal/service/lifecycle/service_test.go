package lifecycle_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfenske/homeledger/internal/catalog"
	"github.com/jfenske/homeledger/internal/ledger"
	"github.com/jfenske/homeledger/internal/service/lifecycle"
	"github.com/jfenske/homeledger/internal/storage/memory"
)

const owner = "user-1"

func newService() (lifecycle.Service, *memory.Store) {
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return lifecycle.New(store, store, logger), store
}

func TestEnsureSeeded(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	svc.EnsureSeeded(ctx, owner)

	accs, err := store.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, accs, len(catalog.Defaults()))
	for _, a := range accs {
		assert.True(t, a.Active)
		assert.False(t, a.Type.HasBalance(), "defaults are income/expense categories")
	}
}

func TestEnsureSeededIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	svc.EnsureSeeded(ctx, owner)
	svc.EnsureSeeded(ctx, owner)

	accs, err := store.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, accs, len(catalog.Defaults()))
}

func TestEnsureSeededSkipsExistingOwner(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	now := time.Now().UTC()
	_, err := store.CreateAccount(ctx, ledger.Account{
		ID: uuid.New(), OwnerID: owner, Name: "Bank", Type: ledger.AccountTypeAsset,
		ParentCategory: "cash", SubCategory: "checking",
		Active: true, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	// An owner with any account is never re-seeded.
	svc.EnsureSeeded(ctx, owner)

	accs, err := store.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, accs, 1)
}

func TestEnsureSeededIgnoresEmptyOwner(t *testing.T) {
	svc, store := newService()
	svc.EnsureSeeded(context.Background(), "")
	accs, err := store.ListAccounts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, accs)
}

func TestDeleteAllOwnedData(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	svc.EnsureSeeded(ctx, owner)
	accs, err := store.ListAccounts(ctx, owner)
	require.NoError(t, err)
	require.NotEmpty(t, accs)

	now := time.Now().UTC()
	_, err = store.CreateTransaction(ctx, ledger.Transaction{
		ID: uuid.New(), OwnerID: owner, Date: now, AmountMinor: 100,
		DebitAccountID: accs[0].ID, CreditAccountID: accs[1].ID,
		CreatedAt: now, UpdatedAt: now,
	}, nil)
	require.NoError(t, err)

	counts, err := svc.DeleteAllOwnedData(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, len(accs), counts.Accounts)
	assert.Equal(t, 1, counts.Transactions)
	assert.Equal(t, 0, counts.Recurring)

	remaining, err := store.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// The next request seeds fresh defaults again.
	svc.EnsureSeeded(ctx, owner)
	reseeded, err := store.ListAccounts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, reseeded, len(catalog.Defaults()))
}

func TestDeleteAllOwnedDataLeavesOthersAlone(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	svc.EnsureSeeded(ctx, owner)
	svc.EnsureSeeded(ctx, "user-2")

	_, err := svc.DeleteAllOwnedData(ctx, owner)
	require.NoError(t, err)

	others, err := store.ListAccounts(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, others, len(catalog.Defaults()))
}
