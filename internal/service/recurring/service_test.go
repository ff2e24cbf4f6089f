package recurring_test

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
	"github.com/jfenske/homeledger/internal/service/recurring"
	"github.com/jfenske/homeledger/internal/storage/memory"
)

const owner = "user-1"

type fixture struct {
	svc   recurring.Service
	store *memory.Store
	bank  ledger.Account
	rent  ledger.Account
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	now := time.Now().UTC()
	seed := func(name string, typ ledger.AccountType) ledger.Account {
		acc, err := store.CreateAccount(context.Background(), ledger.Account{
			ID: uuid.New(), OwnerID: owner, Name: name, Type: typ,
			ParentCategory: "general", SubCategory: "general",
			Active: true, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		return acc
	}
	return fixture{
		svc:   recurring.New(store, store),
		store: store,
		bank:  seed("Bank", ledger.AccountTypeAsset),
		rent:  seed("Rent", ledger.AccountTypeExpense),
	}
}

func TestCreateComputesNextOccurrence(t *testing.T) {
	f := setup(t)
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	rt, err := f.svc.Create(context.Background(), owner, recurring.CreateInput{
		AmountMinor:     120000,
		DebitAccountID:  f.rent.ID,
		CreditAccountID: f.bank.ID,
		Frequency:       ledger.FrequencyMonthly,
		DayOfRecurrence: 31,
		StartDate:       start,
		Note:            "rent",
	})
	require.NoError(t, err)
	assert.True(t, rt.Active)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), rt.NextOccurrence)
	require.NotNil(t, rt.Note)
	assert.Equal(t, "rent", *rt.Note)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, -1, 0)
	zeroNotify := 0

	base := recurring.CreateInput{
		AmountMinor:     100,
		DebitAccountID:  f.rent.ID,
		CreditAccountID: f.bank.ID,
		Frequency:       ledger.FrequencyMonthly,
		DayOfRecurrence: 1,
		StartDate:       start,
	}

	tests := []struct {
		name    string
		mutate  func(*recurring.CreateInput)
		wantErr error
	}{
		{"zero amount", func(in *recurring.CreateInput) { in.AmountMinor = 0 }, errs.ErrInvalid},
		{"same accounts", func(in *recurring.CreateInput) { in.CreditAccountID = f.rent.ID }, errs.ErrInvalid},
		{"bad frequency", func(in *recurring.CreateInput) { in.Frequency = "fortnightly" }, errs.ErrInvalid},
		{"day zero for monthly", func(in *recurring.CreateInput) { in.DayOfRecurrence = 0 }, errs.ErrInvalid},
		{"day 32", func(in *recurring.CreateInput) { in.DayOfRecurrence = 32 }, errs.ErrInvalid},
		{"weekday 7 for weekly", func(in *recurring.CreateInput) {
			in.Frequency = ledger.FrequencyWeekly
			in.DayOfRecurrence = 7
		}, errs.ErrInvalid},
		{"zero start", func(in *recurring.CreateInput) { in.StartDate = time.Time{} }, errs.ErrInvalid},
		{"end before start", func(in *recurring.CreateInput) { in.EndDate = &before }, errs.ErrInvalid},
		{"zero notify", func(in *recurring.CreateInput) { in.NotifyBeforeDays = &zeroNotify }, errs.ErrInvalid},
		{"unknown account", func(in *recurring.CreateInput) { in.DebitAccountID = uuid.New() }, errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := f.svc.Create(ctx, owner, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateRejectsInactiveAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.bank.Active = false
	_, err := f.store.UpdateAccount(ctx, f.bank)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, owner, recurring.CreateInput{
		AmountMinor:     100,
		DebitAccountID:  f.rent.ID,
		CreditAccountID: f.bank.ID,
		Frequency:       ledger.FrequencyDaily,
		DayOfRecurrence: 1,
		StartDate:       time.Now(),
	})
	assert.ErrorIs(t, err, errs.ErrInactiveAccount)
}

func TestUpdateRecomputesSchedule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	rt, err := f.svc.Create(ctx, owner, recurring.CreateInput{
		AmountMinor:     100,
		DebitAccountID:  f.rent.ID,
		CreditAccountID: f.bank.ID,
		Frequency:       ledger.FrequencyMonthly,
		DayOfRecurrence: 15,
		StartDate:       start,
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), rt.NextOccurrence)

	got, err := f.svc.Update(ctx, owner, rt.ID, recurring.UpdateInput{
		DayOfRecurrence: field.Set(31),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got.NextOccurrence)

	// An amount-only edit leaves the schedule untouched.
	got, err = f.svc.Update(ctx, owner, rt.ID, recurring.UpdateInput{
		AmountMinor: field.Set[int64](250),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got.NextOccurrence)
	assert.Equal(t, int64(250), got.AmountMinor)
}

func TestUpdateClearsOptionalFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	notify := 3
	rt, err := f.svc.Create(ctx, owner, recurring.CreateInput{
		AmountMinor:      100,
		DebitAccountID:   f.rent.ID,
		CreditAccountID:  f.bank.ID,
		Frequency:        ledger.FrequencyMonthly,
		DayOfRecurrence:  1,
		StartDate:        time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          &end,
		NotifyBeforeDays: &notify,
		Note:             "subscription",
	})
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, owner, rt.ID, recurring.UpdateInput{
		EndDate:          field.Clear[time.Time](),
		NotifyBeforeDays: field.Clear[int](),
		Note:             field.Clear[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, got.EndDate)
	assert.Nil(t, got.NotifyBeforeDays)
	assert.Nil(t, got.Note)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rt, err := f.svc.Create(ctx, owner, recurring.CreateInput{
		AmountMinor:     100,
		DebitAccountID:  f.rent.ID,
		CreditAccountID: f.bank.ID,
		Frequency:       ledger.FrequencyDaily,
		DayOfRecurrence: 1,
		StartDate:       time.Now(),
	})
	require.NoError(t, err)

	// Another owner cannot delete it.
	assert.ErrorIs(t, f.svc.Delete(ctx, "user-2", rt.ID), errs.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, owner, rt.ID))
	_, err = f.svc.Get(ctx, owner, rt.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
