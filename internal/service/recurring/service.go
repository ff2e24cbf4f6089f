// Package recurring manages recurring-transaction definitions and the pure
// next-occurrence date arithmetic. Materializing due definitions into actual
// transactions is an external process; only the schedule math lives here.
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/field"
	"github.com/jfenske/homeledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	AccountsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error)
	GetRecurring(ctx context.Context, recurringID uuid.UUID) (ledger.RecurringTransaction, error)
	ListRecurring(ctx context.Context, ownerID string) ([]ledger.RecurringTransaction, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateRecurring(ctx context.Context, rt ledger.RecurringTransaction) (ledger.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, rt ledger.RecurringTransaction) (ledger.RecurringTransaction, error)
	DeleteRecurring(ctx context.Context, ownerID string, recurringID uuid.UUID) error
}

// CreateInput carries the fields accepted by Create.
type CreateInput struct {
	AmountMinor      int64
	DebitAccountID   uuid.UUID
	CreditAccountID  uuid.UUID
	Frequency        ledger.Frequency
	DayOfRecurrence  int
	StartDate        time.Time
	EndDate          *time.Time
	NotifyBeforeDays *int
	Note             string
}

// UpdateInput carries the PATCH fields for Update. EndDate, NotifyBeforeDays
// and Note support explicit clearing (null), distinct from not supplied.
type UpdateInput struct {
	AmountMinor      field.Field[int64]
	DebitAccountID   field.Field[uuid.UUID]
	CreditAccountID  field.Field[uuid.UUID]
	Frequency        field.Field[ledger.Frequency]
	DayOfRecurrence  field.Field[int]
	StartDate        field.Field[time.Time]
	EndDate          field.Field[time.Time]
	NotifyBeforeDays field.Field[int]
	Note             field.Field[string]
	Active           field.Field[bool]
}

type Service interface {
	Create(ctx context.Context, ownerID string, in CreateInput) (ledger.RecurringTransaction, error)
	Get(ctx context.Context, ownerID string, recurringID uuid.UUID) (ledger.RecurringTransaction, error)
	List(ctx context.Context, ownerID string) ([]ledger.RecurringTransaction, error)
	Update(ctx context.Context, ownerID string, recurringID uuid.UUID, in UpdateInput) (ledger.RecurringTransaction, error)
	Delete(ctx context.Context, ownerID string, recurringID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, now: time.Now}
}

func (s *service) Create(ctx context.Context, ownerID string, in CreateInput) (ledger.RecurringTransaction, error) {
	if ownerID == "" {
		return ledger.RecurringTransaction{}, errs.ErrUnauthenticated
	}
	if in.AmountMinor <= 0 {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: amount must be > 0", errs.ErrInvalid)
	}
	if in.DebitAccountID == uuid.Nil || in.CreditAccountID == uuid.Nil {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: debit and credit accounts are required", errs.ErrInvalid)
	}
	if in.DebitAccountID == in.CreditAccountID {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: debit and credit accounts must differ", errs.ErrInvalid)
	}
	if !in.Frequency.Valid() {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: invalid frequency %q", errs.ErrInvalid, in.Frequency)
	}
	if err := validateDayOfRecurrence(in.Frequency, in.DayOfRecurrence); err != nil {
		return ledger.RecurringTransaction{}, err
	}
	if in.StartDate.IsZero() {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: start date is required", errs.ErrInvalid)
	}
	if in.EndDate != nil && !in.EndDate.After(in.StartDate) {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: end date must be after start date", errs.ErrInvalid)
	}
	if in.NotifyBeforeDays != nil && *in.NotifyBeforeDays <= 0 {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: notify_before_days must be > 0", errs.ErrInvalid)
	}

	accs, err := s.repo.AccountsByIDs(ctx, []uuid.UUID{in.DebitAccountID, in.CreditAccountID})
	if err != nil {
		return ledger.RecurringTransaction{}, err
	}
	for _, id := range []uuid.UUID{in.DebitAccountID, in.CreditAccountID} {
		acc, ok := accs[id]
		if !ok {
			return ledger.RecurringTransaction{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
		}
		if acc.OwnerID != ownerID {
			return ledger.RecurringTransaction{}, fmt.Errorf("%w: account %s", errs.ErrForbidden, id)
		}
		if !acc.Active {
			return ledger.RecurringTransaction{}, fmt.Errorf("%w: account %s is inactive", errs.ErrInactiveAccount, id)
		}
	}

	now := s.now().UTC()
	rt := ledger.RecurringTransaction{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		AmountMinor:      in.AmountMinor,
		DebitAccountID:   in.DebitAccountID,
		CreditAccountID:  in.CreditAccountID,
		Frequency:        in.Frequency,
		DayOfRecurrence:  in.DayOfRecurrence,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		NextOccurrence:   NextOccurrence(in.Frequency, in.DayOfRecurrence, in.StartDate, nil),
		NotifyBeforeDays: in.NotifyBeforeDays,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.Note != "" {
		note := in.Note
		rt.Note = &note
	}
	return s.writer.CreateRecurring(ctx, rt)
}

func (s *service) Get(ctx context.Context, ownerID string, recurringID uuid.UUID) (ledger.RecurringTransaction, error) {
	if recurringID == uuid.Nil {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction id is required", errs.ErrInvalid)
	}
	rt, err := s.repo.GetRecurring(ctx, recurringID)
	if err != nil {
		return ledger.RecurringTransaction{}, err
	}
	if rt.OwnerID != ownerID {
		return ledger.RecurringTransaction{}, errs.ErrForbidden
	}
	return rt, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]ledger.RecurringTransaction, error) {
	if ownerID == "" {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.ListRecurring(ctx, ownerID)
}

// Update applies a partial edit. Changing frequency, day of recurrence, or
// start date recomputes NextOccurrence.
func (s *service) Update(ctx context.Context, ownerID string, recurringID uuid.UUID, in UpdateInput) (ledger.RecurringTransaction, error) {
	rt, err := s.Get(ctx, ownerID, recurringID)
	if err != nil {
		return ledger.RecurringTransaction{}, err
	}

	newDebit := in.DebitAccountID.Or(rt.DebitAccountID)
	newCredit := in.CreditAccountID.Or(rt.CreditAccountID)
	if newDebit == uuid.Nil || newCredit == uuid.Nil {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: debit and credit accounts are required", errs.ErrInvalid)
	}
	if newDebit == newCredit {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: debit and credit accounts must differ", errs.ErrInvalid)
	}
	if newDebit != rt.DebitAccountID || newCredit != rt.CreditAccountID {
		accs, err := s.repo.AccountsByIDs(ctx, []uuid.UUID{newDebit, newCredit})
		if err != nil {
			return ledger.RecurringTransaction{}, err
		}
		for _, id := range []uuid.UUID{newDebit, newCredit} {
			acc, ok := accs[id]
			if !ok {
				return ledger.RecurringTransaction{}, fmt.Errorf("%w: account %s", errs.ErrNotFound, id)
			}
			if acc.OwnerID != ownerID {
				return ledger.RecurringTransaction{}, fmt.Errorf("%w: account %s", errs.ErrForbidden, id)
			}
		}
	}
	rt.DebitAccountID = newDebit
	rt.CreditAccountID = newCredit

	if amount, ok := in.AmountMinor.Get(); ok {
		if amount <= 0 {
			return ledger.RecurringTransaction{}, fmt.Errorf("%w: amount must be > 0", errs.ErrInvalid)
		}
		rt.AmountMinor = amount
	}

	scheduleChanged := false
	if freq, ok := in.Frequency.Get(); ok {
		if !freq.Valid() {
			return ledger.RecurringTransaction{}, fmt.Errorf("%w: invalid frequency %q", errs.ErrInvalid, freq)
		}
		rt.Frequency = freq
		scheduleChanged = true
	}
	if day, ok := in.DayOfRecurrence.Get(); ok {
		rt.DayOfRecurrence = day
		scheduleChanged = true
	}
	if start, ok := in.StartDate.Get(); ok {
		if start.IsZero() {
			return ledger.RecurringTransaction{}, fmt.Errorf("%w: start date is required", errs.ErrInvalid)
		}
		rt.StartDate = start
		scheduleChanged = true
	}
	if scheduleChanged {
		if err := validateDayOfRecurrence(rt.Frequency, rt.DayOfRecurrence); err != nil {
			return ledger.RecurringTransaction{}, err
		}
	}

	switch {
	case in.EndDate.Cleared():
		rt.EndDate = nil
	default:
		if end, ok := in.EndDate.Get(); ok {
			e := end
			rt.EndDate = &e
		}
	}
	if rt.EndDate != nil && !rt.EndDate.After(rt.StartDate) {
		return ledger.RecurringTransaction{}, fmt.Errorf("%w: end date must be after start date", errs.ErrInvalid)
	}

	switch {
	case in.NotifyBeforeDays.Cleared():
		rt.NotifyBeforeDays = nil
	default:
		if n, ok := in.NotifyBeforeDays.Get(); ok {
			if n <= 0 {
				return ledger.RecurringTransaction{}, fmt.Errorf("%w: notify_before_days must be > 0", errs.ErrInvalid)
			}
			nn := n
			rt.NotifyBeforeDays = &nn
		}
	}

	switch {
	case in.Note.Cleared():
		rt.Note = nil
	default:
		if note, ok := in.Note.Get(); ok {
			if note == "" {
				rt.Note = nil
			} else {
				n := note
				rt.Note = &n
			}
		}
	}

	if active, ok := in.Active.Get(); ok {
		rt.Active = active
	}

	if scheduleChanged {
		rt.NextOccurrence = NextOccurrence(rt.Frequency, rt.DayOfRecurrence, rt.StartDate, rt.LastCreatedDate)
	}
	rt.UpdatedAt = s.now().UTC()
	return s.writer.UpdateRecurring(ctx, rt)
}

// Delete hard-deletes the definition after an ownership check. No transactions
// reference recurring definitions, so there is nothing to reverse.
func (s *service) Delete(ctx context.Context, ownerID string, recurringID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, recurringID); err != nil {
		return err
	}
	return s.writer.DeleteRecurring(ctx, ownerID, recurringID)
}

func validateDayOfRecurrence(freq ledger.Frequency, day int) error {
	if freq == ledger.FrequencyWeekly {
		if day < 0 || day > 6 {
			return fmt.Errorf("%w: day_of_recurrence must be a weekday index 0-6", errs.ErrInvalid)
		}
		return nil
	}
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: day_of_recurrence must be a day of month 1-31", errs.ErrInvalid)
	}
	return nil
}
