// Package account implements the account registry rules: immutable type and
// taxonomy fields, editable descriptive fields, soft-deletes, and per-owner
// case-insensitive name uniqueness among active accounts.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/field"
	"github.com/jfenske/homeledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	ListAccounts(ctx context.Context, ownerID string) ([]ledger.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (ledger.Account, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
}

// CreateInput carries the fields accepted by Create.
type CreateInput struct {
	Name           string
	Type           ledger.AccountType
	ParentCategory string
	SubCategory    string
	// OpeningBalanceMinor is honored only for balance-bearing types; nil defaults to 0.
	OpeningBalanceMinor *int64
	Icon                string
	Color               string
}

// UpdateInput carries the PATCH fields for Update. Only name, icon, color and
// active may change after creation.
type UpdateInput struct {
	Name   field.Field[string]
	Icon   field.Field[string]
	Color  field.Field[string]
	Active field.Field[bool]
}

type Service interface {
	Create(ctx context.Context, ownerID string, in CreateInput) (ledger.Account, error)
	Get(ctx context.Context, ownerID string, accountID uuid.UUID) (ledger.Account, error)
	List(ctx context.Context, ownerID string) ([]ledger.Account, error)
	Update(ctx context.Context, ownerID string, accountID uuid.UUID, in UpdateInput) (ledger.Account, error)
	Deactivate(ctx context.Context, ownerID string, accountID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, now: time.Now}
}

func (s *service) Create(ctx context.Context, ownerID string, in CreateInput) (ledger.Account, error) {
	if ownerID == "" {
		return ledger.Account{}, errs.ErrUnauthenticated
	}
	in.Name = strings.TrimSpace(in.Name)
	in.ParentCategory = strings.TrimSpace(in.ParentCategory)
	in.SubCategory = strings.TrimSpace(in.SubCategory)
	if in.Name == "" {
		return ledger.Account{}, fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	if in.ParentCategory == "" {
		return ledger.Account{}, fmt.Errorf("%w: parent_category is required", errs.ErrInvalid)
	}
	if in.SubCategory == "" {
		return ledger.Account{}, fmt.Errorf("%w: sub_category is required", errs.ErrInvalid)
	}
	if !in.Type.Valid() {
		return ledger.Account{}, fmt.Errorf("%w: invalid account type %q", errs.ErrInvalid, in.Type)
	}

	var opening int64
	if in.Type.HasBalance() {
		if in.OpeningBalanceMinor != nil {
			opening = *in.OpeningBalanceMinor
		}
		if opening < 0 {
			return ledger.Account{}, fmt.Errorf("%w: opening balance must be >= 0", errs.ErrInvalid)
		}
	} else if in.OpeningBalanceMinor != nil {
		return ledger.Account{}, fmt.Errorf("%w: %s accounts do not carry a balance", errs.ErrInvalid, in.Type)
	}

	// Name uniqueness is case-insensitive among the owner's active accounts.
	// The store has no case-insensitive index, so scan in application logic.
	if conflict, err := s.findActiveName(ctx, ownerID, in.Name, uuid.Nil); err != nil {
		return ledger.Account{}, err
	} else if conflict != nil {
		return ledger.Account{}, fmt.Errorf("%w: active account %q already exists", errs.ErrConflict, conflict.Name)
	}

	now := s.now().UTC()
	acc := ledger.Account{
		ID:                  uuid.New(),
		OwnerID:             ownerID,
		Name:                in.Name,
		Type:                in.Type,
		ParentCategory:      in.ParentCategory,
		SubCategory:         in.SubCategory,
		Icon:                in.Icon,
		Color:               in.Color,
		Active:              true,
		OpeningBalanceMinor: opening,
		CurrentBalanceMinor: opening,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return s.writer.CreateAccount(ctx, acc)
}

func (s *service) Get(ctx context.Context, ownerID string, accountID uuid.UUID) (ledger.Account, error) {
	if accountID == uuid.Nil {
		return ledger.Account{}, fmt.Errorf("%w: account id is required", errs.ErrInvalid)
	}
	acc, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return ledger.Account{}, err
	}
	if acc.OwnerID != ownerID {
		return ledger.Account{}, errs.ErrForbidden
	}
	return acc, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	if ownerID == "" {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.ListAccounts(ctx, ownerID)
}

// Update applies allowed changes. Type and taxonomy fields are immutable after
// creation; icon/color are set only when a non-empty value is supplied.
func (s *service) Update(ctx context.Context, ownerID string, accountID uuid.UUID, in UpdateInput) (ledger.Account, error) {
	acc, err := s.Get(ctx, ownerID, accountID)
	if err != nil {
		return ledger.Account{}, err
	}
	if name, ok := in.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return ledger.Account{}, fmt.Errorf("%w: name must not be empty", errs.ErrInvalid)
		}
		if !strings.EqualFold(name, acc.Name) {
			if conflict, err := s.findActiveName(ctx, ownerID, name, acc.ID); err != nil {
				return ledger.Account{}, err
			} else if conflict != nil {
				return ledger.Account{}, fmt.Errorf("%w: active account %q already exists", errs.ErrConflict, conflict.Name)
			}
		}
		acc.Name = name
	} else if in.Name.Cleared() {
		return ledger.Account{}, fmt.Errorf("%w: name must not be empty", errs.ErrInvalid)
	}
	if icon, ok := in.Icon.Get(); ok && icon != "" {
		acc.Icon = icon
	}
	if color, ok := in.Color.Get(); ok && color != "" {
		acc.Color = color
	}
	if active, ok := in.Active.Get(); ok {
		acc.Active = active
	}
	acc.UpdatedAt = s.now().UTC()
	return s.writer.UpdateAccount(ctx, acc)
}

// Deactivate sets Active=false (soft delete). The record is never removed:
// historical transactions keep referencing it.
func (s *service) Deactivate(ctx context.Context, ownerID string, accountID uuid.UUID) error {
	acc, err := s.Get(ctx, ownerID, accountID)
	if err != nil {
		return err
	}
	if !acc.Active {
		return nil
	}
	acc.Active = false
	acc.UpdatedAt = s.now().UTC()
	_, err = s.writer.UpdateAccount(ctx, acc)
	return err
}

// findActiveName returns the owner's active account matching name
// case-insensitively, excluding excludeID, or nil.
func (s *service) findActiveName(ctx context.Context, ownerID, name string, excludeID uuid.UUID) (*ledger.Account, error) {
	existing, err := s.repo.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		a := existing[i]
		if a.ID == excludeID || !a.Active {
			continue
		}
		if strings.EqualFold(a.Name, name) {
			return &a, nil
		}
	}
	return nil, nil
}
