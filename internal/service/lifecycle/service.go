// Package lifecycle provisions new owners with a default account set and
// handles full deletion of an owner's data.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jfenske/homeledger/internal/catalog"
	"github.com/jfenske/homeledger/internal/errs"
	"github.com/jfenske/homeledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	ListAccounts(ctx context.Context, ownerID string) ([]ledger.Account, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	// SeedOwner records the owner profile and creates the accounts in one
	// atomic unit.
	SeedOwner(ctx context.Context, ownerID string, accounts []ledger.Account) error
	// PurgeOwner removes every record belonging to the owner and reports
	// how many of each kind were deleted.
	PurgeOwner(ctx context.Context, ownerID string) (ledger.PurgeCounts, error)
}

type Service interface {
	// EnsureSeeded provisions default accounts for an owner seen for the
	// first time. It is idempotent and never fails the caller's request.
	EnsureSeeded(ctx context.Context, ownerID string)
	DeleteAllOwnedData(ctx context.Context, ownerID string) (ledger.PurgeCounts, error)
}

type service struct {
	repo   Repo
	writer Writer
	logger *slog.Logger
	now    func() time.Time

	// seeded caches owners already checked this process, so the common case
	// is a single map load instead of a store round trip per request.
	seeded sync.Map
}

func New(repo Repo, writer Writer, logger *slog.Logger) Service {
	return &service{repo: repo, writer: writer, logger: logger, now: time.Now}
}

func (s *service) EnsureSeeded(ctx context.Context, ownerID string) {
	if ownerID == "" {
		return
	}
	if _, ok := s.seeded.Load(ownerID); ok {
		return
	}

	existing, err := s.repo.ListAccounts(ctx, ownerID)
	if err != nil {
		s.logger.Error("seed check failed", "owner_id", ownerID, "error", err)
		return
	}
	if len(existing) > 0 {
		s.seeded.Store(ownerID, struct{}{})
		return
	}

	now := s.now().UTC()
	defaults := catalog.Defaults()
	accounts := make([]ledger.Account, 0, len(defaults))
	for _, d := range defaults {
		accounts = append(accounts, ledger.Account{
			ID:             uuid.New(),
			OwnerID:        ownerID,
			Name:           d.Name,
			Type:           d.Type,
			ParentCategory: d.ParentCategory,
			SubCategory:    d.SubCategory,
			Icon:           d.Icon,
			Color:          d.Color,
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := s.writer.SeedOwner(ctx, ownerID, accounts); err != nil {
		// A concurrent request may have seeded first; either way the owner
		// ends up provisioned, so log and move on.
		s.logger.Error("seeding default accounts failed", "owner_id", ownerID, "error", err)
		return
	}
	s.seeded.Store(ownerID, struct{}{})
	s.logger.Info("seeded default accounts", "owner_id", ownerID, "count", len(accounts))
}

func (s *service) DeleteAllOwnedData(ctx context.Context, ownerID string) (ledger.PurgeCounts, error) {
	if ownerID == "" {
		return ledger.PurgeCounts{}, errs.ErrUnauthenticated
	}
	counts, err := s.writer.PurgeOwner(ctx, ownerID)
	if err != nil {
		return ledger.PurgeCounts{}, err
	}
	// The next request from this owner should seed fresh defaults.
	s.seeded.Delete(ownerID)
	s.logger.Info("purged owner data", "owner_id", ownerID,
		"accounts", counts.Accounts, "transactions", counts.Transactions, "recurring", counts.Recurring)
	return counts, nil
}
