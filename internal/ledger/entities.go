package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/jfenske/homeledger/internal/tags"
)

// Side represents the role a transaction assigns to an account.
type Side string

const (
	// SideDebit records value on the debit side of an account.
	SideDebit Side = "debit"
	// SideCredit records value on the credit side of an account.
	SideCredit Side = "credit"
)

// AccountType enumerates the broad classification of an account in the ledger.
type AccountType string

const (
	// AccountTypeAsset increases on the debit side and holds resources owned by a user.
	AccountTypeAsset AccountType = "asset"
	// AccountTypeLiability increases on the credit side and tracks obligations.
	AccountTypeLiability AccountType = "liability"
	// AccountTypeIncome labels inflows; income accounts never carry a balance.
	AccountTypeIncome AccountType = "income"
	// AccountTypeExpense labels outflows; expense accounts never carry a balance.
	AccountTypeExpense AccountType = "expense"
)

// Valid reports whether t is one of the four account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// HasBalance reports whether accounts of this type carry opening/current
// balances. Income and expense accounts are pure categorization labels.
func (t AccountType) HasBalance() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability
}

// Frequency enumerates the schedule of a recurring transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Account represents a ledger account belonging to an owner identity.
// Income/expense accounts never carry balance fields; for asset/liability
// accounts the invariant is
// CurrentBalanceMinor = OpeningBalanceMinor + sum of deltas of all live
// transactions referencing the account.
type Account struct {
	ID      uuid.UUID
	OwnerID string
	Name    string
	Type    AccountType
	// ParentCategory and SubCategory form a free-form two-level taxonomy.
	ParentCategory string
	SubCategory    string
	// Icon and Color are display hints with no semantic effect.
	Icon  string
	Color string
	// Active indicates whether the account is active (soft-delete when false).
	Active bool
	// OpeningBalanceMinor and CurrentBalanceMinor are meaningful only when
	// Type.HasBalance(); both are amounts in minor units.
	OpeningBalanceMinor int64
	CurrentBalanceMinor int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Transaction moves value between exactly one debit and one credit account.
type Transaction struct {
	ID              uuid.UUID
	OwnerID         string
	Date            time.Time
	AmountMinor     int64
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	// Note is nil when never set or explicitly cleared.
	Note      *string
	Tags      tags.Tags
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecurringTransaction is a template describing a repeating transaction's
// schedule, not the materialized transactions themselves.
type RecurringTransaction struct {
	ID              uuid.UUID
	OwnerID         string
	AmountMinor     int64
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Frequency       Frequency
	// DayOfRecurrence is a weekday index 0-6 for weekly, day-of-month 1-31 otherwise.
	DayOfRecurrence int
	StartDate       time.Time
	EndDate         *time.Time
	// NextOccurrence is derived; always strictly after max(StartDate, LastCreatedDate).
	NextOccurrence time.Time
	// LastCreatedDate is set by the external materialization process.
	LastCreatedDate  *time.Time
	NotifyBeforeDays *int
	Note             *string
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Delta is the pure balance-change function: the signed effect on an account's
// current balance of an amount posted on the given side.
//
//	asset:      debit +amount, credit -amount
//	liability:  debit -amount, credit +amount
//	income/expense: always 0 (no balance to move)
func Delta(t AccountType, amountMinor int64, side Side) int64 {
	switch t {
	case AccountTypeAsset:
		if side == SideDebit {
			return amountMinor
		}
		return -amountMinor
	case AccountTypeLiability:
		if side == SideDebit {
			return -amountMinor
		}
		return amountMinor
	default:
		return 0
	}
}

// BalanceAdjustment is a commutative increment applied to an account's current
// balance inside the same atomic unit as the transaction write it belongs to.
type BalanceAdjustment struct {
	AccountID  uuid.UUID
	DeltaMinor int64
}

// PurgeCounts reports per-kind deleted record counts from a cascading owner purge.
type PurgeCounts struct {
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	Recurring    int `json:"recurring_transactions"`
}
