package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/jfenske/homeledger/internal/field"
	"github.com/jfenske/homeledger/internal/ledger"
)

// Accounts

type postAccountRequest struct {
	Name                string             `json:"name"`
	Type                ledger.AccountType `json:"type"`
	ParentCategory      string             `json:"parent_category"`
	SubCategory         string             `json:"sub_category"`
	OpeningBalanceMinor *int64             `json:"opening_balance_minor"`
	Icon                string             `json:"icon"`
	Color               string             `json:"color"`
}

type patchAccountRequest struct {
	Name   field.Field[string] `json:"name"`
	Icon   field.Field[string] `json:"icon"`
	Color  field.Field[string] `json:"color"`
	Active field.Field[bool]   `json:"active"`
}

type accountResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Type           ledger.AccountType `json:"type"`
	ParentCategory string             `json:"parent_category"`
	SubCategory    string             `json:"sub_category"`
	Icon           string             `json:"icon,omitempty"`
	Color          string             `json:"color,omitempty"`
	Active         bool               `json:"active"`
	// Balance fields are present only for asset/liability accounts.
	OpeningBalanceMinor *int64    `json:"opening_balance_minor,omitempty"`
	CurrentBalanceMinor *int64    `json:"current_balance_minor,omitempty"`
	CurrentBalance      string    `json:"current_balance,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (s *Server) toAccountResponse(a ledger.Account) accountResponse {
	resp := accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		ParentCategory: a.ParentCategory,
		SubCategory:    a.SubCategory,
		Icon:           a.Icon,
		Color:          a.Color,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.Type.HasBalance() {
		opening, current := a.OpeningBalanceMinor, a.CurrentBalanceMinor
		resp.OpeningBalanceMinor = &opening
		resp.CurrentBalanceMinor = &current
		resp.CurrentBalance = s.formatMinor(current)
	}
	return resp
}

// Transactions

type postTransactionRequest struct {
	Date            time.Time `json:"date"`
	AmountMinor     int64     `json:"amount_minor"`
	DebitAccountID  uuid.UUID `json:"debit_account_id"`
	CreditAccountID uuid.UUID `json:"credit_account_id"`
	Note            string    `json:"note"`
	Tags            []string  `json:"tags"`
}

type patchTransactionRequest struct {
	Date            field.Field[time.Time] `json:"date"`
	AmountMinor     field.Field[int64]     `json:"amount_minor"`
	DebitAccountID  field.Field[uuid.UUID] `json:"debit_account_id"`
	CreditAccountID field.Field[uuid.UUID] `json:"credit_account_id"`
	Note            field.Field[string]    `json:"note"`
	Tags            field.Field[[]string]  `json:"tags"`
}

type transactionResponse struct {
	ID              uuid.UUID `json:"id"`
	Date            time.Time `json:"date"`
	AmountMinor     int64     `json:"amount_minor"`
	Amount          string    `json:"amount"`
	DebitAccountID  uuid.UUID `json:"debit_account_id"`
	CreditAccountID uuid.UUID `json:"credit_account_id"`
	Note            *string   `json:"note,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *Server) toTransactionResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		Date:            tx.Date,
		AmountMinor:     tx.AmountMinor,
		Amount:          s.formatMinor(tx.AmountMinor),
		DebitAccountID:  tx.DebitAccountID,
		CreditAccountID: tx.CreditAccountID,
		Note:            tx.Note,
		Tags:            tx.Tags,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

// Recurring transactions

type postRecurringRequest struct {
	AmountMinor      int64            `json:"amount_minor"`
	DebitAccountID   uuid.UUID        `json:"debit_account_id"`
	CreditAccountID  uuid.UUID        `json:"credit_account_id"`
	Frequency        ledger.Frequency `json:"frequency"`
	DayOfRecurrence  int              `json:"day_of_recurrence"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          *time.Time       `json:"end_date"`
	NotifyBeforeDays *int             `json:"notify_before_days"`
	Note             string           `json:"note"`
}

type patchRecurringRequest struct {
	AmountMinor      field.Field[int64]            `json:"amount_minor"`
	DebitAccountID   field.Field[uuid.UUID]        `json:"debit_account_id"`
	CreditAccountID  field.Field[uuid.UUID]        `json:"credit_account_id"`
	Frequency        field.Field[ledger.Frequency] `json:"frequency"`
	DayOfRecurrence  field.Field[int]              `json:"day_of_recurrence"`
	StartDate        field.Field[time.Time]        `json:"start_date"`
	EndDate          field.Field[time.Time]        `json:"end_date"`
	NotifyBeforeDays field.Field[int]              `json:"notify_before_days"`
	Note             field.Field[string]           `json:"note"`
	Active           field.Field[bool]             `json:"active"`
}

type recurringResponse struct {
	ID               uuid.UUID        `json:"id"`
	AmountMinor      int64            `json:"amount_minor"`
	Amount           string           `json:"amount"`
	DebitAccountID   uuid.UUID        `json:"debit_account_id"`
	CreditAccountID  uuid.UUID        `json:"credit_account_id"`
	Frequency        ledger.Frequency `json:"frequency"`
	DayOfRecurrence  int              `json:"day_of_recurrence"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          *time.Time       `json:"end_date,omitempty"`
	NextOccurrence   time.Time        `json:"next_occurrence"`
	LastCreatedDate  *time.Time       `json:"last_created_date,omitempty"`
	NotifyBeforeDays *int             `json:"notify_before_days,omitempty"`
	Note             *string          `json:"note,omitempty"`
	Active           bool             `json:"active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (s *Server) toRecurringResponse(rt ledger.RecurringTransaction) recurringResponse {
	return recurringResponse{
		ID:               rt.ID,
		AmountMinor:      rt.AmountMinor,
		Amount:           s.formatMinor(rt.AmountMinor),
		DebitAccountID:   rt.DebitAccountID,
		CreditAccountID:  rt.CreditAccountID,
		Frequency:        rt.Frequency,
		DayOfRecurrence:  rt.DayOfRecurrence,
		StartDate:        rt.StartDate,
		EndDate:          rt.EndDate,
		NextOccurrence:   rt.NextOccurrence,
		LastCreatedDate:  rt.LastCreatedDate,
		NotifyBeforeDays: rt.NotifyBeforeDays,
		Note:             rt.Note,
		Active:           rt.Active,
		CreatedAt:        rt.CreatedAt,
		UpdatedAt:        rt.UpdatedAt,
	}
}

// formatMinor renders minor units in the configured ledger currency, e.g.
// "USD 12.50". Malformed input renders as the empty string rather than
// failing the response.
func (s *Server) formatMinor(minor int64) string {
	amt, err := money.NewAmountFromMinorUnits(s.currency, minor)
	if err != nil {
		return ""
	}
	return amt.String()
}
