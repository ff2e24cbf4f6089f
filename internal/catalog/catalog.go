// Package catalog holds the fixed set of default category accounts seeded for
// a newly provisioned identity. All entries are income/expense types and so
// never carry balance fields.
package catalog

import "github.com/jfenske/homeledger/internal/ledger"

// Entry describes one default category account.
type Entry struct {
	Name           string
	Type           ledger.AccountType
	ParentCategory string
	SubCategory    string
	Icon           string
	Color          string
}

var defaults = []Entry{
	// Income
	{Name: "Salary", Type: ledger.AccountTypeIncome, ParentCategory: "Income", SubCategory: "Salary", Icon: "briefcase", Color: "#2E7D32"},
	{Name: "Freelance", Type: ledger.AccountTypeIncome, ParentCategory: "Income", SubCategory: "Freelance", Icon: "laptop", Color: "#388E3C"},
	{Name: "Interest", Type: ledger.AccountTypeIncome, ParentCategory: "Income", SubCategory: "Interest", Icon: "percent", Color: "#43A047"},
	{Name: "Gifts Received", Type: ledger.AccountTypeIncome, ParentCategory: "Income", SubCategory: "Gifts", Icon: "gift", Color: "#4CAF50"},
	{Name: "Other Income", Type: ledger.AccountTypeIncome, ParentCategory: "Income", SubCategory: "Other", Icon: "plus-circle", Color: "#66BB6A"},
	// Expenses
	{Name: "Groceries", Type: ledger.AccountTypeExpense, ParentCategory: "Food", SubCategory: "Groceries", Icon: "cart", Color: "#EF6C00"},
	{Name: "Eating Out", Type: ledger.AccountTypeExpense, ParentCategory: "Food", SubCategory: "Eating Out", Icon: "utensils", Color: "#F57C00"},
	{Name: "Rent", Type: ledger.AccountTypeExpense, ParentCategory: "Housing", SubCategory: "Rent", Icon: "home", Color: "#5D4037"},
	{Name: "Utilities", Type: ledger.AccountTypeExpense, ParentCategory: "Housing", SubCategory: "Utilities", Icon: "bolt", Color: "#6D4C41"},
	{Name: "Public Transport", Type: ledger.AccountTypeExpense, ParentCategory: "Transport", SubCategory: "Public Transport", Icon: "bus", Color: "#1565C0"},
	{Name: "Fuel", Type: ledger.AccountTypeExpense, ParentCategory: "Transport", SubCategory: "Fuel", Icon: "fuel", Color: "#1976D2"},
	{Name: "Shopping", Type: ledger.AccountTypeExpense, ParentCategory: "Lifestyle", SubCategory: "Shopping", Icon: "bag", Color: "#8E24AA"},
	{Name: "Entertainment", Type: ledger.AccountTypeExpense, ParentCategory: "Lifestyle", SubCategory: "Entertainment", Icon: "film", Color: "#9C27B0"},
	{Name: "Health", Type: ledger.AccountTypeExpense, ParentCategory: "Health", SubCategory: "Medical", Icon: "heart", Color: "#C62828"},
	{Name: "Travel", Type: ledger.AccountTypeExpense, ParentCategory: "Lifestyle", SubCategory: "Travel", Icon: "plane", Color: "#00838F"},
	{Name: "Education", Type: ledger.AccountTypeExpense, ParentCategory: "Personal", SubCategory: "Education", Icon: "book", Color: "#283593"},
	{Name: "Personal Care", Type: ledger.AccountTypeExpense, ParentCategory: "Personal", SubCategory: "Personal Care", Icon: "smile", Color: "#AD1457"},
	{Name: "Other Expenses", Type: ledger.AccountTypeExpense, ParentCategory: "Other", SubCategory: "General", Icon: "ellipsis", Color: "#546E7A"},
}

// Defaults returns a copy of the default catalog.
func Defaults() []Entry {
	out := make([]Entry, len(defaults))
	copy(out, defaults)
	return out
}
