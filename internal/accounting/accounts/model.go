package accounts

import "time"

// AccountCategory enumerates CoA categories.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "ASSET"
	CategoryLiability AccountCategory = "LIABILITY"
	CategoryEquity    AccountCategory = "EQUITY"
	CategoryRevenue   AccountCategory = "REVENUE"
	CategoryExpense   AccountCategory = "EXPENSE"
)

// BalanceRule describes the effect of a debit or credit on an account balance.
type BalanceRule string

const (
	RuleIncrease BalanceRule = "INCREASE"
	RuleDecrease BalanceRule = "DECREASE"
)

// Well-known account codes referenced by the posting services.
const (
	CodeCash                = "1101"
	CodeBank                = "1102"
	CodeAccountsReceivable  = "1201"
	CodeAccountsPayable     = "2101"
	CodeCurrentYearEarnings = "3201"
)

// Account models a chart of accounts node.
type Account struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    AccountCategory `json:"category"`
	Type        string          `json:"type"`
	DebitRule   BalanceRule     `json:"debit_rule"`
	CreditRule  BalanceRule     `json:"credit_rule"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(c AccountCategory) bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryExpense:
		return true
	}
	return false
}
