package accounts

type CreateAccountRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Type        string `json:"type" validate:"required,max=100"`
	DebitRule   string `json:"debit_rule" validate:"required,oneof=INCREASE DECREASE"`
	CreditRule  string `json:"credit_rule" validate:"required,oneof=INCREASE DECREASE"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Category    *string `json:"category,omitempty" validate:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=100"`
	DebitRule   *string `json:"debit_rule,omitempty" validate:"omitempty,oneof=INCREASE DECREASE"`
	CreditRule  *string `json:"credit_rule,omitempty" validate:"omitempty,oneof=INCREASE DECREASE"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ListAccountsRequest struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Type     string `json:"type,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit" validate:"gte=0,lte=200"`
	Offset   int    `json:"offset" validate:"gte=0"`
}
