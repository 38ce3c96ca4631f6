package accounts

// DefaultChart is the standard chart of accounts for a courier back office.
// Codes follow the 1xxx assets / 2xxx liabilities / 3xxx equity / 4xxx revenue /
// 5xxx expenses convention.
func DefaultChart() []Account {
	asset := func(code, name, typ, desc string) Account {
		return Account{Code: code, Name: name, Category: CategoryAsset, Type: typ, DebitRule: RuleIncrease, CreditRule: RuleDecrease, Description: desc, IsActive: true}
	}
	liability := func(code, name, typ, desc string) Account {
		return Account{Code: code, Name: name, Category: CategoryLiability, Type: typ, DebitRule: RuleDecrease, CreditRule: RuleIncrease, Description: desc, IsActive: true}
	}
	equity := func(code, name, typ, desc string) Account {
		return Account{Code: code, Name: name, Category: CategoryEquity, Type: typ, DebitRule: RuleDecrease, CreditRule: RuleIncrease, Description: desc, IsActive: true}
	}
	revenue := func(code, name, typ, desc string) Account {
		return Account{Code: code, Name: name, Category: CategoryRevenue, Type: typ, DebitRule: RuleDecrease, CreditRule: RuleIncrease, Description: desc, IsActive: true}
	}
	expense := func(code, name, typ, desc string) Account {
		return Account{Code: code, Name: name, Category: CategoryExpense, Type: typ, DebitRule: RuleIncrease, CreditRule: RuleDecrease, Description: desc, IsActive: true}
	}

	return []Account{
		asset(CodeCash, "Cash", "Current Asset", "Cash on hand"),
		asset(CodeBank, "Bank", "Current Asset", "Bank current accounts"),
		asset("1103", "Petty Cash", "Current Asset", "Branch petty cash floats"),
		asset(CodeAccountsReceivable, "Accounts Receivable", "Current Asset", "Amounts owed by customers"),
		asset("1202", "COD Clearing", "Current Asset", "Cash-on-delivery collections pending remittance"),
		asset("1301", "Prepaid Expenses", "Current Asset", "Payments made in advance"),
		asset("1401", "Vehicles", "Fixed Asset", "Delivery fleet"),
		asset("1402", "Equipment", "Fixed Asset", "Scanners, sorters and office equipment"),
		liability(CodeAccountsPayable, "Accounts Payable", "Current Liability", "Amounts owed to vendors"),
		liability("2102", "Courier Partner Payable", "Current Liability", "Settlements due to partner carriers"),
		liability("2103", "COD Payable", "Current Liability", "Collected COD owed to shippers"),
		liability("2201", "Accrued Expenses", "Current Liability", "Expenses incurred but unpaid"),
		liability("2301", "Taxes Payable", "Current Liability", "VAT and duties collected"),
		liability("2401", "Loans Payable", "Long-term Liability", "Outstanding loan obligations"),
		equity("3101", "Owner's Equity", "Equity", "Owner capital contributions"),
		equity("3102", "Retained Earnings", "Equity", "Accumulated prior-year results"),
		equity(CodeCurrentYearEarnings, "Current Year Earnings", "Equity", "Net income for the current fiscal year"),
		revenue("4101", "Freight Revenue", "Operating Revenue", "Domestic shipment charges"),
		revenue("4102", "International Freight Revenue", "Operating Revenue", "Cross-border shipment charges"),
		revenue("4103", "COD Fee Revenue", "Operating Revenue", "Cash-on-delivery handling fees"),
		revenue("4104", "Warehousing Revenue", "Operating Revenue", "Storage and fulfilment fees"),
		revenue("4201", "Other Income", "Other Revenue", "Miscellaneous income"),
		expense("5101", "Fuel Expense", "Operating Expense", "Fleet fuel"),
		expense("5102", "Vehicle Maintenance", "Operating Expense", "Fleet repairs and servicing"),
		expense("5103", "Courier Partner Fees", "Operating Expense", "Charges from partner carriers"),
		expense("5104", "Salaries and Wages", "Operating Expense", "Staff compensation"),
		expense("5105", "Rent Expense", "Operating Expense", "Depot and office rent"),
		expense("5106", "Utilities", "Operating Expense", "Power, water and telecom"),
		expense("5107", "Insurance Expense", "Operating Expense", "Cargo and fleet insurance"),
		expense("5108", "Packaging Supplies", "Operating Expense", "Boxes, labels and consumables"),
		expense("5201", "Depreciation", "Non-cash Expense", "Allocation of asset costs"),
		expense("5301", "Bank Charges", "Financial Expense", "Transfer and card processing fees"),
	}
}
