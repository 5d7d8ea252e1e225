package core

// TypeSummary is the sum and count of one ledger type over a resolved
// window. A window with no matching entries is the zero value, never absent.
type TypeSummary struct {
	TotalAmount Money `json:"totalAmount"`
	Count       int64 `json:"count"`
}

// CombinedSummary merges the expense and income summaries computed over the
// same window for one account.
type CombinedSummary struct {
	TotalExpenses Money `json:"totalExpenses"`
	TotalIncomes  Money `json:"totalIncomes"`
	NetBalance    Money `json:"netBalance"`
	ExpenseCount  int64 `json:"expenseCount"`
	IncomeCount   int64 `json:"incomeCount"`
}

// Combine computes the merged report. The net balance is incomes minus
// expenses in exact cents.
func Combine(expenses, incomes TypeSummary) CombinedSummary {
	return CombinedSummary{
		TotalExpenses: expenses.TotalAmount,
		TotalIncomes:  incomes.TotalAmount,
		NetBalance:    Money{Cents: incomes.TotalAmount.Cents - expenses.TotalAmount.Cents},
		ExpenseCount:  expenses.Count,
		IncomeCount:   incomes.Count,
	}
}
