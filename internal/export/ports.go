package export

import (
	"context"

	"splitbook/internal/core"
)

// ExpenseWriter appends a settled expense to an external spreadsheet.
type ExpenseWriter interface {
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
}
