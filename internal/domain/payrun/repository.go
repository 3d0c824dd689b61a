package payrun

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PayRunRepository defines data access for pay runs. All methods take a
// companyID to keep tenants isolated; a pay run belonging to another
// company resolves to ErrPayRunNotFound, never to an authorization error.
type PayRunRepository interface {
	Create(ctx context.Context, run PayRun) (PayRun, error)
	GetByID(ctx context.Context, id string, companyID string) (PayRun, error)
	// GetByIDForUpdate locks the pay run row for the duration of the
	// enclosing transaction so delete-then-recreate generation cannot
	// interleave with a concurrent call.
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (PayRun, error)
	List(ctx context.Context, companyID string, filter PayRunFilter) ([]PayRun, int64, error)
	Update(ctx context.Context, companyID string, req UpdatePayRunRequest) error
	Delete(ctx context.Context, id string, companyID string) error
	MarkApproved(ctx context.Context, id string, companyID string, approvedByID string, approvedAt time.Time) error
	MarkClosed(ctx context.Context, id string, companyID string) error
	SetTotals(ctx context.Context, id string, companyID string, totals PayRunTotals) error
	FindOverlapping(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]PayRun, error)
}

// PayslipRepository defines data access for payslips and their deduction
// lines. A payslip owns its deductions; deleting payslips for a run
// cascades to them.
type PayslipRepository interface {
	Create(ctx context.Context, slip Payslip, deductions []DeductionLine) (Payslip, error)
	GetByID(ctx context.Context, id string, companyID string) (Payslip, error)
	ListByPayRun(ctx context.Context, payRunID string, companyID string) ([]Payslip, error)
	ListDeductions(ctx context.Context, payslipID string) ([]PayslipDeduction, error)
	DeleteByPayRun(ctx context.Context, payRunID string, companyID string) error
	// UnarchiveByPayRun flips every archived payslip of the run to
	// pending and returns how many were flipped.
	UnarchiveByPayRun(ctx context.Context, payRunID string, companyID string) (int, error)
	CountOutstanding(ctx context.Context, payRunID string, companyID string) (int, error)
	AggregateTotals(ctx context.Context, payRunID string, companyID string) (PayRunTotals, error)
	UpdatePayment(ctx context.Context, id string, companyID string, amountPaid decimal.Decimal, status PayslipStatus) (Payslip, error)
}
