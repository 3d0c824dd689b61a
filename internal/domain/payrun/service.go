package payrun

import "context"

// PayRunService owns the pay-run lifecycle: creation, draft payslip
// generation, approval, closure, and recalculation. The caller's company
// and user are read from the JWT claims in ctx.
type PayRunService interface {
	Create(ctx context.Context, req CreatePayRunRequest) (CreatePayRunResponse, error)
	Get(ctx context.Context, id string) (PayRunResponse, error)
	List(ctx context.Context, filter PayRunFilter) (ListPayRunResponse, error)
	Update(ctx context.Context, req UpdatePayRunRequest) (PayRunResponse, error)
	Delete(ctx context.Context, id string) error
	ListOverlapping(ctx context.Context, periodStart, periodEnd string) ([]PayRunResponse, error)

	GeneratePayslips(ctx context.Context, payRunID string) (GenerateResult, error)
	Approve(ctx context.Context, payRunID string) (ApprovePayRunResponse, error)
	Close(ctx context.Context, payRunID string, req ClosePayRunRequest) (PayRunResponse, error)
	RecalculateTotals(ctx context.Context, payRunID string) (PayRunResponse, error)

	ListPayslips(ctx context.Context, payRunID string) ([]PayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	RecordPayment(ctx context.Context, payslipID string, req RecordPaymentRequest) (PayslipResponse, error)
}
