package payrun

import "errors"

var (
	ErrPayRunNotFound        = errors.New("pay run not found")
	ErrPayslipNotFound       = errors.New("payslip not found")
	ErrPayRunNotDraft        = errors.New("pay run is not in draft status")
	ErrPayRunAlreadyApproved = errors.New("pay run has already been approved")
	ErrPayRunNotApproved     = errors.New("pay run is not approved")
	ErrPayRunImmutable       = errors.New("approved pay run cannot be modified or deleted")
	ErrPayslipsOutstanding   = errors.New("pay run has unpaid payslips")
	ErrPayslipNotPayable     = errors.New("payslip is not open for payment")
	ErrInvalidPeriod         = errors.New("period start must be before period end")
	ErrUnknownDeductionModel = errors.New("unknown deduction model")

	// ErrMissingContractRate is scoped to a single employee during batch
	// generation; it is collected, never aborts the batch.
	ErrMissingContractRate = errors.New("employee is missing a positive rate for their contract type")
)
