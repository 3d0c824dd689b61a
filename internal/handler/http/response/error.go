package response

import (
	"errors"
	"net/http"

	"github.com/teranga-hr/payroll-backend-go/internal/domain/auth"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/employee"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/user"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrUserInactive):
		Forbidden(w, "User account is inactive")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Pay run domain errors
	case errors.Is(err, payrun.ErrPayRunNotFound):
		NotFound(w, "Pay run not found")
	case errors.Is(err, payrun.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payrun.ErrPayRunNotDraft):
		Conflict(w, "Pay run is not in draft status")
	case errors.Is(err, payrun.ErrPayRunAlreadyApproved):
		Conflict(w, "Pay run has already been approved")
	case errors.Is(err, payrun.ErrPayRunNotApproved):
		Conflict(w, "Pay run is not approved")
	case errors.Is(err, payrun.ErrPayRunImmutable):
		Conflict(w, "Approved pay run cannot be modified or deleted")
	case errors.Is(err, payrun.ErrPayslipsOutstanding):
		Conflict(w, err.Error())
	case errors.Is(err, payrun.ErrPayslipNotPayable):
		Conflict(w, "Payslip is not open for payment")
	case errors.Is(err, payrun.ErrInvalidPeriod):
		BadRequest(w, "Period start must be before period end", nil)
	case errors.Is(err, payrun.ErrUnknownDeductionModel):
		BadRequest(w, "Unknown deduction model", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
