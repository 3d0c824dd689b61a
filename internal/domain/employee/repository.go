package employee

import "context"

// EmployeeRepository is a read-only view of employee records. The payroll
// core never mutates employees; record management lives elsewhere.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
