package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	CompanyID    string
	EmployeeCode string
	FullName     string
	ContractType ContractType

	// Exactly one of these is expected to be set, matching ContractType.
	DailyRate   *decimal.Decimal
	FixedSalary *decimal.Decimal
	HourlyRate  *decimal.Decimal

	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type ContractType string

const (
	ContractTypeDaily      ContractType = "daily"
	ContractTypeFixed      ContractType = "fixed"
	ContractTypeHonorarium ContractType = "honorarium"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// RateForContract returns the rate field matching the employee's contract
// type, plus the column name for error reporting.
func (e Employee) RateForContract() (*decimal.Decimal, string) {
	switch e.ContractType {
	case ContractTypeDaily:
		return e.DailyRate, "daily_rate"
	case ContractTypeFixed:
		return e.FixedSalary, "fixed_salary"
	case ContractTypeHonorarium:
		return e.HourlyRate, "hourly_rate"
	default:
		return nil, "contract_type"
	}
}
