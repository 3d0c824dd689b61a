package payrun

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayRun is one payroll cycle for a company, grouping all payslips
// generated for its period.
type PayRun struct {
	ID             string
	CompanyID      string
	Title          string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Status         PayRunStatus
	DeductionModel DeductionModel
	TotalGross     decimal.Decimal
	TotalNet       decimal.Decimal
	TotalPaid      decimal.Decimal
	CreatedByID    string
	ApprovedByID   *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PayRunStatus string

const (
	PayRunStatusDraft    PayRunStatus = "draft"
	PayRunStatusApproved PayRunStatus = "approved"
	PayRunStatusClosed   PayRunStatus = "closed"
)

// DeductionModel tags which deduction strategy a pay run was created
// with. The two models are not interchangeable mid-run.
type DeductionModel string

const (
	// DeductionModelStatutory applies flat CNSS/IPRES/CSS withholdings
	// plus the progressive income tax schedule.
	DeductionModelStatutory DeductionModel = "statutory"
	// DeductionModelContribution applies the percentage-based
	// employer/employee cotisation split; only the employee side is
	// withheld from gross.
	DeductionModelContribution DeductionModel = "contribution"
)

// Payslip is one employee's computed pay statement for a pay run.
type Payslip struct {
	ID               string
	PayRunID         string
	EmployeeID       string
	CompanyID        string
	PayslipNumber    string
	GrossAmount      decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetAmount        decimal.Decimal
	AmountPaid       decimal.Decimal
	DaysWorked       int
	DaysPresent      int
	DaysAbsent       int
	DaysLate         int
	HoursWorked      decimal.Decimal
	TotalLateMinutes int
	OvertimeHours    decimal.Decimal
	OvertimeAmount   decimal.Decimal
	BonusAmount      decimal.Decimal
	Status           PayslipStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

type PayslipStatus string

const (
	// PayslipStatusArchived marks payslips generated while the run is
	// still a draft; they are hidden from payment workflows until the
	// run is approved.
	PayslipStatusArchived PayslipStatus = "archived"
	PayslipStatusPending  PayslipStatus = "pending"
	PayslipStatusPartial  PayslipStatus = "partial"
	PayslipStatusPaid     PayslipStatus = "paid"
)

// PayslipDeduction is one withheld line item on a payslip. The sum of a
// payslip's deduction amounts equals its TotalDeductions.
type PayslipDeduction struct {
	ID          string
	PayslipID   string
	Type        DeductionType
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

type DeductionType string

const (
	DeductionTypeSocial DeductionType = "social"
	DeductionTypeTax    DeductionType = "tax"
)

// DeductionLine is a computed deduction before persistence.
type DeductionLine struct {
	Type        DeductionType
	Description string
	Amount      decimal.Decimal
}

// DeductionStrategy computes the deduction lines withheld from a gross
// amount. Implementations are pure; a pay run picks exactly one model at
// creation time.
type DeductionStrategy interface {
	Model() DeductionModel
	Compute(gross decimal.Decimal, contractType ContractTypeRef) []DeductionLine
}

// ContractTypeRef mirrors employee contract types without importing the
// employee package into strategy signatures.
type ContractTypeRef string

const (
	ContractDaily      ContractTypeRef = "daily"
	ContractFixed      ContractTypeRef = "fixed"
	ContractHonorarium ContractTypeRef = "honorarium"
)

// AttendanceMetrics is the reduction of a period's attendance records
// into the counters salary computation needs.
type AttendanceMetrics struct {
	DaysPresent      int
	DaysAbsent       int
	DaysLate         int
	DaysHalfDay      int
	DaysSickLeave    int
	DaysVacation     int
	DaysUnpaidLeave  int
	DaysWorked       int
	HoursWorked      decimal.Decimal
	TotalLateMinutes int
	OvertimeHours    decimal.Decimal
}

// SalaryBreakdown is the typed result of gross salary computation for
// one employee over one period.
type SalaryBreakdown struct {
	GrossAmount    decimal.Decimal
	OvertimeHours  decimal.Decimal
	OvertimeAmount decimal.Decimal
	BonusAmount    decimal.Decimal
	TotalGross     decimal.Decimal
	Metrics        AttendanceMetrics
}

// PayRunTotals are aggregate sums over a run's current payslips.
type PayRunTotals struct {
	Gross decimal.Decimal
	Net   decimal.Decimal
	Paid  decimal.Decimal
}
