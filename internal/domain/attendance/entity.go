package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one validated attendance entry for one employee on one
// calendar day. Records are immutable inputs to payroll; check-in rules
// and status inference belong to the attendance subsystem.
type Record struct {
	ID          string
	EmployeeID  string
	CompanyID   string
	Date        time.Time
	Status      Status
	CheckIn     *time.Time
	CheckOut    *time.Time
	HoursWorked *decimal.Decimal
	LateMinutes int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Status string

const (
	StatusPresent     Status = "present"
	StatusAbsent      Status = "absent"
	StatusLate        Status = "late"
	StatusHalfDay     Status = "half_day"
	StatusSickLeave   Status = "sick_leave"
	StatusVacation    Status = "vacation"
	StatusUnpaidLeave Status = "unpaid_leave"
)
