package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is a read-only view of attendance records. Payroll
// reads records whose date falls within a pay-run period; it never writes
// them.
type AttendanceRepository interface {
	ListByEmployeeBetween(ctx context.Context, employeeID string, companyID string, periodStart, periodEnd time.Time) ([]Record, error)
}
