package payrun

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/attendance"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
)

var (
	dailyOvertimeThreshold  = decimal.NewFromInt(8)
	weeklyOvertimeThreshold = decimal.NewFromInt(40)
)

// AggregateAttendance reduces a set of attendance records over a period
// into the counters salary computation needs. Records outside the closed
// interval [periodStart, periodEnd] are ignored; an empty input yields
// zero-valued metrics.
//
// Overtime is the sum of two sources: per-day hours beyond 8, and
// per-ISO-week hours beyond 40. The sources are additive — a long day
// inside a long week counts in both. That mirrors the established payout
// behavior and must not be deduplicated here.
func AggregateAttendance(records []attendance.Record, periodStart, periodEnd time.Time) domain.AttendanceMetrics {
	metrics := domain.AttendanceMetrics{
		HoursWorked:   decimal.Zero,
		OvertimeHours: decimal.Zero,
	}

	weeklyHours := make(map[string]decimal.Decimal)
	dailyOvertime := decimal.Zero

	for _, rec := range records {
		if rec.Date.Before(periodStart) || rec.Date.After(periodEnd) {
			continue
		}

		switch rec.Status {
		case attendance.StatusPresent:
			metrics.DaysPresent++
		case attendance.StatusAbsent:
			metrics.DaysAbsent++
		case attendance.StatusLate:
			metrics.DaysLate++
		case attendance.StatusHalfDay:
			metrics.DaysHalfDay++
		case attendance.StatusSickLeave:
			metrics.DaysSickLeave++
		case attendance.StatusVacation:
			metrics.DaysVacation++
		case attendance.StatusUnpaidLeave:
			metrics.DaysUnpaidLeave++
		}

		metrics.TotalLateMinutes += rec.LateMinutes

		if rec.HoursWorked != nil {
			hours := *rec.HoursWorked
			metrics.HoursWorked = metrics.HoursWorked.Add(hours)

			if over := hours.Sub(dailyOvertimeThreshold); over.IsPositive() {
				dailyOvertime = dailyOvertime.Add(over)
			}

			week := isoWeekKey(rec.Date)
			weeklyHours[week] = weeklyHours[week].Add(hours)
		}
	}

	metrics.DaysWorked = metrics.DaysPresent + metrics.DaysLate

	weeklyOvertime := decimal.Zero
	for _, total := range weeklyHours {
		if over := total.Sub(weeklyOvertimeThreshold); over.IsPositive() {
			weeklyOvertime = weeklyOvertime.Add(over)
		}
	}

	metrics.OvertimeHours = dailyOvertime.Add(weeklyOvertime)

	return metrics
}

// isoWeekKey buckets a date by ISO-8601 year and week number
// (Thursday-anchored), so weeks spanning a year boundary land in one
// bucket.
func isoWeekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
