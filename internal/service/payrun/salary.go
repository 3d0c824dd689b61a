package payrun

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/employee"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
)

var (
	overtimeMultiplier = decimal.NewFromFloat(1.5)

	// Hours assumed for honorarium contracts when no attendance-derived
	// hours exist yet, e.g. at pay-run creation time.
	defaultHonorariumHours = decimal.NewFromInt(160)

	punctualityBonusRate = decimal.NewFromFloat(0.05)
	attendanceBonusRate  = decimal.NewFromFloat(0.03)
)

// CalcOptions selects per-path salary behavior. The attendance-driven
// generation path applies bonuses; the eager creation path instead
// falls back to default hours for honorarium contracts.
type CalcOptions struct {
	ApplyBonuses           bool
	DefaultHonorariumHours bool
}

// ComputeGross computes one employee's salary breakdown for a period
// from aggregated attendance metrics. It fails only when the rate field
// required by the employee's contract type is missing or non-positive;
// that error is scoped to the employee and never aborts a batch.
func ComputeGross(emp employee.Employee, metrics domain.AttendanceMetrics, periodStart, periodEnd time.Time, opts CalcOptions) (domain.SalaryBreakdown, error) {
	rate, rateField := emp.RateForContract()
	if rate == nil || !rate.IsPositive() {
		return domain.SalaryBreakdown{}, fmt.Errorf("%w: employee %s requires a positive %s", domain.ErrMissingContractRate, emp.FullName, rateField)
	}

	var gross decimal.Decimal

	switch emp.ContractType {
	case employee.ContractTypeDaily:
		gross = rate.Mul(decimal.NewFromInt(int64(metrics.DaysWorked)))

	case employee.ContractTypeFixed:
		gross = *rate
		if metrics.DaysAbsent > 0 {
			workingDays := WorkingDaysInPeriod(periodStart, periodEnd)
			if workingDays == 0 {
				workingDays = 1
			}
			absence := rate.Div(decimal.NewFromInt(int64(workingDays))).Mul(decimal.NewFromInt(int64(metrics.DaysAbsent)))
			gross = gross.Sub(absence)
		}

	case employee.ContractTypeHonorarium:
		hours := metrics.HoursWorked
		if hours.IsZero() && opts.DefaultHonorariumHours {
			hours = defaultHonorariumHours
		}
		gross = rate.Mul(hours)
	}

	// Overtime is paid at 1.5x the hourly rate, but only for employees
	// with an hourly rate configured.
	overtimeAmount := decimal.Zero
	if emp.HourlyRate != nil && emp.HourlyRate.IsPositive() && metrics.OvertimeHours.IsPositive() {
		overtimeAmount = emp.HourlyRate.Mul(overtimeMultiplier).Mul(metrics.OvertimeHours)
	}

	preBonus := gross.Add(overtimeAmount)

	// Both bonuses compound additively on the pre-bonus gross, not on
	// each other.
	bonus := decimal.Zero
	if opts.ApplyBonuses {
		if metrics.TotalLateMinutes < 30 && metrics.DaysWorked > 0 {
			bonus = bonus.Add(preBonus.Mul(punctualityBonusRate))
		}
		if metrics.DaysAbsent == 0 && metrics.DaysWorked > 15 {
			bonus = bonus.Add(preBonus.Mul(attendanceBonusRate))
		}
	}

	return domain.SalaryBreakdown{
		GrossAmount:    gross,
		OvertimeHours:  metrics.OvertimeHours,
		OvertimeAmount: overtimeAmount,
		BonusAmount:    bonus,
		TotalGross:     preBonus.Add(bonus),
		Metrics:        metrics,
	}, nil
}

// WorkingDaysInPeriod counts the days in the closed interval that are
// neither Saturday nor Sunday. No holiday calendar is applied.
func WorkingDaysInPeriod(periodStart, periodEnd time.Time) int {
	days := 0
	for d := periodStart; !d.After(periodEnd); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
