package payrun

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/employee"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
)

// generationMode selects which creation path drives the batch: the
// attendance-driven path aggregates real records and applies bonuses;
// the eager path runs at pay-run creation, before attendance exists.
type generationMode int

const (
	generationModeAttendance generationMode = iota
	generationModeEager
)

// Generator produces the payslips of one pay run: per active employee it
// aggregates attendance, computes the salary breakdown and deductions,
// and persists the payslip with its deduction lines. It expects to be
// called inside a transaction with the pay-run row already locked.
type Generator struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	payslipRepo    domain.PayslipRepository
}

func NewGenerator(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	payslipRepo domain.PayslipRepository,
) *Generator {
	return &Generator{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		payslipRepo:    payslipRepo,
	}
}

func (g *Generator) run(ctx context.Context, payRun domain.PayRun, mode generationMode) (domain.GenerateResult, error) {
	result := domain.GenerateResult{
		Generated: []domain.PayslipResponse{},
		Errors:    []domain.GenerationError{},
		Totals: domain.GenerationTotals{
			Gross:      decimal.Zero,
			Net:        decimal.Zero,
			Deductions: decimal.Zero,
		},
	}

	strategy, err := StrategyFor(payRun.DeductionModel)
	if err != nil {
		return result, err
	}

	// Regeneration is idempotent: prior payslips for the run are removed
	// before new ones are written, cascading to their deduction lines.
	if err := g.payslipRepo.DeleteByPayRun(ctx, payRun.ID, payRun.CompanyID); err != nil {
		return result, err
	}

	employees, err := g.employeeRepo.GetActiveByCompanyID(ctx, payRun.CompanyID)
	if err != nil {
		return result, fmt.Errorf("failed to load active employees: %w", err)
	}

	opts := CalcOptions{ApplyBonuses: true}
	if mode == generationModeEager {
		opts = CalcOptions{DefaultHonorariumHours: true}
	}

	seq := 0
	for _, emp := range employees {
		var metrics domain.AttendanceMetrics
		if mode == generationModeAttendance {
			records, err := g.attendanceRepo.ListByEmployeeBetween(ctx, emp.ID, payRun.CompanyID, payRun.PeriodStart, payRun.PeriodEnd)
			if err != nil {
				return result, fmt.Errorf("failed to load attendance for employee %s: %w", emp.ID, err)
			}
			metrics = AggregateAttendance(records, payRun.PeriodStart, payRun.PeriodEnd)
		}

		breakdown, err := ComputeGross(emp, metrics, payRun.PeriodStart, payRun.PeriodEnd, opts)
		if err != nil {
			// Configuration problems are scoped to the employee; the
			// rest of the batch proceeds and still commits.
			result.Errors = append(result.Errors, domain.GenerationError{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Reason:       err.Error(),
			})
			continue
		}

		gross := breakdown.TotalGross.Round(2)
		lines := strategy.Compute(gross, domain.ContractTypeRef(emp.ContractType))
		totalDeductions := SumDeductions(lines).Round(2)
		net := gross.Sub(totalDeductions).Round(2)

		seq++
		slip := domain.Payslip{
			PayRunID:         payRun.ID,
			EmployeeID:       emp.ID,
			CompanyID:        payRun.CompanyID,
			PayslipNumber:    payslipNumber(payRun, emp.EmployeeCode, seq),
			GrossAmount:      gross,
			TotalDeductions:  totalDeductions,
			NetAmount:        net,
			AmountPaid:       decimal.Zero,
			DaysWorked:       breakdown.Metrics.DaysWorked,
			DaysPresent:      breakdown.Metrics.DaysPresent,
			DaysAbsent:       breakdown.Metrics.DaysAbsent,
			DaysLate:         breakdown.Metrics.DaysLate,
			HoursWorked:      breakdown.Metrics.HoursWorked,
			TotalLateMinutes: breakdown.Metrics.TotalLateMinutes,
			OvertimeHours:    breakdown.OvertimeHours,
			OvertimeAmount:   breakdown.OvertimeAmount.Round(2),
			BonusAmount:      breakdown.BonusAmount.Round(2),
			Status:           domain.PayslipStatusArchived,
		}

		created, err := g.payslipRepo.Create(ctx, slip, lines)
		if err != nil {
			return result, fmt.Errorf("failed to persist payslip for employee %s: %w", emp.ID, err)
		}

		result.Generated = append(result.Generated, domain.ToPayslipResponse(created, nil))
		result.Totals.Gross = result.Totals.Gross.Add(gross)
		result.Totals.Net = result.Totals.Net.Add(net)
		result.Totals.Deductions = result.Totals.Deductions.Add(totalDeductions)
	}

	return result, nil
}

// payslipNumber builds a unique number from the period, the employee
// code, a per-run sequence and a random tail. The sequence makes
// collisions structurally impossible within one generation run; the
// tail keeps numbers unique across regenerations of the same run.
func payslipNumber(payRun domain.PayRun, employeeCode string, seq int) string {
	tail := uuid.NewString()[:8]
	return fmt.Sprintf("PSL-%04d%02d-%s-%03d-%s",
		payRun.PeriodStart.Year(), int(payRun.PeriodStart.Month()), employeeCode, seq, tail)
}
