package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/database"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payrun.PayslipRepository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	p.id, p.pay_run_id, p.employee_id, p.company_id, p.payslip_number,
	p.gross_amount, p.total_deductions, p.net_amount, p.amount_paid,
	p.days_worked, p.days_present, p.days_absent, p.days_late,
	p.hours_worked, p.total_late_minutes,
	p.overtime_hours, p.overtime_amount, p.bonus_amount,
	p.status, p.created_at, p.updated_at,
	e.full_name, e.employee_code
`

func scanPayslip(row pgx.Row) (payrun.Payslip, error) {
	var s payrun.Payslip
	err := row.Scan(
		&s.ID, &s.PayRunID, &s.EmployeeID, &s.CompanyID, &s.PayslipNumber,
		&s.GrossAmount, &s.TotalDeductions, &s.NetAmount, &s.AmountPaid,
		&s.DaysWorked, &s.DaysPresent, &s.DaysAbsent, &s.DaysLate,
		&s.HoursWorked, &s.TotalLateMinutes,
		&s.OvertimeHours, &s.OvertimeAmount, &s.BonusAmount,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
		&s.EmployeeName, &s.EmployeeCode,
	)
	return s, err
}

func (r *payslipRepository) Create(ctx context.Context, slip payrun.Payslip, deductions []payrun.DeductionLine) (payrun.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			pay_run_id, employee_id, company_id, payslip_number,
			gross_amount, total_deductions, net_amount, amount_paid,
			days_worked, days_present, days_absent, days_late,
			hours_worked, total_late_minutes,
			overtime_hours, overtime_amount, bonus_amount, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`

	created := slip
	err := q.QueryRow(ctx, query,
		slip.PayRunID, slip.EmployeeID, slip.CompanyID, slip.PayslipNumber,
		slip.GrossAmount, slip.TotalDeductions, slip.NetAmount, slip.AmountPaid,
		slip.DaysWorked, slip.DaysPresent, slip.DaysAbsent, slip.DaysLate,
		slip.HoursWorked, slip.TotalLateMinutes,
		slip.OvertimeHours, slip.OvertimeAmount, slip.BonusAmount, slip.Status,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return payrun.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	for _, d := range deductions {
		_, err := q.Exec(ctx, `
			INSERT INTO payslip_deductions (payslip_id, type, description, amount)
			VALUES ($1, $2, $3, $4)
		`, created.ID, d.Type, d.Description, d.Amount)
		if err != nil {
			return payrun.Payslip{}, fmt.Errorf("failed to create payslip deduction: %w", err)
		}
	}

	return created, nil
}

func (r *payslipRepository) GetByID(ctx context.Context, id string, companyID string) (payrun.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1 AND p.company_id = $2
	`

	s, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrun.Payslip{}, payrun.ErrPayslipNotFound
		}
		return payrun.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return s, nil
}

func (r *payslipRepository) ListByPayRun(ctx context.Context, payRunID string, companyID string) ([]payrun.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.pay_run_id = $1 AND p.company_id = $2
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, payRunID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payrun.Payslip
	for rows.Next() {
		s, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslips: %w", err)
	}

	return slips, nil
}

func (r *payslipRepository) ListDeductions(ctx context.Context, payslipID string) ([]payrun.PayslipDeduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, type, description, amount, created_at
		FROM payslip_deductions
		WHERE payslip_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip deductions: %w", err)
	}
	defer rows.Close()

	var deductions []payrun.PayslipDeduction
	for rows.Next() {
		var d payrun.PayslipDeduction
		if err := rows.Scan(&d.ID, &d.PayslipID, &d.Type, &d.Description, &d.Amount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payslip deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslip deductions: %w", err)
	}

	return deductions, nil
}

func (r *payslipRepository) DeleteByPayRun(ctx context.Context, payRunID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	// payslip_deductions rows go with them via ON DELETE CASCADE.
	_, err := q.Exec(ctx, "DELETE FROM payslips WHERE pay_run_id = $1 AND company_id = $2", payRunID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete payslips: %w", err)
	}

	return nil
}

func (r *payslipRepository) UnarchiveByPayRun(ctx context.Context, payRunID string, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET status = $3, updated_at = NOW()
		WHERE pay_run_id = $1 AND company_id = $2 AND status = $4
	`

	tag, err := q.Exec(ctx, query, payRunID, companyID, payrun.PayslipStatusPending, payrun.PayslipStatusArchived)
	if err != nil {
		return 0, fmt.Errorf("failed to unarchive payslips: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *payslipRepository) CountOutstanding(ctx context.Context, payRunID string, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM payslips
		WHERE pay_run_id = $1 AND company_id = $2 AND status != $3
	`

	var count int
	if err := q.QueryRow(ctx, query, payRunID, companyID, payrun.PayslipStatusPaid).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count outstanding payslips: %w", err)
	}

	return count, nil
}

func (r *payslipRepository) AggregateTotals(ctx context.Context, payRunID string, companyID string) (payrun.PayRunTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(gross_amount), 0), COALESCE(SUM(net_amount), 0), COALESCE(SUM(amount_paid), 0)
		FROM payslips
		WHERE pay_run_id = $1 AND company_id = $2
	`

	var totals payrun.PayRunTotals
	if err := q.QueryRow(ctx, query, payRunID, companyID).Scan(&totals.Gross, &totals.Net, &totals.Paid); err != nil {
		return payrun.PayRunTotals{}, fmt.Errorf("failed to aggregate payslip totals: %w", err)
	}

	return totals, nil
}

func (r *payslipRepository) UpdatePayment(ctx context.Context, id string, companyID string, amountPaid decimal.Decimal, status payrun.PayslipStatus) (payrun.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET amount_paid = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, amountPaid, status)
	if err != nil {
		return payrun.Payslip{}, fmt.Errorf("failed to update payslip payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrun.Payslip{}, payrun.ErrPayslipNotFound
	}

	return r.GetByID(ctx, id, companyID)
}
