package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/database"
)

type payRunRepository struct {
	db *database.DB
}

func NewPayRunRepository(db *database.DB) payrun.PayRunRepository {
	return &payRunRepository{db: db}
}

const payRunColumns = `
	id, company_id, title, period_start, period_end, status, deduction_model,
	total_gross, total_net, total_paid,
	created_by_id, approved_by_id, approved_at, created_at, updated_at
`

func scanPayRun(row pgx.Row) (payrun.PayRun, error) {
	var p payrun.PayRun
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Title, &p.PeriodStart, &p.PeriodEnd, &p.Status, &p.DeductionModel,
		&p.TotalGross, &p.TotalNet, &p.TotalPaid,
		&p.CreatedByID, &p.ApprovedByID, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *payRunRepository) Create(ctx context.Context, run payrun.PayRun) (payrun.PayRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pay_runs (
			company_id, title, period_start, period_end, status, deduction_model,
			total_gross, total_net, total_paid, created_by_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + payRunColumns

	created, err := scanPayRun(q.QueryRow(ctx, query,
		run.CompanyID, run.Title, run.PeriodStart, run.PeriodEnd, run.Status, run.DeductionModel,
		run.TotalGross, run.TotalNet, run.TotalPaid, run.CreatedByID,
	))
	if err != nil {
		return payrun.PayRun{}, fmt.Errorf("failed to create pay run: %w", err)
	}

	return created, nil
}

func (r *payRunRepository) GetByID(ctx context.Context, id string, companyID string) (payrun.PayRun, error) {
	return r.getByID(ctx, id, companyID, false)
}

func (r *payRunRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (payrun.PayRun, error) {
	return r.getByID(ctx, id, companyID, true)
}

func (r *payRunRepository) getByID(ctx context.Context, id string, companyID string, forUpdate bool) (payrun.PayRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payRunColumns + `
		FROM pay_runs
		WHERE id = $1 AND company_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	p, err := scanPayRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrun.PayRun{}, payrun.ErrPayRunNotFound
		}
		return payrun.PayRun{}, fmt.Errorf("failed to get pay run: %w", err)
	}

	return p, nil
}

func (r *payRunRepository) List(ctx context.Context, companyID string, filter payrun.PayRunFilter) ([]payrun.PayRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE company_id = $1"
	args := []interface{}{companyID}
	if filter.Status != nil {
		where += " AND status = $2"
		args = append(args, *filter.Status)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM pay_runs " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pay runs: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM pay_runs
		%s
		ORDER BY period_start DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, payRunColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pay runs: %w", err)
	}
	defer rows.Close()

	var runs []payrun.PayRun
	for rows.Next() {
		p, err := scanPayRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan pay run: %w", err)
		}
		runs = append(runs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate pay runs: %w", err)
	}

	return runs, total, nil
}

func (r *payRunRepository) Update(ctx context.Context, companyID string, req payrun.UpdatePayRunRequest) error {
	q := GetQuerier(ctx, r.db)

	set := "updated_at = NOW()"
	args := []interface{}{req.ID, companyID}
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.PeriodStart != nil {
		addSet("period_start", *req.PeriodStart)
	}
	if req.PeriodEnd != nil {
		addSet("period_end", *req.PeriodEnd)
	}

	query := "UPDATE pay_runs SET " + set + " WHERE id = $1 AND company_id = $2"
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pay run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrun.ErrPayRunNotFound
	}

	return nil
}

func (r *payRunRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM pay_runs WHERE id = $1 AND company_id = $2", id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete pay run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrun.ErrPayRunNotFound
	}

	return nil
}

func (r *payRunRepository) MarkApproved(ctx context.Context, id string, companyID string, approvedByID string, approvedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_runs
		SET status = $3, approved_by_id = $4, approved_at = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, payrun.PayRunStatusApproved, approvedByID, approvedAt)
	if err != nil {
		return fmt.Errorf("failed to mark pay run approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrun.ErrPayRunNotFound
	}

	return nil
}

func (r *payRunRepository) MarkClosed(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_runs
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, payrun.PayRunStatusClosed)
	if err != nil {
		return fmt.Errorf("failed to mark pay run closed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrun.ErrPayRunNotFound
	}

	return nil
}

func (r *payRunRepository) SetTotals(ctx context.Context, id string, companyID string, totals payrun.PayRunTotals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_runs
		SET total_gross = $3, total_net = $4, total_paid = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, id, companyID, totals.Gross, totals.Net, totals.Paid)
	if err != nil {
		return fmt.Errorf("failed to set pay run totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payrun.ErrPayRunNotFound
	}

	return nil
}

func (r *payRunRepository) FindOverlapping(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]payrun.PayRun, error) {
	q := GetQuerier(ctx, r.db)

	// Two closed intervals overlap when each starts before the other ends.
	query := `
		SELECT ` + payRunColumns + `
		FROM pay_runs
		WHERE company_id = $1 AND period_start <= $3 AND period_end >= $2
		ORDER BY period_start
	`

	rows, err := q.Query(ctx, query, companyID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping pay runs: %w", err)
	}
	defer rows.Close()

	var runs []payrun.PayRun
	for rows.Next() {
		p, err := scanPayRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pay run: %w", err)
		}
		runs = append(runs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pay runs: %w", err)
	}

	return runs, nil
}
