package payrun

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/employee"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
)

// claimsContext builds a request context carrying an access token, the
// same shape the Verifier middleware produces.
func claimsContext(t *testing.T, companyID, userID string) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	tok, _, err := ja.Encode(map[string]interface{}{
		"user_id":    userID,
		"company_id": companyID,
		"role":       "admin",
		"type":       "access",
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), tok, nil)
}

// passthroughTxManager satisfies database.TxManager without a database.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===== PAY RUN REPO =====

type fakePayRunRepo struct {
	mu   sync.Mutex
	runs map[string]domain.PayRun
}

func newFakePayRunRepo() *fakePayRunRepo {
	return &fakePayRunRepo{runs: make(map[string]domain.PayRun)}
}

func (r *fakePayRunRepo) Create(ctx context.Context, run domain.PayRun) (domain.PayRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now()
	run.UpdatedAt = run.CreatedAt
	r.runs[run.ID] = run
	return run, nil
}

func (r *fakePayRunRepo) GetByID(ctx context.Context, id string, companyID string) (domain.PayRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return domain.PayRun{}, domain.ErrPayRunNotFound
	}
	return run, nil
}

func (r *fakePayRunRepo) GetByIDForUpdate(ctx context.Context, id string, companyID string) (domain.PayRun, error) {
	return r.GetByID(ctx, id, companyID)
}

func (r *fakePayRunRepo) List(ctx context.Context, companyID string, filter domain.PayRunFilter) ([]domain.PayRun, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.PayRun
	for _, run := range r.runs {
		if run.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && string(run.Status) != *filter.Status {
			continue
		}
		matched = append(matched, run)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PeriodStart.After(matched[j].PeriodStart)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakePayRunRepo) Update(ctx context.Context, companyID string, req domain.UpdatePayRunRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[req.ID]
	if !ok || run.CompanyID != companyID {
		return domain.ErrPayRunNotFound
	}
	if req.Title != nil {
		run.Title = *req.Title
	}
	if req.PeriodStart != nil {
		run.PeriodStart, _ = time.Parse("2006-01-02", *req.PeriodStart)
	}
	if req.PeriodEnd != nil {
		run.PeriodEnd, _ = time.Parse("2006-01-02", *req.PeriodEnd)
	}
	run.UpdatedAt = time.Now()
	r.runs[req.ID] = run
	return nil
}

func (r *fakePayRunRepo) Delete(ctx context.Context, id string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return domain.ErrPayRunNotFound
	}
	delete(r.runs, id)
	return nil
}

func (r *fakePayRunRepo) MarkApproved(ctx context.Context, id string, companyID string, approvedByID string, approvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return domain.ErrPayRunNotFound
	}
	run.Status = domain.PayRunStatusApproved
	run.ApprovedByID = &approvedByID
	run.ApprovedAt = &approvedAt
	r.runs[id] = run
	return nil
}

func (r *fakePayRunRepo) MarkClosed(ctx context.Context, id string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return domain.ErrPayRunNotFound
	}
	run.Status = domain.PayRunStatusClosed
	r.runs[id] = run
	return nil
}

func (r *fakePayRunRepo) SetTotals(ctx context.Context, id string, companyID string, totals domain.PayRunTotals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.CompanyID != companyID {
		return domain.ErrPayRunNotFound
	}
	run.TotalGross = totals.Gross
	run.TotalNet = totals.Net
	run.TotalPaid = totals.Paid
	r.runs[id] = run
	return nil
}

func (r *fakePayRunRepo) FindOverlapping(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]domain.PayRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.PayRun
	for _, run := range r.runs {
		if run.CompanyID != companyID {
			continue
		}
		if !run.PeriodStart.After(periodEnd) && !run.PeriodEnd.Before(periodStart) {
			matched = append(matched, run)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PeriodStart.Before(matched[j].PeriodStart)
	})
	return matched, nil
}

// ===== PAYSLIP REPO =====

type fakePayslipRepo struct {
	mu         sync.Mutex
	slips      map[string]domain.Payslip
	deductions map[string][]domain.PayslipDeduction
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{
		slips:      make(map[string]domain.Payslip),
		deductions: make(map[string][]domain.PayslipDeduction),
	}
}

func (r *fakePayslipRepo) Create(ctx context.Context, slip domain.Payslip, deductions []domain.DeductionLine) (domain.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slip.ID = uuid.NewString()
	slip.CreatedAt = time.Now()
	slip.UpdatedAt = slip.CreatedAt
	r.slips[slip.ID] = slip
	for _, d := range deductions {
		r.deductions[slip.ID] = append(r.deductions[slip.ID], domain.PayslipDeduction{
			ID:          uuid.NewString(),
			PayslipID:   slip.ID,
			Type:        d.Type,
			Description: d.Description,
			Amount:      d.Amount,
			CreatedAt:   slip.CreatedAt,
		})
	}
	return slip, nil
}

func (r *fakePayslipRepo) GetByID(ctx context.Context, id string, companyID string) (domain.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slip, ok := r.slips[id]
	if !ok || slip.CompanyID != companyID {
		return domain.Payslip{}, domain.ErrPayslipNotFound
	}
	return slip, nil
}

func (r *fakePayslipRepo) ListByPayRun(ctx context.Context, payRunID string, companyID string) ([]domain.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Payslip
	for _, slip := range r.slips {
		if slip.PayRunID == payRunID && slip.CompanyID == companyID {
			matched = append(matched, slip)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PayslipNumber < matched[j].PayslipNumber
	})
	return matched, nil
}

func (r *fakePayslipRepo) ListDeductions(ctx context.Context, payslipID string) ([]domain.PayslipDeduction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deductions[payslipID], nil
}

func (r *fakePayslipRepo) DeleteByPayRun(ctx context.Context, payRunID string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, slip := range r.slips {
		if slip.PayRunID == payRunID && slip.CompanyID == companyID {
			delete(r.slips, id)
			delete(r.deductions, id)
		}
	}
	return nil
}

func (r *fakePayslipRepo) UnarchiveByPayRun(ctx context.Context, payRunID string, companyID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, slip := range r.slips {
		if slip.PayRunID == payRunID && slip.CompanyID == companyID && slip.Status == domain.PayslipStatusArchived {
			slip.Status = domain.PayslipStatusPending
			r.slips[id] = slip
			count++
		}
	}
	return count, nil
}

func (r *fakePayslipRepo) CountOutstanding(ctx context.Context, payRunID string, companyID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, slip := range r.slips {
		if slip.PayRunID == payRunID && slip.CompanyID == companyID && slip.Status != domain.PayslipStatusPaid {
			count++
		}
	}
	return count, nil
}

func (r *fakePayslipRepo) AggregateTotals(ctx context.Context, payRunID string, companyID string) (domain.PayRunTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := domain.PayRunTotals{Gross: decimal.Zero, Net: decimal.Zero, Paid: decimal.Zero}
	for _, slip := range r.slips {
		if slip.PayRunID == payRunID && slip.CompanyID == companyID {
			totals.Gross = totals.Gross.Add(slip.GrossAmount)
			totals.Net = totals.Net.Add(slip.NetAmount)
			totals.Paid = totals.Paid.Add(slip.AmountPaid)
		}
	}
	return totals, nil
}

func (r *fakePayslipRepo) UpdatePayment(ctx context.Context, id string, companyID string, amountPaid decimal.Decimal, status domain.PayslipStatus) (domain.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slip, ok := r.slips[id]
	if !ok || slip.CompanyID != companyID {
		return domain.Payslip{}, domain.ErrPayslipNotFound
	}
	slip.AmountPaid = amountPaid
	slip.Status = status
	slip.UpdatedAt = time.Now()
	r.slips[id] = slip
	return slip, nil
}

// ===== EMPLOYEE REPO =====

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var matched []employee.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID && e.EmploymentStatus == employee.EmploymentStatusActive {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// ===== ATTENDANCE REPO =====

type fakeAttendanceRepo struct {
	records []attendance.Record
}

func (r *fakeAttendanceRepo) ListByEmployeeBetween(ctx context.Context, employeeID string, companyID string, periodStart, periodEnd time.Time) ([]attendance.Record, error) {
	var matched []attendance.Record
	for _, rec := range r.records {
		if rec.EmployeeID != employeeID || rec.CompanyID != companyID {
			continue
		}
		if rec.Date.Before(periodStart) || rec.Date.After(periodEnd) {
			continue
		}
		matched = append(matched, rec)
	}
	return matched, nil
}
