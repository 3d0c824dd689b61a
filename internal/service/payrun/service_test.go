package payrun

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/employee"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
)

const (
	testCompanyID = "11111111-1111-1111-1111-111111111111"
	testUserID    = "22222222-2222-2222-2222-222222222222"
)

type testEnv struct {
	payRunRepo     *fakePayRunRepo
	payslipRepo    *fakePayslipRepo
	employeeRepo   *fakeEmployeeRepo
	attendanceRepo *fakeAttendanceRepo
	svc            domain.PayRunService
}

func newTestEnv(employees []employee.Employee, records []attendance.Record) *testEnv {
	env := &testEnv{
		payRunRepo:     newFakePayRunRepo(),
		payslipRepo:    newFakePayslipRepo(),
		employeeRepo:   &fakeEmployeeRepo{employees: employees},
		attendanceRepo: &fakeAttendanceRepo{records: records},
	}
	env.svc = NewPayRunService(passthroughTxManager{}, env.payRunRepo, env.payslipRepo, env.employeeRepo, env.attendanceRepo)
	return env
}

func activeEmployee(id, code, name string, contractType employee.ContractType, rate int64) employee.Employee {
	emp := employee.Employee{
		ID:               id,
		CompanyID:        testCompanyID,
		EmployeeCode:     code,
		FullName:         name,
		ContractType:     contractType,
		EmploymentStatus: employee.EmploymentStatusActive,
	}
	if rate > 0 {
		switch contractType {
		case employee.ContractTypeDaily:
			emp.DailyRate = dec(rate)
		case employee.ContractTypeFixed:
			emp.FixedSalary = dec(rate)
		case employee.ContractTypeHonorarium:
			emp.HourlyRate = dec(rate)
		}
	}
	return emp
}

// presentDays builds one 8h present record per date.
func presentDays(employeeID string, dates ...string) []attendance.Record {
	var records []attendance.Record
	for _, d := range dates {
		rec := record(d, attendance.StatusPresent, 8, 0)
		rec.EmployeeID = employeeID
		rec.CompanyID = testCompanyID
		records = append(records, rec)
	}
	return records
}

func absentDays(employeeID string, dates ...string) []attendance.Record {
	var records []attendance.Record
	for _, d := range dates {
		rec := record(d, attendance.StatusAbsent, 0, 0)
		rec.EmployeeID = employeeID
		rec.CompanyID = testCompanyID
		records = append(records, rec)
	}
	return records
}

// generationFixture covers the period 2025-06-02 .. 2025-06-27, exactly
// 20 working days:
//   - Awa (daily, 15000/day) works 10 days with a punctuality bonus:
//     gross 157500, statutory deductions 23625, net 133875
//   - Moussa (fixed, 500000) is absent twice, no bonus:
//     gross 450000, statutory deductions 67500, net 382500
//   - Fatou (honorarium) has no hourly rate configured and must fail
func generationFixture() *testEnv {
	employees := []employee.Employee{
		activeEmployee("emp-awa", "0001-2025", "Awa Diop", employee.ContractTypeDaily, 15000),
		activeEmployee("emp-moussa", "0002-2025", "Moussa Ndiaye", employee.ContractTypeFixed, 500000),
		activeEmployee("emp-fatou", "0003-2025", "Fatou Sall", employee.ContractTypeHonorarium, 0),
	}

	records := presentDays("emp-awa",
		"2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06",
		"2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13",
	)
	records = append(records, absentDays("emp-moussa", "2025-06-16", "2025-06-17")...)

	return newTestEnv(employees, records)
}

func createDraftRun(t *testing.T, env *testEnv, ctx context.Context) string {
	t.Helper()
	resp, err := env.svc.Create(ctx, domain.CreatePayRunRequest{
		Title:       "June 2025",
		PeriodStart: "2025-06-02",
		PeriodEnd:   "2025-06-27",
	})
	require.NoError(t, err)
	return resp.PayRun.ID
}

// ===== CREATE =====

func TestPayRunService_Create_Defaults(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil, nil)
	ctx := claimsContext(t, testCompanyID, testUserID)

	resp, err := env.svc.Create(ctx, domain.CreatePayRunRequest{
		Title:       "June 2025",
		PeriodStart: "2025-06-01",
		PeriodEnd:   "2025-06-30",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.PayRunStatusDraft), resp.PayRun.Status)
	assert.Equal(t, string(domain.DeductionModelStatutory), resp.PayRun.DeductionModel)
	assert.Equal(t, testUserID, resp.PayRun.CreatedByID)
	assert.Nil(t, resp.Generation)
}

func TestPayRunService_Create_InvalidPeriod(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil, nil)
	ctx := claimsContext(t, testCompanyID, testUserID)

	_, err := env.svc.Create(ctx, domain.CreatePayRunRequest{
		Title:       "Broken",
		PeriodStart: "2025-06-30",
		PeriodEnd:   "2025-06-01",
	})
	assert.Error(t, err)
}

func TestPayRunService_Create_EagerGenerate(t *testing.T) {
	t.Parallel()
	env := newTestEnv([]employee.Employee{
		activeEmployee("emp-fatou", "0003-2025", "Fatou Sall", employee.ContractTypeHonorarium, 5000),
	}, nil)
	ctx := claimsContext(t, testCompanyID, testUserID)

	resp, err := env.svc.Create(ctx, domain.CreatePayRunRequest{
		Title:         "June 2025",
		PeriodStart:   "2025-06-01",
		PeriodEnd:     "2025-06-30",
		EagerGenerate: true,
	})
	require.NoError(t, err)

	// The eager path defaults to the contribution model and leaves the
	// run a draft with archived payslips.
	assert.Equal(t, string(domain.DeductionModelContribution), resp.PayRun.DeductionModel)
	assert.Equal(t, string(domain.PayRunStatusDraft), resp.PayRun.Status)
	require.NotNil(t, resp.Generation)
	require.Len(t, resp.Generation.Generated, 1)
	assert.Empty(t, resp.Generation.Errors)

	// 160 default hours at 5000/h, employee cotisations at 12.75%.
	slip := resp.Generation.Generated[0]
	assert.Equal(t, string(domain.PayslipStatusArchived), slip.Status)
	assert.True(t, slip.GrossAmount.Equal(decimal.NewFromInt(800000)), "got %s", slip.GrossAmount)
	assert.True(t, slip.TotalDeductions.Equal(decimal.NewFromInt(102000)), "got %s", slip.TotalDeductions)
	assert.True(t, slip.NetAmount.Equal(decimal.NewFromInt(698000)), "got %s", slip.NetAmount)

	assert.True(t, resp.PayRun.TotalGross.Equal(decimal.NewFromInt(800000)))
	assert.True(t, resp.PayRun.TotalNet.Equal(decimal.NewFromInt(698000)))
}

// ===== GENERATION =====

func TestPayRunService_GeneratePayslips_PartialSuccess(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	result, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	// The misconfigured employee is reported, not fatal.
	require.Len(t, result.Generated, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "emp-fatou", result.Errors[0].EmployeeID)
	assert.Equal(t, "Fatou Sall", result.Errors[0].EmployeeName)
	assert.True(t, strings.Contains(result.Errors[0].Reason, "hourly_rate"))

	byEmployee := map[string]domain.PayslipResponse{}
	for _, slip := range result.Generated {
		assert.Equal(t, string(domain.PayslipStatusArchived), slip.Status)
		byEmployee[slip.EmployeeID] = slip
	}

	awa := byEmployee["emp-awa"]
	assert.True(t, awa.GrossAmount.Equal(decimal.NewFromInt(157500)), "got %s", awa.GrossAmount)
	assert.True(t, awa.TotalDeductions.Equal(decimal.NewFromInt(23625)), "got %s", awa.TotalDeductions)
	assert.True(t, awa.NetAmount.Equal(decimal.NewFromInt(133875)), "got %s", awa.NetAmount)
	assert.Equal(t, 10, awa.DaysWorked)

	moussa := byEmployee["emp-moussa"]
	assert.True(t, moussa.GrossAmount.Equal(decimal.NewFromInt(450000)), "got %s", moussa.GrossAmount)
	assert.True(t, moussa.TotalDeductions.Equal(decimal.NewFromInt(67500)), "got %s", moussa.TotalDeductions)
	assert.True(t, moussa.NetAmount.Equal(decimal.NewFromInt(382500)), "got %s", moussa.NetAmount)
	assert.Equal(t, 2, moussa.DaysAbsent)

	// Net and deduction-line sums reconcile per slip.
	for _, slip := range result.Generated {
		assert.True(t, slip.NetAmount.Equal(slip.GrossAmount.Sub(slip.TotalDeductions)))
		lines, err := env.payslipRepo.ListDeductions(context.Background(), slip.ID)
		require.NoError(t, err)
		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(l.Amount)
		}
		assert.True(t, sum.Equal(slip.TotalDeductions))
	}

	assert.True(t, result.Totals.Gross.Equal(decimal.NewFromInt(607500)), "got %s", result.Totals.Gross)
	assert.True(t, result.Totals.Net.Equal(decimal.NewFromInt(516375)), "got %s", result.Totals.Net)

	// The run keeps its draft status but carries the new totals.
	run, err := env.svc.Get(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PayRunStatusDraft), run.Status)
	assert.True(t, run.TotalGross.Equal(decimal.NewFromInt(607500)))
}

func TestPayRunService_GeneratePayslips_Idempotent(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	result, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	assert.Len(t, result.Generated, 2)
	slips, err := env.svc.ListPayslips(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, slips, 2)
}

func TestPayRunService_GeneratePayslips_RequiresDraft(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, runID)
	require.NoError(t, err)

	_, err = env.svc.GeneratePayslips(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunNotDraft)
}

// ===== APPROVAL =====

func TestPayRunService_Approve(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	resp, err := env.svc.Approve(ctx, runID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.PayRunStatusApproved), resp.PayRun.Status)
	require.NotNil(t, resp.PayRun.ApprovedByID)
	assert.Equal(t, testUserID, *resp.PayRun.ApprovedByID)
	assert.NotNil(t, resp.PayRun.ApprovedAt)
	assert.Equal(t, 2, resp.PayslipsCount)

	// Every payslip is released into the payment workflow.
	slips, err := env.svc.ListPayslips(ctx, runID)
	require.NoError(t, err)
	for _, slip := range slips {
		assert.Equal(t, string(domain.PayslipStatusPending), slip.Status)
	}
}

func TestPayRunService_Approve_Twice(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.Approve(ctx, runID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunAlreadyApproved)
}

// ===== CLOSE =====

func payAll(t *testing.T, env *testEnv, ctx context.Context, runID string) {
	t.Helper()
	slips, err := env.svc.ListPayslips(ctx, runID)
	require.NoError(t, err)
	for _, slip := range slips {
		_, err := env.svc.RecordPayment(ctx, slip.ID, domain.RecordPaymentRequest{Amount: slip.NetAmount})
		require.NoError(t, err)
	}
}

func TestPayRunService_Close_RequiresApproval(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.Close(ctx, runID, domain.ClosePayRunRequest{})
	assert.ErrorIs(t, err, domain.ErrPayRunNotApproved)
}

func TestPayRunService_Close_RequireAllPaid(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, runID)
	require.NoError(t, err)

	_, err = env.svc.Close(ctx, runID, domain.ClosePayRunRequest{RequireAllPaid: true})
	assert.ErrorIs(t, err, domain.ErrPayslipsOutstanding)

	payAll(t, env, ctx, runID)

	resp, err := env.svc.Close(ctx, runID, domain.ClosePayRunRequest{RequireAllPaid: true})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PayRunStatusClosed), resp.Status)
	assert.True(t, resp.TotalPaid.Equal(decimal.NewFromInt(516375)), "got %s", resp.TotalPaid)
}

func TestPayRunService_Close_WithoutGate(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, runID)
	require.NoError(t, err)

	// Unpaid payslips are tolerated when the gate is off.
	resp, err := env.svc.Close(ctx, runID, domain.ClosePayRunRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PayRunStatusClosed), resp.Status)
	assert.True(t, resp.TotalPaid.IsZero())

	// A closed run cannot be approved or closed again.
	_, err = env.svc.Approve(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunNotDraft)
	_, err = env.svc.Close(ctx, runID, domain.ClosePayRunRequest{})
	assert.ErrorIs(t, err, domain.ErrPayRunNotApproved)
}

// ===== MUTATION GUARDS =====

func TestPayRunService_UpdateDelete_ImmutableOnceApproved(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.Approve(ctx, runID)
	require.NoError(t, err)

	title := "Renamed"
	_, err = env.svc.Update(ctx, domain.UpdatePayRunRequest{ID: runID, Title: &title})
	assert.ErrorIs(t, err, domain.ErrPayRunImmutable)

	err = env.svc.Delete(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunImmutable)
}

func TestPayRunService_Delete_Draft(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, runID))
	_, err = env.svc.Get(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunNotFound)
}

// ===== PAYMENTS =====

func TestPayRunService_RecordPayment(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, runID)
	require.NoError(t, err)

	slips, err := env.svc.ListPayslips(ctx, runID)
	require.NoError(t, err)
	target := slips[0]

	half := target.NetAmount.Div(decimal.NewFromInt(2)).Round(2)
	partial, err := env.svc.RecordPayment(ctx, target.ID, domain.RecordPaymentRequest{Amount: half})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PayslipStatusPartial), partial.Status)
	assert.True(t, partial.AmountPaid.Equal(half))

	full, err := env.svc.RecordPayment(ctx, target.ID, domain.RecordPaymentRequest{Amount: target.NetAmount.Sub(half)})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PayslipStatusPaid), full.Status)
	assert.True(t, full.AmountPaid.Equal(target.NetAmount))

	// A settled payslip takes no further payments.
	_, err = env.svc.RecordPayment(ctx, target.ID, domain.RecordPaymentRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrPayslipNotPayable)

	// The run's paid total follows the payments.
	run, err := env.svc.Get(ctx, runID)
	require.NoError(t, err)
	assert.True(t, run.TotalPaid.Equal(target.NetAmount))
}

func TestPayRunService_RecordPayment_ArchivedPayslip(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	slips, err := env.svc.ListPayslips(ctx, runID)
	require.NoError(t, err)

	// Draft payslips are not payable before approval.
	_, err = env.svc.RecordPayment(ctx, slips[0].ID, domain.RecordPaymentRequest{Amount: decimal.NewFromInt(1000)})
	assert.ErrorIs(t, err, domain.ErrPayslipNotPayable)
}

// ===== TOTALS & QUERIES =====

func TestPayRunService_RecalculateTotals(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	_, err := env.svc.GeneratePayslips(ctx, runID)
	require.NoError(t, err)

	// Wipe stored totals, then rebuild them from the payslips.
	require.NoError(t, env.payRunRepo.SetTotals(ctx, runID, testCompanyID, domain.PayRunTotals{
		Gross: decimal.Zero, Net: decimal.Zero, Paid: decimal.Zero,
	}))

	resp, err := env.svc.RecalculateTotals(ctx, runID)
	require.NoError(t, err)
	assert.True(t, resp.TotalGross.Equal(decimal.NewFromInt(607500)), "got %s", resp.TotalGross)
	assert.True(t, resp.TotalNet.Equal(decimal.NewFromInt(516375)), "got %s", resp.TotalNet)
}

func TestPayRunService_ListOverlapping(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil, nil)
	ctx := claimsContext(t, testCompanyID, testUserID)

	_, err := env.svc.Create(ctx, domain.CreatePayRunRequest{
		Title: "June", PeriodStart: "2025-06-01", PeriodEnd: "2025-06-30",
	})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, domain.CreatePayRunRequest{
		Title: "July", PeriodStart: "2025-07-01", PeriodEnd: "2025-07-31",
	})
	require.NoError(t, err)

	overlapping, err := env.svc.ListOverlapping(ctx, "2025-06-15", "2025-07-05")
	require.NoError(t, err)
	assert.Len(t, overlapping, 2)

	overlapping, err = env.svc.ListOverlapping(ctx, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.Empty(t, overlapping)

	_, err = env.svc.ListOverlapping(ctx, "2025-08-31", "2025-08-01")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestPayRunService_TenantIsolation(t *testing.T) {
	t.Parallel()
	env := generationFixture()
	ctx := claimsContext(t, testCompanyID, testUserID)
	runID := createDraftRun(t, env, ctx)

	otherCtx := claimsContext(t, "99999999-9999-9999-9999-999999999999", testUserID)
	_, err := env.svc.Get(otherCtx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunNotFound)

	_, err = env.svc.GeneratePayslips(otherCtx, runID)
	assert.ErrorIs(t, err, domain.ErrPayRunNotFound)
}
