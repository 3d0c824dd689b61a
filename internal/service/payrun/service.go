package payrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/employee"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/database"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type payRunService struct {
	txManager   database.TxManager
	payRunRepo  domain.PayRunRepository
	payslipRepo domain.PayslipRepository
	generator   *Generator
}

func NewPayRunService(
	txManager database.TxManager,
	payRunRepo domain.PayRunRepository,
	payslipRepo domain.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
) domain.PayRunService {
	return &payRunService{
		txManager:   txManager,
		payRunRepo:  payRunRepo,
		payslipRepo: payslipRepo,
		generator:   NewGenerator(employeeRepo, attendanceRepo, payslipRepo),
	}
}

func claimsFrom(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to read token claims: %w", err)
	}

	companyID, _ = claims["company_id"].(string)
	userID, _ = claims["user_id"].(string)
	if companyID == "" || userID == "" {
		return "", "", errors.New("token is missing company_id or user_id claim")
	}
	return companyID, userID, nil
}

func (s *payRunService) Create(ctx context.Context, req domain.CreatePayRunRequest) (domain.CreatePayRunResponse, error) {
	companyID, userID, err := claimsFrom(ctx)
	if err != nil {
		return domain.CreatePayRunResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return domain.CreatePayRunResponse{}, err
	}

	periodStart, _ := time.Parse("2006-01-02", req.PeriodStart)
	periodEnd, _ := time.Parse("2006-01-02", req.PeriodEnd)
	if !periodStart.Before(periodEnd) {
		return domain.CreatePayRunResponse{}, domain.ErrInvalidPeriod
	}

	// A run is tagged with its deduction model at creation and keeps it
	// for life. The eager path defaults to the contribution model, the
	// standard path to statutory.
	model := domain.DeductionModel(req.DeductionModel)
	if model == "" {
		model = domain.DeductionModelStatutory
		if req.EagerGenerate {
			model = domain.DeductionModelContribution
		}
	}

	var resp domain.CreatePayRunResponse
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		run, err := s.payRunRepo.Create(ctx, domain.PayRun{
			CompanyID:      companyID,
			Title:          req.Title,
			PeriodStart:    periodStart,
			PeriodEnd:      periodEnd,
			Status:         domain.PayRunStatusDraft,
			DeductionModel: model,
			TotalGross:     decimal.Zero,
			TotalNet:       decimal.Zero,
			TotalPaid:      decimal.Zero,
			CreatedByID:    userID,
		})
		if err != nil {
			return fmt.Errorf("failed to create pay run: %w", err)
		}

		if req.EagerGenerate {
			result, err := s.generator.run(ctx, run, generationModeEager)
			if err != nil {
				return err
			}
			totals := domain.PayRunTotals{
				Gross: result.Totals.Gross,
				Net:   result.Totals.Net,
				Paid:  decimal.Zero,
			}
			if err := s.payRunRepo.SetTotals(ctx, run.ID, companyID, totals); err != nil {
				return fmt.Errorf("failed to store pay run totals: %w", err)
			}
			run.TotalGross = totals.Gross
			run.TotalNet = totals.Net
			resp.Generation = &result
		}

		resp.PayRun = domain.ToPayRunResponse(run)
		return nil
	})
	if err != nil {
		return domain.CreatePayRunResponse{}, err
	}
	return resp, nil
}

func (s *payRunService) Get(ctx context.Context, id string) (domain.PayRunResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.PayRunResponse{}, err
	}

	run, err := s.payRunRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return domain.PayRunResponse{}, err
	}
	return domain.ToPayRunResponse(run), nil
}

func (s *payRunService) List(ctx context.Context, filter domain.PayRunFilter) (domain.ListPayRunResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.ListPayRunResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	runs, total, err := s.payRunRepo.List(ctx, companyID, filter)
	if err != nil {
		return domain.ListPayRunResponse{}, err
	}

	resp := domain.ListPayRunResponse{
		Data:       make([]domain.PayRunResponse, 0, len(runs)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, run := range runs {
		resp.Data = append(resp.Data, domain.ToPayRunResponse(run))
	}
	return resp, nil
}

func (s *payRunService) Update(ctx context.Context, req domain.UpdatePayRunRequest) (domain.PayRunResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.PayRunResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return domain.PayRunResponse{}, err
	}

	run, err := s.payRunRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return domain.PayRunResponse{}, err
	}
	if run.Status != domain.PayRunStatusDraft {
		return domain.PayRunResponse{}, domain.ErrPayRunImmutable
	}

	// Period edits are checked against the resulting interval, mixing
	// updated and existing bounds.
	periodStart, periodEnd := run.PeriodStart, run.PeriodEnd
	if req.PeriodStart != nil {
		periodStart, _ = time.Parse("2006-01-02", *req.PeriodStart)
	}
	if req.PeriodEnd != nil {
		periodEnd, _ = time.Parse("2006-01-02", *req.PeriodEnd)
	}
	if !periodStart.Before(periodEnd) {
		return domain.PayRunResponse{}, domain.ErrInvalidPeriod
	}

	if err := s.payRunRepo.Update(ctx, companyID, req); err != nil {
		return domain.PayRunResponse{}, fmt.Errorf("failed to update pay run: %w", err)
	}

	updated, err := s.payRunRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return domain.PayRunResponse{}, err
	}
	return domain.ToPayRunResponse(updated), nil
}

func (s *payRunService) Delete(ctx context.Context, id string) error {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		run, err := s.payRunRepo.GetByIDForUpdate(ctx, id, companyID)
		if err != nil {
			return err
		}
		if run.Status != domain.PayRunStatusDraft {
			return domain.ErrPayRunImmutable
		}

		if err := s.payslipRepo.DeleteByPayRun(ctx, id, companyID); err != nil {
			return fmt.Errorf("failed to delete payslips: %w", err)
		}
		return s.payRunRepo.Delete(ctx, id, companyID)
	})
}

func (s *payRunService) ListOverlapping(ctx context.Context, periodStart, periodEnd string) ([]domain.PayRunResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", periodStart)
	if err != nil {
		return nil, domain.ErrInvalidPeriod
	}
	end, err := time.Parse("2006-01-02", periodEnd)
	if err != nil {
		return nil, domain.ErrInvalidPeriod
	}
	if start.After(end) {
		return nil, domain.ErrInvalidPeriod
	}

	runs, err := s.payRunRepo.FindOverlapping(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.PayRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, domain.ToPayRunResponse(run))
	}
	return resp, nil
}

// GeneratePayslips (re)generates the draft payslips of a pay run from
// current attendance. The run stays a draft; generated payslips are
// archived until approval. Calling it again replaces the previous batch.
func (s *payRunService) GeneratePayslips(ctx context.Context, payRunID string) (domain.GenerateResult, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	var result domain.GenerateResult
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		run, err := s.payRunRepo.GetByIDForUpdate(ctx, payRunID, companyID)
		if err != nil {
			return err
		}
		if run.Status != domain.PayRunStatusDraft {
			return domain.ErrPayRunNotDraft
		}

		result, err = s.generator.run(ctx, run, generationModeAttendance)
		if err != nil {
			return err
		}

		totals := domain.PayRunTotals{
			Gross: result.Totals.Gross,
			Net:   result.Totals.Net,
			Paid:  decimal.Zero,
		}
		if err := s.payRunRepo.SetTotals(ctx, payRunID, companyID, totals); err != nil {
			return fmt.Errorf("failed to store pay run totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.GenerateResult{}, err
	}
	return result, nil
}

// Approve transitions a draft run to approved and releases its archived
// payslips into the payment workflow.
func (s *payRunService) Approve(ctx context.Context, payRunID string) (domain.ApprovePayRunResponse, error) {
	companyID, userID, err := claimsFrom(ctx)
	if err != nil {
		return domain.ApprovePayRunResponse{}, err
	}

	var resp domain.ApprovePayRunResponse
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		run, err := s.payRunRepo.GetByIDForUpdate(ctx, payRunID, companyID)
		if err != nil {
			return err
		}
		switch run.Status {
		case domain.PayRunStatusApproved:
			return domain.ErrPayRunAlreadyApproved
		case domain.PayRunStatusClosed:
			return domain.ErrPayRunNotDraft
		}

		now := time.Now()
		if err := s.payRunRepo.MarkApproved(ctx, payRunID, companyID, userID, now); err != nil {
			return fmt.Errorf("failed to approve pay run: %w", err)
		}

		count, err := s.payslipRepo.UnarchiveByPayRun(ctx, payRunID, companyID)
		if err != nil {
			return fmt.Errorf("failed to release payslips: %w", err)
		}

		run.Status = domain.PayRunStatusApproved
		run.ApprovedByID = &userID
		run.ApprovedAt = &now
		resp = domain.ApprovePayRunResponse{
			PayRun:        domain.ToPayRunResponse(run),
			PayslipsCount: count,
		}
		return nil
	})
	if err != nil {
		return domain.ApprovePayRunResponse{}, err
	}
	return resp, nil
}

// Close finalizes an approved run. With RequireAllPaid set, any payslip
// that is not fully paid blocks closure.
func (s *payRunService) Close(ctx context.Context, payRunID string, req domain.ClosePayRunRequest) (domain.PayRunResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.PayRunResponse{}, err
	}

	var resp domain.PayRunResponse
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		run, err := s.payRunRepo.GetByIDForUpdate(ctx, payRunID, companyID)
		if err != nil {
			return err
		}
		if run.Status != domain.PayRunStatusApproved {
			return domain.ErrPayRunNotApproved
		}

		if req.RequireAllPaid {
			outstanding, err := s.payslipRepo.CountOutstanding(ctx, payRunID, companyID)
			if err != nil {
				return fmt.Errorf("failed to count outstanding payslips: %w", err)
			}
			if outstanding > 0 {
				return fmt.Errorf("%w: %d payslips are not fully paid", domain.ErrPayslipsOutstanding, outstanding)
			}
		}

		totals, err := s.payslipRepo.AggregateTotals(ctx, payRunID, companyID)
		if err != nil {
			return fmt.Errorf("failed to aggregate pay run totals: %w", err)
		}
		if err := s.payRunRepo.SetTotals(ctx, payRunID, companyID, totals); err != nil {
			return fmt.Errorf("failed to store pay run totals: %w", err)
		}
		if err := s.payRunRepo.MarkClosed(ctx, payRunID, companyID); err != nil {
			return fmt.Errorf("failed to close pay run: %w", err)
		}

		run.Status = domain.PayRunStatusClosed
		run.TotalGross = totals.Gross
		run.TotalNet = totals.Net
		run.TotalPaid = totals.Paid
		resp = domain.ToPayRunResponse(run)
		return nil
	})
	if err != nil {
		return domain.PayRunResponse{}, err
	}
	return resp, nil
}

// RecalculateTotals refreshes a run's stored totals from its current
// payslips without touching its status.
func (s *payRunService) RecalculateTotals(ctx context.Context, payRunID string) (domain.PayRunResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.PayRunResponse{}, err
	}

	var resp domain.PayRunResponse
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		run, err := s.payRunRepo.GetByIDForUpdate(ctx, payRunID, companyID)
		if err != nil {
			return err
		}

		totals, err := s.payslipRepo.AggregateTotals(ctx, payRunID, companyID)
		if err != nil {
			return fmt.Errorf("failed to aggregate pay run totals: %w", err)
		}
		if err := s.payRunRepo.SetTotals(ctx, payRunID, companyID, totals); err != nil {
			return fmt.Errorf("failed to store pay run totals: %w", err)
		}

		run.TotalGross = totals.Gross
		run.TotalNet = totals.Net
		run.TotalPaid = totals.Paid
		resp = domain.ToPayRunResponse(run)
		return nil
	})
	if err != nil {
		return domain.PayRunResponse{}, err
	}
	return resp, nil
}

func (s *payRunService) ListPayslips(ctx context.Context, payRunID string) ([]domain.PayslipResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.payRunRepo.GetByID(ctx, payRunID, companyID); err != nil {
		return nil, err
	}

	slips, err := s.payslipRepo.ListByPayRun(ctx, payRunID, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.PayslipResponse, 0, len(slips))
	for _, slip := range slips {
		resp = append(resp, domain.ToPayslipResponse(slip, nil))
	}
	return resp, nil
}

func (s *payRunService) GetPayslip(ctx context.Context, id string) (domain.PayslipResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.PayslipResponse{}, err
	}

	slip, err := s.payslipRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return domain.PayslipResponse{}, err
	}

	deductions, err := s.payslipRepo.ListDeductions(ctx, slip.ID)
	if err != nil {
		return domain.PayslipResponse{}, err
	}
	return domain.ToPayslipResponse(slip, deductions), nil
}

// RecordPayment applies a payment against a payslip's net amount and
// keeps the parent run's paid total in step.
func (s *payRunService) RecordPayment(ctx context.Context, payslipID string, req domain.RecordPaymentRequest) (domain.PayslipResponse, error) {
	companyID, _, err := claimsFrom(ctx)
	if err != nil {
		return domain.PayslipResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return domain.PayslipResponse{}, err
	}

	var resp domain.PayslipResponse
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		slip, err := s.payslipRepo.GetByID(ctx, payslipID, companyID)
		if err != nil {
			return err
		}
		if slip.Status != domain.PayslipStatusPending && slip.Status != domain.PayslipStatusPartial {
			return domain.ErrPayslipNotPayable
		}

		newPaid := slip.AmountPaid.Add(req.Amount)
		status := domain.PayslipStatusPartial
		if newPaid.GreaterThanOrEqual(slip.NetAmount) {
			status = domain.PayslipStatusPaid
		}

		updated, err := s.payslipRepo.UpdatePayment(ctx, payslipID, companyID, newPaid, status)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		totals, err := s.payslipRepo.AggregateTotals(ctx, slip.PayRunID, companyID)
		if err != nil {
			return fmt.Errorf("failed to aggregate pay run totals: %w", err)
		}
		if err := s.payRunRepo.SetTotals(ctx, slip.PayRunID, companyID, totals); err != nil {
			return fmt.Errorf("failed to store pay run totals: %w", err)
		}

		resp = domain.ToPayslipResponse(updated, nil)
		return nil
	})
	if err != nil {
		return domain.PayslipResponse{}, err
	}
	return resp, nil
}
