package payrun

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/validator"
)

// ========== PAY RUN DTOs ==========

type CreatePayRunRequest struct {
	Title          string `json:"title"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	DeductionModel string `json:"deduction_model,omitempty"`
	EagerGenerate  bool   `json:"eager_generate,omitempty"`
}

func (r *CreatePayRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "is required"})
	}

	start, okStart := validator.IsValidDate(r.PeriodStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, okEnd := validator.IsValidDate(r.PeriodEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if okStart && okEnd && !start.Before(end) {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be before period_end"})
	}

	if r.DeductionModel != "" && !validator.IsInSlice(r.DeductionModel, []string{string(DeductionModelStatutory), string(DeductionModelContribution)}) {
		errs = append(errs, validator.ValidationError{Field: "deduction_model", Message: "must be 'statutory' or 'contribution'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePayRunRequest struct {
	ID          string
	Title       *string `json:"title,omitempty"`
	PeriodStart *string `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end,omitempty"`
}

func (r *UpdatePayRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Title != nil && validator.IsEmpty(*r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "must not be empty"})
	}
	if r.PeriodStart != nil {
		if _, ok := validator.IsValidDate(*r.PeriodStart); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}
	if r.PeriodEnd != nil {
		if _, ok := validator.IsValidDate(*r.PeriodEnd); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClosePayRunRequest struct {
	RequireAllPaid bool `json:"require_all_paid,omitempty"`
}

type PayRunResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	PeriodStart    string          `json:"period_start"`
	PeriodEnd      string          `json:"period_end"`
	Status         string          `json:"status"`
	DeductionModel string          `json:"deduction_model"`
	TotalGross     decimal.Decimal `json:"total_gross"`
	TotalNet       decimal.Decimal `json:"total_net"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	CreatedByID    string          `json:"created_by_id"`
	ApprovedByID   *string         `json:"approved_by_id,omitempty"`
	ApprovedAt     *string         `json:"approved_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type CreatePayRunResponse struct {
	PayRun     PayRunResponse  `json:"pay_run"`
	Generation *GenerateResult `json:"generation,omitempty"`
}

type ApprovePayRunResponse struct {
	PayRun        PayRunResponse `json:"pay_run"`
	PayslipsCount int            `json:"payslips_count"`
}

type PayRunFilter struct {
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

type ListPayRunResponse struct {
	Data       []PayRunResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	ID               string              `json:"id"`
	PayRunID         string              `json:"pay_run_id"`
	EmployeeID       string              `json:"employee_id"`
	EmployeeName     string              `json:"employee_name,omitempty"`
	EmployeeCode     string              `json:"employee_code,omitempty"`
	PayslipNumber    string              `json:"payslip_number"`
	GrossAmount      decimal.Decimal     `json:"gross_amount"`
	TotalDeductions  decimal.Decimal     `json:"total_deductions"`
	NetAmount        decimal.Decimal     `json:"net_amount"`
	AmountPaid       decimal.Decimal     `json:"amount_paid"`
	DaysWorked       int                 `json:"days_worked"`
	DaysPresent      int                 `json:"days_present"`
	DaysAbsent       int                 `json:"days_absent"`
	DaysLate         int                 `json:"days_late"`
	HoursWorked      decimal.Decimal     `json:"hours_worked"`
	TotalLateMinutes int                 `json:"total_late_minutes"`
	OvertimeHours    decimal.Decimal     `json:"overtime_hours"`
	OvertimeAmount   decimal.Decimal     `json:"overtime_amount"`
	BonusAmount      decimal.Decimal     `json:"bonus_amount"`
	Status           string              `json:"status"`
	Deductions       []DeductionResponse `json:"deductions,omitempty"`
}

type DeductionResponse struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r *RecordPaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== GENERATION DTOs ==========

// GenerateResult summarizes a batch generation run. Per-employee
// failures are reported here instead of aborting the batch.
type GenerateResult struct {
	Generated []PayslipResponse `json:"generated"`
	Errors    []GenerationError `json:"errors"`
	Totals    GenerationTotals  `json:"totals"`
}

type GenerationError struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
}

type GenerationTotals struct {
	Gross      decimal.Decimal `json:"gross"`
	Net        decimal.Decimal `json:"net"`
	Deductions decimal.Decimal `json:"deductions"`
}

// ========== MAPPERS ==========

func ToPayRunResponse(p PayRun) PayRunResponse {
	var approvedAt *string
	if p.ApprovedAt != nil {
		str := p.ApprovedAt.Format(time.RFC3339)
		approvedAt = &str
	}

	return PayRunResponse{
		ID:             p.ID,
		Title:          p.Title,
		PeriodStart:    p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:      p.PeriodEnd.Format("2006-01-02"),
		Status:         string(p.Status),
		DeductionModel: string(p.DeductionModel),
		TotalGross:     p.TotalGross,
		TotalNet:       p.TotalNet,
		TotalPaid:      p.TotalPaid,
		CreatedByID:    p.CreatedByID,
		ApprovedByID:   p.ApprovedByID,
		ApprovedAt:     approvedAt,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

func ToPayslipResponse(s Payslip, deductions []PayslipDeduction) PayslipResponse {
	employeeName := ""
	employeeCode := ""
	if s.EmployeeName != nil {
		employeeName = *s.EmployeeName
	}
	if s.EmployeeCode != nil {
		employeeCode = *s.EmployeeCode
	}

	resp := PayslipResponse{
		ID:               s.ID,
		PayRunID:         s.PayRunID,
		EmployeeID:       s.EmployeeID,
		EmployeeName:     employeeName,
		EmployeeCode:     employeeCode,
		PayslipNumber:    s.PayslipNumber,
		GrossAmount:      s.GrossAmount,
		TotalDeductions:  s.TotalDeductions,
		NetAmount:        s.NetAmount,
		AmountPaid:       s.AmountPaid,
		DaysWorked:       s.DaysWorked,
		DaysPresent:      s.DaysPresent,
		DaysAbsent:       s.DaysAbsent,
		DaysLate:         s.DaysLate,
		HoursWorked:      s.HoursWorked,
		TotalLateMinutes: s.TotalLateMinutes,
		OvertimeHours:    s.OvertimeHours,
		OvertimeAmount:   s.OvertimeAmount,
		BonusAmount:      s.BonusAmount,
		Status:           string(s.Status),
	}
	for _, d := range deductions {
		resp.Deductions = append(resp.Deductions, DeductionResponse{
			Type:        string(d.Type),
			Description: d.Description,
			Amount:      d.Amount,
		})
	}
	return resp
}
