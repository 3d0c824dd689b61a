package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
	"github.com/teranga-hr/payroll-backend-go/internal/handler/http/response"
)

type PayRunHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListOverlapping(w http.ResponseWriter, r *http.Request)
	GeneratePayslips(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Close(w http.ResponseWriter, r *http.Request)
	RecalculateTotals(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
	RecordPayment(w http.ResponseWriter, r *http.Request)
}

type PayRunHandlerImpl struct {
	payRunService payrun.PayRunService
}

func NewPayRunHandler(payRunService payrun.PayRunService) PayRunHandler {
	return &PayRunHandlerImpl{payRunService: payRunService}
}

func (h *PayRunHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payrun.CreatePayRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payRunService.Create(r.Context(), req)
	if err != nil {
		slog.Error("Failed to create pay run", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Pay run created successfully", result)
}

func (h *PayRunHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRunService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayRunHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payrun.PayRunFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.payRunService.List(r.Context(), filter)
	if err != nil {
		slog.Error("Failed to list pay runs", "error", err)
		response.HandleError(w, err)
		return
	}

	totalPages := int(result.TotalCount) / result.Limit
	if int(result.TotalCount)%result.Limit != 0 {
		totalPages++
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *PayRunHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req payrun.UpdatePayRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payRunService.Update(r.Context(), req)
	if err != nil {
		slog.Error("Failed to update pay run", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay run updated successfully", result)
}

func (h *PayRunHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.payRunService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("Failed to delete pay run", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay run deleted successfully", nil)
}

func (h *PayRunHandlerImpl) ListOverlapping(w http.ResponseWriter, r *http.Request) {
	periodStart := r.URL.Query().Get("period_start")
	periodEnd := r.URL.Query().Get("period_end")

	result, err := h.payRunService.ListOverlapping(r.Context(), periodStart, periodEnd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayRunHandlerImpl) GeneratePayslips(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRunService.GeneratePayslips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to generate payslips", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslips generated successfully", result)
}

func (h *PayRunHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRunService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to approve pay run", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay run approved successfully", result)
}

func (h *PayRunHandlerImpl) Close(w http.ResponseWriter, r *http.Request) {
	var req payrun.ClosePayRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.payRunService.Close(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("Failed to close pay run", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay run closed successfully", result)
}

func (h *PayRunHandlerImpl) RecalculateTotals(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRunService.RecalculateTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to recalculate pay run totals", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay run totals recalculated", result)
}

func (h *PayRunHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRunService.ListPayslips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayRunHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	result, err := h.payRunService.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayRunHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req payrun.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payRunService.RecordPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("Failed to record payment", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment recorded successfully", result)
}
