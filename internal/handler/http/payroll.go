package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	ExportReport(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

func summaryFilter(r *http.Request) payroll.SummaryFilter {
	q := r.URL.Query()
	return payroll.SummaryFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}
}

func (h *payrollHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateSettings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.payrollService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll settings updated", resp)
}

func (h *payrollHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.GetSummary(r.Context(), summaryFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ExportReport renders into a buffer first so errors can still produce a JSON response.
func (h *payrollHandlerImpl) ExportReport(w http.ResponseWriter, r *http.Request) {
	filter := summaryFilter(r)

	var buf bytes.Buffer
	if err := h.payrollService.ExportReport(r.Context(), filter, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("payroll_%s_%s.csv", filter.StartDate, filter.EndDate)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Failed to write payroll report", "error", err)
	}
}
