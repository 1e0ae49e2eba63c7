package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/employee"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
)

type EmployeeHandler interface {
	ListEmployees(w http.ResponseWriter, r *http.Request)
	ApproveEmployee(w http.ResponseWriter, r *http.Request)
	RejectEmployee(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// ListEmployees implements EmployeeHandler. ?status=pending lists the approval queue.
func (h *employeeHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	filter := user.UserFilter{
		Status: optionalQuery(r, "status"),
		Role:   optionalQuery(r, "role"),
		Search: optionalQuery(r, "search"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := h.employeeService.ListEmployees(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, resp.Users, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: resp.TotalPages,
	})
}

// ApproveEmployee implements EmployeeHandler.
func (h *employeeHandlerImpl) ApproveEmployee(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.ApproveEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee approved", resp)
}

// RejectEmployee implements EmployeeHandler. The body is optional.
func (h *employeeHandlerImpl) RejectEmployee(w http.ResponseWriter, r *http.Request) {
	var req employee.RejectRequest
	if err := decodeOptional(r, &req); err != nil {
		slog.Error("RejectEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := h.employeeService.RejectEmployee(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee rejected", resp)
}
