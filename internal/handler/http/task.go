package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/task"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
)

type TaskHandler interface {
	ListTasks(w http.ResponseWriter, r *http.Request)
	GetTask(w http.ResponseWriter, r *http.Request)
	CreateTask(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
	DeleteTask(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.TaskService
}

func NewTaskHandler(taskService task.TaskService) TaskHandler {
	return &taskHandlerImpl{taskService: taskService}
}

func (h *taskHandlerImpl) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := task.TaskFilter{
		Status:     optionalQuery(r, "status"),
		AssigneeID: optionalQuery(r, "assignee_id"),
		Page:       intQuery(r, "page"),
		Limit:      intQuery(r, "limit"),
	}

	resp, err := h.taskService.ListTasks(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, resp.Tasks, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: resp.TotalPages,
	})
}

func (h *taskHandlerImpl) GetTask(w http.ResponseWriter, r *http.Request) {
	resp, err := h.taskService.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *taskHandlerImpl) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateTask decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.taskService.CreateTask(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created", resp)
}

func (h *taskHandlerImpl) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateTask decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.taskService.UpdateTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task updated", resp)
}

func (h *taskHandlerImpl) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task deleted", nil)
}
