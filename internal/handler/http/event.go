package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/event"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
)

type EventHandler interface {
	ListEvents(w http.ResponseWriter, r *http.Request)
	GetEvent(w http.ResponseWriter, r *http.Request)
	CreateEvent(w http.ResponseWriter, r *http.Request)
	UpdateEvent(w http.ResponseWriter, r *http.Request)
	DeleteEvent(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	eventService event.EventService
}

func NewEventHandler(eventService event.EventService) EventHandler {
	return &eventHandlerImpl{eventService: eventService}
}

func (h *eventHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := event.EventFilter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	resp, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *eventHandlerImpl) GetEvent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eventService.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *eventHandlerImpl) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req event.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateEvent decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.eventService.CreateEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Event created", resp)
}

func (h *eventHandlerImpl) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req event.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateEvent decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.eventService.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Event updated", resp)
}

func (h *eventHandlerImpl) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Event deleted", nil)
}
