package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"vistoria/internal/calendar/service"
	apperrors "vistoria/pkg/errors"
	httputil "vistoria/pkg/http"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"
)

type CalendarHandler struct {
	service service.CalendarService
	log     *logger.Logger
}

func NewCalendarHandler(service service.CalendarService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		log:     log,
	}
}

func (h *CalendarHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, to, err := httputil.ExtractTimeRange(r)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	view, err := h.service.Calendar(r.Context(), from, to)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	if err := httputil.WriteVersioned(w, view.Events, view.Version); err != nil {
		h.log.Error("failed to write versioned response", "handler", "Calendar", "operation", "WriteVersioned", "error", err)
	}
}

func (h *CalendarHandler) Schedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ScheduleRequest
	if !h.decode(w, r, "Schedule", &req) {
		return
	}

	booking, err := h.service.Schedule(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Schedule", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Schedule", "operation", "WriteCreated", "error", err)
	}
}

func (h *CalendarHandler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.MoveRequest
	if !h.decode(w, r, "Move", &req) {
		return
	}

	booking, err := h.service.Move(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Move", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Move", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	confirmed, err := httputil.ExtractBool(r, "confirm")
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), confirmed); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) Checklist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	checklist, err := h.service.Checklist(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Checklist", err)
		return
	}

	if err := httputil.WriteSuccess(w, checklist); err != nil {
		h.log.Error("failed to write success response", "handler", "Checklist", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) Available(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.AvailableEquipment(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Available", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Dashboard(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Dashboard", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) Audit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.Audit(r.Context())
	if err != nil {
		h.writeError(w, "Audit", err)
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "Audit", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) Acknowledge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transition, err := h.service.Acknowledge(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Acknowledge", err)
		return
	}

	if err := httputil.WriteSuccess(w, transition); err != nil {
		h.log.Error("failed to write success response", "handler", "Acknowledge", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) decode(w http.ResponseWriter, r *http.Request, handler string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
		}
		return false
	}
	return true
}

func (h *CalendarHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if kind := apperrors.AsAppError(err).Kind(); kind != "" {
		h.log.Info("Calendar request not applied", "handler", handler, "kind", kind)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/calendar", h.Calendar)
	router.POST("/api/v1/bookings", h.Schedule)
	router.PATCH("/api/v1/bookings/:id", h.Move)
	router.DELETE("/api/v1/bookings/:id", h.Cancel)
	router.GET("/api/v1/bookings/:id/checklist", h.Checklist)
	router.GET("/api/v1/equipment/available", h.Available)
	router.GET("/api/v1/dashboard", h.Dashboard)
	router.GET("/api/v1/reconciliation", h.Audit)
	router.POST("/api/v1/reconciliation/:id/ack", h.Acknowledge)
}
