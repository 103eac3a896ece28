package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"vistoria/internal/equipment/service"
	httputil "vistoria/pkg/http"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"
)

type EquipmentHandler struct {
	service service.EquipmentService
	log     *logger.Logger
}

func NewEquipmentHandler(service service.EquipmentService, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		service: service,
		log:     log,
	}
}

func (h *EquipmentHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.EquipmentRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	equipment, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, equipment); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *EquipmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetByID", "operation", "WriteJSON", "error", err)
		}
		return
	}

	equipment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	equipment, err := h.service.GetAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) SetInspected(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var toggle model.ChecklistToggle
	if err := json.NewDecoder(r.Body).Decode(&toggle); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetInspected", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	equipment, err := h.service.SetInspected(r.Context(), id, &toggle)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetInspected", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "SetInspected", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/equipment", h.Register)
	router.GET("/api/v1/equipment", h.GetAll)
	router.GET("/api/v1/equipment/id/:id", h.GetByID)
	router.PATCH("/api/v1/equipment/id/:id/checklist", h.SetInspected)
}
