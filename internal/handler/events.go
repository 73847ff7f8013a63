package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/model"
	"github.com/sportevents/backend/internal/service"
)

type EventHandler struct {
	svc *service.EventService
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create godoc
// @Summary Create a sport event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateEventRequest true "Event"
// @Success 201 {object} model.SportEvent
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req model.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.svc.Create(c.Request.Context(), GetAuthUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// List godoc
// @Summary List sport events, newest first
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.SportEvent
// @Failure 401 {object} model.ErrorResponse
// @Router /api/events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Get godoc
// @Summary Get a sport event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} model.SportEvent
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	event, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Update godoc
// @Summary Update a sport event
// @Description Only the creator may update. Omitted fields keep their value.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body model.UpdateEventRequest true "Fields to change"
// @Success 200 {object} model.SportEvent
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req model.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.svc.Update(c.Request.Context(), GetAuthUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Delete godoc
// @Summary Delete a sport event
// @Description Only the creator may delete.
// @Tags events
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 204
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), GetAuthUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, service.ValidationError("Invalid event ID", err))
		return uuid.Nil, false
	}
	return id, true
}
