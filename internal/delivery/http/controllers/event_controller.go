package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "echoo/internal/delivery/http/helpers"
	"echoo/internal/domain"
)

// CreateEventRequest is the request body for POST /internal/events
type CreateEventRequest struct {
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	CoverImageURL    *string    `json:"cover_image_url"`
	CoverImageWidth  *int       `json:"cover_image_width"`
	CoverImageHeight *int       `json:"cover_image_height"`
	Location         *string    `json:"location"`
	Category         *string    `json:"category"`
	EventDate        *time.Time `json:"event_date"`
	FotoOwlEventID   *int64     `json:"fotoowl_event_id"`
	FotoOwlEventKey  *string    `json:"fotoowl_event_key"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.FotoOwlEventID != nil && *c.FotoOwlEventID <= 0 {
		errs = append(errs, "fotoowl_event_id must be a positive integer")
	}
	return errs
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event, optionally linked to a match-provider event via fotoowl_event_id and fotoowl_event_key. The provider key is never returned in responses.
// @Tags internal
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event := &domain.Event{
		Name:             req.Name,
		Description:      req.Description,
		CoverImageURL:    req.CoverImageURL,
		CoverImageWidth:  req.CoverImageWidth,
		CoverImageHeight: req.CoverImageHeight,
		Location:         req.Location,
		Category:         req.Category,
		EventDate:        req.EventDate,
		FotoOwlEventID:   req.FotoOwlEventID,
		FotoOwlEventKey:  req.FotoOwlEventKey,
	}
	created, err := c.Service.Create(r.Context(), event)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListEvents godoc
// @Summary List events
// @Description Public listing of events, newest event date first.
// @Tags events
// @Produce json
// @Param limit query int false "Max rows" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /getEventList [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := h.QueryInt(r, "limit", 0)
	offset := h.QueryInt(r, "offset", 0)
	events, err := c.Service.List(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by id
// @Tags events
// @Produce json
// @Param id path int true "Event id"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /getEventList/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "id must be an integer")
		return
	}
	event, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}
