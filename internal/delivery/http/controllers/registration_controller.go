package controllers

import (
	"log/slog"
	"net/http"

	h "echoo/internal/delivery/http/helpers"
	"echoo/internal/delivery/http/middleware"
	"echoo/internal/domain"
)

// RegisterEventRequest is the request body for POST /register-event
type RegisterEventRequest struct {
	EventID int64 `json:"event_id"`
}

// Validate implements Validator.
func (r RegisterEventRequest) Validate() []string {
	var errs []string
	if r.EventID <= 0 {
		errs = append(errs, "event_id must be a positive integer")
	}
	return errs
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterEvent godoc
// @Summary Register for an event
// @Description Submit the authenticated user's selfie to the match provider for the given provider event and persist the returned correlation identifiers. The user must have a selfie on file and must not already be registered for the event.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterEventRequest true "Provider event id"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no event with a provider key)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered)"
// @Failure 412 {object} helpers.APIResponse "error.code: precondition_failed (no selfie on file)"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable (provider unreachable)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /register-event [post]
func (c *RegistrationController) RegisterEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RegisterEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.Register(r.Context(), userID, req.EventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// MatchedImageList godoc
// @Summary List my matched images for an event
// @Description Fetch the provider's match list for the authenticated user's registration and merge it against locally-mirrored images, preserving provider order. Matches not yet mirrored appear as placeholder entries with id null and the provider's URL as image_url. page is zero-based; page_size -1 requests all images.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param event_id query int true "Provider event id"
// @Param page query int false "Zero-based page" default(0)
// @Param page_size query int false "Page size; -1 for all" default(20)
// @Success 200 {object} helpers.APIResponse "data contains the matched image list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (not registered for the event)"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable (provider unreachable)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /get-event-matched-image-list [get]
func (c *RegistrationController) MatchedImageList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := h.QueryInt64(r, "event_id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "event_id query parameter is required")
		return
	}
	page := h.QueryInt(r, "page", 0)
	pageSize := h.QueryInt(r, "page_size", 20)
	images, err := c.Service.ListMatchedImages(r.Context(), userID, eventID, page, pageSize)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, images)
}

// GetRegistration godoc
// @Summary Get my registration for an event
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param event_id path int true "Provider event id"
// @Success 200 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registration/{event_id} [get]
func (c *RegistrationController) GetRegistration(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, ok := h.PathInt64(r, "event_id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "event_id must be an integer")
		return
	}
	reg, err := c.Service.GetRegistration(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, reg)
}

// MyRegistrations godoc
// @Summary List my registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /my-registrations [get]
func (c *RegistrationController) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, regs)
}

// MyRegisteredEvents godoc
// @Summary List my registered events
// @Description Return the authenticated user's registrations together with the local event row, when one exists for the same provider event id.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains registrations with their events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /my-registered-events [get]
func (c *RegistrationController) MyRegisteredEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMyRegisteredEvents(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}
