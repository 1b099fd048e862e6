package controllers

import (
	"log/slog"
	"net/http"

	h "echoo/internal/delivery/http/helpers"
	"echoo/internal/delivery/http/middleware"
	"echoo/internal/domain"
)

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewProfileController(logger *slog.Logger, svc domain.UserService) *ProfileController {
	return &ProfileController{
		Logger:  logger,
		Service: svc,
	}
}

// GetProfile godoc
// @Summary Get my profile
// @Description Return the authenticated user's profile, including the selfie reference when one has been ingested.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update my profile
// @Description Apply a partial update to the authenticated user's profile. Only fields present in the body are changed. Setting instagram_url triggers a best-effort refresh of the user's Instagram posts; a refresh failure never fails the update.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.UserPatch true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [put]
func (c *ProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var patch domain.UserPatch
	if !h.DecodeAndValidate(w, r, &patch) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), userID, &patch)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}
