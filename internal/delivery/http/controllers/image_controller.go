package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "echoo/internal/delivery/http/helpers"
	"echoo/internal/delivery/http/middleware"
	"echoo/internal/domain"
)

// CreateImageRequest is the request body for POST /internal/images. When
// is_selfie is true and user_id is set, the owner's selfie reference is
// updated together with the image row.
type CreateImageRequest struct {
	Name           string  `json:"name"`
	UserID         *int64  `json:"user_id"`
	FotoOwlImageID *int64  `json:"fotoowl_image_id"`
	FotoOwlURL     *string `json:"fotoowl_url"`
	FilecoinURL    *string `json:"filecoin_url"`
	FilecoinCID    *string `json:"cid"`
	Size           *int64  `json:"size"`
	Width          *int    `json:"width"`
	Height         *int    `json:"height"`
	Description    *string `json:"description"`
	ImageEncoding  *string `json:"image_encoding"`
	EventID        *int64  `json:"event_id"`
	IsSelfie       bool    `json:"is_selfie"`
}

// Validate implements Validator.
func (c CreateImageRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.IsSelfie && c.UserID == nil {
		errs = append(errs, "user_id is required when is_selfie is true")
	}
	return errs
}

// UpdateImageRequest is the request body for PUT /internal/images/{id}.
// Only fields present in the body are applied.
type UpdateImageRequest struct {
	domain.ImagePatch
	IsSelfie bool `json:"is_selfie"`
}

type ImageController struct {
	Logger  *slog.Logger
	Service domain.ImageService
}

func NewImageController(logger *slog.Logger, svc domain.ImageService) *ImageController {
	return &ImageController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateImage godoc
// @Summary Ingest an image
// @Description Store an image record, typically pushed by the mirroring pipeline. With is_selfie true the owning user's selfie reference is set in the same transaction.
// @Tags internal
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param body body CreateImageRequest true "Image data"
// @Success 201 {object} helpers.APIResponse "data contains the created image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/images [post]
func (c *ImageController) CreateImage(w http.ResponseWriter, r *http.Request) {
	var req CreateImageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	image := &domain.Image{
		Name:           req.Name,
		UserID:         req.UserID,
		FotoOwlImageID: req.FotoOwlImageID,
		FotoOwlURL:     req.FotoOwlURL,
		FilecoinURL:    req.FilecoinURL,
		FilecoinCID:    req.FilecoinCID,
		Size:           req.Size,
		Width:          req.Width,
		Height:         req.Height,
		Description:    req.Description,
		ImageEncoding:  req.ImageEncoding,
		EventID:        req.EventID,
	}
	created, err := c.Service.Create(r.Context(), image, req.IsSelfie)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

// UpdateImage godoc
// @Summary Update an image
// @Description Apply a partial update to an image record, typically to attach the mirror URL and CID once mirroring completes. With is_selfie true the owning user's selfie reference is refreshed in the same transaction.
// @Tags internal
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path int true "Image id"
// @Param body body UpdateImageRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/images/{id} [put]
func (c *ImageController) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "id must be an integer")
		return
	}
	var req UpdateImageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	updated, err := c.Service.Update(r.Context(), id, &req.ImagePatch, req.IsSelfie)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, updated)
}

// GetImage godoc
// @Summary Get an image by id
// @Tags internal
// @Produce json
// @Security BasicAuth
// @Param id path int true "Image id"
// @Success 200 {object} helpers.APIResponse "data contains the image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/images/{id} [get]
func (c *ImageController) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "id must be an integer")
		return
	}
	image, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, image)
}

// ListMyImages godoc
// @Summary List my images
// @Description Return the authenticated user's locally-stored images, newest first, with the derived image_url populated. Optionally filtered by event.
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param event_id query int false "Filter by event id"
// @Param limit query int false "Max rows"
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} helpers.APIResponse "data contains the images"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /getImageList [get]
func (c *ImageController) ListMyImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var filter domain.ImageListFilter
	if eventID, ok := h.QueryInt64(r, "event_id"); ok {
		filter.EventID = &eventID
	}
	if limit := h.QueryInt(r, "limit", 0); limit > 0 {
		filter.Limit = &limit
	}
	filter.Offset = h.QueryInt(r, "offset", 0)
	images, err := c.Service.ListForUser(r.Context(), userID, filter)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, images)
}
