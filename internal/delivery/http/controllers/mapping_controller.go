package controllers

import (
	"log/slog"
	"net/http"

	h "echoo/internal/delivery/http/helpers"
	"echoo/internal/domain"
)

// BulkMappingRequest is the request body for POST /internal/fotoowl-request-mapping/bulk
type BulkMappingRequest struct {
	Mappings []*domain.RegionMapping `json:"mappings"`
}

// Validate implements Validator.
func (b BulkMappingRequest) Validate() []string {
	var errs []string
	if len(b.Mappings) == 0 {
		errs = append(errs, "mappings must not be empty")
	}
	for _, m := range b.Mappings {
		if m == nil {
			errs = append(errs, "mappings must not contain null entries")
			break
		}
		if m.EventID <= 0 || m.RequestID <= 0 {
			errs = append(errs, "every mapping needs positive fotoowl_event_id and fotoowl_request_id")
			break
		}
	}
	return errs
}

type MappingController struct {
	Logger  *slog.Logger
	Service domain.MappingService
}

func NewMappingController(logger *slog.Logger, svc domain.MappingService) *MappingController {
	return &MappingController{
		Logger:  logger,
		Service: svc,
	}
}

// BulkInsert godoc
// @Summary Bulk-ingest region mappings
// @Description Insert region mapping rows in bulk. Rows whose (event_id, index_num, request_id) key already exists, or that repeat a key within the batch, are skipped; the rest are inserted atomically. The response reports exact received, inserted and skipped counts plus the skipped keys, with received = inserted + skipped.
// @Tags internal
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param body body BulkMappingRequest true "Mapping rows"
// @Success 200 {object} helpers.APIResponse "data contains the bulk-insert counts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/fotoowl-request-mapping/bulk [post]
func (c *MappingController) BulkInsert(w http.ResponseWriter, r *http.Request) {
	var req BulkMappingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.BulkInsert(r.Context(), req.Mappings)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListByEvent godoc
// @Summary List region mappings for an event
// @Tags internal
// @Produce json
// @Security BasicAuth
// @Param event_id path int true "Provider event id"
// @Success 200 {object} helpers.APIResponse "data contains the mappings, ordered by index_num"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/fotoowl-request-mapping/event/{event_id} [get]
func (c *MappingController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathInt64(r, "event_id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "event_id must be an integer")
		return
	}
	mappings, err := c.Service.ListByEventID(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, mappings)
}

// GetMapping godoc
// @Summary Get a region mapping by id
// @Tags internal
// @Produce json
// @Security BasicAuth
// @Param mapping_id path int true "Mapping id"
// @Success 200 {object} helpers.APIResponse "data contains the mapping"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/fotoowl-request-mapping/{mapping_id} [get]
func (c *MappingController) GetMapping(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "mapping_id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "mapping_id must be an integer")
		return
	}
	mapping, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, mapping)
}

// DeleteByEvent godoc
// @Summary Delete region mappings for an event
// @Tags internal
// @Produce json
// @Security BasicAuth
// @Param event_id path int true "Provider event id"
// @Success 200 {object} helpers.APIResponse "data contains the deleted row count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/fotoowl-request-mapping/event/{event_id} [delete]
func (c *MappingController) DeleteByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathInt64(r, "event_id")
	if !ok {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "event_id must be an integer")
		return
	}
	deleted, err := c.Service.DeleteByEventID(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
