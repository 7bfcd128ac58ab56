// Package upload handles the sales report upload API.
package upload

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/appcontext"
	"github.com/Ramsey-B/clover/pkg/cache"
	"github.com/Ramsey-B/clover/pkg/models"
	uploadsvc "github.com/Ramsey-B/clover/pkg/upload"
)

// Handler handles upload routes
type Handler struct {
	logger   ectologger.Logger
	uploads  *uploadsvc.Service
	cache    *cache.Client
	validate *validator.Validate
}

// NewHandler creates a new upload handler
func NewHandler(logger ectologger.Logger, uploads *uploadsvc.Service, cacheClient *cache.Client) *Handler {
	return &Handler{
		logger:   logger,
		uploads:  uploads,
		cache:    cacheClient,
		validate: validator.New(),
	}
}

// Register registers upload routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.SubmitUpload)
	g.GET("/:id", h.GetUploadResult)
}

// SubmitUploadRequest is the request body for submitting a parsed sales report
type SubmitUploadRequest struct {
	UploadID string           `json:"upload_id,omitempty"`
	Rows     []models.SaleRow `json:"rows" validate:"required,min=1,dive"`
}

// SubmitUploadResponse acknowledges a queued reconciliation run
type SubmitUploadResponse struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
	Records  int    `json:"records"`
}

// SubmitUpload queues a reconciliation run for the agency's parsed report and
// returns immediately. Progress is observable through upload events and the
// result endpoint.
func (h *Handler) SubmitUpload(c echo.Context) error {
	ctx := c.Request().Context()
	agencyID := appcontext.GetAgencyID(ctx)
	if agencyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "agency scope is required")
	}

	var req SubmitUploadRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid upload: %v", err)
	}

	if req.UploadID == "" {
		req.UploadID = uuid.NewString()
	}

	uctx := models.UploadContext{
		AgencyID:        agencyID,
		UploadID:        req.UploadID,
		RequestedBy:     appcontext.GetUserID(ctx),
		RequestedByName: appcontext.GetUserName(ctx),
	}

	h.uploads.Submit(ctx, uctx, req.Rows)

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"agency_id": agencyID,
		"upload_id": req.UploadID,
		"rows":      len(req.Rows),
	}).Info("Queued reconciliation run")

	return c.JSON(http.StatusAccepted, SubmitUploadResponse{
		UploadID: req.UploadID,
		Status:   "processing",
		Records:  len(req.Rows),
	})
}

// GetUploadResult returns the run's latest snapshot. In-flight runs have a
// zero completed_at; 404 means the upload is unknown or the result expired.
func (h *Handler) GetUploadResult(c echo.Context) error {
	ctx := c.Request().Context()
	agencyID := appcontext.GetAgencyID(ctx)
	if agencyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "agency scope is required")
	}

	uploadID := c.Param("id")
	result, err := h.cache.GetUploadResult(ctx, agencyID, uploadID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load upload result")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "upload result not found")
	}

	return c.JSON(http.StatusOK, result)
}
