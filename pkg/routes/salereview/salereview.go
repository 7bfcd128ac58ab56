// Package salereview handles the manual review API for ambiguous sale rows.
package salereview

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/household"
	"github.com/Ramsey-B/clover/internal/repositories/sale"
	"github.com/Ramsey-B/clover/internal/repositories/salereview"
	"github.com/Ramsey-B/clover/pkg/appcontext"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Handler handles sale review routes
type Handler struct {
	logger     ectologger.Logger
	reviews    *salereview.Repository
	households *household.Repository
	sales      *sale.Repository
}

// NewHandler creates a new sale review handler
func NewHandler(logger ectologger.Logger, reviews *salereview.Repository, households *household.Repository, sales *sale.Repository) *Handler {
	return &Handler{
		logger:     logger,
		reviews:    reviews,
		households: households,
		sales:      sales,
	}
}

// Register registers sale review routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.ListPending)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
}

// ListPending lists the agency's open reviews
func (h *Handler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()
	agencyID := appcontext.GetAgencyID(ctx)
	if agencyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "agency scope is required")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = parsed
	}

	reviews, err := h.reviews.ListPending(ctx, agencyID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}

// ApproveRequest selects the candidate household a reviewer matched the row to
type ApproveRequest struct {
	HouseholdID string `json:"household_id"`
}

// Approve resolves a review against a chosen candidate household. The sales
// parked on the placeholder move to the chosen household, which is marked sold.
func (h *Handler) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	agencyID := appcontext.GetAgencyID(ctx)
	if agencyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "agency scope is required")
	}

	reviewID := c.Param("id")

	var req ApproveRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.HouseholdID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "household_id is required")
	}

	review, err := h.reviews.GetByID(ctx, agencyID, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "review not found")
	}

	resolvedBy := appcontext.GetUserID(ctx)
	var resolvedByPtr *string
	if resolvedBy != "" {
		resolvedByPtr = &resolvedBy
	}

	if err := h.reviews.UpdateStatus(ctx, agencyID, reviewID, models.SaleReviewStatusApproved, resolvedByPtr); err != nil {
		return err
	}

	if err := h.sales.ReassignHousehold(ctx, agencyID, review.PlaceholderHouseholdID, req.HouseholdID); err != nil {
		return err
	}

	update := models.HouseholdSaleUpdate{
		Status: models.HouseholdStatusSold,
		SoldAt: &review.Row.SaleDate,
	}
	if err := h.households.UpdateOnSale(ctx, agencyID, req.HouseholdID, update); err != nil {
		return err
	}

	// TODO: merge the placeholder household's contact into the approved household.

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"agency_id":    agencyID,
		"review_id":    reviewID,
		"household_id": req.HouseholdID,
	}).Info("Sale review approved")

	return c.JSON(http.StatusOK, map[string]string{"status": models.SaleReviewStatusApproved})
}

// Reject resolves a review by keeping the placeholder household. The
// placeholder stays flagged needs_attention for later cleanup.
func (h *Handler) Reject(c echo.Context) error {
	ctx := c.Request().Context()
	agencyID := appcontext.GetAgencyID(ctx)
	if agencyID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "agency scope is required")
	}

	reviewID := c.Param("id")

	resolvedBy := appcontext.GetUserID(ctx)
	var resolvedByPtr *string
	if resolvedBy != "" {
		resolvedByPtr = &resolvedBy
	}

	if err := h.reviews.UpdateStatus(ctx, agencyID, reviewID, models.SaleReviewStatusRejected, resolvedByPtr); err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"agency_id": agencyID,
		"review_id": reviewID,
	}).Info("Sale review rejected")

	return c.JSON(http.StatusOK, map[string]string{"status": models.SaleReviewStatusRejected})
}
