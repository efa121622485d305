package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"treasury/internal/services"
)

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	refreshService services.RefreshServicer
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(refreshService services.RefreshServicer) *RefreshHandler {
	return &RefreshHandler{refreshService: refreshService}
}

// Refresh triggers one refresh cycle for the authenticated user.
// @Summary     Refresh market data
// @Description Fetch prices and rates from the provider and reconcile them onto the user's holdings. A refresh already in flight is reported as skipped, not queued.
// @Tags        refresh
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.RefreshResult "Refresh outcome"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /refresh [post]
func (h *RefreshHandler) Refresh(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.refreshService.Refresh(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if result.Skipped {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

// RefreshAll triggers a refresh for every user with holdings. Guarded by
// the pipeline API key, mirroring a scheduled run.
// @Summary     Refresh all users
// @Description Run the refresh pipeline for every user with holdings (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} services.BatchRefreshResult "Batch outcome"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/refresh [post]
func (h *RefreshHandler) RefreshAll(c *gin.Context) {
	result, err := h.refreshService.RefreshAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
