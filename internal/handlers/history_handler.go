package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "treasury/internal/errors"
	"treasury/internal/pagination"
	"treasury/internal/services"
)

// HistoryHandler handles valuation history requests.
type HistoryHandler struct {
	historyService services.HistoryServicer
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService services.HistoryServicer) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// GetHistory returns the user's valuation history, newest first.
// @Summary     Get history
// @Description Get paginated valuation history points
// @Tags        history
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.HistoryPoint] "Paginated history"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.historyService.List(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChart returns the trend series for the selected display currency.
// @Summary     Get chart series
// @Description Get the history trend series in USD or CNY; fewer than two points is reported as not renderable
// @Tags        history
// @Produce     json
// @Security    BearerAuth
// @Param       currency query string false "Display currency: USD (default) or CNY"
// @Success     200 {object} services.ChartSeries "Chart series"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /history/chart [get]
func (h *HistoryHandler) GetChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	series, err := h.historyService.ChartSeries(userID, c.DefaultQuery("currency", "USD"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}
