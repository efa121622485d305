package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "treasury/internal/errors"
	"treasury/internal/market"
	"treasury/internal/models"
	"treasury/internal/services"
	"treasury/internal/valuation"
)

// DashboardHandler serves the aggregate net-worth view.
type DashboardHandler struct {
	holdingService services.HoldingServicer
	userService    services.UserServicer
	store          *market.Store
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(holdingService services.HoldingServicer, userService services.UserServicer, store *market.Store) *DashboardHandler {
	return &DashboardHandler{holdingService: holdingService, userService: userService, store: store}
}

// GetDashboard returns totals, allocation, and the current rate table.
// @Summary     Get dashboard
// @Description Get portfolio totals in USD and the selected currency plus the allocation breakdown
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       currency query string false "Secondary display currency: USD, CNY, or HKD (default CNY)"
// @Success     200 {object} map[string]interface{} "Dashboard data"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	currency := c.DefaultQuery("currency", "CNY")
	switch currency {
	case "USD", "CNY", "HKD":
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be USD, CNY, or HKD"))
		return
	}

	holdings, err := h.holdingService.List(userID, models.ListPortfolio)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totalUSD := valuation.TotalUSD(holdings, h.store)

	c.JSON(http.StatusOK, gin.H{
		"total_usd":      totalUSD,
		"total_selected": valuation.TotalIn(totalUSD, currency, h.store),
		"currency":       currency,
		"allocation":     valuation.Allocation(holdings, h.store),
		"rates":          h.store.Rates(),
		"last_sync_at":   user.LastSyncAt,
	})
}
