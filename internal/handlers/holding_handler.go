package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "treasury/internal/errors"
	"treasury/internal/models"
	"treasury/internal/services"
)

// HoldingHandler handles portfolio and watchlist requests.
type HoldingHandler struct {
	holdingService services.HoldingServicer
	refreshService services.RefreshServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, refreshService services.RefreshServicer) *HoldingHandler {
	return &HoldingHandler{holdingService: holdingService, refreshService: refreshService}
}

// AddHoldingRequest represents the payload for creating a holding.
type AddHoldingRequest struct {
	List     string  `json:"list" binding:"required,holding_list"`
	Symbol   string  `json:"symbol" binding:"required,max=50"`
	Quantity float64 `json:"quantity" binding:"omitempty"`
	Category string  `json:"category" binding:"required,asset_category"`
	Currency string  `json:"currency" binding:"required,display_currency"`
}

// UpdateQuantityRequest represents the payload for replacing a quantity.
type UpdateQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

// listParam reads and validates the ?list= query parameter, defaulting to
// the portfolio.
func listParam(c *gin.Context) (models.HoldingList, error) {
	switch c.DefaultQuery("list", "portfolio") {
	case "portfolio":
		return models.ListPortfolio, nil
	case "watchlist":
		return models.ListWatchlist, nil
	default:
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "list must be portfolio or watchlist")
	}
}

// ListHoldings returns one of the user's holding lists.
// @Summary     List holdings
// @Description List the user's portfolio or watchlist entries
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       list query string false "List name: portfolio (default) or watchlist"
// @Success     200 {object} map[string]interface{} "Holdings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /holdings [get]
func (h *HoldingHandler) ListHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := listParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.holdingService.List(userID, list)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list, "holdings": holdings})
}

// AddHolding creates a new holding on the given list.
// @Summary     Add holding
// @Description Add a holding to the portfolio or watchlist
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddHoldingRequest true "Holding data"
// @Success     201 {object} models.Holding "Created holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /holdings [post]
func (h *HoldingHandler) AddHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.Add(userID, models.HoldingList(req.List), services.HoldingDraft{
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Category: models.AssetCategory(req.Category),
		Currency: req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, holding)
}

// DeleteHolding removes a holding by id.
// @Summary     Delete holding
// @Description Remove a holding; a missing id is a no-op
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     204 "Deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /holdings/{id} [delete]
func (h *HoldingHandler) DeleteHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.holdingService.Delete(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateQuantity replaces a holding's quantity; negative input is clamped to zero.
// @Summary     Update quantity
// @Description Replace a holding's quantity (clamped to >= 0)
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Holding ID"
// @Param       request body UpdateQuantityRequest true "New quantity"
// @Success     200 {object} models.Holding "Updated holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /holdings/{id}/quantity [put]
func (h *HoldingHandler) UpdateQuantity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.UpdateQuantity(userID, id, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, holding)
}

// MoveToPortfolio promotes a watchlist entry into the portfolio and
// triggers a refresh to price the newly active position.
// @Summary     Move to portfolio
// @Description Move a watchlist entry into the portfolio, merging quantities when a matching position exists
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Watchlist holding ID"
// @Success     200 {object} map[string]interface{} "Moved holding and refresh outcome"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /holdings/{id}/move [post]
func (h *HoldingHandler) MoveToPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	holding, err := h.holdingService.MoveToPortfolio(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Best effort: the move already happened, a failed refresh just means
	// the position stays priced at its last known value.
	refresh, err := h.refreshService.Refresh(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holding": holding, "refresh": refresh})
}
