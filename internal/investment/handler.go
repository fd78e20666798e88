package investment

import (
	"errors"
	"net/http"
	"strconv"

	"debmarket/internal/api"
	"debmarket/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Invest godoc
// @Summary      Invest in an offering
// @Description  Debits the wallet and allocates units of the offering atomically
// @Tags         investments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        offeringID path int true "Offering ID"
// @Param        request body investment.InvestRequest true "Order amount in cents"
// @Success      201 {object} investment.Investment
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /offerings/{offeringID}/invest [post]
func (h *Handler) Invest(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	offeringID, err := strconv.Atoi(c.Param("offeringID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid offering id"})
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	email, _ := auth.GetUserEmail(c)

	inv, err := h.service.Invest(c.Request.Context(), userID, email, offeringID, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, ErrOfferingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "offering not found"})
		case errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrBelowMinimum),
			errors.Is(err, ErrNotUnitMultiple):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrOfferingNotOpen),
			errors.Is(err, ErrExceedsRemaining):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "insufficient wallet balance"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to process investment"})
		}
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// GetPortfolio godoc
// @Summary      List the authenticated user's investments
// @Tags         investments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} investment.PortfolioItem
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /portfolio [get]
func (h *Handler) GetPortfolio(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	items, err := h.service.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch portfolio"})
		return
	}

	c.JSON(http.StatusOK, items)
}
