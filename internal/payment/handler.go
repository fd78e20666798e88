package payment

import (
	"errors"
	"net/http"

	"debmarket/internal/api"
	"debmarket/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	deposits *DepositService
}

func NewHandler(deposits *DepositService) *Handler {
	return &Handler{deposits: deposits}
}

type CreateDepositRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Method      Method `json:"method" binding:"required"`
}

// CreateDeposit godoc
// @Summary      Start a deposit
// @Description  Creates a payment intent and opens a deposit session. PIX sessions return the QR code and copy-paste code; card sessions return the client secret.
// @Tags         deposits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.CreateDepositRequest true "Deposit payload"
// @Success      201 {object} payment.DepositView
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Router       /deposits [post]
func (h *Handler) CreateDeposit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}
	email, _ := auth.GetUserEmail(c)

	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount_cents and method are required"})
		return
	}

	view, err := h.deposits.Begin(c.Request.Context(), userID, email, req.AmountCents, req.Method)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetDeposit godoc
// @Summary      Get deposit session state
// @Tags         deposits
// @Produce      json
// @Security     BearerAuth
// @Param        depositID path string true "Deposit session ID"
// @Success      200 {object} payment.DepositView
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /deposits/{depositID} [get]
func (h *Handler) GetDeposit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	view, err := h.deposits.Get(c.Param("depositID"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// CancelDeposit godoc
// @Summary      Cancel a deposit session
// @Tags         deposits
// @Produce      json
// @Security     BearerAuth
// @Param        depositID path string true "Deposit session ID"
// @Success      200 {object} payment.DepositView
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /deposits/{depositID}/cancel [post]
func (h *Handler) CancelDeposit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	view, err := h.deposits.Cancel(c.Param("depositID"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RegenerateDeposit godoc
// @Summary      Generate a new PIX code for an expired deposit
// @Tags         deposits
// @Produce      json
// @Security     BearerAuth
// @Param        depositID path string true "Deposit session ID"
// @Success      200 {object} payment.DepositView
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Router       /deposits/{depositID}/regenerate [post]
func (h *Handler) RegenerateDeposit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	view, err := h.deposits.Regenerate(c.Request.Context(), c.Param("depositID"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ConfirmCardDeposit godoc
// @Summary      Confirm a card deposit
// @Tags         deposits
// @Produce      json
// @Security     BearerAuth
// @Param        depositID path string true "Deposit session ID"
// @Success      200 {object} payment.DepositView
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Router       /deposits/{depositID}/confirm-card [post]
func (h *Handler) ConfirmCardDeposit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	view, err := h.deposits.ConfirmCard(c.Request.Context(), c.Param("depositID"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAmountBelowMinimum), errors.Is(err, ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrDepositNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrDepositFinished), errors.Is(err, ErrNotExpired), errors.Is(err, ErrNotAwaitingCard):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrGateway), errors.Is(err, ErrPixCodeUnavailable), errors.Is(err, ErrUnknownStatus):
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "payment provider unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to process deposit"})
	}
}
