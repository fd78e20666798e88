package wallet

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"debmarket/internal/api"
	"debmarket/internal/auth"
	"debmarket/internal/logger"
	"debmarket/internal/metrics"

	"github.com/gin-gonic/gin"
)

const minWithdrawalCents int64 = 1000

// Notifier acknowledges withdrawal requests. Optional.
type Notifier interface {
	SendWithdrawalRequested(ctx context.Context, email string, amountCents int64) error
}

type Handler struct {
	repo     Repository
	notifier Notifier
}

func NewHandler(repo Repository, notifier Notifier) *Handler {
	return &Handler{repo: repo, notifier: notifier}
}

// GetBalance godoc
// @Summary      Get wallet balance
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} wallet.Wallet
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// Withdraw godoc
// @Summary      Withdraw funds via PIX
// @Description  Debits the wallet. Amount must be at least R$10 and within the available balance.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body wallet.WithdrawRequest true "Withdrawal payload"
// @Success      200 {object} wallet.Wallet
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /wallet/withdraw [post]
func (h *Handler) Withdraw(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount_cents and pix_key are required"})
		return
	}
	if req.AmountCents < minWithdrawalCents {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "minimum withdrawal is R$10"})
		return
	}

	if err := h.repo.Withdraw(c.Request.Context(), userID, req.AmountCents); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "insufficient balance"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to withdraw"})
		return
	}
	metrics.RecordWalletTransaction(string(TypeWithdrawal))

	if h.notifier != nil {
		if email, ok := auth.GetUserEmail(c); ok {
			amount := req.AmountCents
			go func() {
				nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := h.notifier.SendWithdrawalRequested(nctx, email, amount); err != nil {
					logger.Error("withdrawal notification failed", "error", err)
				}
			}()
		}
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load wallet after withdrawal"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// ListTransactions godoc
// @Summary      List wallet transactions
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size" default(50)
// @Param        offset query int false "Offset" default(0)
// @Success      200 {array} wallet.Transaction
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}
