package handlers

import (
	"net/http"

	"droply/middleware"
	"droply/models"
	"droply/services/wallet"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletHandler exposes balance, withdrawal and payout-destination
// endpoints. All operate on the authenticated caller's own wallet.
type WalletHandler struct {
	Service wallet.WalletService
	Logger  *zap.Logger
}

func NewWalletHandler(svc wallet.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{Service: svc, Logger: logger}
}

// GetWalletHandler returns the caller's wallet, creating it on first touch.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	w, err := h.Service.EnsureWallet(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondWalletError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// WithdrawHandler debits the caller's wallet toward a registered payout
// destination.
func (h *WalletHandler) WithdrawHandler(c *gin.Context) {
	var input struct {
		Amount float64 `json:"amount"`
		Method string  `json:"method"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Service.Withdraw(c.Request.Context(), middleware.CallerID(c), input.Amount, input.Method); err != nil {
		respondWalletError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "withdrawal recorded", "amount": input.Amount})
}

// SetBankAccountHandler registers a bank payout destination.
func (h *WalletHandler) SetBankAccountHandler(c *gin.Context) {
	var acct models.BankAccount
	if err := c.ShouldBindJSON(&acct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if acct.AccountNumber == "" || acct.IFSC == "" || acct.HolderName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account number, IFSC and holder name are required"})
		return
	}

	if err := h.Service.SetBankAccount(c.Request.Context(), middleware.CallerID(c), acct); err != nil {
		respondWalletError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "bank account registered"})
}

// SetUPIHandleHandler registers a UPI payout destination.
func (h *WalletHandler) SetUPIHandleHandler(c *gin.Context) {
	var input struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a UPI handle is required"})
		return
	}

	if err := h.Service.SetUPIHandle(c.Request.Context(), middleware.CallerID(c), input.Handle); err != nil {
		respondWalletError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UPI handle registered"})
}
