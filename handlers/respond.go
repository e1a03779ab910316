package handlers

import (
	"net/http"

	"droply/services/delivery"
	"droply/services/wallet"
	"droply/utils"

	"github.com/gin-gonic/gin"
)

// statusForCode maps the delivery error taxonomy to HTTP statuses.
func statusForCode(code delivery.Code) int {
	switch code {
	case delivery.CodeNotFound:
		return http.StatusNotFound
	case delivery.CodeForbidden:
		return http.StatusForbidden
	case delivery.CodeConflict:
		return http.StatusConflict
	case delivery.CodeInvalidArgument, delivery.CodeInvalidOtp:
		return http.StatusBadRequest
	case delivery.CodeInsufficientFunds, delivery.CodePaymentVerificationFailed:
		return http.StatusPaymentRequired
	case delivery.CodeInvalidState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondDeliveryError writes a delivery-core failure as a JSON error with
// the matching status. Unclassified errors become 500s without leaking
// internals.
func respondDeliveryError(c *gin.Context, err error) {
	if code := delivery.CodeOf(err); code != "" {
		utils.JSONError(c, statusForCode(code), string(code), err.Error())
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "InternalError", "an unexpected error occurred")
}

// respondWalletError maps wallet business errors onto the same taxonomy.
func respondWalletError(c *gin.Context, err error) {
	switch err {
	case wallet.ErrWalletNotFound:
		utils.JSONError(c, http.StatusNotFound, "NotFound", err.Error())
	case wallet.ErrInsufficientFunds:
		utils.JSONError(c, http.StatusPaymentRequired, "InsufficientFunds", err.Error())
	case wallet.ErrInvalidAmount, wallet.ErrBelowMinWithdrawal, wallet.ErrNoPayoutDestination:
		utils.JSONError(c, http.StatusBadRequest, "InvalidArgument", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "InternalError", "an unexpected error occurred")
	}
}
