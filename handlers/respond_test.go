package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"droply/services/delivery"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestStatusForCode(t *testing.T) {
	cases := map[delivery.Code]int{
		delivery.CodeNotFound:                  http.StatusNotFound,
		delivery.CodeForbidden:                 http.StatusForbidden,
		delivery.CodeConflict:                  http.StatusConflict,
		delivery.CodeInvalidArgument:           http.StatusBadRequest,
		delivery.CodeInvalidOtp:                http.StatusBadRequest,
		delivery.CodeInsufficientFunds:         http.StatusPaymentRequired,
		delivery.CodePaymentVerificationFailed: http.StatusPaymentRequired,
		delivery.CodeInvalidState:              http.StatusUnprocessableEntity,
		delivery.Code("Unrecognized"):          http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, statusForCode(code), "code %s", code)
	}
}

func TestRespondDeliveryErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondDeliveryError(c, errors.New("mongo: cursor exhausted"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "mongo")
}

func TestRespondDeliveryErrorUsesTaxonomy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondDeliveryError(c, delivery.NewError(delivery.CodeInvalidOtp, "submitted OTP does not match"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "InvalidOtp")
}
