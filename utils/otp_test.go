package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNumericOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		otp, err := GenerateNumericOTP(OTPLength)
		require.NoError(t, err)
		require.Len(t, otp, OTPLength)
		require.True(t, IsNumericString(otp))
		seen[otp] = true
	}
	// 50 draws from a million codes colliding down to one value would
	// mean the generator is broken.
	require.Greater(t, len(seen), 1)
}

func TestValidOTPFormat(t *testing.T) {
	require.True(t, ValidOTPFormat("123456"))
	require.False(t, ValidOTPFormat("12345"))
	require.False(t, ValidOTPFormat("1234567"))
	require.False(t, ValidOTPFormat("12345a"))
	require.False(t, ValidOTPFormat(""))
}

func TestValidRecipientMobile(t *testing.T) {
	require.True(t, ValidRecipientMobile("9876543210"))
	require.False(t, ValidRecipientMobile("987654321"))
	require.False(t, ValidRecipientMobile("98765432100"))
	require.False(t, ValidRecipientMobile("98765Gs210"))
}
