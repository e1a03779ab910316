package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPLength is the number of digits in a recipient OTP.
const OTPLength = 6

// RecipientMobileLength is the required length of a recipient mobile number.
const RecipientMobileLength = 10

// GenerateNumericOTP generates a secure random numeric OTP of the given
// length. Leading zeros are allowed.
func GenerateNumericOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0') + byte(n.Int64())
	}
	return string(digits), nil
}

// IsNumericString reports whether s consists solely of ASCII digits.
func IsNumericString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidRecipientMobile checks the fixed-length numeric format used for
// recipient mobile numbers.
func ValidRecipientMobile(mobile string) bool {
	return len(mobile) == RecipientMobileLength && IsNumericString(mobile)
}

// ValidOTPFormat checks that a submitted OTP has the expected shape before
// it is compared against the stored code.
func ValidOTPFormat(otp string) bool {
	return len(otp) == OTPLength && IsNumericString(otp)
}
