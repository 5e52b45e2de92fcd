package utils

import (
	"strconv"
	"testing"
)

func TestGenerateSecureOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateSecureOTP()
		if err != nil {
			t.Fatalf("GenerateSecureOTP failed: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("expected a 6-digit OTP, got %q", otp)
		}
		n, err := strconv.Atoi(otp)
		if err != nil {
			t.Fatalf("OTP %q is not numeric: %v", otp, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("OTP %d is outside the 100000-999999 range", n)
		}
	}
}
