package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "casework-backend"

// GenerateTOTPSecret creates a new TOTP secret for a worker. The returned
// URL is the otpauth:// provisioning URI the worker enrolls with.
func GenerateTOTPSecret(accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP checks a 6-digit code against the stored secret.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
