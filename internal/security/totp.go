package security

import (
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret provisions a new TOTP secret for an admin account
// and returns the secret plus the otpauth provisioning URL.
func GenerateTOTPSecret(issuer, account string) (secret, url string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if errGenerate != nil {
		return "", "", errGenerate
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP reports whether a one-time code matches the secret.
func VerifyTOTP(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
