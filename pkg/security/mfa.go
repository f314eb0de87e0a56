package security

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"net/url"

	"github.com/pquerna/otp/totp"
)

const mfaIssuer = "VocalGate"

// GenerateMFASecret generates a random Base32 string (compatible with TOTP secrets).
func GenerateMFASecret() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	// Authenticator apps require Base32, not Base64
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// GetMFAQRCodeURI returns the otpauth:// URI an authenticator app enrolls from.
func GetMFAQRCodeURI(account, secret string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(mfaIssuer), url.PathEscape(account), secret, url.QueryEscape(mfaIssuer))
}

// VerifyMFACode checks if the provided 6-digit code is valid for the given secret.
func VerifyMFACode(code, secret string) bool {
	return totp.Validate(code, secret)
}
