// Package auth implements password hashing and the signed access token used
// by the API: an HMAC-SHA256 signature over "username|expiry", the whole
// triple base64url-encoded.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/finmetrics/portfolio-api/internal/common"
)

// expiryLayout is the timestamp format carried inside tokens. All expiry
// times are UTC.
const expiryLayout = "2006-01-02 15:04:05"

// payloadDelimiter separates the subject, expiry and signature segments.
// Registration rejects usernames containing it.
const payloadDelimiter = "|"

// GenerateToken mints a token for the given username, valid for
// validityDuration from now. The caller is expected to have authenticated
// the user already; this is a pure construction step.
func GenerateToken(username string, secretKey []byte, validityDuration time.Duration) string {
	expiration := time.Now().UTC().Add(validityDuration).Format(expiryLayout)
	payload := username + payloadDelimiter + expiration
	signature := sign(payload, secretKey)
	token := payload + payloadDelimiter + signature
	return base64.URLEncoding.EncodeToString([]byte(token))
}

// GetUserFromToken verifies the token's signature and expiry and returns the
// username it asserts. Any failure - undecodable input, malformed structure,
// signature mismatch, past expiry - yields common.ErrInvalidToken; callers
// must not learn which check failed.
func GetUserFromToken(tokenString string, secretKey []byte) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(tokenString)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	// Split from the right so a subject containing the delimiter still
	// parses: the last two segments are always expiry and signature.
	token := string(decoded)
	sigIdx := strings.LastIndex(token, payloadDelimiter)
	if sigIdx < 0 {
		return "", common.ErrInvalidToken
	}
	payload, signature := token[:sigIdx], token[sigIdx+1:]

	expIdx := strings.LastIndex(payload, payloadDelimiter)
	if expIdx < 0 {
		return "", common.ErrInvalidToken
	}
	username, expiration := payload[:expIdx], payload[expIdx+1:]

	expected := sign(payload, secretKey)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", common.ErrInvalidToken
	}

	expiresAt, err := time.Parse(expiryLayout, expiration)
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if !time.Now().UTC().Before(expiresAt) {
		return "", common.ErrInvalidToken
	}

	return username, nil
}

func sign(payload string, secretKey []byte) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
