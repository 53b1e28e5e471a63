package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

// VerifySignature checks a hex HMAC-SHA256 signature, optionally prefixed
// with "sha256=". An empty secret never verifies.
func VerifySignature(payload []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	sig = strings.TrimPrefix(strings.ToLower(sig), "sha256=")
	secret = strings.TrimSpace(secret)
	if sig == "" || secret == "" {
		return false
	}

	expected, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// Sign returns the hex signature for payload, used by tests and tooling.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SecretFromEnv looks up WEBHOOK_SECRET_<PROVIDER>.
func SecretFromEnv(provider string) string {
	return env.GetEnv("WEBHOOK_SECRET_"+strings.ToUpper(strings.TrimSpace(provider)), "")
}
