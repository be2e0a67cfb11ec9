package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"leadscout/pkg/serrors"
)

// VerifySignature checks the raw webhook payload against its accompanying
// signature: a lower-case hex HMAC-SHA256 of the body under the shared
// signing secret. Verification happens before any parsing, and a failure is a
// hard rejection with no state mutation.
func VerifySignature(secret string, body []byte, signature string) error {
	if signature == "" {
		return serrors.With(serrors.ErrSignatureInvalid, "missing signature")
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return serrors.With(serrors.ErrSignatureInvalid, "malformed signature")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	if !hmac.Equal(provided, mac.Sum(nil)) {
		return serrors.With(serrors.ErrSignatureInvalid, "signature mismatch")
	}

	return nil
}

// Sign computes the signature the processor would attach to body. Used by
// tests and local tooling.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}
