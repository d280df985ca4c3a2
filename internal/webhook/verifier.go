package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// Verifier authenticates notifications against the shared HMAC key the
// gateway signs them with. The key is configured as a hex-encoded string.
type Verifier struct {
	Key string
}

// Verify recomputes the notification signature and compares it to the one
// embedded in additionalData. The check is fail-closed: a missing or
// malformed key, signature or payload yields false, never a panic, and the
// comparison itself is constant time.
func (v Verifier) Verify(n Notification) bool {
	key, err := hex.DecodeString(strings.TrimSpace(v.Key))
	if err != nil || len(key) == 0 {
		return false
	}
	provided := strings.TrimSpace(n.Signature())
	if provided == "" {
		return false
	}
	expected := sign(key, canonicalPayload(n))
	return hmac.Equal([]byte(expected), []byte(provided))
}

// canonicalPayload joins the signature-relevant fields in the order the
// gateway signs them, escaping the join character inside field values.
func canonicalPayload(n Notification) string {
	fields := []string{
		escape(n.PSPReference),
		escape(n.OriginalReference),
		escape(n.MerchantAccountCode),
		escape(n.MerchantReference),
		strconv.FormatInt(n.Amount.Value, 10),
		escape(n.Amount.Currency),
		escape(n.EventCode),
		escape(n.Success),
	}
	return strings.Join(fields, ":")
}

func escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, ":", `\:`)
}

func sign(key []byte, payload string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Sign computes the signature for a notification under the given hex key.
// Exposed for tests and tooling that fabricate signed notifications.
func Sign(hexKey string, n Notification) (string, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return "", err
	}
	return sign(key, canonicalPayload(n)), nil
}
