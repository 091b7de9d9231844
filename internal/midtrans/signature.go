package midtrans

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// SignatureVerifier checks that a notification was produced by a holder of
// the merchant server key. Midtrans signs as
// sha512(order_id + status_code + gross_amount + server_key), hex encoded.
type SignatureVerifier struct {
	serverKey string
}

func NewSignatureVerifier(cfg Config) *SignatureVerifier {
	return &SignatureVerifier{serverKey: cfg.ServerKey}
}

// Verify recomputes the signature over the fields exactly as supplied (no
// normalization) and compares in constant time. This is the only
// authentication on the webhook, so the compare must not leak timing.
func (v *SignatureVerifier) Verify(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + v.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
