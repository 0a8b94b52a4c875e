package discord

import (
	"crypto/ed25519"
	"encoding/hex"
)

// Headers Discord attaches to every interaction webhook.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// Verify reports whether signatureHex is a valid Ed25519 signature of
// timestamp+body under publicKeyHex. Malformed hex, wrong key or signature
// sizes, and empty inputs all yield false; Verify never panics.
//
// body must be the exact bytes received on the wire, before any decoding.
func Verify(publicKeyHex, signatureHex, timestamp string, body []byte) bool {
	if publicKeyHex == "" || signatureHex == "" || timestamp == "" {
		return false
	}
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(ed25519.PublicKey(key), msg, sig)
}
