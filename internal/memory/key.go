package memory

import (
	"crypto/sha1"
	"encoding/hex"
)

// emptyKeyPlaceholder substitutes for an empty session identifier so key
// derivation is total over every string input.
const emptyKeyPlaceholder = "empty_input_placeholder"

// DeriveKey maps an arbitrary session identifier to a fixed-length hex
// digest safe for use as a storage key. Deterministic: the same input
// always produces the same key.
func DeriveKey(sessionID string) string {
	if sessionID == "" {
		sessionID = emptyKeyPlaceholder
	}
	sum := sha1.Sum([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
