package transfer

import (
	"crypto/rand"
	"encoding/hex"
)

// newTransferID returns a short random id used to tag events and registry
// ownership for one worker's lifetime.
func newTransferID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
