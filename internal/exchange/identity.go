package exchange

import (
	"crypto/sha256"
	"encoding/hex"
)

// submissionIdentity derives a stable, irreversible submitter identity from
// the client IP, the browser fingerprint and a server-side salt. The
// fingerprint may be empty, in which case distinct browsers behind the same
// IP collapse to one identity.
func submissionIdentity(ip, fingerprint, salt string) string {
	sum := sha256.Sum256([]byte(ip + fingerprint + salt))
	return hex.EncodeToString(sum[:])
}
