package crawl

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the sha256 digest of a page body in hex form.
// Two bodies share a fingerprint exactly when they are byte-identical;
// near-duplicate detection is out of scope.
func Fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
