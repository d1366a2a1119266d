package enrichment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/sentineldesk/signalhub/internal/domain"
)

// DedupKey derives the store-unique key for draft: source + stable external
// ID when present, otherwise source + a normalized content hash.
func DedupKey(d domain.Draft) string {
	if d.ExternalID != "" {
		return fmt.Sprintf("%s:%s", d.Source, d.ExternalID)
	}
	return fmt.Sprintf("%s:%s", d.Source, contentHash(d.Title, d.Message))
}

func contentHash(title, message string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + message))
	return hex.EncodeToString(sum[:])[:16]
}

// summaryCacheKey is the key used to cache AI summaries for identical content.
func summaryCacheKey(t domain.NotificationType, p domain.Priority, title, message string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%s\x00%s", t, p, title, message)))
	return hex.EncodeToString(sum[:])
}
