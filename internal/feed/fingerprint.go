package feed

import (
	"crypto/md5"
	"encoding/hex"

	"NewsOfTheWorld/internal/domain"
)

// Fingerprint derives the dedup token for a candidate: a 128-bit hash over
// source name, headline, and link, hex encoded. Content, timestamps, and
// language do not participate, so edits to body text never create
// duplicates while any change to the identifying triple does.
func Fingerprint(candidate domain.ArticleCandidate) string {
	sum := md5.Sum([]byte(candidate.SourceName + candidate.Headline + candidate.Link))
	return hex.EncodeToString(sum[:])
}
