package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces an HTML fragment to its text content. Plain text passes
// through untouched; a fragment that fails to parse is returned as-is.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
