package feed

import (
	"time"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
)

const (
	// missingTitle replaces an absent headline.
	missingTitle = "No title"

	// maxStoredTextLen clamps summary and content before persistence.
	maxStoredTextLen = 10000

	// languageSampleLen caps how much of the summary feeds the detector.
	languageSampleLen = 200
)

// Normalizer converts raw feed entries into canonical article candidates.
// Normalize never fails: every missing or malformed optional field degrades
// to a safe default instead.
type Normalizer struct {
	languages *LanguageDetector
}

// NewNormalizer wires an optional language detector. A nil detector behaves
// like a failing one, falling back to the source language.
func NewNormalizer(languages *LanguageDetector) *Normalizer {
	return &Normalizer{languages: languages}
}

// Normalize builds a candidate from one entry and its source configuration.
func (n *Normalizer) Normalize(entry domain.FeedEntry, source config.FeedConfig) domain.ArticleCandidate {
	headline := entry.Title
	if headline == "" {
		headline = missingTitle
	}

	return domain.ArticleCandidate{
		SourceName:     source.Name,
		SourceCategory: source.Category,
		SourceCountry:  source.Country,
		SourceLanguage: source.Language,
		Headline:       headline,
		Summary:        truncateText(entry.Summary, maxStoredTextLen),
		Content:        truncateText(extractContent(entry), maxStoredTextLen),
		Link:           entry.Link,
		PublishedAt:    extractPublishedAt(entry),
		Language:       n.detectLanguage(entry, source),
	}
}

// extractContent prefers the first structured content block, then the
// description, then the summary, and degrades to empty.
func extractContent(entry domain.FeedEntry) string {
	if len(entry.Content) > 0 {
		return entry.Content[0].Value
	}
	if entry.Description != "" {
		return entry.Description
	}
	if entry.Summary != "" {
		return entry.Summary
	}
	return ""
}

// extractPublishedAt tries the date fields in strict priority order:
// published, then updated, then created. The first well-formed one wins;
// with none present the candidate keeps a nil timestamp rather than
// defaulting to now.
func extractPublishedAt(entry domain.FeedEntry) *time.Time {
	for _, ts := range []*time.Time{entry.Published, entry.Updated, entry.Created} {
		if ts != nil && !ts.IsZero() {
			t := *ts
			return &t
		}
	}
	return nil
}

// detectLanguage runs the statistical detector on title plus the leading
// part of the summary. Blank input yields "unknown" without invoking the
// detector; a detector failure falls back to the source's configured
// language instead. The two fallbacks are intentionally different.
func (n *Normalizer) detectLanguage(entry domain.FeedEntry, source config.FeedConfig) string {
	sample := StripHTML(entry.Title + " " + truncateRunes(entry.Summary, languageSampleLen))
	return n.languages.Detect(sample, source.Language)
}

func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
