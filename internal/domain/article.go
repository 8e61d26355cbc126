package domain

import "time"

// ContentBlock is a single value of a structured content field as delivered
// by RSS/Atom extensions. Feeds that carry several blocks list them in
// document order; only the first one participates in normalization.
type ContentBlock struct {
	Value string
}

// FeedEntry is one raw entry as delivered by the fetch layer. Every field is
// optional; absent values stay zero so the normalizer can degrade safely.
type FeedEntry struct {
	Title       string
	Description string
	Summary     string
	Link        string
	Content     []ContentBlock
	Published   *time.Time
	Updated     *time.Time
	Created     *time.Time
}

// ArticleCandidate is the canonical, transient shape produced by the
// normalizer before deduplication and persistence.
type ArticleCandidate struct {
	SourceName     string
	SourceCategory string
	SourceCountry  string
	SourceLanguage string
	Headline       string
	Summary        string
	Content        string
	Link           string
	PublishedAt    *time.Time
	Language       string
}

// Article is the persisted record. Created once on first sight of a
// fingerprint, never mutated, never deleted by this subsystem.
type Article struct {
	ID          int64
	SourceName  string
	Headline    string
	Summary     string
	Content     string
	Link        string
	Language    string
	Category    string
	Country     string
	Fingerprint string
	PublishedAt *time.Time
	IngestedAt  time.Time
}

// ArticleFilter narrows window queries to a category and/or country.
// Nil members match everything.
type ArticleFilter struct {
	Category *string
	Country  *string
}

// IngestResult reports the outcome of ingesting one feed source.
type IngestResult struct {
	Processed  int
	Duplicates int
	Errors     int
}

// RunStats accumulates IngestResult values across one full run.
type RunStats struct {
	Processed  int
	Duplicates int
	Errors     int
	Sources    int
}

// Add folds one source result into the run totals.
func (s *RunStats) Add(r IngestResult) {
	s.Processed += r.Processed
	s.Duplicates += r.Duplicates
	s.Errors += r.Errors
	s.Sources++
}

// FetchResult is what the feed source collaborator hands back for one URL.
// A malformed flag with surviving entries is not fatal; the coordinator
// decides how to classify it.
type FetchResult struct {
	StatusCode int
	Malformed  bool
	ParseError string
	Entries    []FeedEntry
}
