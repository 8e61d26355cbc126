package domain

import "time"

// FeedHealth tracks the operational status of one feed source. One row per
// source name; created on first attempt, updated on every attempt after,
// never deleted. ArticlesCount is cumulative and only grows on success.
type FeedHealth struct {
	ID            int64
	SourceName    string
	SourceURL     string
	LastAttemptAt *time.Time
	LastSuccessAt *time.Time
	LastError     string
	ArticlesCount int
	IsActive      bool
}
