package domain

import "errors"

var (
	// ErrDuplicateArticle reports a fingerprint that is already stored. It is
	// a normal outcome of the dedup gate, not a failure, including when it
	// surfaces late as a unique-constraint violation.
	ErrDuplicateArticle = errors.New("article already stored")

	// ErrDuplicateSummary reports a unique-constraint violation on the
	// (window end date, category, country) triple at persistence time.
	ErrDuplicateSummary = errors.New("summary already stored")

	// ErrSummaryExists is returned by the aggregator when a summary for the
	// requested triple already exists; the call is an idempotent no-op.
	ErrSummaryExists = errors.New("summary already exists for this window and scope")

	// ErrEmptyInput rejects a summarizer call with zero article projections.
	ErrEmptyInput = errors.New("no articles to summarize")
)
