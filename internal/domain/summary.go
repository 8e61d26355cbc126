package domain

import "time"

// SummaryScope identifies which subset of articles a summary covers.
// Both nil denotes the overall scope; nil is a valid, distinct key
// component of the (window end date, category, country) uniqueness triple.
type SummaryScope struct {
	Category *string
	Country  *string
}

// Filter converts the scope into the window-selector filter shape.
func (s SummaryScope) Filter() ArticleFilter {
	return ArticleFilter{Category: s.Category, Country: s.Country}
}

// SummaryInput is the minimal projection of one article handed to the
// summarization collaborator.
type SummaryInput struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Content  string `json:"content"`
	Link     string `json:"link"`
}

// TopArticle is one entry of the bounded top-articles list returned by the
// summarizer.
type TopArticle struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Link   string `json:"link"`
}

// SummaryDocument is the structured output of the summarization
// collaborator. When the collaborator fails it returns a document with
// empty summary fields and Err set instead of propagating the failure.
type SummaryDocument struct {
	TextSummary     string            `json:"text_summary"`
	DetailedSummary string            `json:"detailed_summary"`
	MainEvents      map[string]string `json:"main_events"`
	KeyThemes       map[string]string `json:"key_themes"`
	ImpactedRegions map[string]string `json:"impacted_regions"`
	Timeline        map[string]string `json:"timeline"`
	TopArticles     []TopArticle      `json:"top_articles"`
	Err             string            `json:"error,omitempty"`
	Raw             []byte            `json:"-"`
}

// Summary is the persisted record keyed by (WindowEndDate, Category,
// Country). At most one row exists per triple; re-generation is a no-op.
type Summary struct {
	ID              int64
	WindowEndDate   time.Time
	Category        *string
	Country         *string
	TextSummary     string
	DetailedSummary string
	MainEvents      map[string]string
	KeyThemes       map[string]string
	ImpactedRegions map[string]string
	Timeline        map[string]string
	TopArticles     []TopArticle
	ArticlesCount   int
	GeneratedAt     time.Time
	ModelName       string
	Raw             []byte
}

// ModelInteraction is the audit trail of one summarizer call.
type ModelInteraction struct {
	ID           int64
	CreatedAt    time.Time
	Prompt       string
	Response     []byte
	Status       string
	ErrorMessage string
}

// Interaction status values.
const (
	InteractionSuccess = "success"
	InteractionError   = "error"
)
