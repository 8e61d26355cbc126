package llm

import (
	"fmt"
	"strings"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
)

// formatArticles renders the article projections into the standardized
// block layout the prompt expects.
func formatArticles(articles []domain.SummaryInput) string {
	blocks := make([]string, 0, len(articles))
	for _, article := range articles {
		headline := article.Headline
		if headline == "" {
			headline = "No title"
		}
		source := article.Source
		if source == "" {
			source = "Unknown"
		}
		content := article.Content
		if content == "" {
			content = "No content"
		}

		blocks = append(blocks, fmt.Sprintf("Title: %s\nSource: %s\nContent: %s\nLink: %s\n",
			headline, source, content, article.Link))
	}
	return strings.Join(blocks, "\n\n")
}

// buildPrompt produces the step-by-step analyst prompt with the response
// schema inlined. Cardinality bounds come from configuration.
func buildPrompt(articles []domain.SummaryInput, limits config.SummaryLimits) string {
	return fmt.Sprintf(`You are a news analyst tasked with summarizing multiple news articles.
Think through this step by step:

1. First, identify the main events from each article
2. Look for common themes or patterns across articles
3. Note which regions or countries are mentioned
4. Create a chronological timeline if relevant
5. Select up to %d of the most notable articles with their links
6. Write both a short and detailed summary

Articles to analyze:
%s

Respond with a single JSON object in this exact shape:
{
  "text_summary": "a concise one-sentence summary of the key points",
  "detailed_summary": "a comprehensive multi-paragraph analysis",
  "main_events": {"event name": "description", "... up to %d entries": "..."},
  "key_themes": {"theme name": "description", "... up to %d entries": "..."},
  "impacted_regions": {"region": "how it is affected"},
  "timeline": {"date or period": "what happened"},
  "top_articles": [{"title": "...", "source": "...", "link": "..."}]
}`,
		limits.TopArticles, formatArticles(articles), limits.MainEvents, limits.KeyThemes)
}
