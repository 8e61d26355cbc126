package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

const systemPrompt = "You are a news analyst expert at structured summarization. Be concise and focus on key points."

// GrokSummarizer implements ports.Summarizer against the xAI
// OpenAI-compatible chat completions API. Backend failures degrade to an
// explicit error document; the only returned error is a contract violation
// such as empty input. Every call is recorded in the interaction audit log.
type GrokSummarizer struct {
	endpoint     string
	model        string
	apiKey       string
	temperature  float64
	maxTokens    int
	limits       config.SummaryLimits
	httpClient   *http.Client
	interactions ports.InteractionRepository
	logger       *slog.Logger
}

var _ ports.Summarizer = (*GrokSummarizer)(nil)

// NewGrokSummarizer builds a client from configuration. The interaction
// repository may be nil, which disables the audit log.
func NewGrokSummarizer(cfg config.GrokConfig, limits config.SummaryLimits, interactions ports.InteractionRepository, logger *slog.Logger) *GrokSummarizer {
	return &GrokSummarizer{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		limits:       limits,
		httpClient:   &http.Client{Timeout: cfg.TimeoutDuration()},
		interactions: interactions,
		logger:       logger,
	}
}

// ModelName identifies the backing model in summary records.
func (c *GrokSummarizer) ModelName() string {
	return c.model
}

// Summarize sends the article projections for structured summarization.
func (c *GrokSummarizer) Summarize(ctx context.Context, articles []domain.SummaryInput) (domain.SummaryDocument, error) {
	if len(articles) == 0 {
		return domain.SummaryDocument{}, domain.ErrEmptyInput
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.SummaryDocument{}, fmt.Errorf("grok client misconfigured")
	}

	prompt := buildPrompt(articles, c.limits)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return c.fail(ctx, prompt, fmt.Sprintf("failed to get summary from Grok API: %v", err)), nil
	}

	var doc domain.SummaryDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return c.fail(ctx, prompt, fmt.Sprintf("failed to parse Grok response: %v", err)), nil
	}
	doc.Raw = []byte(content)

	c.record(ctx, domain.ModelInteraction{
		Prompt:   prompt,
		Response: doc.Raw,
		Status:   domain.InteractionSuccess,
	})

	return doc, nil
}

func (c *GrokSummarizer) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature":     c.temperature,
		"max_tokens":      c.maxTokens,
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal grok payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("grok error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// fail logs the failure, records it, and returns the error document that
// stands in for a summary so no caller ever sees an exception here.
func (c *GrokSummarizer) fail(ctx context.Context, prompt, message string) domain.SummaryDocument {
	if c.logger != nil {
		c.logger.Error("summarization failed", "error", message)
	}

	c.record(ctx, domain.ModelInteraction{
		Prompt:       prompt,
		Status:       domain.InteractionError,
		ErrorMessage: message,
	})

	doc := domain.SummaryDocument{
		TextSummary:     "",
		DetailedSummary: "Error processing response",
		MainEvents:      map[string]string{},
		KeyThemes:       map[string]string{},
		ImpactedRegions: map[string]string{},
		Timeline:        map[string]string{},
		Err:             message,
	}
	doc.Raw, _ = json.Marshal(doc)
	return doc
}

func (c *GrokSummarizer) record(ctx context.Context, interaction domain.ModelInteraction) {
	if c.interactions == nil {
		return
	}
	if err := c.interactions.Record(ctx, interaction); err != nil && c.logger != nil {
		c.logger.Warn("failed to record model interaction", "error", err)
	}
}
