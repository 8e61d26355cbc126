package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/ports"
)

const (
	defaultAPIBase    = "https://api.telegram.org"
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
)

// Notifier delivers digests to a Telegram chat via the bot API. Payloads
// are chunked at the message ceiling, transient failures are retried with
// backoff, and a message rejected for being too long falls back to a file
// attachment.
type Notifier struct {
	botToken   string
	chatID     string
	apiBase    string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		apiBase:    defaultAPIBase,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		logger:     logger,
	}
}

// Publish sends the payload, one chunk per message.
func (n *Notifier) Publish(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	for _, chunk := range SplitMessage(text, MessageLimit) {
		if err := n.sendChunk(ctx, chunk); err != nil {
			return err
		}
	}

	return nil
}

func (n *Notifier) sendChunk(ctx context.Context, chunk string) error {
	err := n.withRetry(ctx, func() error {
		return n.sendMessage(ctx, chunk)
	})

	var apiErr *apiError
	if isAPIError(err, &apiErr) && apiErr.tooLong() {
		if n.logger != nil {
			n.logger.Warn("message rejected as too long, sending as document", "len", len(chunk))
		}
		return n.withRetry(ctx, func() error {
			return n.sendDocument(ctx, chunk)
		})
	}

	return err
}

// withRetry retries retryable failures with backoff, honouring the API's
// retry_after hint when present. Fatal errors return immediately.
func (n *Notifier) withRetry(ctx context.Context, send func() error) error {
	var lastErr error

	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			wait := n.backoff << (attempt - 1)
			var apiErr *apiError
			if isAPIError(lastErr, &apiErr) && apiErr.retryAfter > 0 {
				wait = apiErr.retryAfter
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err := send()
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *apiError
		if isAPIError(err, &apiErr) && !apiErr.retryable() {
			return err
		}

		if n.logger != nil {
			n.logger.Warn("telegram send failed, retrying", "attempt", attempt+1, "error", err)
		}
	}

	return fmt.Errorf("telegram send exhausted retries: %w", lastErr)
}

func (n *Notifier) sendMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return n.do(req)
}

// sendDocument uploads the payload as a text attachment, the fallback for
// content the message endpoint refuses.
func (n *Notifier) sendDocument(ctx context.Context, text string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", n.chatID); err != nil {
		return fmt.Errorf("write chat_id field: %w", err)
	}
	part, err := writer.CreateFormFile("document", "digest.txt")
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}
	if _, err := part.Write([]byte(text)); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return n.do(req)
}

func (n *Notifier) do(req *http.Request) error {
	resp, err := n.client.Do(req)
	if err != nil {
		return &apiError{code: 0, description: err.Error()}
	}
	defer resp.Body.Close()

	var parsed struct {
		OK          bool   `json:"ok"`
		ErrorCode   int    `json:"error_code"`
		Description string `json:"description"`
		Parameters  struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return &apiError{code: resp.StatusCode, description: fmt.Sprintf("decode response: %v", err)}
	}

	if parsed.OK {
		return nil
	}

	code := parsed.ErrorCode
	if code == 0 {
		code = resp.StatusCode
	}

	return &apiError{
		code:        code,
		description: parsed.Description,
		retryAfter:  time.Duration(parsed.Parameters.RetryAfter) * time.Second,
	}
}

// apiError classifies a Telegram API failure. Code 0 stands for a
// transport-level failure, which is always retryable.
type apiError struct {
	code        int
	description string
	retryAfter  time.Duration
}

func (e *apiError) Error() string {
	if e.code == 0 {
		return fmt.Sprintf("telegram transport error: %s", e.description)
	}
	return fmt.Sprintf("telegram error %d: %s", e.code, e.description)
}

func (e *apiError) retryable() bool {
	return e.code == 0 || e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

func (e *apiError) tooLong() bool {
	return e.code == http.StatusBadRequest && strings.Contains(strings.ToLower(e.description), "too long")
}

func isAPIError(err error, target **apiError) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*apiError); ok {
		*target = e
		return true
	}
	return false
}
