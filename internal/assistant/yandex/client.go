package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vocab-trainer/internal/assistant"
	"github.com/vocab-trainer/internal/config"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the model path appended to the catalog URI
	DefaultModel = "yandexgpt/latest"
	// ModelKey is the key clients use to select YandexGPT
	ModelKey = "yandex"
)

// Client is a YandexGPT foundation-models completion client
type Client struct {
	url          string
	catalogID    string
	secretKey    string
	systemPrompt string
	httpClient   *http.Client
	logger       *zap.SugaredLogger
}

// NewClient creates a new YandexGPT client
func NewClient(cfg config.YandexConfig, systemPrompt string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		url:          cfg.URL,
		catalogID:    cfg.CatalogID,
		secretKey:    cfg.SecretKey,
		systemPrompt: systemPrompt,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Kind returns the provider kind
func (c *Client) Kind() assistant.Kind {
	return assistant.KindYandex
}

type message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

type completionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []message         `json:"messages"`
}

// flexInt accepts both JSON numbers and numeric strings; the API encodes
// int64 counters as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

type completionResponse struct {
	Result *struct {
		Alternatives []struct {
			Message message `json:"message"`
			Status  string  `json:"status"`
		} `json:"alternatives"`
		Usage struct {
			TotalTokens flexInt `json:"totalTokens"`
		} `json:"usage"`
	} `json:"result"`
}

// Complete sends the conversation to YandexGPT
func (c *Client) Complete(ctx context.Context, req assistant.Request) (assistant.Reply, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	msgs := make([]message, 0, len(req.Turns)+1)
	if c.systemPrompt != "" && len(req.Turns) > 0 {
		msgs = append(msgs, message{Role: "system", Text: c.systemPrompt})
	}
	for _, t := range req.Turns {
		msgs = append(msgs, message{Role: t.Role, Text: t.Text})
	}

	body := completionRequest{
		ModelURI: fmt.Sprintf("gpt://%s/%s", c.catalogID, model),
		CompletionOptions: completionOptions{
			Stream:      false,
			Temperature: req.Temperature,
			MaxTokens:   strconv.Itoa(req.MaxTokens),
		},
		Messages: msgs,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: encode request: %v", assistant.ErrProviderFailure, err)
	}

	c.logger.Debugw("yandex completion request", "model", model, "turns", len(msgs))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: %v", assistant.ErrProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: %v", assistant.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: read response: %v", assistant.ErrProviderFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return assistant.Reply{}, fmt.Errorf("%w: yandex status %d: %s", assistant.ErrProviderFailure, resp.StatusCode, snippet(raw))
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: decode response: %v", assistant.ErrProviderFailure, err)
	}
	if out.Result == nil || len(out.Result.Alternatives) == 0 || out.Result.Alternatives[0].Message.Text == "" {
		return assistant.Reply{}, fmt.Errorf("%w: yandex response has no alternatives", assistant.ErrProviderFailure)
	}

	return assistant.Reply{
		Text:   out.Result.Alternatives[0].Message.Text,
		Tokens: int(out.Result.Usage.TotalTokens),
	}, nil
}

func snippet(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}
