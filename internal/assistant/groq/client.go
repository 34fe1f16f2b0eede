package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vocab-trainer/internal/assistant"
	"github.com/vocab-trainer/internal/config"
	"go.uber.org/zap"
)

// Models maps the model keys offered in the chat UI to Groq model ids
var Models = map[string]string{
	"mixtral":    "mixtral-8x7b-32768",
	"llama3-70b": "llama3-70b-8192",
	"gemma":      "gemma-7b-it",
	"llama3":     "llama3-8b-8192",
	"gemma2":     "gemma2-9b-it",
}

const topP = 0.9

// Client is a Groq chat-completions client (OpenAI-compatible API)
type Client struct {
	url          string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	logger       *zap.SugaredLogger
}

// NewClient creates a new Groq client
func NewClient(cfg config.GroqConfig, systemPrompt string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		url:          cfg.URL,
		apiKey:       cfg.APIKey,
		systemPrompt: systemPrompt,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Kind returns the provider kind
func (c *Client) Kind() assistant.Kind {
	return assistant.KindGroq
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the conversation to Groq
func (c *Client) Complete(ctx context.Context, req assistant.Request) (assistant.Reply, error) {
	msgs := make([]chatMessage, 0, len(req.Turns)+1)
	if c.systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: c.systemPrompt})
	}
	for _, t := range req.Turns {
		msgs = append(msgs, chatMessage{Role: t.Role, Content: t.Text})
	}

	payload, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        topP,
	})
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: encode request: %v", assistant.ErrProviderFailure, err)
	}

	c.logger.Debugw("groq completion request", "model", req.Model, "turns", len(msgs))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: %v", assistant.ErrProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: %v", assistant.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("%w: read response: %v", assistant.ErrProviderFailure, err)
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		if decodeErr == nil && out.Error != nil {
			msg = out.Error.Message
		}
		return assistant.Reply{}, fmt.Errorf("%w: groq status %d: %s", assistant.ErrProviderFailure, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return assistant.Reply{}, fmt.Errorf("%w: decode response: %v", assistant.ErrProviderFailure, decodeErr)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return assistant.Reply{}, fmt.Errorf("%w: groq response has no choices", assistant.ErrProviderFailure)
	}

	return assistant.Reply{
		Text:   out.Choices[0].Message.Content,
		Tokens: out.Usage.TotalTokens,
	}, nil
}
