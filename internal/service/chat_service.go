package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vocab-trainer/internal/assistant"
	"github.com/vocab-trainer/internal/config"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrEmptyMessage is returned when the chat message is blank
var ErrEmptyMessage = errors.New("message is empty")

// ChatService bridges persisted chat history and the completion providers
type ChatService struct {
	chatRepo     *repository.ChatRepository
	tx           *repository.Transactor
	registry     *assistant.Registry
	cfg          config.AssistantConfig
	defaultModel string
	now          func() time.Time
	logger       *zap.SugaredLogger
}

// NewChatService creates a new ChatService. defaultModel is used when a
// request names no model.
func NewChatService(
	chatRepo *repository.ChatRepository,
	tx *repository.Transactor,
	registry *assistant.Registry,
	cfg config.AssistantConfig,
	defaultModel string,
	logger *zap.SugaredLogger,
) *ChatService {
	return &ChatService{
		chatRepo:     chatRepo,
		tx:           tx,
		registry:     registry,
		cfg:          cfg,
		defaultModel: defaultModel,
		now:          time.Now,
		logger:       logger,
	}
}

// AskRequest represents the /ask request. A missing temperature or a
// non-positive max_tokens falls back to the configured defaults.
type AskRequest struct {
	Message     string   `json:"message"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
}

// AskResponse represents the /ask response
type AskResponse struct {
	Response string `json:"response"`
}

// Ask persists the user's message, sends the recent conversation with the
// chosen model to its provider and persists the reply
func (s *ChatService) Ask(ctx context.Context, userID uint, req *AskRequest) (string, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return "", ErrEmptyMessage
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	route, err := s.registry.Resolve(model)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, model)
	}

	var turns []assistant.Turn
	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		chats := s.chatRepo.WithTx(tx)
		if err := chats.Create(ctx, &models.ChatMessage{
			UserID:    userID,
			Role:      models.ChatRoleUser,
			Message:   text,
			Model:     model,
			Timestamp: s.now(),
		}); err != nil {
			return err
		}

		recent, err := chats.Recent(ctx, userID, model, s.cfg.HistoryWindow)
		if err != nil {
			return err
		}
		turns = contextWindow(recent)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to record message: %w", err)
	}

	s.logger.Debugw("sending chat context", "user_id", userID, "model", model, "turns", len(turns))

	reply, err := route.Provider.Complete(ctx, assistant.Request{
		Model:       route.Model,
		Turns:       turns,
		Temperature: s.temperature(req.Temperature),
		MaxTokens:   s.maxTokens(req.MaxTokens),
	})
	if err != nil {
		s.logger.Errorw("completion provider failed", "user_id", userID, "model", model, "provider", route.Provider.Kind(), "error", err)
		if !errors.Is(err, assistant.ErrProviderFailure) {
			err = fmt.Errorf("%w: %v", assistant.ErrProviderFailure, err)
		}
		return "", err
	}

	if err := s.chatRepo.Create(ctx, &models.ChatMessage{
		UserID:    userID,
		Role:      models.ChatRoleAssistant,
		Message:   reply.Text,
		Model:     model,
		Timestamp: s.now(),
	}); err != nil {
		return "", fmt.Errorf("failed to record reply: %w", err)
	}

	s.logger.Infow("chat reply", "user_id", userID, "model", model, "tokens", reply.Tokens)
	return reply.Text, nil
}

// History returns the conversation with model, or every conversation when
// model is empty, oldest first
func (s *ChatService) History(ctx context.Context, userID uint, model string) ([]models.ChatMessage, error) {
	return s.chatRepo.History(ctx, userID, model)
}

// ClearHistory deletes the conversation with model, or all of them when model is empty
func (s *ChatService) ClearHistory(ctx context.Context, userID uint, model string) (int64, error) {
	n, err := s.chatRepo.Clear(ctx, userID, model)
	if err != nil {
		return 0, err
	}
	s.logger.Infow("chat history cleared", "user_id", userID, "model", model, "deleted", n)
	return n, nil
}

// Models returns the selectable model keys
func (s *ChatService) Models() []string {
	return s.registry.Keys()
}

// DefaultModel returns the model used when a request names none
func (s *ChatService) DefaultModel() string {
	return s.defaultModel
}

func (s *ChatService) temperature(t *float64) float64 {
	if t == nil {
		return s.cfg.DefaultTemperature
	}
	return min(max(*t, 0), 1)
}

func (s *ChatService) maxTokens(n int) int {
	if n <= 0 {
		return s.cfg.DefaultMaxTokens
	}
	return n
}

// contextWindow turns newest-first messages into chronological turns
func contextWindow(recent []models.ChatMessage) []assistant.Turn {
	turns := make([]assistant.Turn, len(recent))
	for i, m := range recent {
		turns[len(recent)-1-i] = assistant.Turn{Role: string(m.Role), Text: m.Message}
	}
	return turns
}
