package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	users  *repository.UserRepository
	cards  *repository.CardRepository
	scores *repository.HighscoreRepository
	chats  *repository.ChatRepository
	tx     *repository.Transactor
	logger *zap.SugaredLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &fixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		cards:  repository.NewCardRepository(db),
		scores: repository.NewHighscoreRepository(db),
		chats:  repository.NewChatRepository(db),
		tx:     repository.NewTransactor(db),
		logger: zap.NewNop().Sugar(),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addCards(t *testing.T, userID uint, pairs ...models.WordPair) {
	t.Helper()
	cards := make([]models.Card, len(pairs))
	for i, p := range pairs {
		cards[i] = models.Card{UserID: userID, EnglishWord: p.EnglishWord, RussianWord: p.RussianWord}
	}
	require.NoError(t, f.cards.CreateBatch(context.Background(), cards))
}

func (f *fixture) catalog(images *memImages) *CatalogService {
	if images == nil {
		images = &memImages{}
	}
	return NewCatalogService(f.cards, f.tx, images, f.logger)
}

func pair(en, ru string) models.WordPair {
	return models.WordPair{EnglishWord: en, RussianWord: ru}
}

// memImages is an in-memory ImageStore
type memImages struct {
	mu    sync.Mutex
	saved map[string][]byte
	fail  bool
}

func (m *memImages) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if m.fail {
		return "", errors.New("disk full")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = b
	return "card_images/" + name, nil
}
