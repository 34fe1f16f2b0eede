package service

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/storage"
	"github.com/vocab-trainer/internal/vocab"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinimumCards is the deck size a new user is seeded up to
const MinimumCards = 8

// CatalogService manages a user's flashcards
type CatalogService struct {
	cardRepo *repository.CardRepository
	tx       *repository.Transactor
	images   storage.ImageStore
	pool     []vocab.Entry
	shuffle  func(n int, swap func(i, j int))
	now      func() time.Time
	logger   *zap.SugaredLogger
}

// NewCatalogService creates a new CatalogService seeded from the reference word pool
func NewCatalogService(
	cardRepo *repository.CardRepository,
	tx *repository.Transactor,
	images storage.ImageStore,
	logger *zap.SugaredLogger,
) *CatalogService {
	return &CatalogService{
		cardRepo: cardRepo,
		tx:       tx,
		images:   images,
		pool:     vocab.AdvancedWords(),
		shuffle:  rand.Shuffle,
		now:      time.Now,
		logger:   logger,
	}
}

// CardInput represents the add-card form
type CardInput struct {
	EnglishWord      string `form:"english_word" json:"english_word" binding:"required,max=200"`
	RussianWord      string `form:"russian_word" json:"russian_word" binding:"required,max=200"`
	Description      string `form:"description" json:"description"`
	Transcription    string `form:"transcription" json:"transcription" binding:"max=200"`
	PronunciationURL string `form:"pronunciation_url" json:"pronunciation_url" binding:"max=500"`
}

// ImageUpload is an optional image attached to a new card
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// ListVisible returns the user's non-hidden cards in insertion order
func (s *CatalogService) ListVisible(ctx context.Context, userID uint) ([]models.Card, error) {
	return s.cardRepo.ListVisible(ctx, userID)
}

// Add creates a card owned by userID. An image with an unsupported
// extension is dropped; a storage failure aborts the whole operation.
func (s *CatalogService) Add(ctx context.Context, userID uint, in CardInput, image *ImageUpload) (*models.Card, error) {
	card := &models.Card{
		UserID:           userID,
		EnglishWord:      in.EnglishWord,
		RussianWord:      in.RussianWord,
		Description:      in.Description,
		Transcription:    in.Transcription,
		PronunciationURL: in.PronunciationURL,
	}

	if image != nil && image.Filename != "" {
		if storage.AllowedImage(image.Filename) {
			ref, err := s.images.Save(ctx, storage.UniqueName(image.Filename, s.now()), image.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to store image: %w", err)
			}
			card.ImagePath = &ref
		} else {
			s.logger.Debugw("dropping image with unsupported extension", "user_id", userID, "filename", image.Filename)
		}
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return card, nil
}

// Hide hides one of the user's cards. Foreign or missing ids are a no-op.
func (s *CatalogService) Hide(ctx context.Context, userID, cardID uint) error {
	hidden, err := s.cardRepo.Hide(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if !hidden {
		s.logger.Debugw("hide matched no card", "user_id", userID, "card_id", cardID)
	}
	return nil
}

// RestoreAll makes every card of the user visible again
func (s *CatalogService) RestoreAll(ctx context.Context, userID uint) (int64, error) {
	return s.cardRepo.RestoreAll(ctx, userID)
}

// Describe returns the description payload for one of the user's cards
func (s *CatalogService) Describe(ctx context.Context, userID, cardID uint) (*models.CardDescription, error) {
	card, err := s.cardRepo.GetByIDAndUserID(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	d := card.Describe()
	return &d, nil
}

// SeedIfShort tops the user's deck up to minimum cards from a shuffled copy
// of the reference pool, skipping pairs the user already owns. Returns the
// number of cards added.
func (s *CatalogService) SeedIfShort(ctx context.Context, userID uint, minimum int) (int, error) {
	added := 0
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		cards := s.cardRepo.WithTx(tx)

		count, err := cards.CountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if count >= int64(minimum) {
			return nil
		}

		existing, err := cards.ExistingPairs(ctx, userID)
		if err != nil {
			return err
		}

		candidates := make([]vocab.Entry, len(s.pool))
		copy(candidates, s.pool)
		s.shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		need := minimum - int(count)
		batch := make([]models.Card, 0, need)
		for _, e := range candidates {
			if len(batch) == need {
				break
			}
			if _, ok := existing[e.Pair()]; ok {
				continue
			}
			existing[e.Pair()] = struct{}{}
			batch = append(batch, e.Card(userID))
		}

		if err := cards.CreateBatch(ctx, batch); err != nil {
			return err
		}
		added = len(batch)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed cards: %w", err)
	}
	return added, nil
}
