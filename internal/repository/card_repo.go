package repository

import (
	"context"
	"errors"

	"github.com/vocab-trainer/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCardNotFound = errors.New("card not found")
)

// CardRepository handles card data access. Every query is scoped to the
// owning user.
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *CardRepository) WithTx(tx *gorm.DB) *CardRepository {
	return &CardRepository{db: tx}
}

// Create creates a new card
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// CreateBatch inserts several cards in one statement
func (r *CardRepository) CreateBatch(ctx context.Context, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cards).Error
}

// ListVisible returns the user's non-hidden cards in insertion order
func (r *CardRepository) ListVisible(ctx context.Context, userID uint) ([]models.Card, error) {
	var cards []models.Card
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND is_hidden = ?", userID, false).
		Order("id ASC").
		Find(&cards)
	return cards, result.Error
}

// ListAll returns every card the user owns, hidden or not
func (r *CardRepository) ListAll(ctx context.Context, userID uint) ([]models.Card, error) {
	var cards []models.Card
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&cards)
	return cards, result.Error
}

// GetByIDAndUserID retrieves a card by ID and owner
func (r *CardRepository) GetByIDAndUserID(ctx context.Context, id, userID uint) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

// CountByUserID counts all cards owned by a user
func (r *CardRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Card{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ExistingPairs returns the set of term pairs the user already owns
func (r *CardRepository) ExistingPairs(ctx context.Context, userID uint) (map[models.WordPair]struct{}, error) {
	var pairs []models.WordPair
	err := r.db.WithContext(ctx).Model(&models.Card{}).
		Select("english_word", "russian_word").
		Where("user_id = ?", userID).
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}

	set := make(map[models.WordPair]struct{}, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	return set, nil
}

// Hide flags one card as hidden. The update is scoped to the owner, so a
// foreign or missing card affects nothing and reports false.
func (r *CardRepository) Hide(ctx context.Context, userID, cardID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("id = ? AND user_id = ?", cardID, userID).
		Update("is_hidden", true)
	return result.RowsAffected > 0, result.Error
}

// RestoreAll clears the hidden flag on every card the user owns
func (r *CardRepository) RestoreAll(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("user_id = ? AND is_hidden = ?", userID, true).
		Update("is_hidden", false)
	return result.RowsAffected, result.Error
}
