package repository

import (
	"context"

	"github.com/vocab-trainer/internal/models"
	"gorm.io/gorm"
)

// HighscoreRepository handles leaderboard data access
type HighscoreRepository struct {
	db *gorm.DB
}

// NewHighscoreRepository creates a new HighscoreRepository
func NewHighscoreRepository(db *gorm.DB) *HighscoreRepository {
	return &HighscoreRepository{db: db}
}

// Create appends a score
func (r *HighscoreRepository) Create(ctx context.Context, score *models.Highscore) error {
	return r.db.WithContext(ctx).Create(score).Error
}

// Top returns the n best scores across all users. Ties keep insertion order.
func (r *HighscoreRepository) Top(ctx context.Context, n int) ([]models.Highscore, error) {
	var scores []models.Highscore
	result := r.db.WithContext(ctx).
		Order("score DESC").
		Order("id ASC").
		Limit(n).
		Find(&scores)
	return scores, result.Error
}
