package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/vocab-trainer/internal/cache"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/vocab"
	"go.uber.org/zap"
)

const (
	// DefaultTopScores is the leaderboard length shown on /highscores
	DefaultTopScores = 10
	maxTopScores     = 100
)

// LeaderboardService records game scores and serves the global top list
type LeaderboardService struct {
	scoreRepo *repository.HighscoreRepository
	cache     cache.Leaderboard
	names     []string
	pick      func(n int) int
	now       func() time.Time
	logger    *zap.SugaredLogger

	// bumped on every write; a read-through only fills the cache if it did not move
	generation atomic.Uint64
}

// NewLeaderboardService creates a new LeaderboardService. A nil cache disables caching.
func NewLeaderboardService(scoreRepo *repository.HighscoreRepository, lb cache.Leaderboard, logger *zap.SugaredLogger) *LeaderboardService {
	if lb == nil {
		lb = cache.Noop{}
	}
	return &LeaderboardService{
		scoreRepo: scoreRepo,
		cache:     lb,
		names:     vocab.RandomNames(),
		pick:      rand.IntN,
		now:       time.Now,
		logger:    logger,
	}
}

// SaveScoreRequest represents the save-score request
type SaveScoreRequest struct {
	Score *int `form:"score" json:"score" binding:"required,min=0"`
}

// RecordScore appends a score for userID under a randomly picked display name
func (s *LeaderboardService) RecordScore(ctx context.Context, userID uint, score int) (*models.Highscore, error) {
	hs := &models.Highscore{
		UserID:     userID,
		PlayerName: s.names[s.pick(len(s.names))],
		Score:      score,
		Date:       s.now(),
	}
	if err := s.scoreRepo.Create(ctx, hs); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	s.generation.Add(1)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warnw("failed to invalidate leaderboard cache", "error", err)
	}
	return hs, nil
}

// TopScores returns at most n scores ordered by score descending, ties by
// insertion order. n outside [1, 100] falls back to the default of 10.
func (s *LeaderboardService) TopScores(ctx context.Context, n int) ([]models.Highscore, error) {
	if n <= 0 || n > maxTopScores {
		n = DefaultTopScores
	}

	gen := s.generation.Load()
	scores, ok, err := s.cache.Top(ctx, n)
	if err != nil {
		s.logger.Warnw("leaderboard cache read failed", "error", err)
	}
	if ok {
		return scores, nil
	}

	scores, err = s.scoreRepo.Top(ctx, n)
	if err != nil {
		return nil, err
	}
	if s.generation.Load() != gen {
		return scores, nil
	}
	if err := s.cache.StoreTop(ctx, n, scores); err != nil {
		s.logger.Warnw("leaderboard cache write failed", "error", err)
	}
	return scores, nil
}
