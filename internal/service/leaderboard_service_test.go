package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/vocab"
)

// recordingCache is an in-memory cache.Leaderboard
type recordingCache struct {
	lists       map[int][]models.Highscore
	invalidated int
	onMiss      func()
}

func (c *recordingCache) Top(_ context.Context, n int) ([]models.Highscore, bool, error) {
	l, ok := c.lists[n]
	if !ok && c.onMiss != nil {
		c.onMiss()
	}
	return l, ok, nil
}

func (c *recordingCache) StoreTop(_ context.Context, n int, scores []models.Highscore) error {
	if c.lists == nil {
		c.lists = map[int][]models.Highscore{}
	}
	c.lists[n] = scores
	return nil
}

func (c *recordingCache) Invalidate(context.Context) error {
	c.lists = nil
	c.invalidated++
	return nil
}

func TestLeaderboard_RecordScoreUsesRandomName(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	svc := NewLeaderboardService(f.scores, nil, f.logger)
	svc.pick = func(n int) int { return n - 1 }

	hs, err := svc.RecordScore(context.Background(), u.ID, 42)
	require.NoError(t, err)
	names := vocab.RandomNames()
	assert.Equal(t, names[len(names)-1], hs.PlayerName)
	assert.NotEqual(t, u.Username, hs.PlayerName)
	assert.Equal(t, 42, hs.Score)
	assert.False(t, hs.Date.IsZero())
}

func TestLeaderboard_TopScoresOrderAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	svc := NewLeaderboardService(f.scores, nil, f.logger)

	for _, s := range []int{5, 50, 15, 50, 0, 99, 7, 23, 61, 8, 30, 12} {
		_, err := svc.RecordScore(ctx, u.ID, s)
		require.NoError(t, err)
	}

	for _, n := range []int{DefaultTopScores, 0, -1, 101} {
		top, err := svc.TopScores(ctx, n)
		require.NoError(t, err)
		require.Len(t, top, DefaultTopScores)
		for i := 1; i < len(top); i++ {
			assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
		}
		assert.Equal(t, 99, top[0].Score)
	}

	top, err := svc.TopScores(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)
}

func TestLeaderboard_CacheReadThroughAndInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	c := &recordingCache{}
	svc := NewLeaderboardService(f.scores, c, f.logger)

	_, err := svc.RecordScore(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, c.invalidated)

	top, err := svc.TopScores(ctx, DefaultTopScores)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Contains(t, c.lists, DefaultTopScores)

	// Served from cache: a row written behind the service is not visible
	require.NoError(t, f.scores.Create(ctx, &models.Highscore{UserID: u.ID, PlayerName: "x", Score: 99, Date: top[0].Date}))
	top, err = svc.TopScores(ctx, DefaultTopScores)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	_, err = svc.RecordScore(ctx, u.ID, 20)
	require.NoError(t, err)
	top, err = svc.TopScores(ctx, DefaultTopScores)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 99, top[0].Score)
}

func TestLeaderboard_ReadRacingWriteDoesNotFillCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	c := &recordingCache{}
	svc := NewLeaderboardService(f.scores, c, f.logger)

	_, err := svc.RecordScore(ctx, u.ID, 10)
	require.NoError(t, err)

	c.onMiss = func() {
		c.onMiss = nil
		_, err := svc.RecordScore(ctx, u.ID, 20)
		require.NoError(t, err)
	}
	_, err = svc.TopScores(ctx, DefaultTopScores)
	require.NoError(t, err)
	assert.NotContains(t, c.lists, DefaultTopScores)

	top, err := svc.TopScores(ctx, DefaultTopScores)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 20, top[0].Score)
	assert.Contains(t, c.lists, DefaultTopScores)
}
