package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocab-trainer/internal/models"
)

func TestChatRepository_RecentIsModelScopedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	r := NewChatRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "alice")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Create(ctx, &models.ChatMessage{
			UserID: u.ID, Role: models.ChatRoleUser, Model: "yandex",
			Message: fmt.Sprintf("y%d", i), Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, r.Create(ctx, &models.ChatMessage{
		UserID: u.ID, Role: models.ChatRoleUser, Model: "llama3", Message: "other", Timestamp: base,
	}))

	recent, err := r.Recent(ctx, u.ID, "yandex", 3)
	require.NoError(t, err)
	if assert.Len(t, recent, 3) {
		assert.Equal(t, "y4", recent[0].Message)
		assert.Equal(t, "y3", recent[1].Message)
		assert.Equal(t, "y2", recent[2].Message)
	}

	history, err := r.History(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Len(t, history, 6)

	history, err = r.History(ctx, u.ID, "yandex")
	require.NoError(t, err)
	if assert.Len(t, history, 5) {
		assert.Equal(t, "y0", history[0].Message)
	}
}

func TestChatRepository_Clear(t *testing.T) {
	db := newTestDB(t)
	r := NewChatRepository(db)
	ctx := context.Background()
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")

	now := time.Now().UTC()
	for _, m := range []models.ChatMessage{
		{UserID: alice.ID, Role: models.ChatRoleUser, Model: "yandex", Message: "a", Timestamp: now},
		{UserID: alice.ID, Role: models.ChatRoleUser, Model: "gemma", Message: "b", Timestamp: now},
		{UserID: bob.ID, Role: models.ChatRoleUser, Model: "yandex", Message: "c", Timestamp: now},
	} {
		m := m
		require.NoError(t, r.Create(ctx, &m))
	}

	n, err := r.Clear(ctx, alice.ID, "gemma")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.Clear(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := r.History(ctx, bob.ID, "")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestHighscoreRepository_TopSortedAndLimited(t *testing.T) {
	db := newTestDB(t)
	r := NewHighscoreRepository(db)
	ctx := context.Background()
	u := mkUser(t, db, "alice")

	for i, s := range []int{5, 40, 12, 40, 1, 7, 33, 2, 9, 18, 27, 3} {
		require.NoError(t, r.Create(ctx, &models.Highscore{
			UserID: u.ID, PlayerName: fmt.Sprintf("p%d", i), Score: s, Date: time.Now().UTC(),
		}))
	}

	top, err := r.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 10)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
	// tie on 40 keeps insertion order
	assert.Equal(t, "p1", top[0].PlayerName)
	assert.Equal(t, "p3", top[1].PlayerName)

	all, err := r.Top(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}
