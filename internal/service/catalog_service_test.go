package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/storage"
	"github.com/vocab-trainer/internal/vocab"
)

func TestCatalog_ListVisibleIsScopedAndOrdered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.addCards(t, alice.ID, pair("cat", "кошка"), pair("dog", "собака"))
	f.addCards(t, bob.ID, pair("sun", "солнце"))

	cards, err := f.catalog(nil).ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "cat", cards[0].EnglishWord)
	assert.Equal(t, "dog", cards[1].EnglishWord)
	for _, c := range cards {
		assert.Equal(t, alice.ID, c.UserID)
		assert.False(t, c.IsHidden)
	}
}

func TestCatalog_AddWithImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	images := &memImages{}
	svc := f.catalog(images)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	card, err := svc.Add(ctx, u.ID, CardInput{EnglishWord: "tree", RussianWord: "дерево", Description: "a plant"},
		&ImageUpload{Filename: "My Tree.PNG", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	require.NotNil(t, card.ImagePath)
	assert.Regexp(t, `^card_images/My_Tree_20240301100000_[0-9a-f]{8}\.png$`, *card.ImagePath)
	assert.Equal(t, []byte("png-bytes"), images.saved[strings.TrimPrefix(*card.ImagePath, "card_images/")])

	stored, err := f.cards.GetByIDAndUserID(ctx, card.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a plant", stored.Description)
	assert.False(t, stored.IsHidden)
}

func TestCatalog_AddSameImageNameSameSecond(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	local, err := storage.NewLocalStore(filepath.Join(t.TempDir(), storage.Prefix))
	require.NoError(t, err)
	svc := NewCatalogService(f.cards, f.tx, local, f.logger)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	a, err := svc.Add(ctx, alice.ID, CardInput{EnglishWord: "sea", RussianWord: "море"},
		&ImageUpload{Filename: "photo.jpg", Body: strings.NewReader("alice")})
	require.NoError(t, err)
	b, err := svc.Add(ctx, bob.ID, CardInput{EnglishWord: "sky", RussianWord: "небо"},
		&ImageUpload{Filename: "photo.jpg", Body: strings.NewReader("bob")})
	require.NoError(t, err)

	require.NotNil(t, a.ImagePath)
	require.NotNil(t, b.ImagePath)
	assert.NotEqual(t, *a.ImagePath, *b.ImagePath)
}

func TestCatalog_AddDropsUnsupportedImage(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	images := &memImages{}

	card, err := f.catalog(images).Add(context.Background(), u.ID, CardInput{EnglishWord: "a", RussianWord: "б"},
		&ImageUpload{Filename: "script.exe", Body: strings.NewReader("MZ")})
	require.NoError(t, err)
	assert.Nil(t, card.ImagePath)
	assert.Empty(t, images.saved)
}

func TestCatalog_AddFailsWhenStorageFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")

	_, err := f.catalog(&memImages{fail: true}).Add(ctx, u.ID, CardInput{EnglishWord: "a", RussianWord: "б"},
		&ImageUpload{Filename: "a.jpg", Body: strings.NewReader("x")})
	require.Error(t, err)

	n, err := f.cards.CountByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCatalog_HideAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.addCards(t, alice.ID, pair("one", "один"), pair("two", "два"))
	f.addCards(t, bob.ID, pair("three", "три"))
	svc := f.catalog(nil)

	cards, err := svc.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Hide(ctx, alice.ID, cards[0].ID))

	visible, err := svc.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "two", visible[0].EnglishWord)

	// Foreign and missing cards are silently ignored
	bobCards, err := svc.ListVisible(ctx, bob.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Hide(ctx, alice.ID, bobCards[0].ID))
	require.NoError(t, svc.Hide(ctx, alice.ID, 9999))
	bobCards, err = svc.ListVisible(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobCards, 1)

	restored, err := svc.RestoreAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, restored)

	visible, err = svc.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestCatalog_Describe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	svc := f.catalog(nil)

	card, err := svc.Add(ctx, alice.ID, CardInput{EnglishWord: "moon", RussianWord: "луна", Transcription: "/muːn/"}, nil)
	require.NoError(t, err)

	d, err := svc.Describe(ctx, alice.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "/muːn/", d.Transcription)

	_, err = svc.Describe(ctx, bob.ID, card.ID)
	assert.ErrorIs(t, err, repository.ErrCardNotFound)
}

func TestCatalog_SeedIfShortIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	svc := f.catalog(nil)

	added, err := svc.SeedIfShort(ctx, u.ID, MinimumCards)
	require.NoError(t, err)
	assert.Equal(t, MinimumCards, added)

	added, err = svc.SeedIfShort(ctx, u.ID, MinimumCards)
	require.NoError(t, err)
	assert.Zero(t, added)

	cards, err := f.cards.ListAll(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cards, MinimumCards)
	assertUniquePairs(t, cards)
}

func TestCatalog_SeedSkipsOwnedPairs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	pool := vocab.AdvancedWords()
	f.addCards(t, u.ID, pool[0].Pair(), pool[1].Pair(), pair("house", "дом"))

	added, err := f.catalog(nil).SeedIfShort(ctx, u.ID, MinimumCards)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	cards, err := f.cards.ListAll(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cards, MinimumCards)
	assertUniquePairs(t, cards)
}

func TestCatalog_SeedCountFormula(t *testing.T) {
	pool := vocab.AdvancedWords()
	tests := []struct {
		name     string
		prior    int
		poolSize int
		want     int
	}{
		{"empty deck, full pool", 0, len(pool), MinimumCards},
		{"short pool", 0, 3, 3},
		{"partial deck, short pool", 4, 2, 6},
		{"already full", 9, len(pool), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			u := f.user(t, "u")
			for i := 0; i < tt.prior; i++ {
				f.addCards(t, u.ID, pair("own"+string(rune('a'+i)), "свой"))
			}
			svc := f.catalog(nil)
			svc.pool = pool[:tt.poolSize]

			_, err := svc.SeedIfShort(ctx, u.ID, MinimumCards)
			require.NoError(t, err)

			n, err := f.cards.CountByUserID(ctx, u.ID)
			require.NoError(t, err)
			// max(prior, min(minimum, prior + unique candidates))
			assert.EqualValues(t, tt.want, n)
		})
	}
}

func TestCatalog_SeedDeduplicatesPool(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice")
	pool := vocab.AdvancedWords()
	svc := f.catalog(nil)
	svc.pool = []vocab.Entry{pool[0], pool[0], pool[1]}

	added, err := svc.SeedIfShort(context.Background(), u.ID, MinimumCards)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func assertUniquePairs(t *testing.T, cards []models.Card) {
	t.Helper()
	seen := map[models.WordPair]bool{}
	for _, c := range cards {
		assert.False(t, seen[c.Pair()], "duplicate pair %v", c.Pair())
		seen[c.Pair()] = true
	}
}
