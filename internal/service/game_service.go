package service

import (
	"context"

	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/vocab"
)

// DeckSize is the number of pairs the quiz and memory games play with
const DeckSize = 8

// GameService assembles the word decks for the games
type GameService struct {
	cardRepo *repository.CardRepository
	fallback []models.WordPair
}

// NewGameService creates a new GameService
func NewGameService(cardRepo *repository.CardRepository) *GameService {
	return &GameService{
		cardRepo: cardRepo,
		fallback: vocab.DefaultPairs(),
	}
}

// BuildFixedDeck returns exactly size pairs: the user's visible cards,
// padded with fallback pairs the deck does not already contain, truncated
// to size. The result depends only on the stored cards.
func (s *GameService) BuildFixedDeck(ctx context.Context, userID uint, size int) ([]models.WordPair, error) {
	cards, err := s.cardRepo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}

	deck := make([]models.WordPair, 0, max(size, len(cards)))
	present := make(map[models.WordPair]struct{}, len(cards))
	for _, c := range cards {
		p := c.Pair()
		deck = append(deck, p)
		present[p] = struct{}{}
	}

	pad := func(from int) {
		for i := from; i < len(s.fallback) && len(deck) < size; i++ {
			p := s.fallback[i]
			if _, ok := present[p]; ok {
				continue
			}
			deck = append(deck, p)
			present[p] = struct{}{}
		}
	}
	// Positional pass first, then wrap around for entries skipped as duplicates.
	pad(len(deck))
	pad(0)

	if len(deck) > size {
		deck = deck[:size]
	}
	return deck, nil
}
