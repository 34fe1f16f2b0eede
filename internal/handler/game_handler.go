package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/service"
	"github.com/vocab-trainer/pkg/response"
)

// GameHandler serves the quiz and memory games
type GameHandler struct {
	games *service.GameService
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

func (h *GameHandler) deck(c *gin.Context) ([]models.WordPair, bool) {
	deck, err := h.games.BuildFixedDeck(c.Request.Context(), middleware.GetUserID(c), service.DeckSize)
	if err != nil {
		middleware.LogError("build deck for user %d: %v", middleware.GetUserID(c), err)
		return nil, false
	}
	return deck, true
}

// Quiz renders the multiple-choice game
// GET /game
func (h *GameHandler) Quiz(c *gin.Context) {
	deck, ok := h.deck(c)
	if !ok {
		renderError(c, http.StatusInternalServerError, "Could not prepare the game.")
		return
	}
	render(c, http.StatusOK, "game.html", gin.H{"Title": "Quiz", "Deck": deck})
}

// Memory renders the memory-matching game
// GET /memory_game
func (h *GameHandler) Memory(c *gin.Context) {
	deck, ok := h.deck(c)
	if !ok {
		renderError(c, http.StatusInternalServerError, "Could not prepare the game.")
		return
	}
	render(c, http.StatusOK, "memory_game.html", gin.H{"Title": "Memory", "Deck": deck})
}

// APIDeck returns the game deck
// GET /api/v1/game/deck
func (h *GameHandler) APIDeck(c *gin.Context) {
	deck, ok := h.deck(c)
	if !ok {
		response.InternalError(c, "failed to build deck")
		return
	}
	response.Success(c, deck)
}

// RegisterRoutes registers game pages and API routes
func (h *GameHandler) RegisterRoutes(pages *gin.RouterGroup, api *gin.RouterGroup) {
	pages.GET("/game", h.Quiz)
	pages.GET("/memory_game", h.Memory)
	api.GET("/game/deck", h.APIDeck)
}
