package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/middleware"
)

// Handlers bundles the HTTP handlers mounted by NewRouter
type Handlers struct {
	Auth        *AuthHandler
	Cards       *CardHandler
	Games       *GameHandler
	Leaderboard *LeaderboardHandler
	Chat        *ChatHandler
}

// NewRouter builds the gin engine: middleware chain, page templates, pages
// under /, and the JSON API under /api/v1
func NewRouter(h Handlers, validator middleware.TokenValidator, cookieName string) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLoggerMiddleware(),
		middleware.Recovery(),
		middleware.SessionGuard(validator, cookieName),
	)
	router.SetHTMLTemplate(tmpl)
	router.NoRoute(func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "Page not found.")
	})

	pages := router.Group("/", middleware.RequireAuth(true))
	ajax := router.Group("/", middleware.RequireAuth(false))

	apiAuth := middleware.RequireAuth(false)
	api := router.Group("/api/v1")
	apiUser := api.Group("", apiAuth)

	h.Auth.RegisterRoutes(router, api, apiAuth)
	h.Cards.RegisterRoutes(pages, ajax, apiUser)
	h.Games.RegisterRoutes(pages, apiUser)
	h.Leaderboard.RegisterRoutes(router, pages, api, apiAuth)
	h.Chat.RegisterRoutes(pages, ajax, apiUser)

	return router, nil
}
