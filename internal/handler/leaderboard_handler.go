package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/internal/service"
	"github.com/vocab-trainer/pkg/response"
)

// LeaderboardHandler serves the highscore table
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Highscores renders the top scores, or returns them as JSON
// GET /highscores
func (h *LeaderboardHandler) Highscores(c *gin.Context) {
	scores, err := h.leaderboard.TopScores(c.Request.Context(), service.DefaultTopScores)
	if err != nil {
		middleware.LogError("load highscores: %v", err)
		renderError(c, http.StatusInternalServerError, "Could not load the highscores.")
		return
	}
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, scores)
		return
	}
	render(c, http.StatusOK, "highscores.html", gin.H{"Title": "Highscores", "Scores": scores})
}

// SaveScore records a finished game
// POST /save_score
func (h *LeaderboardHandler) SaveScore(c *gin.Context) {
	var req service.SaveScoreRequest
	if err := c.ShouldBind(&req); err != nil {
		if middleware.WantsJSON(c) || c.ContentType() == gin.MIMEJSON {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid score"})
			return
		}
		renderError(c, http.StatusBadRequest, "Invalid score.")
		return
	}

	if _, err := h.leaderboard.RecordScore(c.Request.Context(), middleware.GetUserID(c), *req.Score); err != nil {
		middleware.LogError("save score for user %d: %v", middleware.GetUserID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to save score"})
		return
	}

	if c.ContentType() == gin.MIMEJSON || middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/highscores")
}

// APITop returns the top scores
// GET /api/v1/highscores?n=10
func (h *LeaderboardHandler) APITop(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", strconv.Itoa(service.DefaultTopScores)))
	if err != nil {
		response.BadRequest(c, "n must be an integer")
		return
	}
	scores, err := h.leaderboard.TopScores(c.Request.Context(), n)
	if err != nil {
		response.InternalError(c, "failed to load highscores")
		return
	}
	response.Success(c, scores)
}

// APISave records a score
// POST /api/v1/highscores
func (h *LeaderboardHandler) APISave(c *gin.Context) {
	var req service.SaveScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	hs, err := h.leaderboard.RecordScore(c.Request.Context(), middleware.GetUserID(c), *req.Score)
	if err != nil {
		response.InternalError(c, "failed to save score")
		return
	}
	response.Created(c, hs)
}

// RegisterRoutes registers leaderboard routes. Reading is public.
func (h *LeaderboardHandler) RegisterRoutes(r gin.IRouter, pages *gin.RouterGroup, api *gin.RouterGroup, apiAuth gin.HandlerFunc) {
	r.GET("/highscores", h.Highscores)
	pages.POST("/save_score", h.SaveScore)

	api.GET("/highscores", h.APITop)
	api.POST("/highscores", apiAuth, h.APISave)
}
