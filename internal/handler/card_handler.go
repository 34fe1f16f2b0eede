package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/service"
	"github.com/vocab-trainer/pkg/response"
)

// CardHandler handles the flashcard pages and API
type CardHandler struct {
	catalog      *service.CatalogService
	maxFormBytes int64
}

// NewCardHandler creates a new CardHandler. maxUploadMB bounds the add-card request body.
func NewCardHandler(catalog *service.CatalogService, maxUploadMB int) *CardHandler {
	return &CardHandler{
		catalog:      catalog,
		maxFormBytes: int64(maxUploadMB) << 20,
	}
}

// AddCardPage renders the add-card form
// GET /add_card
func (h *CardHandler) AddCardPage(c *gin.Context) {
	render(c, http.StatusOK, "add_card.html", gin.H{"Title": "Add card", "Form": service.CardInput{}})
}

// AddCard handles the add-card form with an optional image
// POST /add_card
func (h *CardHandler) AddCard(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFormBytes)

	var in service.CardInput
	if err := c.ShouldBind(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.addFailed(c, http.StatusRequestEntityTooLarge, in, "The image is too large.")
			return
		}
		h.addFailed(c, http.StatusBadRequest, in, "English and Russian words are required.")
		return
	}

	var upload *service.ImageUpload
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			renderError(c, http.StatusBadRequest, "Could not read the uploaded image.")
			return
		}
		defer f.Close()
		upload = &service.ImageUpload{Filename: fh.Filename, Body: f}
	}

	card, err := h.catalog.Add(c.Request.Context(), middleware.GetUserID(c), in, upload)
	if err != nil {
		middleware.LogError("add card for user %d: %v", middleware.GetUserID(c), err)
		renderError(c, http.StatusInternalServerError, "Could not save the card. Please try again later.")
		return
	}

	setFlash(c, "success", "Card \""+card.EnglishWord+"\" added.")
	c.Redirect(http.StatusSeeOther, "/study")
}

func (h *CardHandler) addFailed(c *gin.Context, status int, in service.CardInput, msg string) {
	render(c, status, "add_card.html", gin.H{"Title": "Add card", "Form": in, "Error": msg})
}

// Study renders the visible cards
// GET /study
func (h *CardHandler) Study(c *gin.Context) {
	cards, err := h.catalog.ListVisible(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		middleware.LogError("list cards for user %d: %v", middleware.GetUserID(c), err)
		renderError(c, http.StatusInternalServerError, "Could not load your cards.")
		return
	}
	render(c, http.StatusOK, "study.html", gin.H{"Title": "Study", "Cards": cards})
}

// HideCard hides one card and returns to the study page
// POST /hide_card/:id
func (h *CardHandler) HideCard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, http.StatusBadRequest, "Invalid card id.")
		return
	}
	if err := h.catalog.Hide(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		middleware.LogError("hide card %d: %v", id, err)
		renderError(c, http.StatusInternalServerError, "Could not hide the card.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/study")
}

// RestoreAll makes every hidden card visible again
// POST /restore_all
func (h *CardHandler) RestoreAll(c *gin.Context) {
	n, err := h.catalog.RestoreAll(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		middleware.LogError("restore cards for user %d: %v", middleware.GetUserID(c), err)
		renderError(c, http.StatusInternalServerError, "Could not restore the cards.")
		return
	}
	if n > 0 {
		setFlash(c, "success", "Hidden cards restored.")
	}
	c.Redirect(http.StatusSeeOther, "/study")
}

// Describe returns the card details as JSON
// GET /get_card_description/:id
func (h *CardHandler) Describe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	d, err := h.catalog.Describe(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load card"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// APIList returns the visible cards
// GET /api/v1/cards
func (h *CardHandler) APIList(c *gin.Context) {
	cards, err := h.catalog.ListVisible(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list cards")
		return
	}
	response.Success(c, cards)
}

// APICreate creates a card without an image
// POST /api/v1/cards
func (h *CardHandler) APICreate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFormBytes)

	var in service.CardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(c, "request body too large")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.catalog.Add(c.Request.Context(), middleware.GetUserID(c), in, nil)
	if err != nil {
		response.InternalError(c, "failed to create card")
		return
	}
	response.Created(c, card)
}

// APIHide hides a card
// POST /api/v1/cards/:id/hide
func (h *CardHandler) APIHide(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid card id")
		return
	}
	if err := h.catalog.Hide(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.InternalError(c, "failed to hide card")
		return
	}
	response.Success(c, nil)
}

// APIRestore restores every hidden card
// POST /api/v1/cards/restore
func (h *CardHandler) APIRestore(c *gin.Context) {
	n, err := h.catalog.RestoreAll(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to restore cards")
		return
	}
	response.Success(c, gin.H{"restored": n})
}

// APIDescribe returns a card description
// GET /api/v1/cards/:id
func (h *CardHandler) APIDescribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid card id")
		return
	}
	d, err := h.catalog.Describe(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			response.NotFound(c, "card not found")
			return
		}
		response.InternalError(c, "failed to load card")
		return
	}
	response.Success(c, d)
}

// RegisterRoutes registers card pages and API routes
func (h *CardHandler) RegisterRoutes(pages, ajax *gin.RouterGroup, api *gin.RouterGroup) {
	pages.GET("/add_card", h.AddCardPage)
	pages.POST("/add_card", h.AddCard)
	pages.GET("/study", h.Study)
	pages.POST("/hide_card/:id", h.HideCard)
	pages.POST("/restore_all", h.RestoreAll)
	ajax.GET("/get_card_description/:id", h.Describe)

	cards := api.Group("/cards")
	{
		cards.GET("", h.APIList)
		cards.POST("", h.APICreate)
		cards.POST("/restore", h.APIRestore)
		cards.GET("/:id", h.APIDescribe)
		cards.POST("/:id/hide", h.APIHide)
	}
}
