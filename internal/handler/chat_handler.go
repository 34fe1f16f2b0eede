package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vocab-trainer/internal/assistant"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/internal/service"
	"github.com/vocab-trainer/pkg/response"
)

// FallbackReply is sent when the completion provider fails
const FallbackReply = "Sorry, the assistant is unavailable right now. Please try again later."

const (
	wsReadLimit  = 64 << 10
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsWriteWait  = 10 * time.Second
)

// ChatHandler serves the assistant chat
type ChatHandler struct {
	chat               *service.ChatService
	defaultTemperature float64
	upgrader           websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler. Websocket upgrades are accepted
// from same-host pages and from allowedOrigins.
func NewChatHandler(chat *service.ChatService, defaultTemperature float64, allowedOrigins []string) *ChatHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &ChatHandler{
		chat:               chat,
		defaultTemperature: defaultTemperature,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// Page renders the chat page
// GET /chat
func (h *ChatHandler) Page(c *gin.Context) {
	render(c, http.StatusOK, "chat.html", gin.H{
		"Title":        "Assistant",
		"Models":       h.chat.Models(),
		"DefaultModel": h.chat.DefaultModel(),
		"Temperature":  h.defaultTemperature,
	})
}

// askStatus maps a chat error to an HTTP status and the JSON body to send
func askStatus(err error) (int, gin.H) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, gin.H{"error": "message is empty"}
	case errors.Is(err, assistant.ErrUnknownModel):
		return http.StatusBadRequest, gin.H{"error": "unknown model"}
	case errors.Is(err, assistant.ErrProviderFailure):
		return http.StatusInternalServerError, gin.H{"response": FallbackReply, "error": "assistant unavailable"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}

// Ask forwards one message to the assistant
// POST /ask
func (h *ChatHandler) Ask(c *gin.Context) {
	var req service.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reply, err := h.chat.Ask(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		if !errors.Is(err, assistant.ErrProviderFailure) {
			middleware.LogDebug("ask rejected for user %d: %v", middleware.GetUserID(c), err)
		}
		c.JSON(askStatus(err))
		return
	}
	c.JSON(http.StatusOK, service.AskResponse{Response: reply})
}

// History returns the chat history, optionally for one model
// GET /get_chat_history?model=
func (h *ChatHandler) History(c *gin.Context) {
	msgs, err := h.chat.History(c.Request.Context(), middleware.GetUserID(c), c.Query("model"))
	if err != nil {
		middleware.LogError("load chat history for user %d: %v", middleware.GetUserID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// ClearHistory deletes the chat history, optionally for one model
// POST /clear_chat_history
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	var req struct {
		Model string `json:"model" form:"model"`
	}
	// An empty body clears every conversation
	_ = c.ShouldBind(&req)
	if req.Model == "" {
		req.Model = c.Query("model")
	}

	n, err := h.chat.ClearHistory(c.Request.Context(), middleware.GetUserID(c), req.Model)
	if err != nil {
		middleware.LogError("clear chat history for user %d: %v", middleware.GetUserID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": n})
}

// Stream serves the chat over a websocket. Every inbound ask frame is
// answered with {"response"} or {"error"} in order.
// GET /ws/chat
func (h *ChatHandler) Stream(c *gin.Context) {
	userID := middleware.GetUserID(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		middleware.LogDebug("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	frames := make(chan gin.H)
	go func() {
		defer cancel()
		for {
			var req service.AskRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					middleware.LogDebug("websocket read for user %d: %v", userID, err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

			var frame gin.H
			if reply, err := h.chat.Ask(ctx, userID, &req); err != nil {
				_, frame = askStatus(err)
			} else {
				frame = gin.H{"response": reply}
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case frame := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// RegisterRoutes registers chat routes. The page sits behind the page
// guard; the JSON and websocket endpoints behind the JSON guard.
func (h *ChatHandler) RegisterRoutes(pages, ajax *gin.RouterGroup, api *gin.RouterGroup) {
	pages.GET("/chat", h.Page)
	ajax.POST("/ask", h.Ask)
	ajax.GET("/get_chat_history", h.History)
	ajax.POST("/clear_chat_history", h.ClearHistory)
	ajax.GET("/ws/chat", h.Stream)

	chat := api.Group("/chat")
	{
		chat.POST("/ask", h.APIAsk)
		chat.GET("/history", h.History)
		chat.DELETE("/history", h.ClearHistory)
		chat.GET("/models", h.APIModels)
	}
}

// APIAsk forwards one message to the assistant and answers in the API envelope
// POST /api/v1/chat/ask
func (h *ChatHandler) APIAsk(c *gin.Context) {
	var req service.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	reply, err := h.chat.Ask(c.Request.Context(), middleware.GetUserID(c), &req)
	switch {
	case err == nil:
		response.Success(c, service.AskResponse{Response: reply})
	case errors.Is(err, service.ErrEmptyMessage):
		response.BadRequest(c, "message is empty")
	case errors.Is(err, assistant.ErrUnknownModel):
		response.BadRequest(c, "unknown model")
	case errors.Is(err, assistant.ErrProviderFailure):
		response.UpstreamError(c, "assistant unavailable")
	default:
		response.InternalError(c, "failed to ask assistant")
	}
}

// APIModels lists the selectable models
// GET /api/v1/chat/models
func (h *ChatHandler) APIModels(c *gin.Context) {
	response.Success(c, gin.H{"models": h.chat.Models(), "default": h.chat.DefaultModel()})
}
