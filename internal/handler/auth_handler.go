package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/config"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/internal/repository"
	"github.com/vocab-trainer/internal/service"
	"github.com/vocab-trainer/pkg/response"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	authService *service.AuthService
	jwtConfig   config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, jwtConfig config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtConfig:   jwtConfig,
	}
}

// Index renders the landing page
// GET /
func (h *AuthHandler) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
}

// RegisterPage renders the registration form
// GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": service.RegisterRequest{}})
}

// Register handles the registration form and logs the new user in
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.registerFailed(c, http.StatusBadRequest, req, "Please fill in a username (3+ characters), a valid email and a password (6+ characters).")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			h.registerFailed(c, http.StatusConflict, req, "This username is already taken.")
		case errors.Is(err, service.ErrEmailTaken):
			h.registerFailed(c, http.StatusConflict, req, "This email is already registered.")
		default:
			middleware.LogError("register %s: %v", req.Username, err)
			renderError(c, http.StatusInternalServerError, "Registration failed. Please try again later.")
		}
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		middleware.LogError("issue token for %s: %v", user.Username, err)
		setFlash(c, "success", "Account created, please log in.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	middleware.SetSessionCookie(c, h.jwtConfig, token.AccessToken)
	setFlash(c, "success", "Welcome, "+user.Username+"! Your deck is ready.")
	c.Redirect(http.StatusSeeOther, "/study")
}

func (h *AuthHandler) registerFailed(c *gin.Context, status int, req service.RegisterRequest, msg string) {
	req.Password = ""
	render(c, status, "register.html", gin.H{"Title": "Register", "Form": req, "Error": msg})
}

// LoginPage renders the login form
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Form":  service.LoginRequest{},
		"Next":  c.Query("next"),
	})
}

// Login handles the login form
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	next := c.PostForm("next")
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, http.StatusBadRequest, req, next, "Enter your username or email and password.")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.loginFailed(c, http.StatusUnauthorized, req, next, "Invalid username or password.")
			return
		}
		middleware.LogError("login %s: %v", req.Username, err)
		renderError(c, http.StatusInternalServerError, "Login failed. Please try again later.")
		return
	}

	middleware.SetSessionCookie(c, h.jwtConfig, token.AccessToken)
	c.Redirect(http.StatusSeeOther, safeNext(next))
}

func (h *AuthHandler) loginFailed(c *gin.Context, status int, req service.LoginRequest, next, msg string) {
	req.Password = ""
	render(c, status, "login.html", gin.H{"Title": "Log in", "Form": req, "Next": next, "Error": msg})
}

// safeNext only allows local redirect targets
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/study"
	}
	return next
}

// Logout clears the session
// GET|POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.jwtConfig)
	c.Redirect(http.StatusSeeOther, "/")
}

// APIRegister handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) APIRegister(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.Conflict(c, "username already taken")
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, "email already taken")
			return
		}
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// APILogin handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) APILogin(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid username or password")
			return
		}
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, token)
}

// ChangePassword handles a password change
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "current password is incorrect")
			return
		}
		response.InternalError(c, "failed to change password")
		return
	}

	response.Success(c, gin.H{"status": "password changed"})
}

// APIMe returns the signed-in user
// GET /api/v1/auth/me
func (h *AuthHandler) APIMe(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Unauthorized(c, "user no longer exists")
			return
		}
		response.InternalError(c, "failed to load user")
		return
	}
	response.Success(c, user)
}

// RegisterRoutes registers auth pages and API routes
func (h *AuthHandler) RegisterRoutes(r gin.IRouter, api *gin.RouterGroup, apiAuth gin.HandlerFunc) {
	r.GET("/", h.Index)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.APIRegister)
		auth.POST("/login", h.APILogin)
		auth.PUT("/password", apiAuth, h.ChangePassword)
		auth.GET("/me", apiAuth, h.APIMe)
	}
}
