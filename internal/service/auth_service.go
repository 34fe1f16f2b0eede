package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vocab-trainer/internal/config"
	"github.com/vocab-trainer/internal/models"
	"github.com/vocab-trainer/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenIssuer = "vocab-trainer"

// DeckSeeder fills a new user's deck
type DeckSeeder interface {
	SeedIfShort(ctx context.Context, userID uint, minimum int) (int, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo  *repository.UserRepository
	seeder    DeckSeeder
	jwtConfig config.JWTConfig
	logger    *zap.SugaredLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, seeder DeckSeeder, jwtConfig config.JWTConfig, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		seeder:    seeder,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required,min=3,max=50"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest represents the login request. Username may also be an email.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// ChangePasswordRequest represents the change-password request
type ChangePasswordRequest struct {
	OldPassword string `form:"old_password" json:"old_password" binding:"required"`
	NewPassword string `form:"new_password" json:"new_password" binding:"required,min=6,max=72"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Register creates a user and seeds the starter deck. A seeding failure is
// logged and does not undo the registration.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, s.takenError(ctx, req)
		}
		return nil, err
	}

	added, err := s.seeder.SeedIfShort(ctx, user.ID, MinimumCards)
	if err != nil {
		s.logger.Errorw("failed to seed starter deck", "user_id", user.ID, "error", err)
	} else {
		s.logger.Infow("user registered", "user_id", user.ID, "username", user.Username, "seeded", added)
	}

	return user, nil
}

// takenError reports which unique field a concurrent registration claimed
func (s *AuthService) takenError(ctx context.Context, req *RegisterRequest) error {
	if exists, err := s.userRepo.ExistsByUsername(ctx, req.Username); err == nil && exists {
		return ErrUsernameTaken
	}
	if exists, err := s.userRepo.ExistsByEmail(ctx, req.Email); err == nil && exists {
		return ErrEmailTaken
	}
	return repository.ErrDuplicateUser
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateToken(user)
}

// IssueToken returns a fresh token for an already authenticated user
func (s *AuthService) IssueToken(user *models.User) (*TokenResponse, error) {
	return s.generateToken(user)
}

// ChangePassword replaces the password after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// generateToken generates a JWT token for a user
func (s *AuthService) generateToken(user *models.User) (*TokenResponse, error) {
	expiresIn := s.jwtConfig.TokenTTL()
	now := time.Now()

	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int(expiresIn.Seconds()),
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
