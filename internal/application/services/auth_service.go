package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifelog/core/internal/domain/entities"
	"github.com/lifelog/core/internal/infrastructure/config"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// apiKeyPrefix marks LifeLog MCP credentials so leaked keys are recognizable
// in scanners and logs.
const apiKeyPrefix = "ll_"

// AuthService handles authentication, sessions and MCP API keys
type AuthService struct {
	userRepo   ports.UserRepository
	authRepo   ports.AuthRepository
	apiKeyRepo ports.APIKeyRepository
	categories *CategoryService
	cfg        config.JWTConfig
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, apiKeyRepo ports.APIKeyRepository, categories *CategoryService, cfg config.JWTConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		authRepo:   authRepo,
		apiKeyRepo: apiKeyRepo,
		categories: categories,
		cfg:        cfg,
		logger:     logger,
	}
}

// Register creates an account, seeds its default categories and opens a
// session.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, entities.ErrDuplicateName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.categories.BootstrapDefaults(ctx, user.ID); err != nil {
		s.logger.WithError(err).Warnw("Failed to seed default categories", "user_id", user.ID)
	}

	s.logger.Infow("User registered", "user_id", user.ID, "email", user.Email)

	return s.openSession(ctx, user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entities.ErrUnauthorized
	}

	return s.openSession(ctx, user)
}

// Refresh rotates a refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResponse, error) {
	stored, err := s.authRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, entities.ErrUnauthorized
	}

	if stored.IsExpired() || stored.IsRevoked() {
		return nil, entities.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, entities.ErrUnauthorized
	}

	if err := s.authRepo.RevokeRefreshToken(ctx, stored.TokenHash); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.openSession(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.authRepo.RevokeRefreshToken(ctx, hashToken(refreshToken))
}

// ValidateAccessToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, entities.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, entities.ErrUnauthorized
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return nil, entities.ErrUnauthorized
	}

	return &ports.Claims{UserID: userID, Email: email}, nil
}

// GenerateAPIKey mints a new MCP credential. The plaintext is returned once
// and only its SHA-256 hash is stored.
func (s *AuthService) GenerateAPIKey(ctx context.Context, userID uuid.UUID, name string) (*ports.APIKeyCreated, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate key material: %w", err)
	}
	plaintext := apiKeyPrefix + hex.EncodeToString(raw)

	key := &entities.APIKey{
		ID:      uuid.New(),
		UserID:  userID,
		KeyHash: hashToken(plaintext),
		Name:    name,
	}

	if err := s.apiKeyRepo.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}

	s.logger.Infow("API key created", "user_id", userID, "key_id", key.ID, "name", name)

	return &ports.APIKeyCreated{
		ID:   key.ID.String(),
		Key:  plaintext,
		Name: name,
	}, nil
}

// ValidateAPIKey resolves a bearer key to its record and touches its
// last-used timestamp.
func (s *AuthService) ValidateAPIKey(ctx context.Context, plaintext string) (*entities.APIKey, error) {
	if !strings.HasPrefix(plaintext, apiKeyPrefix) {
		return nil, entities.ErrUnauthorized
	}

	key, err := s.apiKeyRepo.FindByHash(ctx, hashToken(plaintext))
	if err != nil {
		if errors.Is(err, entities.ErrAPIKeyNotFound) {
			return nil, entities.ErrUnauthorized
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}

	if err := s.apiKeyRepo.TouchLastUsed(ctx, key.ID, time.Now()); err != nil {
		s.logger.WithError(err).Warnw("Failed to touch api key", "key_id", key.ID)
	}

	return key, nil
}

// ListAPIKeys returns the user's keys, hashes excluded from serialization.
func (s *AuthService) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]entities.APIKey, error) {
	return s.apiKeyRepo.List(ctx, userID)
}

// DeleteAPIKey revokes a key permanently.
func (s *AuthService) DeleteAPIKey(ctx context.Context, userID, id uuid.UUID) error {
	return s.apiKeyRepo.Delete(ctx, userID, id)
}

func (s *AuthService) openSession(ctx context.Context, user *entities.User) (*ports.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.cfg.RefreshExpiresIn)
	if err := s.authRepo.CreateRefreshToken(ctx, user.ID, hashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &ports.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.ExpiresIn.Seconds()),
		User:         user,
	}, nil
}

func (s *AuthService) generateAccessToken(user *entities.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iss":   s.cfg.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.ExpiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *AuthService) generateRefreshToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
