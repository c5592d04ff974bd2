// Package service - AuthService handles registration, login, JWT token
// management and password changes.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const minPasswordLength = 6

// AuthService orchestrates authentication flows. Tokens are stateless:
// logout is a client-side discard, there is no server-side revocation list.
type AuthService struct {
	store     port.UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.UserStore, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// ============================================================
// Register - POST /api/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Username == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "用户名和密码不能为空"}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "password", Message: "密码长度至少为6位"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	id, err := s.store.CreateUser(ctx, &domain.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		CreateTime:   now,
		UpdateTime:   now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", id),
		zap.String("username", req.Username),
	)

	return &domain.RegisterResponse{Message: "注册成功", UserID: id}, nil
}

// ============================================================
// Login - POST /api/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	if req.Username == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "用户名和密码不能为空"}
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &domain.ErrUnauthorized{Message: "用户名或密码错误"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt",
			zap.String("user_id", user.ID),
		)
		return nil, &domain.ErrUnauthorized{Message: "用户名或密码错误"}
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return &domain.LoginResponse{Token: token, UserID: user.ID}, nil
}

// ============================================================
// Logout - POST /api/auth/logout
// ============================================================

// Logout has no server-side state to clear; clients drop the token.
func (s *AuthService) Logout(ctx context.Context, userID string) *domain.SuccessResponse {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	s.logger.Info("user logged out", zap.String("user_id", userID))
	return &domain.SuccessResponse{Message: "登出成功"}
}

// ============================================================
// ChangePassword - POST /api/auth/change-password
// ============================================================

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return &domain.ErrValidation{Field: "currentPassword", Message: "请提供当前密码和新密码"}
	}
	if len(req.NewPassword) < minPasswordLength {
		return &domain.ErrValidation{Field: "newPassword", Message: "新密码长度至少为6位"}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("password change: wrong current password",
			zap.String("user_id", userID),
		)
		return &domain.ErrUnauthorized{Message: "当前密码错误"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// ============================================================
// ValidateAccessToken - used by middleware
// ============================================================

// Claims represents the custom claims in access tokens.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "未授权访问"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", &domain.ErrUnauthorized{Message: "未授权访问"}
	}

	return claims.UserID, nil
}

func (s *AuthService) signToken(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "easyexp-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
