package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kalavedi/config"
	"kalavedi/model"
	"kalavedi/repository"
)

const (
	RoleAdmin   = "admin"
	tokenIssuer = "kalavedi"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminExists        = errors.New("admin already exists")
)

// AuthService signs in committee members and issues access tokens.
type AuthService struct {
	admins repository.AdminRepository
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

func NewAuthService(admins repository.AdminRepository, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{admins: admins, secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, logger: logger}
}

type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	Admin       *model.Admin `json:"admin"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := s.admins.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		s.logger.Warn("admin login rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.CreateAccessToken(admin.AdminID, admin.Email, admin.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("admin signed in", zap.String("adminId", admin.AdminID))
	return &LoginResult{AccessToken: token, ExpiresAt: expires, Admin: admin}, nil
}

func (s *AuthService) CreateAccessToken(userID, email, role string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	claims := &model.AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expires, err
}

// ParseAccessToken verifies an HS256 token and returns its claims.
func (s *AuthService) ParseAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no userId")
	}
	return claims, nil
}

// CreateAdmin stores a new admin with a bcrypt hash of password.
func (s *AuthService) CreateAdmin(ctx context.Context, email, name, password string) (*model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.admins.FindByEmail(ctx, email); err == nil {
		return nil, ErrAdminExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &model.Admin{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  string(hash),
		Role:      RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
