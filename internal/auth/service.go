package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/commerce"
	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
)

// SessionListener is told about every successful authentication of a
// browser profile. reconciler.Background implements it.
type SessionListener interface {
	OnAuthenticated(ctx context.Context, profileID, userID, token string)
}

// Authenticator exchanges credentials for a session. commerce.Client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, creds commerce.Credentials) (commerce.Session, error)
	Register(ctx context.Context, reg commerce.Registration) (commerce.Session, error)
}

// Claims are the access token claims issued by the commerce API.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Service authenticates shoppers and hands each new session to its listener,
// which merges the profile's anonymous cart into the account.
type Service struct {
	api      Authenticator
	listener SessionListener
	secret   []byte
	logger   *slog.Logger
}

// NewService creates the authentication service. secret verifies restored
// access tokens.
func NewService(api Authenticator, listener SessionListener, secret string, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		listener: listener,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// Login signs a shopper in.
func (s *Service) Login(ctx context.Context, profileID string, creds commerce.Credentials) (commerce.Session, error) {
	if profileID == "" {
		return commerce.Session{}, apperrors.InvalidInput("profile id is required")
	}
	session, err := s.api.Login(ctx, creds)
	if err != nil {
		return commerce.Session{}, fmt.Errorf("login: %w", err)
	}
	s.authenticated(ctx, profileID, session)
	return session, nil
}

// Register creates an account and signs the shopper in.
func (s *Service) Register(ctx context.Context, profileID string, reg commerce.Registration) (commerce.Session, error) {
	if profileID == "" {
		return commerce.Session{}, apperrors.InvalidInput("profile id is required")
	}
	session, err := s.api.Register(ctx, reg)
	if err != nil {
		return commerce.Session{}, fmt.Errorf("register: %w", err)
	}
	s.authenticated(ctx, profileID, session)
	return session, nil
}

// Restore resumes a session from a previously issued access token.
func (s *Service) Restore(ctx context.Context, profileID, token string) (commerce.Session, error) {
	if profileID == "" {
		return commerce.Session{}, apperrors.InvalidInput("profile id is required")
	}
	userID, err := s.verify(token)
	if err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "session restore rejected", slog.String("error", err.Error()))
		return commerce.Session{}, apperrors.Unauthorized("invalid or expired token")
	}
	session := commerce.Session{Token: token, UserID: userID}
	s.authenticated(ctx, profileID, session)
	return session, nil
}

func (s *Service) verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid access token claims")
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", fmt.Errorf("access token has no subject")
}

func (s *Service) authenticated(ctx context.Context, profileID string, session commerce.Session) {
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "shopper authenticated",
		slog.String("profile_id", profileID),
		slog.String("user_id", session.UserID),
	)
	s.listener.OnAuthenticated(ctx, profileID, session.UserID, session.Token)
}
