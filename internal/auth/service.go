package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	dErrors "privy/pkg/domain-errors"
)

// DefaultTokenTTL bounds how long an access token stays valid.
const DefaultTokenTTL = 30 * time.Minute

// user is a static credential entry. The deployment story for a real user
// directory is out of scope; these are the development accounts.
type user struct {
	Username     string
	PasswordHash string
	Role         string
}

var users = map[string]user{
	"admin": {
		Username:     "admin",
		PasswordHash: "$2b$12$MyVkelvvEzzv2D6wRiEWbOwGGkPeVULUCGPemOddPfB0SEkJlBvGe", // admin123
		Role:         "admin",
	},
	"analyst": {
		Username:     "analyst",
		PasswordHash: "$2b$12$xtxGKB3L5zGj6ZthWvuqoeOrjBHMT9LIIdCDHf9vmoVmvtH2bxyoG", // analyst123
		Role:         "analyst",
	},
	"external": {
		Username:     "external",
		PasswordHash: "$2b$12$0qFWFluaPW6SkPQAZR9aZebuWxX1YM96J1KuoTomWsOVCYYfJZDzK", // external123
		Role:         "external",
	},
}

// Claims carried by an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the login response payload.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

type Option func(*Service)

// Service authenticates the static user set and signs HS256 access tokens.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	logger     *slog.Logger
}

func NewService(signingKey string, opts ...Option) *Service {
	svc := &Service{
		signingKey: []byte(signingKey),
		ttl:        DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTokenTTL overrides the access-token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// Login verifies the credentials and issues an access token carrying the
// username and role. Unknown users and wrong passwords are reported with
// the same message, so login cannot be used to enumerate accounts.
// Errors: CodeUnauthorized on any credential mismatch.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, ok := users[username]
	if ok {
		err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
		ok = err == nil
	}
	if !ok {
		s.log(ctx, slog.LevelWarn, "login_failed", "username", username)
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "incorrect username or password")
	}

	now := time.Now().UTC()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}

	s.log(ctx, slog.LevelInfo, "login_succeeded", "username", username, "role", u.Role)
	return Session{
		AccessToken: signed,
		TokenType:   "bearer",
		Role:        u.Role,
	}, nil
}

// Verify parses and validates an access token, returning its claims.
// Errors: CodeUnauthorized for any invalid, expired or tampered token.
func (s *Service) Verify(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return Claims{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid access token")
	}
	return claims, nil
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}
