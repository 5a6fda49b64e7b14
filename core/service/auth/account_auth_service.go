// Package auth implements credential verification and token issuance.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"account_server/core/domain"
	in "account_server/core/port/in"
	"account_server/core/port/out"
	"account_server/pkg/apperr"
	"account_server/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown, so both login
// failure paths cost a bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// BcryptHasher implements out.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; cost <= 0 selects the default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = 10
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), prehash(plaintext)) == nil
}

// prehash folds the password through SHA-256 before bcrypt. bcrypt only
// reads the first 72 bytes of its input, so without this step passwords
// longer than that would either be rejected or silently truncated.
func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum[:])
	return out
}

// Service implements in.AuthService
type Service struct {
	users      out.UserRepository
	tokens     out.RefreshTokenRepository
	hasher     out.PasswordHasher
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service. The signing secret must already be
// validated as non-empty at startup.
func NewService(
	users out.UserRepository,
	tokens out.RefreshTokenRepository,
	hasher out.PasswordHasher,
	secret string,
	accessTTL, refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password both return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if u == nil {
		s.hasher.Verify(password, dummyHash)
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return s.issuePair(ctx, u.ID)
}

// Refresh rotates a refresh token. Expired tokens are deleted on sight.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	rt, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if rt == nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	if rt.Expired(time.Now()) {
		if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
			logger.WithError(err).Warn("failed to delete expired refresh token")
		}
		return nil, apperr.Unauthorized("refresh token expired")
	}

	if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return s.issuePair(ctx, rt.UserID)
}

// Logout invalidates a refresh token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.DeleteByToken(ctx, refreshToken)
}

func (s *Service) issuePair(ctx context.Context, userID uuid.UUID) (*domain.TokenPair, error) {
	access, err := s.signAccessToken(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rt := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &domain.TokenPair{AuthToken: access, RefreshToken: rt.Token}, nil
}

func (s *Service) signAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

var _ in.AuthService = (*Service)(nil)
var _ out.PasswordHasher = (*BcryptHasher)(nil)
