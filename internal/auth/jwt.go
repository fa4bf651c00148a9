// Package auth issues and verifies signed access/refresh tokens and hashes
// passwords. Everything here is pure computation; resolving a token's
// subject against the user store happens in the service layer.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/inventory-pos/internal/apperr"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims carried by both token kinds. Subject holds the user's email.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Token is a signed token together with its expiry and unique id.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// TokenService signs HS256 tokens with a single shared secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// AccessTTL reports the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccess signs a short-lived access token for subject.
func (s *TokenService) IssueAccess(subject string) (Token, error) {
	return s.issue(subject, KindAccess, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for subject.
func (s *TokenService) IssueRefresh(subject string) (Token, error) {
	return s.issue(subject, KindRefresh, s.refreshTTL)
}

func (s *TokenService) issue(subject, kind string, ttl time.Duration) (Token, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        id,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: id, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Parse checks the signature, then expiry, then the token kind, returning
// the claims when all three pass.
func (s *TokenService) Parse(raw, expectedKind string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.Wrap(apperr.KindAuth, apperr.ErrInvalidSignature.Reason, apperr.ErrInvalidSignature.Message, err)
	}
	if claims.Kind != expectedKind {
		return nil, apperr.ErrWrongTokenKind
	}
	return claims, nil
}
