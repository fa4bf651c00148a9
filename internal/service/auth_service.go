package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/auth"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/repository"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	AccessToken         string    `json:"access_token"`
	AccessTokenExpires  time.Time `json:"access_token_expires"`
	RefreshToken        string    `json:"refresh_token"`
	RefreshTokenExpires time.Time `json:"refresh_token_expires"`
	TokenType           string    `json:"token_type"`
}

// AuthService owns registration, login and the token lifecycle.
type AuthService struct {
	users    UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	denylist Denylist
	unique   *Uniqueness
	log      *zap.Logger
}

// NewAuthService wires the auth flow. denylist may be nil, in which case
// logout is a no-op and tokens live until they expire.
func NewAuthService(users UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService,
	denylist Denylist, unique *Uniqueness, log *zap.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, denylist: denylist, unique: unique, log: log}
}

// Register validates the password, checks the email and stores the user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if in.Password != in.ConfirmPassword {
		return model.User{}, apperr.ErrPasswordMismatch
	}
	if err := auth.CheckPasswordPolicy(in.Password); err != nil {
		return model.User{}, err
	}
	email := normalizeEmail(in.Email)
	if err := s.unique.UserEmail(ctx, email, 0); err != nil {
		return model.User{}, err
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: digest,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, apperr.ErrEmailExists
		}
		return model.User{}, apperr.Store("create user", err)
	}
	return u, nil
}

// Login checks credentials and issues a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, apperr.ErrBadCredentials
		}
		return TokenPair{}, apperr.Store("load user", err)
	}
	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		// A corrupt stored digest is a server-side problem, not a client one.
		return TokenPair{}, apperr.Store("verify password", err)
	}
	if !ok {
		return TokenPair{}, apperr.ErrBadCredentials
	}

	access, err := s.tokens.IssueAccess(u.Email)
	if err != nil {
		return TokenPair{}, apperr.Store("issue access token", err)
	}
	refresh, err := s.tokens.IssueRefresh(u.Email)
	if err != nil {
		return TokenPair{}, apperr.Store("issue refresh token", err)
	}
	return TokenPair{
		AccessToken:         access.Value,
		AccessTokenExpires:  access.ExpiresAt,
		RefreshToken:        refresh.Value,
		RefreshTokenExpires: refresh.ExpiresAt,
		TokenType:           "bearer",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	u, claims, err := s.Verify(ctx, refreshToken, auth.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.tokens.IssueAccess(u.Email)
	if err != nil {
		return TokenPair{}, apperr.Store("issue access token", err)
	}
	return TokenPair{
		AccessToken:         access.Value,
		AccessTokenExpires:  access.ExpiresAt,
		RefreshToken:        refreshToken,
		RefreshTokenExpires: claims.ExpiresAt.Time,
		TokenType:           "bearer",
	}, nil
}

// Logout revokes the presented access token and, when given, the refresh
// token belonging to the same user.
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if s.denylist == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, access.ID, access.ExpiresAt.Time); err != nil {
		return apperr.Store("revoke access token", err)
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(refreshToken, auth.KindRefresh)
	if err != nil {
		return err
	}
	if claims.Subject != access.Subject {
		return apperr.ErrForbidden
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Store("revoke refresh token", err)
	}
	return nil
}

// Verify checks raw in order: signature, expiry, kind, revocation and
// finally that the subject still exists.
func (s *AuthService) Verify(ctx context.Context, raw, kind string) (model.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(raw, kind)
	if err != nil {
		return model.User{}, nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return model.User{}, nil, apperr.Store("check token denylist", err)
		}
		if revoked {
			return model.User{}, nil, apperr.ErrTokenRevoked
		}
	}
	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return model.User{}, nil, lookupErr("load token subject", err, apperr.ErrUnknownSubject)
	}
	return u, claims, nil
}
