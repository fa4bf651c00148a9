package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/auth"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/repository"
)

// UpdateUserInput carries a partial profile update; nil fields are left
// unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Password  *string
}

type UserService struct {
	users  UserStore
	hasher *auth.PasswordHasher
	unique *Uniqueness
}

func NewUserService(users UserStore, hasher *auth.PasswordHasher, unique *Uniqueness) *UserService {
	return &UserService{users: users, hasher: hasher, unique: unique}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Store("list users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, lookupErr("get user", err, apperr.ErrUserNotFound)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return model.User{}, lookupErr("get user by email", err, apperr.ErrUserNotFound)
	}
	return u, nil
}

// Update applies in to user id. Only the user themselves may do this.
func (s *UserService) Update(ctx context.Context, callerID, id uint64, in UpdateUserInput) (model.User, error) {
	if callerID != id {
		return model.User{}, apperr.ErrForbidden
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != u.Email {
			if err := s.unique.UserEmail(ctx, email, id); err != nil {
				return model.User{}, err
			}
			u.Email = email
		}
	}
	if in.Password != nil {
		if err := auth.CheckPasswordPolicy(*in.Password); err != nil {
			return model.User{}, err
		}
		digest, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = digest
	}

	if err := s.users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, apperr.ErrEmailExists
		}
		return model.User{}, apperr.Store("update user", err)
	}
	return s.Get(ctx, id)
}

// Delete removes user id. Only the user themselves may do this; their
// sales are kept.
func (s *UserService) Delete(ctx context.Context, callerID, id uint64) error {
	if callerID != id {
		return apperr.ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return lookupErr("delete user", err, apperr.ErrUserNotFound)
	}
	return nil
}
