package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tienda/internal/cache"
	apperrors "tienda/internal/errors"
	"tienda/internal/model"
	"tienda/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// CreateUserInput carries the fields accepted when registering or creating a
// user. Role is already authorization-checked by the caller.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	Role     string
}

// UserService exposes user account operations.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// Create registers a user, storing only the bcrypt hash of the password.
func (s *userService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, apperrors.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Get retrieves a user by ID with caching.
func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial profile update. Only keys present in fields are
// touched; a supplied password is rehashed, an absent one left alone.
func (s *userService) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	updates, err := buildUserUpdates(fields)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// buildUserUpdates maps the JSON body of a partial update onto columns. Keys
// absent from fields stay untouched; an explicit null clears nullable
// columns. Unknown keys are ignored.
func buildUserUpdates(fields map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	for key, value := range fields {
		switch key {
		case "full_name":
			if value == nil {
				updates["full_name"] = ""
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: full_name", apperrors.ErrInvalidField)
			}
			updates["full_name"] = s
		case "avatar_url":
			if value == nil {
				updates["avatar_url"] = nil
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: avatar_url", apperrors.ErrInvalidField)
			}
			updates["avatar_url"] = s
		case "role":
			s, ok := value.(string)
			if !ok || !model.ValidRole(s) {
				return nil, apperrors.ErrInvalidRole
			}
			updates["role"] = s
		case "password":
			s, ok := value.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%w: password", apperrors.ErrInvalidField)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(s), bcryptCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			updates["password_hash"] = string(hash)
		}
	}
	return updates, nil
}
