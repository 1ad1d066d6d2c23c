package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "tienda/internal/errors"
	"tienda/internal/model"
)

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name          string
		input         CreateUserInput
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedRole  string
	}{
		{
			name:  "successful registration defaults role",
			input: CreateUserInput{FullName: "Test User", Email: "test@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleUser,
		},
		{
			name:  "admin creation keeps role",
			input: CreateUserInput{Email: "boss@example.com", Password: "password123", Role: model.RoleAdmin},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "boss@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleAdmin,
		},
		{
			name:  "duplicate email",
			input: CreateUserInput{Email: "existing@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "invalid role",
			input: CreateUserInput{Email: "owner@example.com", Password: "password123", Role: "owner"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "owner@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil)
			user, err := svc.Create(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.Equal(t, tt.expectedRole, user.Role)
				// Only the hash is stored, never the plaintext.
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Update_PartialFields(t *testing.T) {
	id := uuid.New()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "test@example.com"}, nil)

	var applied map[string]interface{}
	mockRepo.On("UpdateFields", mock.Anything, id, mock.Anything).Run(func(args mock.Arguments) {
		applied = args.Get(2).(map[string]interface{})
	}).Return(nil)

	svc := NewUserService(mockRepo, nil)
	err := svc.Update(context.Background(), id, map[string]interface{}{
		"full_name": "Renamed",
		"password":  "newpass123",
	})
	assert.NoError(t, err)

	// Only the supplied fields reach the repository, and the password
	// arrives hashed under the password_hash column.
	assert.Len(t, applied, 2)
	assert.Equal(t, "Renamed", applied["full_name"])
	hash, ok := applied["password_hash"].(string)
	assert.True(t, ok)
	assert.NotEqual(t, "newpass123", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass123")))
	assert.NotContains(t, applied, "role")
	assert.NotContains(t, applied, "avatar_url")

	mockRepo.AssertExpectations(t)
}

func TestUserService_Update_ClearsAvatarOnNull(t *testing.T) {
	id := uuid.New()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id}, nil)

	var applied map[string]interface{}
	mockRepo.On("UpdateFields", mock.Anything, id, mock.Anything).Run(func(args mock.Arguments) {
		applied = args.Get(2).(map[string]interface{})
	}).Return(nil)

	svc := NewUserService(mockRepo, nil)
	err := svc.Update(context.Background(), id, map[string]interface{}{"avatar_url": nil})
	assert.NoError(t, err)

	value, present := applied["avatar_url"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestUserService_Update_InvalidRole(t *testing.T) {
	id := uuid.New()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id}, nil)

	svc := NewUserService(mockRepo, nil)
	err := svc.Update(context.Background(), id, map[string]interface{}{"role": "superuser"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
}

func TestUserService_Update_NotFound(t *testing.T) {
	id := uuid.New()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(mockRepo, nil)
	err := svc.Update(context.Background(), id, map[string]interface{}{"full_name": "x"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	id := uuid.New()

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(mockRepo, nil)
	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
