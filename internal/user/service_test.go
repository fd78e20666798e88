package user

import (
	"context"
	"errors"
	"testing"

	"debmarket/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash, role, cpf string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectError   bool
		expectedError error
	}{
		{
			name: "successful registration",
			req: RegisterRequest{
				Name:     "Maria Silva",
				Email:    "maria@example.com",
				Password: "password123",
				CPF:      "123.456.789-00",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "maria@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Maria Silva", "maria@example.com", mock.Anything, "investor", "123.456.789-00").Return(&User{
					ID:    1,
					Name:  "Maria Silva",
					Email: "maria@example.com",
					Role:  "investor",
				}, nil)
			},
			expectError: false,
		},
		{
			name: "email already exists",
			req: RegisterRequest{
				Name:     "Maria Silva",
				Email:    "existing@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "existing@example.com").Return(true, nil)
			},
			expectError:   true,
			expectedError: ErrEmailExists,
		},
		{
			name: "repository error",
			req: RegisterRequest{
				Name:     "Maria Silva",
				Email:    "maria@example.com",
				Password: "password123",
			},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "maria@example.com").Return(false, errors.New("db down"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			service := NewService(mockRepo, "test-secret")
			user, accessToken, refreshToken, err := service.Register(context.Background(), tt.req)

			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedError != nil {
					assert.Equal(t, tt.expectedError, err)
				}
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.Equal(t, "investor", user.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	passwordHash, _ := auth.HashPassword("correct-password")

	tests := []struct {
		name        string
		req         LoginRequest
		setupMock   func(*MockRepository)
		expectError bool
	}{
		{
			name: "successful login",
			req:  LoginRequest{Email: "maria@example.com", Password: "correct-password"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "maria@example.com").Return(&User{
					ID:           1,
					Email:        "maria@example.com",
					PasswordHash: passwordHash,
					Role:         "investor",
				}, nil)
			},
			expectError: false,
		},
		{
			name: "wrong password",
			req:  LoginRequest{Email: "maria@example.com", Password: "wrong"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "maria@example.com").Return(&User{
					ID:           1,
					Email:        "maria@example.com",
					PasswordHash: passwordHash,
				}, nil)
			},
			expectError: true,
		},
		{
			name: "unknown email",
			req:  LoginRequest{Email: "nobody@example.com", Password: "whatever"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			service := NewService(mockRepo, "test-secret")
			user, accessToken, _, err := service.Login(context.Background(), tt.req)

			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, accessToken)
			}
		})
	}
}

func TestService_RefreshToken(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 5).Return(&User{
		ID:    5,
		Email: "r@example.com",
		Role:  "investor",
	}, nil)

	service := NewService(mockRepo, "test-secret")

	refresh, err := auth.GenerateRefreshToken(5, "r@example.com", "investor", "test-secret")
	assert.NoError(t, err)

	access, user, err := service.RefreshToken(context.Background(), refresh)
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, 5, user.ID)
}
