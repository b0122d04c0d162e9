package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string) (int, error) {
	args := m.Called(ctx, tokenHash)
	return args.Int(0), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	userID := 55
	var storedHash string

	// Хэш непредсказуем, проверяем формат и срок жизни
	mockRepo.On("Create", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
		storedHash = hash
		return len(hash) == sha256.Size*2
	}), mock.MatchedBy(func(expiresAt time.Time) bool {
		return expiresAt.After(time.Now().Add(TTL - time.Minute))
	})).Return(nil)

	token, err := service.Create(context.Background(), userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	// 32 случайных байта в base64 с padding
	assert.Len(t, token, 44)

	// В хранилище уходит именно sha256 токена, не сам токен
	wantHash := sha256.Sum256([]byte(token))
	assert.Equal(t, hex.EncodeToString(wantHash[:]), storedHash)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, 55, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("database error"))

	_, err := service.Create(context.Background(), 55)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}

func TestService_Validate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	token := "device-token-abc"
	wantHash := sha256.Sum256([]byte(token))

	mockRepo.On("Validate", mock.Anything, hex.EncodeToString(wantHash[:])).Return(55, nil)

	userID, err := service.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, 55, userID)

	mockRepo.AssertExpectations(t)
}

func TestService_Validate_InvalidToken(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, mock.AnythingOfType("string")).
		Return(0, errors.New("invalid session"))

	_, err := service.Validate(context.Background(), "expired-or-forged")
	assert.Error(t, err)

	mockRepo.AssertExpectations(t)
}

// Токены разных вызовов не должны совпадать, иначе сессии пересекутся
// между устройствами.
func TestService_Create_TokensUnique(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, 55, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil)

	first, err := service.Create(context.Background(), 55)
	assert.NoError(t, err)
	second, err := service.Create(context.Background(), 55)
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}
