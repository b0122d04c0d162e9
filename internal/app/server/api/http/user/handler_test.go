package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldreport/internal/domain/user"
	"fieldreport/internal/utils/logger"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, login, password string) (int, error) {
	args := m.Called(ctx, login, password)
	return args.Int(0), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, login, password string) (user.User, error) {
	args := m.Called(ctx, login, password)
	return args.Get(0).(user.User), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionService) Validate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func TestHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewHandler(svc, nil, logger.New("local"), nil)

		input := &registerInput{}
		input.Body.Login = "tecnico_joao"
		input.Body.Password = "sup3r-s3cret"

		svc.On("Register", mock.Anything, "tecnico_joao", "sup3r-s3cret").Return(55, nil)

		resp, err := h.register(context.Background(), input)

		assert.NoError(t, err)
		assert.Equal(t, 55, resp.Body.ID)
	})

	t.Run("LoginTaken_409", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewHandler(svc, nil, logger.New("local"), nil)

		input := &registerInput{}
		input.Body.Login = "tecnico_joao"
		input.Body.Password = "sup3r-s3cret"

		svc.On("Register", mock.Anything, "tecnico_joao", "sup3r-s3cret").
			Return(0, user.ErrLoginTaken)

		resp, err := h.register(context.Background(), input)

		assert.Nil(t, resp)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "taken")
	})

	t.Run("InvalidInput_422", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewHandler(svc, nil, logger.New("local"), nil)

		input := &registerInput{}
		input.Body.Login = "x"
		input.Body.Password = "short"

		svc.On("Register", mock.Anything, "x", "short").
			Return(0, user.ErrInvalidInput)

		resp, err := h.register(context.Background(), input)

		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}

func TestHandler_Login(t *testing.T) {
	t.Run("Success_ReturnsToken", func(t *testing.T) {
		svc := new(MockUserService)
		sess := new(MockSessionService)
		h := NewHandler(svc, sess, logger.New("local"), nil)

		input := &loginInput{}
		input.Body.Login = "tecnico_joao"
		input.Body.Password = "sup3r-s3cret"

		svc.On("Authenticate", mock.Anything, "tecnico_joao", "sup3r-s3cret").
			Return(user.User{ID: 55, Login: "tecnico_joao"}, nil)
		sess.On("Create", mock.Anything, 55).Return("tok-123", nil)

		resp, err := h.login(context.Background(), input)

		assert.NoError(t, err)
		assert.Equal(t, "tok-123", resp.Body.Token)
	})

	t.Run("BadCredentials_Uniform401", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewHandler(svc, nil, logger.New("local"), nil)

		input := &loginInput{}
		input.Body.Login = "tecnico_joao"
		input.Body.Password = "wrong"

		svc.On("Authenticate", mock.Anything, "tecnico_joao", "wrong").
			Return(user.User{}, user.ErrNotFound)

		resp, err := h.login(context.Background(), input)

		assert.Nil(t, resp)
		assert.Error(t, err)
		// Текст не раскрывает, логин неверен или пароль
		assert.Contains(t, err.Error(), "invalid credentials")
	})
}
