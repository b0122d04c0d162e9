package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldreport/internal/app/server/api/http/middleware/auth"
	"fieldreport/internal/domain/customer"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID int) ([]customer.Client, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]customer.Client), args.Error(1)
}

func (m *MockService) Find(ctx context.Context, userID int, clientID int64) (*customer.Client, error) {
	args := m.Called(ctx, userID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Client), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, userID int, c *customer.Client) (int64, error) {
	args := m.Called(ctx, userID, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, userID int, c *customer.Client) error {
	args := m.Called(ctx, userID, c)
	return args.Error(0)
}

func TestHandler_Create(t *testing.T) {
	userID := 7
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &createInput{}
		input.Body.Name = "Construtora Horizonte"
		input.Body.Document = "12.345.678/0001-90"
		input.Body.Phone = "+55 41 99999-0000"

		svc.On("Create", mock.Anything, userID, mock.MatchedBy(func(c *customer.Client) bool {
			return c.Name == "Construtora Horizonte" && c.Document == "12.345.678/0001-90"
		})).Return(int64(321), nil)

		resp, err := h.create(authCtx, input)

		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Status)
		assert.Equal(t, int64(321), resp.Body.ID)
	})

	t.Run("DuplicateDocument_409", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &createInput{}
		input.Body.Name = "Construtora Horizonte"
		input.Body.Document = "12.345.678/0001-90"

		svc.On("Create", mock.Anything, userID, mock.Anything).
			Return(int64(0), customer.ErrDuplicateDocument)

		resp, err := h.create(authCtx, input)

		assert.Nil(t, resp)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "document")
	})

	t.Run("Unauthorized_WithoutUserID", func(t *testing.T) {
		h := NewHandler(nil, nil, nil)

		input := &createInput{}
		input.Body.Name = "Cliente"
		input.Body.Document = "000"

		resp, err := h.create(context.Background(), input)

		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}

func TestHandler_List(t *testing.T) {
	userID := 7
	authCtx := auth.WithUserID(context.Background(), userID)

	svc := new(MockService)
	h := NewHandler(svc, nil, nil)

	svc.On("List", mock.Anything, userID).Return([]customer.Client{
		{ID: 1, Name: "Residencial Araucária", Document: "111"},
		{ID: 2, Name: "Condomínio Pinheiros", Document: "222"},
	}, nil)

	resp, err := h.list(authCtx, &struct{}{})

	assert.NoError(t, err)
	assert.Len(t, resp.Body.Clients, 2)
	assert.Equal(t, "Residencial Araucária", resp.Body.Clients[0].Name)
}

func TestHandler_Update(t *testing.T) {
	userID := 7
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &updateInput{ID: 5}
		input.Body.Name = "Construtora Horizonte Ltda"
		input.Body.Document = "12.345.678/0001-90"

		svc.On("Update", mock.Anything, userID, mock.MatchedBy(func(c *customer.Client) bool {
			return c.ID == int64(5) && c.Name == "Construtora Horizonte Ltda"
		})).Return(nil)

		resp, err := h.update(authCtx, input)

		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Status)
	})

	t.Run("NotFound_404", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &updateInput{ID: 99}
		input.Body.Name = "Cliente"
		input.Body.Document = "333"

		svc.On("Update", mock.Anything, userID, mock.Anything).
			Return(customer.ErrNotFound)

		resp, err := h.update(authCtx, input)

		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}
