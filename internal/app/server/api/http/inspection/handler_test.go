package inspection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fieldreport/internal/app/server/api/http/middleware/auth"
	"fieldreport/internal/domain/inspection"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID int) ([]inspection.Inspection, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]inspection.Inspection), args.Error(1)
}

func (m *MockService) Find(ctx context.Context, userID int, inspectionID int64) (*inspection.Inspection, error) {
	args := m.Called(ctx, userID, inspectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inspection.Inspection), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, userID int, ins *inspection.Inspection) (int64, error) {
	args := m.Called(ctx, userID, ins)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, userID int, ins *inspection.Inspection) error {
	args := m.Called(ctx, userID, ins)
	return args.Error(0)
}

func (m *MockService) AddTile(ctx context.Context, userID int, inspectionID int64, tile *inspection.Tile) (int64, error) {
	args := m.Called(ctx, userID, inspectionID, tile)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) AddNonConformity(ctx context.Context, userID int, inspectionID int64, nc *inspection.NonConformity) (int64, error) {
	args := m.Called(ctx, userID, inspectionID, nc)
	return args.Get(0).(int64), args.Error(1)
}

func TestHandler_Create(t *testing.T) {
	userID := 11
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &createInput{}
		input.Body.Protocol = "VST-2026-0815"
		input.Body.Date = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
		input.Body.City = "Curitiba"

		svc.On("Create", mock.Anything, userID, mock.MatchedBy(func(ins *inspection.Inspection) bool {
			return ins.Protocol == "VST-2026-0815" && ins.City == "Curitiba"
		})).Return(int64(42), nil)

		resp, err := h.create(authCtx, input)

		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Status)
		assert.Equal(t, int64(42), resp.Body.ID)
	})

	t.Run("DuplicateProtocol_409", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &createInput{}
		input.Body.Protocol = "VST-2026-0815"

		svc.On("Create", mock.Anything, userID, mock.Anything).
			Return(int64(0), inspection.ErrDuplicateProtocol)

		resp, err := h.create(authCtx, input)

		assert.Nil(t, resp)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "protocol")
	})

	t.Run("Unauthorized_WithoutUserID", func(t *testing.T) {
		h := NewHandler(nil, nil, nil)

		input := &createInput{}
		input.Body.Protocol = "VST-2026-0815"

		resp, err := h.create(context.Background(), input)

		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}

func TestHandler_Find(t *testing.T) {
	userID := 11
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		svc.On("Find", mock.Anything, userID, int64(42)).Return(&inspection.Inspection{
			ID:       42,
			Protocol: "VST-2026-0815",
		}, nil)

		resp, err := h.find(authCtx, &findInput{ID: 42})

		assert.NoError(t, err)
		assert.Equal(t, "VST-2026-0815", resp.Body.Protocol)
	})

	t.Run("NotFound_404", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		svc.On("Find", mock.Anything, userID, int64(99)).
			Return(nil, inspection.ErrNotFound)

		resp, err := h.find(authCtx, &findInput{ID: 99})

		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}

func TestHandler_CreateTile(t *testing.T) {
	userID := 11
	authCtx := auth.WithUserID(context.Background(), userID)

	svc := new(MockService)
	h := NewHandler(svc, nil, nil)

	input := &createTileInput{ID: 42}
	input.Body.Model = "Portuguesa Natural"
	input.Body.Quantity = 120

	svc.On("AddTile", mock.Anything, userID, int64(42), mock.MatchedBy(func(tile *inspection.Tile) bool {
		return tile.Model == "Portuguesa Natural" && tile.Quantity == 120
	})).Return(int64(7), nil)

	resp, err := h.createTile(authCtx, input)

	assert.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, int64(7), resp.Body.ID)
}

func TestHandler_CreateNonConformity(t *testing.T) {
	userID := 11
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success_WithPhotoURLs", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &createNonConformityInput{ID: 42}
		input.Body.Title = "Telha trincada na água norte"
		input.Body.PhotoURLs = []string{"/uploads/abc.jpg", "/uploads/def.jpg"}

		svc.On("AddNonConformity", mock.Anything, userID, int64(42),
			mock.MatchedBy(func(nc *inspection.NonConformity) bool {
				return nc.Title == "Telha trincada na água norte" && len(nc.PhotoURLs) == 2
			})).Return(int64(3), nil)

		resp, err := h.createNonConformity(authCtx, input)

		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Status)
		assert.Equal(t, int64(3), resp.Body.ID)
	})

	t.Run("InspectionNotFound_404", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		input := &createNonConformityInput{ID: 99}
		input.Body.Title = "Cumeeira solta"

		svc.On("AddNonConformity", mock.Anything, userID, int64(99), mock.Anything).
			Return(int64(0), inspection.ErrNotFound)

		resp, err := h.createNonConformity(authCtx, input)

		assert.Nil(t, resp)
		assert.Error(t, err)
	})
}
