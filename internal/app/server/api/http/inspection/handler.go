package inspection

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"fieldreport/internal/app/server/api/http/middleware/auth"
	"fieldreport/internal/domain/inspection"
)

type Handler struct {
	service    inspection.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service inspection.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.createTileOp(), h.createTile)
	huma.Register(api, h.createNonConformityOp(), h.createNonConformity)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	inspections, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: listResponse{Inspections: inspections},
	}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	ins, err := h.service.Find(ctx, userID, input.ID)
	if err != nil {
		return nil, mapError(err)
	}

	return &findOutput{Body: *ins}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*idOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	ins := input.Body
	id, err := h.service.Create(ctx, userID, &ins)
	if err != nil {
		return nil, mapError(err)
	}

	return &idOutput{
		Status: 201,
		Body:   idResponse{ID: id},
	}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*idOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	ins := input.Body
	ins.ID = input.ID
	if err := h.service.Update(ctx, userID, &ins); err != nil {
		return nil, mapError(err)
	}

	return &idOutput{
		Status: 200,
		Body:   idResponse{ID: input.ID},
	}, nil
}

func (h *Handler) createTile(ctx context.Context, input *createTileInput) (*idOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	tile := input.Body
	id, err := h.service.AddTile(ctx, userID, input.ID, &tile)
	if err != nil {
		return nil, mapError(err)
	}

	return &idOutput{
		Status: 201,
		Body:   idResponse{ID: id},
	}, nil
}

func (h *Handler) createNonConformity(ctx context.Context, input *createNonConformityInput) (*idOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	nc := input.Body
	id, err := h.service.AddNonConformity(ctx, userID, input.ID, &nc)
	if err != nil {
		return nil, mapError(err)
	}

	return &idOutput{
		Status: 201,
		Body:   idResponse{ID: id},
	}, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, inspection.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, inspection.ErrDuplicateProtocol):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, inspection.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	}
	return err
}
