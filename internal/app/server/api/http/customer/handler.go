package customer

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"fieldreport/internal/app/server/api/http/middleware/auth"
	"fieldreport/internal/domain/customer"
)

type Handler struct {
	service    customer.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service customer.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	clients, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: listResponse{Clients: clients},
	}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	id, err := h.service.Create(ctx, userID, &customer.Client{
		LocalID:  input.Body.LocalID,
		Name:     input.Body.Name,
		Document: input.Body.Document,
		Contact:  input.Body.Contact,
		Email:    input.Body.Email,
		Phone:    input.Body.Phone,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &createOutput{
		Status: 201,
		Body:   createResponse{ID: id},
	}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*createOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	err := h.service.Update(ctx, userID, &customer.Client{
		ID:       input.ID,
		Name:     input.Body.Name,
		Document: input.Body.Document,
		Contact:  input.Body.Contact,
		Email:    input.Body.Email,
		Phone:    input.Body.Phone,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &createOutput{
		Status: 200,
		Body:   createResponse{ID: input.ID},
	}, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, customer.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, customer.ErrDuplicateDocument):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, customer.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	}
	return err
}
