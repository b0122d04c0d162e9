package inspection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	List(ctx context.Context, userID int) ([]Inspection, error)
	Find(ctx context.Context, userID int, inspectionID int64) (*Inspection, error)
	Create(ctx context.Context, userID int, ins *Inspection) (int64, error)
	Update(ctx context.Context, userID int, ins *Inspection) error
	AddTile(ctx context.Context, userID int, inspectionID int64, tile *Tile) (int64, error)
	AddNonConformity(ctx context.Context, userID int, inspectionID int64, nc *NonConformity) (int64, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

func (s *Service) List(ctx context.Context, userID int) ([]Inspection, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Find(ctx context.Context, userID int, inspectionID int64) (*Inspection, error) {
	return s.repo.Get(ctx, userID, inspectionID)
}

func (s *Service) Create(ctx context.Context, userID int, ins *Inspection) (int64, error) {
	if err := validate(ins); err != nil {
		s.log.Debug("inspection validation failed", "protocol", ins.Protocol, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.repo.Create(ctx, userID, ins)
	if err != nil {
		return 0, err
	}

	s.log.Info("inspection created", "id", id, "protocol", ins.Protocol, "user_id", userID)
	return id, nil
}

func (s *Service) Update(ctx context.Context, userID int, ins *Inspection) error {
	if err := validate(ins); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.repo.Update(ctx, userID, ins)
}

func (s *Service) AddTile(ctx context.Context, userID int, inspectionID int64, tile *Tile) (int64, error) {
	if tile.Model == "" {
		return 0, fmt.Errorf("%w: tile model is required", ErrInvalidInput)
	}
	if tile.Quantity < 0 {
		return 0, fmt.Errorf("%w: tile quantity must not be negative", ErrInvalidInput)
	}

	// Владение проверяется до вставки строки.
	if _, err := s.repo.Get(ctx, userID, inspectionID); err != nil {
		return 0, err
	}

	return s.repo.CreateTile(ctx, inspectionID, tile)
}

func (s *Service) AddNonConformity(ctx context.Context, userID int, inspectionID int64, nc *NonConformity) (int64, error) {
	if strings.TrimSpace(nc.Title) == "" {
		return 0, fmt.Errorf("%w: non-conformity title is required", ErrInvalidInput)
	}

	if _, err := s.repo.Get(ctx, userID, inspectionID); err != nil {
		return 0, err
	}

	return s.repo.CreateNonConformity(ctx, inspectionID, nc)
}

func validate(ins *Inspection) error {
	if strings.TrimSpace(ins.Protocol) == "" {
		return fmt.Errorf("protocol is required")
	}
	if ins.Date.IsZero() {
		ins.Date = time.Now()
	}
	return nil
}
