package inspection

import (
	"context"
)

type Repository interface {
	List(ctx context.Context, userID int) ([]Inspection, error)
	Get(ctx context.Context, userID int, inspectionID int64) (*Inspection, error)
	Create(ctx context.Context, userID int, ins *Inspection) (int64, error)
	Update(ctx context.Context, userID int, ins *Inspection) error
	CreateTile(ctx context.Context, inspectionID int64, tile *Tile) (int64, error)
	CreateNonConformity(ctx context.Context, inspectionID int64, nc *NonConformity) (int64, error)
}
