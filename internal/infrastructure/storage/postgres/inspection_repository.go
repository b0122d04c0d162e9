package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"fieldreport/internal/domain/inspection"
)

type InspectionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewInspectionRepository(pool *pgxpool.Pool, log *slog.Logger) *InspectionRepository {
	return &InspectionRepository{
		pool: pool,
		log:  log.With("component", "inspection_repository"),
	}
}

func (r *InspectionRepository) List(ctx context.Context, userID int) ([]inspection.Inspection, error) {
	const query = `
		SELECT id, local_id, client_id, protocol, date, address, city, state,
		       roof_model, notes, created_at, updated_at
		FROM inspections
		WHERE user_id = $1
		ORDER BY date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list inspections", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	var inspections []inspection.Inspection
	for rows.Next() {
		ins, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, *ins)
	}
	return inspections, rows.Err()
}

func (r *InspectionRepository) Get(ctx context.Context, userID int, inspectionID int64) (*inspection.Inspection, error) {
	const query = `
		SELECT id, local_id, client_id, protocol, date, address, city, state,
		       roof_model, notes, created_at, updated_at
		FROM inspections
		WHERE id = $1 AND user_id = $2`

	row := r.pool.QueryRow(ctx, query, inspectionID, userID)

	ins, err := scanInspection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inspection.ErrNotFound
		}
		r.log.Error("failed to get inspection",
			"inspection_id", inspectionID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("get inspection: %w", err)
	}

	return ins, nil
}

func (r *InspectionRepository) Create(ctx context.Context, userID int, ins *inspection.Inspection) (int64, error) {
	const query = `
		INSERT INTO inspections (user_id, local_id, client_id, protocol, date,
		                         address, city, state, roof_model, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		userID, ins.LocalID, ins.ClientID, ins.Protocol, ins.Date,
		ins.Address, ins.City, ins.State, ins.RoofModel, ins.Notes).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", inspection.ErrDuplicateProtocol, ins.Protocol)
		}
		r.log.Error("failed to create inspection", "user_id", userID, "error", err)
		return 0, fmt.Errorf("create inspection: %w", err)
	}

	return id, nil
}

func (r *InspectionRepository) Update(ctx context.Context, userID int, ins *inspection.Inspection) error {
	const query = `
		UPDATE inspections
		SET client_id = $1, protocol = $2, date = $3, address = $4, city = $5,
		    state = $6, roof_model = $7, notes = $8, updated_at = NOW()
		WHERE id = $9 AND user_id = $10`

	tag, err := r.pool.Exec(ctx, query,
		ins.ClientID, ins.Protocol, ins.Date, ins.Address, ins.City,
		ins.State, ins.RoofModel, ins.Notes, ins.ID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", inspection.ErrDuplicateProtocol, ins.Protocol)
		}
		return fmt.Errorf("update inspection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return inspection.ErrNotFound
	}

	return nil
}

func (r *InspectionRepository) CreateTile(ctx context.Context, inspectionID int64, tile *inspection.Tile) (int64, error) {
	const query = `
		INSERT INTO tiles (inspection_id, model, thickness, length, width, quantity, area)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		inspectionID, tile.Model, tile.Thickness, tile.Length,
		tile.Width, tile.Quantity, tile.Area).Scan(&id)
	if err != nil {
		r.log.Error("failed to create tile", "inspection_id", inspectionID, "error", err)
		return 0, fmt.Errorf("create tile: %w", err)
	}

	return id, nil
}

func (r *InspectionRepository) CreateNonConformity(ctx context.Context, inspectionID int64, nc *inspection.NonConformity) (int64, error) {
	const query = `
		INSERT INTO non_conformities (inspection_id, title, description, notes, photo_urls)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		inspectionID, nc.Title, nc.Description, nc.Notes, nc.PhotoURLs).Scan(&id)
	if err != nil {
		r.log.Error("failed to create non-conformity", "inspection_id", inspectionID, "error", err)
		return 0, fmt.Errorf("create non-conformity: %w", err)
	}

	return id, nil
}

func scanInspection(row pgx.Row) (*inspection.Inspection, error) {
	var ins inspection.Inspection
	if err := row.Scan(&ins.ID, &ins.LocalID, &ins.ClientID, &ins.Protocol,
		&ins.Date, &ins.Address, &ins.City, &ins.State, &ins.RoofModel,
		&ins.Notes, &ins.CreatedAt, &ins.UpdatedAt); err != nil {
		return nil, err
	}
	return &ins, nil
}
