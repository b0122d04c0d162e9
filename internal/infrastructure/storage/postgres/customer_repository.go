package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"fieldreport/internal/domain/customer"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewCustomerRepository(pool *pgxpool.Pool, log *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		pool: pool,
		log:  log.With("component", "customer_repository"),
	}
}

func (r *CustomerRepository) List(ctx context.Context, userID int) ([]customer.Client, error) {
	const query = `
		SELECT id, local_id, name, document, contact, email, phone, created_at
		FROM clients
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list clients", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []customer.Client
	for rows.Next() {
		var c customer.Client
		if err := rows.Scan(&c.ID, &c.LocalID, &c.Name, &c.Document,
			&c.Contact, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *CustomerRepository) Get(ctx context.Context, userID int, clientID int64) (*customer.Client, error) {
	const query = `
		SELECT id, local_id, name, document, contact, email, phone, created_at
		FROM clients
		WHERE id = $1 AND user_id = $2`

	var c customer.Client
	err := r.pool.QueryRow(ctx, query, clientID, userID).Scan(
		&c.ID, &c.LocalID, &c.Name, &c.Document, &c.Contact, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		r.log.Error("failed to get client", "client_id", clientID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("get client: %w", err)
	}

	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, userID int, c *customer.Client) (int64, error) {
	const query = `
		INSERT INTO clients (user_id, local_id, name, document, contact, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		userID, c.LocalID, c.Name, c.Document, c.Contact, c.Email, c.Phone).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", customer.ErrDuplicateDocument, c.Document)
		}
		r.log.Error("failed to create client", "user_id", userID, "error", err)
		return 0, fmt.Errorf("create client: %w", err)
	}

	return id, nil
}

func (r *CustomerRepository) Update(ctx context.Context, userID int, c *customer.Client) error {
	const query = `
		UPDATE clients
		SET name = $1, document = $2, contact = $3, email = $4, phone = $5
		WHERE id = $6 AND user_id = $7`

	tag, err := r.pool.Exec(ctx, query,
		c.Name, c.Document, c.Contact, c.Email, c.Phone, c.ID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", customer.ErrDuplicateDocument, c.Document)
		}
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}

	return nil
}
