package customer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"
)

type Repository interface {
	List(ctx context.Context, userID int) ([]Client, error)
	Get(ctx context.Context, userID int, clientID int64) (*Client, error)
	Create(ctx context.Context, userID int, c *Client) (int64, error)
	Update(ctx context.Context, userID int, c *Client) error
}

type Servicer interface {
	List(ctx context.Context, userID int) ([]Client, error)
	Find(ctx context.Context, userID int, clientID int64) (*Client, error)
	Create(ctx context.Context, userID int, c *Client) (int64, error)
	Update(ctx context.Context, userID int, c *Client) error
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

func (s *Service) List(ctx context.Context, userID int) ([]Client, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Find(ctx context.Context, userID int, clientID int64) (*Client, error) {
	return s.repo.Get(ctx, userID, clientID)
}

func (s *Service) Create(ctx context.Context, userID int, c *Client) (int64, error) {
	if err := validate(c); err != nil {
		s.log.Debug("client validation failed", "document", c.Document, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.repo.Create(ctx, userID, c)
	if err != nil {
		return 0, err
	}

	s.log.Info("client created", "id", id, "document", c.Document, "user_id", userID)
	return id, nil
}

func (s *Service) Update(ctx context.Context, userID int, c *Client) error {
	if err := validate(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.repo.Update(ctx, userID, c)
}

func validate(c *Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.Document) == "" {
		return fmt.Errorf("document is required")
	}
	return nil
}
