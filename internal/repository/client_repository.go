package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

const clientColumns = `id, business_id, campaign_id, name, surname, email, phone,
		progress, visit_count, last_visit_at, created_at`

// ClientRepository handles client data operations
type ClientRepository struct{}

// NewClientRepository creates a new client repository
func NewClientRepository() *ClientRepository {
	return &ClientRepository{}
}

// ListClients returns clients matching the filter, newest first
func (r *ClientRepository) ListClients(ctx context.Context, db DBExecutor, f store.Filter) ([]model.Client, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("business_id = $%d", len(args)))
	}
	if f.CampaignID != "" {
		args = append(args, f.CampaignID)
		where = append(where, fmt.Sprintf("campaign_id = $%d", len(args)))
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	clients := []model.Client{}
	if err := db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetClient retrieves a client by ID
func (r *ClientRepository) GetClient(ctx context.Context, db DBExecutor, id string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	var client model.Client
	if err := db.GetContext(ctx, &client, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

// InsertClient enrolls a client in a campaign
func (r *ClientRepository) InsertClient(ctx context.Context, db DBExecutor, c *model.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO clients (id, business_id, campaign_id, name, surname, email, phone,
			progress, visit_count, last_visit_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.ExecContext(ctx, query,
		c.ID, c.BusinessID, c.CampaignID, c.Name, c.Surname, c.Email, c.Phone,
		c.Progress, c.VisitCount, c.LastVisitAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// UpdateClient replaces a client's contact details and progress counters
func (r *ClientRepository) UpdateClient(ctx context.Context, db DBExecutor, id string, c *model.Client) error {
	query := `
		UPDATE clients
		SET name = $1, surname = $2, email = $3, phone = $4,
			progress = $5, visit_count = $6, last_visit_at = $7
		WHERE id = $8
	`
	result, err := db.ExecContext(ctx, query,
		c.Name, c.Surname, c.Email, c.Phone, c.Progress, c.VisitCount, c.LastVisitAt, id)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
