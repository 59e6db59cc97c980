package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

// DBExecutor interface for database operations (can be *sqlx.DB or *sqlx.Tx)
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

const campaignColumns = `id, business_id, name, description, type, objective, reward,
		start_date, end_date, active, created_at`

// CampaignRepository handles campaign data operations
type CampaignRepository struct{}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{}
}

// ListCampaigns returns campaigns matching the filter, newest first
func (r *CampaignRepository) ListCampaigns(ctx context.Context, db DBExecutor, f store.Filter) ([]model.CampaignRecord, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	var args []interface{}
	if f.OwnerID != "" {
		query += ` WHERE business_id = $1`
		args = append(args, f.OwnerID)
	}
	query += ` ORDER BY created_at DESC`

	campaigns := []model.CampaignRecord{}
	if err := db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// GetCampaign retrieves a campaign by ID
func (r *CampaignRepository) GetCampaign(ctx context.Context, db DBExecutor, id string) (*model.CampaignRecord, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	var campaign model.CampaignRecord
	if err := db.GetContext(ctx, &campaign, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

// InsertCampaign creates a new campaign
func (r *CampaignRepository) InsertCampaign(ctx context.Context, db DBExecutor, rec *model.CampaignRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO campaigns (id, business_id, name, description, type, objective, reward,
			start_date, end_date, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.ExecContext(ctx, query,
		rec.ID, rec.BusinessID, rec.Name, rec.Description, rec.Type, rec.Objective, rec.Reward,
		rec.StartDate, rec.EndDate, rec.Active, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// UpdateCampaign replaces the editable fields of a campaign. id and created_at never change.
func (r *CampaignRepository) UpdateCampaign(ctx context.Context, db DBExecutor, id string, rec *model.CampaignRecord) error {
	query := `
		UPDATE campaigns
		SET business_id = $1, name = $2, description = $3, type = $4, objective = $5,
			reward = $6, start_date = $7, end_date = $8, active = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := db.ExecContext(ctx, query,
		rec.BusinessID, rec.Name, rec.Description, rec.Type, rec.Objective,
		rec.Reward, rec.StartDate, rec.EndDate, rec.Active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
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
