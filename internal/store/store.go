// Package store defines the data-store contract the loyalty core reads and
// writes through. Implementations live in repository/ (PostgreSQL) and
// kvstore/ (Redis).
package store

import (
	"context"
	"errors"

	"github.com/kkkkikiki/loyalty/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Filter narrows a list query. Empty fields do not filter.
type Filter struct {
	OwnerID    string
	CampaignID string
}

// Store is the record store for campaigns and clients.
// Lists are ordered by created_at, newest first.
type Store interface {
	ListCampaigns(ctx context.Context, f Filter) ([]model.CampaignRecord, error)
	// GetCampaign returns ErrNotFound if the campaign doesn't exist.
	GetCampaign(ctx context.Context, id string) (*model.CampaignRecord, error)
	// InsertCampaign assigns rec.ID and rec.CreatedAt when they are empty.
	InsertCampaign(ctx context.Context, rec *model.CampaignRecord) error
	// UpdateCampaign replaces the editable fields of campaign id.
	UpdateCampaign(ctx context.Context, id string, rec *model.CampaignRecord) error

	ListClients(ctx context.Context, f Filter) ([]model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	InsertClient(ctx context.Context, c *model.Client) error
	UpdateClient(ctx context.Context, id string, c *model.Client) error

	Ping(ctx context.Context) error
}
