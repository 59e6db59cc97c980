package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

// PostgresStore implements store.Store on top of the campaign and client
// repositories. Each call is a single statement; no transactions are needed.
type PostgresStore struct {
	db        *sqlx.DB
	campaigns *CampaignRepository
	clients   *ClientRepository
}

var _ store.Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by db
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:        db,
		campaigns: NewCampaignRepository(),
		clients:   NewClientRepository(),
	}
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, f store.Filter) ([]model.CampaignRecord, error) {
	return s.campaigns.ListCampaigns(ctx, s.db, f)
}

func (s *PostgresStore) GetCampaign(ctx context.Context, id string) (*model.CampaignRecord, error) {
	return s.campaigns.GetCampaign(ctx, s.db, id)
}

func (s *PostgresStore) InsertCampaign(ctx context.Context, rec *model.CampaignRecord) error {
	return s.campaigns.InsertCampaign(ctx, s.db, rec)
}

func (s *PostgresStore) UpdateCampaign(ctx context.Context, id string, rec *model.CampaignRecord) error {
	return s.campaigns.UpdateCampaign(ctx, s.db, id, rec)
}

func (s *PostgresStore) ListClients(ctx context.Context, f store.Filter) ([]model.Client, error) {
	return s.clients.ListClients(ctx, s.db, f)
}

func (s *PostgresStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	return s.clients.GetClient(ctx, s.db, id)
}

func (s *PostgresStore) InsertClient(ctx context.Context, c *model.Client) error {
	return s.clients.InsertClient(ctx, s.db, c)
}

func (s *PostgresStore) UpdateClient(ctx context.Context, id string, c *model.Client) error {
	return s.clients.UpdateClient(ctx, s.db, id, c)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
