// Package kvstore implements store.Store on Redis. Records are JSON values;
// sorted sets scored by created_at index them per owner and per campaign.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

const keyPrefix = "loyalty:"

func campaignKey(id string) string       { return keyPrefix + "campaign:" + id }
func clientKey(id string) string         { return keyPrefix + "client:" + id }
func allCampaignsKey() string            { return keyPrefix + "campaigns" }
func allClientsKey() string              { return keyPrefix + "clients" }
func ownerCampaignsKey(id string) string { return keyPrefix + "owner:" + id + ":campaigns" }
func ownerClientsKey(id string) string   { return keyPrefix + "owner:" + id + ":clients" }
func campaignClientsKey(id string) string {
	return keyPrefix + "campaign:" + id + ":clients"
}

// RedisStore keeps campaign and client records in Redis.
type RedisStore struct {
	rdb *redis.Client
}

var _ store.Store = (*RedisStore)(nil)

// NewRedisStore creates a store backed by rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (s *RedisStore) ListCampaigns(ctx context.Context, f store.Filter) ([]model.CampaignRecord, error) {
	index := allCampaignsKey()
	if f.OwnerID != "" {
		index = ownerCampaignsKey(f.OwnerID)
	}

	ids, err := s.rdb.ZRevRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign index: %w", err)
	}

	campaigns := []model.CampaignRecord{}
	err = s.loadAll(ctx, ids, campaignKey, func(raw string) error {
		var rec model.CampaignRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return fmt.Errorf("failed to decode campaign: %w", err)
		}
		campaigns = append(campaigns, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (s *RedisStore) GetCampaign(ctx context.Context, id string) (*model.CampaignRecord, error) {
	var rec model.CampaignRecord
	if err := s.getJSON(ctx, campaignKey(id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) InsertCampaign(ctx context.Context, rec *model.CampaignRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode campaign: %w", err)
	}

	member := redis.Z{Score: score(rec.CreatedAt), Member: rec.ID}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, campaignKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, allCampaignsKey(), member)
		pipe.ZAdd(ctx, ownerCampaignsKey(rec.BusinessID), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (s *RedisStore) UpdateCampaign(ctx context.Context, id string, rec *model.CampaignRecord) error {
	old, err := s.GetCampaign(ctx, id)
	if err != nil {
		return err
	}

	next := *rec
	next.ID = id
	next.CreatedAt = old.CreatedAt
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode campaign: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, campaignKey(id), data, 0)
		if old.BusinessID != next.BusinessID {
			pipe.ZRem(ctx, ownerCampaignsKey(old.BusinessID), id)
			pipe.ZAdd(ctx, ownerCampaignsKey(next.BusinessID), redis.Z{Score: score(next.CreatedAt), Member: id})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

func (s *RedisStore) ListClients(ctx context.Context, f store.Filter) ([]model.Client, error) {
	index := allClientsKey()
	switch {
	case f.CampaignID != "":
		index = campaignClientsKey(f.CampaignID)
	case f.OwnerID != "":
		index = ownerClientsKey(f.OwnerID)
	}

	ids, err := s.rdb.ZRevRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read client index: %w", err)
	}

	clients := []model.Client{}
	err = s.loadAll(ctx, ids, clientKey, func(raw string) error {
		var c model.Client
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return fmt.Errorf("failed to decode client: %w", err)
		}
		if f.OwnerID != "" && c.BusinessID != f.OwnerID {
			return nil
		}
		clients = append(clients, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *RedisStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := s.getJSON(ctx, clientKey(id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisStore) InsertClient(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode client: %w", err)
	}

	member := redis.Z{Score: score(c.CreatedAt), Member: c.ID}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, clientKey(c.ID), data, 0)
		pipe.ZAdd(ctx, allClientsKey(), member)
		pipe.ZAdd(ctx, ownerClientsKey(c.BusinessID), member)
		pipe.ZAdd(ctx, campaignClientsKey(c.CampaignID), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// UpdateClient replaces contact details and counters. Ownership, campaign and
// creation time stay as stored.
func (s *RedisStore) UpdateClient(ctx context.Context, id string, c *model.Client) error {
	old, err := s.GetClient(ctx, id)
	if err != nil {
		return err
	}

	next := *c
	next.ID = id
	next.BusinessID = old.BusinessID
	next.CampaignID = old.CampaignID
	next.CreatedAt = old.CreatedAt
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode client: %w", err)
	}

	if err := s.rdb.Set(ctx, clientKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// loadAll fetches the records for ids in index order. Index entries whose
// record is gone are skipped.
func (s *RedisStore) loadAll(ctx context.Context, ids []string, key func(string) string, decode func(string) error) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if err := decode(raw); err != nil {
			return err
		}
	}
	return nil
}
