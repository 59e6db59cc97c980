// Package storetest provides an in-memory store.Store for unit tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

// Call records one store invocation.
type Call struct {
	Op string
	ID string
}

// MemStore keeps records in maps and records every call. Setting Err makes
// every subsequent call fail with it.
type MemStore struct {
	mu        sync.Mutex
	campaigns map[string]model.CampaignRecord
	clients   map[string]model.Client
	seq       int
	now       time.Time

	Err   error
	Calls []Call
	// LastCampaign is the record passed to the latest insert or update.
	LastCampaign model.CampaignRecord
}

var _ store.Store = (*MemStore)(nil)

// New returns an empty MemStore.
func New() *MemStore {
	return &MemStore{
		campaigns: make(map[string]model.CampaignRecord),
		clients:   make(map[string]model.Client),
		now:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *MemStore) record(op, id string) error {
	m.Calls = append(m.Calls, Call{Op: op, ID: id})
	return m.Err
}

// Ops returns the operation names called so far.
func (m *MemStore) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Op
	}
	return out
}

func (m *MemStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *MemStore) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

// PutCampaign stores rec as is, bypassing call recording.
func (m *MemStore) PutCampaign(rec model.CampaignRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.tick()
	}
	m.campaigns[rec.ID] = rec
}

// PutClient stores c as is, bypassing call recording.
func (m *MemStore) PutClient(c model.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.tick()
	}
	m.clients[c.ID] = c
}

func (m *MemStore) ListCampaigns(_ context.Context, f store.Filter) ([]model.CampaignRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("list_campaigns", f.OwnerID); err != nil {
		return nil, err
	}
	out := []model.CampaignRecord{}
	for _, c := range m.campaigns {
		if f.OwnerID != "" && c.BusinessID != f.OwnerID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) GetCampaign(_ context.Context, id string) (*model.CampaignRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("get_campaign", id); err != nil {
		return nil, err
	}
	c, ok := m.campaigns[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *MemStore) InsertCampaign(_ context.Context, rec *model.CampaignRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("insert_campaign", rec.ID); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = m.nextID("campaign")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.tick()
	}
	m.campaigns[rec.ID] = *rec
	m.LastCampaign = *rec
	return nil
}

func (m *MemStore) UpdateCampaign(_ context.Context, id string, rec *model.CampaignRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("update_campaign", id); err != nil {
		return err
	}
	old, ok := m.campaigns[id]
	if !ok {
		return store.ErrNotFound
	}
	next := *rec
	next.ID = id
	next.CreatedAt = old.CreatedAt
	m.campaigns[id] = next
	m.LastCampaign = next
	return nil
}

func (m *MemStore) ListClients(_ context.Context, f store.Filter) ([]model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("list_clients", f.CampaignID); err != nil {
		return nil, err
	}
	out := []model.Client{}
	for _, c := range m.clients {
		if f.OwnerID != "" && c.BusinessID != f.OwnerID {
			continue
		}
		if f.CampaignID != "" && c.CampaignID != f.CampaignID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) GetClient(_ context.Context, id string) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("get_client", id); err != nil {
		return nil, err
	}
	c, ok := m.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *MemStore) InsertClient(_ context.Context, c *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("insert_client", c.ID); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = m.nextID("client")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.tick()
	}
	m.clients[c.ID] = *c
	return nil
}

func (m *MemStore) UpdateClient(_ context.Context, id string, c *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("update_client", id); err != nil {
		return err
	}
	old, ok := m.clients[id]
	if !ok {
		return store.ErrNotFound
	}
	next := *c
	next.ID = id
	next.BusinessID = old.BusinessID
	next.CampaignID = old.CampaignID
	next.CreatedAt = old.CreatedAt
	m.clients[id] = next
	return nil
}

func (m *MemStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}
