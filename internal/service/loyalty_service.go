package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/kkkkikiki/loyalty/internal/aggregate"
	"github.com/kkkkikiki/loyalty/internal/form"
	"github.com/kkkkikiki/loyalty/internal/metrics"
	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/search"
	"github.com/kkkkikiki/loyalty/internal/store"
)

// LoyaltyService is the entry point the presentation layer calls. Every
// operation takes the owning business explicitly and issues at most one
// store request per step, with no retries.
type LoyaltyService struct {
	store      store.Store
	now        func() time.Time
	windowDays int
	lang       language.Tag
	log        *slog.Logger
}

// Option configures a LoyaltyService.
type Option func(*LoyaltyService)

// WithClock overrides the time source used for recency and form defaults.
func WithClock(now func() time.Time) Option {
	return func(s *LoyaltyService) { s.now = now }
}

// WithActiveWindow sets the active-recently window in days.
func WithActiveWindow(days int) Option {
	return func(s *LoyaltyService) { s.windowDays = days }
}

// WithLanguage sets the language of display labels.
func WithLanguage(tag language.Tag) Option {
	return func(s *LoyaltyService) { s.lang = tag }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *LoyaltyService) { s.log = l }
}

// NewLoyaltyService creates a LoyaltyService backed by st.
func NewLoyaltyService(st store.Store, opts ...Option) *LoyaltyService {
	s := &LoyaltyService{
		store:      st,
		now:        time.Now,
		windowDays: model.DefaultActiveWindowDays,
		lang:       language.Spanish,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExcludedRecord names a stored record left out of a result and why.
type ExcludedRecord struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// CampaignList is the interpreted campaigns of one owner.
type CampaignList struct {
	Campaigns []model.Campaign `json:"campaigns"`
	Excluded  []ExcludedRecord `json:"excluded,omitempty"`
}

// call runs one store operation and records its latency.
func (s *LoyaltyService) call(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "success"
	if err != nil {
		status = "failed"
	}
	metrics.RecordStoreCall(op, status, time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("store call failed", "op", op, "error", err)
		return model.NewStoreError(op, err)
	}
	return nil
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrMissingOwner
	}
	return nil
}

// LoadCampaignsFor returns the owner's campaigns, newest first. Records that
// cannot be interpreted are excluded and listed; a store failure yields an
// empty list and a StoreError.
func (s *LoyaltyService) LoadCampaignsFor(ctx context.Context, ownerID string) (CampaignList, error) {
	out := CampaignList{Campaigns: []model.Campaign{}}
	if err := requireOwner(ownerID); err != nil {
		return out, err
	}

	var records []model.CampaignRecord
	err := s.call("list_campaigns", func() (err error) {
		records, err = s.store.ListCampaigns(ctx, store.Filter{OwnerID: ownerID})
		return err
	})
	if err != nil {
		return out, err
	}

	for _, rec := range records {
		c, err := model.NewCampaign(rec)
		if err != nil {
			metrics.RecordExcluded("campaign")
			s.log.Error("excluding campaign record", "campaign_id", rec.ID, "owner_id", ownerID, "error", err)
			out.Excluded = append(out.Excluded, ExcludedRecord{ID: rec.ID, Reason: err.Error()})
			continue
		}
		out.Campaigns = append(out.Campaigns, c)
	}
	return out, nil
}

// LoadClientsFor returns the owner's clients enrolled in campaignID, or all of
// them for search.AllCampaigns, newest first. An empty campaignID matches no
// campaign.
func (s *LoyaltyService) LoadClientsFor(ctx context.Context, ownerID, campaignID string) ([]model.Client, error) {
	out := []model.Client{}
	if err := requireOwner(ownerID); err != nil {
		return out, err
	}
	if campaignID == "" {
		return out, nil
	}

	f := store.Filter{OwnerID: ownerID}
	if campaignID != search.AllCampaigns {
		f.CampaignID = campaignID
	}

	var clients []model.Client
	err := s.call("list_clients", func() (err error) {
		clients, err = s.store.ListClients(ctx, f)
		return err
	})
	if err != nil {
		return out, err
	}

	now := s.now()
	for _, c := range clients {
		if err := c.ValidateAt(now); err != nil {
			metrics.RecordExcluded("client")
			s.log.Error("excluding client record", "client_id", c.ID, "owner_id", ownerID, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FilterClients narrows clients by free text.
func (s *LoyaltyService) FilterClients(clients []model.Client, query string) []model.Client {
	return search.FilterClients(clients, query)
}

// SummarizeCampaigns returns the total and active campaign counts.
func (s *LoyaltyService) SummarizeCampaigns(campaigns []model.Campaign) aggregate.CampaignSummary {
	return aggregate.SummarizeCampaigns(campaigns)
}

// SummarizeClients returns client counters evaluated at the current time.
func (s *LoyaltyService) SummarizeClients(clients []model.Client) aggregate.ClientSummary {
	return aggregate.SummarizeClients(clients, s.now(), s.windowDays)
}

func (s *LoyaltyService) today() model.Date {
	return model.DateOf(s.now())
}

func (s *LoyaltyService) openSession(ctx context.Context, ownerID, campaignID string) (*form.Session, error) {
	if campaignID == "" {
		return form.NewCreateSession(s.today()), nil
	}
	start := time.Now()
	session, err := form.OpenEditSession(ctx, s.store, ownerID, campaignID)
	status := "success"
	if model.IsStoreError(err) {
		status = "failed"
	}
	metrics.RecordStoreCall("get_campaign", status, time.Since(start).Seconds())
	return session, err
}

// CampaignForm returns the values a campaign form opens with: defaults when
// campaignID is empty, the stored campaign otherwise.
func (s *LoyaltyService) CampaignForm(ctx context.Context, ownerID, campaignID string) (form.Mode, form.Values, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", form.Values{}, err
	}
	session, err := s.openSession(ctx, ownerID, campaignID)
	if err != nil {
		s.log.Warn("campaign form load failed", "campaign_id", campaignID, "owner_id", ownerID, "error", err)
		return "", form.Values{}, err
	}
	return session.Mode(), session.Values(), nil
}

// SubmitCampaignForm applies edits in order to a new form (existingID empty)
// or to the stored campaign, and saves the result.
func (s *LoyaltyService) SubmitCampaignForm(ctx context.Context, ownerID, existingID string, edits []form.Edit) (form.Result, error) {
	mode := form.ModeCreate
	if existingID != "" {
		mode = form.ModeEdit
	}

	res, err := s.submit(ctx, ownerID, existingID, edits)
	if err != nil {
		metrics.RecordFormSubmission(string(mode), "failed")
		s.log.Warn("campaign form submit failed", "mode", mode, "campaign_id", existingID, "owner_id", ownerID, "error", err)
		return form.Result{}, err
	}
	metrics.RecordFormSubmission(string(mode), "success")
	s.log.Info("campaign saved", "mode", mode, "campaign_id", res.CampaignID, "owner_id", ownerID)
	return res, nil
}

func (s *LoyaltyService) submit(ctx context.Context, ownerID, existingID string, edits []form.Edit) (form.Result, error) {
	if err := requireOwner(ownerID); err != nil {
		return form.Result{}, err
	}
	session, err := s.openSession(ctx, ownerID, existingID)
	if err != nil {
		return form.Result{}, err
	}
	for _, e := range edits {
		if err := session.Edit(e.Field, e.Value); err != nil {
			return form.Result{}, fmt.Errorf("field %s: %w", e.Field, err)
		}
	}

	op := "insert_campaign"
	if session.Mode() == form.ModeEdit {
		op = "update_campaign"
	}
	start := time.Now()
	res, err := session.Submit(ctx, s.store, ownerID)
	switch {
	case err == nil:
		metrics.RecordStoreCall(op, "success", time.Since(start).Seconds())
	case model.IsStoreError(err):
		metrics.RecordStoreCall(op, "failed", time.Since(start).Seconds())
	}
	return res, err
}
