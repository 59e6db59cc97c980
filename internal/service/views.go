package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kkkkikiki/loyalty/internal/aggregate"
	"github.com/kkkkikiki/loyalty/internal/form"
	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/search"
)

// ErrCampaignInactive is returned when enrolling into or recording a visit
// for a campaign that is switched off.
var ErrCampaignInactive = errors.New("campaign is not active")

// CampaignView is a campaign with its display labels.
type CampaignView struct {
	model.Campaign
	TypeLabel      string `json:"type_label"`
	ObjectiveLabel string `json:"objective_label"`
	StatusLabel    string `json:"status_label"`
}

// Dashboard is the campaign list screen.
type Dashboard struct {
	Campaigns []CampaignView            `json:"campaigns"`
	Summary   aggregate.CampaignSummary `json:"summary"`
	Excluded  []ExcludedRecord          `json:"excluded,omitempty"`
}

// ClientRow is one line of the client list.
type ClientRow struct {
	model.Client
	DisplayName    string `json:"display_name"`
	ProgressLabel  string `json:"progress_label"`
	Percent        string `json:"percent,omitempty"`
	Complete       bool   `json:"complete"`
	ActiveRecently bool   `json:"active_recently"`
}

// ClientsPage is the client list screen for one campaign scope and query.
type ClientsPage struct {
	CampaignID string                  `json:"campaign_id"`
	Query      string                  `json:"query,omitempty"`
	Clients    []ClientRow             `json:"clients"`
	Summary    aggregate.ClientSummary `json:"summary"`
}

// EnrollInput is a new client for a campaign.
type EnrollInput struct {
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	Surname    string `json:"surname,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (s *LoyaltyService) view(c model.Campaign) CampaignView {
	v := CampaignView{Campaign: c, StatusLabel: c.StatusLabel(s.lang)}
	var err error
	if v.TypeLabel, err = c.Type.Label(s.lang); err != nil {
		s.log.Warn("campaign type label unavailable", "campaign_id", c.ID, "error", err)
	}
	if v.ObjectiveLabel, err = c.Type.ObjectiveLabel(s.lang, c.Objective); err != nil {
		s.log.Warn("campaign objective label unavailable", "campaign_id", c.ID, "error", err)
	}
	return v
}

// Dashboard loads the owner's campaigns with their counters. When the client
// count cannot be loaded the campaigns are still returned with the error.
func (s *LoyaltyService) Dashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	out := Dashboard{Campaigns: []CampaignView{}}
	list, err := s.LoadCampaignsFor(ctx, ownerID)
	if err != nil {
		return out, err
	}
	for _, c := range list.Campaigns {
		out.Campaigns = append(out.Campaigns, s.view(c))
	}
	out.Excluded = list.Excluded
	out.Summary = s.SummarizeCampaigns(list.Campaigns)

	clients, err := s.LoadClientsFor(ctx, ownerID, search.AllCampaigns)
	if err != nil {
		return out, err
	}
	out.Summary.ClientsTotal = len(clients)
	return out, nil
}

// ClientsView runs the client list pipeline: campaign scope, then text
// filter, then aggregation over what is left. An empty campaignID selects the
// newest campaign; search.AllCampaigns selects every campaign of the owner.
func (s *LoyaltyService) ClientsView(ctx context.Context, ownerID, campaignID, query string) (ClientsPage, error) {
	out := ClientsPage{Query: query, Clients: []ClientRow{}}
	list, err := s.LoadCampaignsFor(ctx, ownerID)
	if err != nil {
		return out, err
	}
	if campaignID == "" {
		if len(list.Campaigns) == 0 {
			return out, nil
		}
		campaignID = list.Campaigns[0].ID
	}
	out.CampaignID = campaignID

	clients, err := s.LoadClientsFor(ctx, ownerID, campaignID)
	if err != nil {
		return out, err
	}
	filtered := s.FilterClients(clients, query)
	out.Summary = s.SummarizeClients(filtered)

	now := s.now()
	for _, c := range filtered {
		campaign := model.FindCampaign(list.Campaigns, c.CampaignID)
		row := ClientRow{
			Client:         c,
			DisplayName:    c.FullName(),
			ProgressLabel:  model.ProgressLabel(c, campaign),
			ActiveRecently: model.IsRecentlyActive(c, now, s.windowDays),
		}
		if campaign != nil {
			if r, err := model.CompletionRatio(c, *campaign); err == nil {
				row.Percent = r.Percent(1).String()
				row.Complete = r.Complete()
			}
		}
		out.Clients = append(out.Clients, row)
	}
	return out, nil
}

// ownedCampaign loads a campaign and checks it belongs to ownerID.
func (s *LoyaltyService) ownedCampaign(ctx context.Context, ownerID, id string) (model.Campaign, error) {
	var rec *model.CampaignRecord
	err := s.call("get_campaign", func() (err error) {
		rec, err = s.store.GetCampaign(ctx, id)
		return err
	})
	if err != nil {
		return model.Campaign{}, err
	}
	c, err := model.NewCampaign(*rec)
	if err != nil {
		return model.Campaign{}, err
	}
	if c.BusinessID != ownerID {
		return model.Campaign{}, fmt.Errorf("%w: %s", form.ErrNotOwner, id)
	}
	return c, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// EnrollClient adds a client with zero progress to one of the owner's active
// campaigns.
func (s *LoyaltyService) EnrollClient(ctx context.Context, ownerID string, in EnrollInput) (model.Client, error) {
	if err := requireOwner(ownerID); err != nil {
		return model.Client{}, err
	}
	campaign, err := s.ownedCampaign(ctx, ownerID, in.CampaignID)
	if err != nil {
		return model.Client{}, err
	}
	if !campaign.IsActiveOn(s.today()) {
		return model.Client{}, fmt.Errorf("%w: %s", ErrCampaignInactive, campaign.ID)
	}

	c := model.Client{
		BusinessID: ownerID,
		CampaignID: campaign.ID,
		Name:       strings.TrimSpace(in.Name),
		Surname:    optional(in.Surname),
		Email:      optional(in.Email),
		Phone:      optional(in.Phone),
	}
	if err := c.Validate(); err != nil {
		return model.Client{}, err
	}
	if err := s.call("insert_client", func() error {
		return s.store.InsertClient(ctx, &c)
	}); err != nil {
		return model.Client{}, err
	}
	s.log.Info("client enrolled", "client_id", c.ID, "campaign_id", c.CampaignID, "owner_id", ownerID)
	return c, nil
}

// RecordVisit registers one visit: the visit count goes up by one, the last
// visit moves to now and progress grows by amount. Visit campaigns always
// count one unit per visit; elsewhere an amount of zero counts as one.
func (s *LoyaltyService) RecordVisit(ctx context.Context, ownerID, clientID string, amount int) (model.Client, error) {
	if err := requireOwner(ownerID); err != nil {
		return model.Client{}, err
	}
	if amount < 0 {
		return model.Client{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	var client *model.Client
	if err := s.call("get_client", func() (err error) {
		client, err = s.store.GetClient(ctx, clientID)
		return err
	}); err != nil {
		return model.Client{}, err
	}
	if client.BusinessID != ownerID {
		return model.Client{}, fmt.Errorf("%w: client %s", form.ErrNotOwner, clientID)
	}

	campaign, err := s.ownedCampaign(ctx, ownerID, client.CampaignID)
	if err != nil {
		return model.Client{}, err
	}
	now := s.now()
	if !campaign.IsActiveOn(model.DateOf(now)) {
		return model.Client{}, fmt.Errorf("%w: %s", ErrCampaignInactive, campaign.ID)
	}

	if amount == 0 || campaign.Type == model.CampaignVisits {
		amount = 1
	}
	next := *client
	next.Progress += amount
	next.VisitCount++
	next.LastVisitAt = &now
	if err := next.ValidateAt(now); err != nil {
		return model.Client{}, err
	}

	if err := s.call("update_client", func() error {
		return s.store.UpdateClient(ctx, clientID, &next)
	}); err != nil {
		return model.Client{}, err
	}
	s.log.Info("visit recorded", "client_id", clientID, "campaign_id", campaign.ID, "progress", next.Progress)
	return next, nil
}
