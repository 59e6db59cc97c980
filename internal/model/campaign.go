package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CampaignType is the kind of loyalty program a campaign runs.
type CampaignType string

const (
	CampaignStamps CampaignType = "stamps"
	CampaignPoints CampaignType = "points"
	CampaignVisits CampaignType = "visits"
)

// CampaignTypes lists every valid campaign type.
var CampaignTypes = []CampaignType{CampaignStamps, CampaignPoints, CampaignVisits}

// legacy values written by the first front end
var campaignTypeAliases = map[string]CampaignType{
	"stamps":  CampaignStamps,
	"points":  CampaignPoints,
	"visits":  CampaignVisits,
	"sellos":  CampaignStamps,
	"puntos":  CampaignPoints,
	"visitas": CampaignVisits,
}

// ParseCampaignType returns the campaign type named by s.
func ParseCampaignType(s string) (CampaignType, error) {
	t, ok := campaignTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCampaignType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the three campaign types.
func (t CampaignType) Valid() bool {
	return slices.Contains(CampaignTypes, t)
}

// CampaignRecord represents a campaign row as the data store holds it.
// Dates are kept as the store returns them and may carry a time of day.
type CampaignRecord struct {
	ID          string    `db:"id" json:"id"`
	BusinessID  string    `db:"business_id" json:"business_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Type        string    `db:"type" json:"type"`
	Objective   int       `db:"objective" json:"objective"`
	Reward      string    `db:"reward" json:"reward"`
	StartDate   string    `db:"start_date" json:"start_date"`
	EndDate     *string   `db:"end_date" json:"end_date,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Campaign is an interpreted loyalty campaign.
type Campaign struct {
	ID          string       `json:"id"`
	BusinessID  string       `json:"business_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        CampaignType `json:"type"`
	Objective   int          `json:"objective"`
	Reward      string       `json:"reward"`
	StartDate   Date         `json:"start_date"`
	EndDate     *Date        `json:"end_date,omitempty"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewCampaign interprets a stored record. Unknown types and unparseable
// dates are integrity errors for that record.
func NewCampaign(rec CampaignRecord) (Campaign, error) {
	typ, err := ParseCampaignType(rec.Type)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s: %w", rec.ID, err)
	}
	start, err := ParseDate(rec.StartDate)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s start date: %w", rec.ID, err)
	}

	c := Campaign{
		ID:         rec.ID,
		BusinessID: rec.BusinessID,
		Name:       rec.Name,
		Type:       typ,
		Objective:  rec.Objective,
		Reward:     rec.Reward,
		StartDate:  start,
		Active:     rec.Active,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Description != nil {
		c.Description = *rec.Description
	}
	if rec.EndDate != nil && strings.TrimSpace(*rec.EndDate) != "" {
		end, err := ParseDate(*rec.EndDate)
		if err != nil {
			return Campaign{}, fmt.Errorf("campaign %s end date: %w", rec.ID, err)
		}
		c.EndDate = &end
	}
	return c, nil
}

// Record converts c back to its stored form with date-only strings.
func (c Campaign) Record() CampaignRecord {
	rec := CampaignRecord{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Name:       c.Name,
		Type:       string(c.Type),
		Objective:  c.Objective,
		Reward:     c.Reward,
		StartDate:  c.StartDate.String(),
		Active:     c.Active,
		CreatedAt:  c.CreatedAt,
	}
	if c.Description != "" {
		desc := c.Description
		rec.Description = &desc
	}
	if c.EndDate != nil {
		end := c.EndDate.String()
		rec.EndDate = &end
	}
	return rec
}

// Validate checks the campaign invariants.
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCampaignType, string(c.Type))
	}
	if c.Objective < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidObjective, c.Objective)
	}
	if strings.TrimSpace(c.Reward) == "" {
		return ErrMissingReward
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidDate)
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, c.EndDate, c.StartDate)
	}
	return nil
}

// IsActiveOn reports whether the campaign is switched on and d falls inside
// its validity window. The end date is inclusive.
func (c Campaign) IsActiveOn(d Date) bool {
	if !c.Active || d.Before(c.StartDate) {
		return false
	}
	return c.EndDate == nil || !d.After(*c.EndDate)
}

// FindCampaign returns the campaign with the given id, or nil.
func FindCampaign(campaigns []Campaign, id string) *Campaign {
	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i]
		}
	}
	return nil
}
