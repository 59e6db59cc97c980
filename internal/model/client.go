package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultActiveWindowDays is the trailing window used for the active-recently flag.
const DefaultActiveWindowDays = 30

// NoRatio is displayed when a completion ratio cannot be computed.
const NoRatio = "—"

// Client is one person's enrollment in one campaign.
type Client struct {
	ID          string     `db:"id" json:"id"`
	BusinessID  string     `db:"business_id" json:"business_id"`
	CampaignID  string     `db:"campaign_id" json:"campaign_id"`
	Name        string     `db:"name" json:"name"`
	Surname     *string    `db:"surname" json:"surname,omitempty"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Progress    int        `db:"progress" json:"progress"`
	VisitCount  int        `db:"visit_count" json:"visit_count"`
	LastVisitAt *time.Time `db:"last_visit_at" json:"last_visit_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Validate checks the client invariants.
func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if c.Progress < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeProgress, c.Progress)
	}
	if c.VisitCount < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeVisits, c.VisitCount)
	}
	return nil
}

// ValidateAt checks the client invariants as of now: on top of Validate, the
// last visit must not be later than now.
func (c Client) ValidateAt(now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.LastVisitAt != nil && c.LastVisitAt.After(now) {
		return fmt.Errorf("%w: %s after %s", ErrFutureVisit, c.LastVisitAt.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return nil
}

// FullName joins name and surname.
func (c Client) FullName() string {
	if c.Surname == nil || *c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + *c.Surname
}

// Ratio is progress over objective, kept exact.
type Ratio struct {
	Progress  int `json:"progress"`
	Objective int `json:"objective"`
}

// CompletionRatio returns the client's progress toward the campaign objective.
func CompletionRatio(client Client, campaign Campaign) (Ratio, error) {
	if campaign.Objective <= 0 {
		return Ratio{}, fmt.Errorf("campaign %s: %w", campaign.ID, ErrDivisionUndefined)
	}
	return Ratio{Progress: client.Progress, Objective: campaign.Objective}, nil
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Progress, r.Objective)
}

// Decimal returns progress/objective rounded to 8 places.
func (r Ratio) Decimal() decimal.Decimal {
	if r.Objective == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.Progress)).DivRound(decimal.NewFromInt(int64(r.Objective)), 8)
}

// Percent returns the ratio as a percentage rounded to places.
func (r Ratio) Percent(places int32) decimal.Decimal {
	return r.Decimal().Mul(decimal.NewFromInt(100)).Round(places)
}

// Complete reports whether progress has reached the objective.
func (r Ratio) Complete() bool {
	return r.Objective > 0 && r.Progress >= r.Objective
}

// ProgressLabel renders "progress/objective", or NoRatio when the campaign is
// unknown or its objective makes the ratio undefined.
func ProgressLabel(client Client, campaign *Campaign) string {
	if campaign == nil {
		return NoRatio
	}
	r, err := CompletionRatio(client, *campaign)
	if err != nil {
		return NoRatio
	}
	return r.String()
}

// IsRecentlyActive reports whether the client's last visit falls strictly
// inside the trailing window ending at now.
func IsRecentlyActive(client Client, now time.Time, windowDays int) bool {
	if client.LastVisitAt == nil || windowDays <= 0 {
		return false
	}
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	return client.LastVisitAt.After(cutoff)
}
