package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/store"
)

// ErrNotOwner is returned when a business opens another business's campaign.
var ErrNotOwner = errors.New("campaign belongs to another business")

// Mode tells whether a session creates or edits a campaign.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ViewCampaigns is where the caller goes after a successful submit.
const ViewCampaigns = "campaigns"

// Result describes a successful submit.
type Result struct {
	Mode       Mode   `json:"mode"`
	CampaignID string `json:"campaign_id"`
	NextView   string `json:"next_view"`
}

// Edit is one field change, named by its English or Spanish field name.
type Edit struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Session is one campaign form from entry to submit. It is not safe for
// concurrent use.
type Session struct {
	mode   Mode
	base   model.Campaign
	values Values
}

// NewCreateSession starts a create form filled with defaults.
func NewCreateSession(today model.Date) *Session {
	return &Session{mode: ModeCreate, values: Defaults(today)}
}

// OpenEditSession loads campaign id and starts an edit form from it. Load
// failures abort entry.
func OpenEditSession(ctx context.Context, s store.Store, ownerID, id string) (*Session, error) {
	rec, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, model.NewStoreError("get campaign", err)
	}
	c, err := model.NewCampaign(*rec)
	if err != nil {
		return nil, err
	}
	if c.BusinessID != ownerID {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return &Session{mode: ModeEdit, base: c, values: FromCampaign(c)}, nil
}

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// CampaignID returns the edited campaign id, empty in create mode.
func (s *Session) CampaignID() string { return s.base.ID }

// Values returns the current form values.
func (s *Session) Values() Values { return s.values }

// Edit applies one field edit. A rejected edit leaves the values unchanged.
func (s *Session) Edit(field, value string) error {
	f, err := ParseField(field)
	if err != nil {
		return err
	}
	next, err := ApplyEdit(s.values, f, value)
	if err != nil {
		return err
	}
	s.values = next
	return nil
}

// Submit validates the values and writes them: an insert with ownerID
// attached in create mode, a full update keyed by id in edit mode. An edit
// can only be submitted by the owner it was opened for. On error the values
// are kept so the caller can retry.
func (s *Session) Submit(ctx context.Context, st store.Store, ownerID string) (Result, error) {
	if err := s.values.Validate(); err != nil {
		return Result{}, err
	}
	c, err := s.values.Campaign(s.base)
	if err != nil {
		return Result{}, err
	}
	if s.mode == ModeEdit && s.base.BusinessID != ownerID {
		return Result{}, fmt.Errorf("%w: %s", ErrNotOwner, s.base.ID)
	}
	c.BusinessID = ownerID
	rec := c.Record()

	switch s.mode {
	case ModeEdit:
		if err := st.UpdateCampaign(ctx, s.base.ID, &rec); err != nil {
			return Result{}, model.NewStoreError("update campaign", err)
		}
	default:
		rec.ID = ""
		if err := st.InsertCampaign(ctx, &rec); err != nil {
			return Result{}, model.NewStoreError("insert campaign", err)
		}
	}

	return Result{Mode: s.mode, CampaignID: rec.ID, NextView: ViewCampaigns}, nil
}
