package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/kkkkikiki/loyalty/internal/form"
	"github.com/kkkkikiki/loyalty/internal/model"
	"github.com/kkkkikiki/loyalty/internal/search"
	"github.com/kkkkikiki/loyalty/internal/store"
	"github.com/kkkkikiki/loyalty/internal/store/storetest"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// setupTestService seeds two campaigns of biz-1 (one with an unknown type),
// one campaign of biz-2 and two clients of the valid biz-1 campaign.
func setupTestService(t *testing.T, opts ...Option) (*LoyaltyService, *storetest.MemStore) {
	t.Helper()
	st := storetest.New()
	st.PutCampaign(model.CampaignRecord{
		ID: "stamps", BusinessID: "biz-1", Name: "Café gratis", Type: "sellos",
		Objective: 10, Reward: "Un café", StartDate: "2024-01-01T00:00:00Z", Active: true,
		CreatedAt: testNow.Add(-72 * time.Hour),
	})
	st.PutCampaign(model.CampaignRecord{
		ID: "broken", BusinessID: "biz-1", Name: "Rifa", Type: "raffle",
		Objective: 1, Reward: "TV", StartDate: "2024-01-01", Active: true,
		CreatedAt: testNow.Add(-48 * time.Hour),
	})
	st.PutCampaign(model.CampaignRecord{
		ID: "visits-other", BusinessID: "biz-2", Name: "Visitas", Type: "visits",
		Objective: 5, Reward: "Postre", StartDate: "2024-01-01", Active: true,
		CreatedAt: testNow.Add(-24 * time.Hour),
	})
	st.PutClient(model.Client{
		ID: "ana", BusinessID: "biz-1", CampaignID: "stamps", Name: "Ana", Surname: strPtr("García"),
		Email: strPtr("ana@example.com"), Progress: 7, VisitCount: 3,
		LastVisitAt: timePtr(testNow.Add(-48 * time.Hour)), CreatedAt: testNow.Add(-10 * time.Hour),
	})
	st.PutClient(model.Client{
		ID: "bob", BusinessID: "biz-1", CampaignID: "stamps", Name: "Bob", Progress: 2,
		CreatedAt: testNow.Add(-5 * time.Hour),
	})

	defaults := []Option{
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewLoyaltyService(st, append(defaults, opts...)...), st
}

func TestLoadCampaignsForExcludesInvalidRecords(t *testing.T) {
	svc, st := setupTestService(t)

	list, err := svc.LoadCampaignsFor(context.Background(), "biz-1")
	require.NoError(t, err)
	require.Len(t, list.Campaigns, 1)
	assert.Equal(t, "stamps", list.Campaigns[0].ID)
	assert.Equal(t, model.CampaignStamps, list.Campaigns[0].Type)
	assert.Equal(t, "2024-01-01", list.Campaigns[0].StartDate.String())
	require.Len(t, list.Excluded, 1)
	assert.Equal(t, "broken", list.Excluded[0].ID)
	assert.Contains(t, list.Excluded[0].Reason, "raffle")
	assert.Equal(t, []string{"list_campaigns"}, st.Ops())
}

func TestLoadCampaignsForStoreFailure(t *testing.T) {
	svc, st := setupTestService(t)
	st.Err = errors.New("connection refused")

	list, err := svc.LoadCampaignsFor(context.Background(), "biz-1")
	require.Error(t, err)
	assert.True(t, model.IsStoreError(err))
	assert.NotNil(t, list.Campaigns)
	assert.Empty(t, list.Campaigns)
}

func TestMissingOwner(t *testing.T) {
	svc, st := setupTestService(t)
	ctx := context.Background()

	_, err := svc.LoadCampaignsFor(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.LoadClientsFor(ctx, "", search.AllCampaigns)
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.SubmitCampaignForm(ctx, "", "", nil)
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.RecordVisit(ctx, "", "ana", 1)
	assert.ErrorIs(t, err, ErrMissingOwner)
	assert.Empty(t, st.Ops())
}

func TestLoadClientsForScopes(t *testing.T) {
	svc, st := setupTestService(t)
	st.PutClient(model.Client{ID: "eve", BusinessID: "biz-2", CampaignID: "visits-other", Name: "Eve"})
	ctx := context.Background()

	clients, err := svc.LoadClientsFor(ctx, "biz-1", search.AllCampaigns)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "bob", clients[0].ID, "newest first")

	clients, err = svc.LoadClientsFor(ctx, "biz-2", "visits-other")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "eve", clients[0].ID)

	clients, err = svc.LoadClientsFor(ctx, "biz-1", "visits-other")
	require.NoError(t, err)
	assert.Empty(t, clients)

	all, err := svc.LoadClientsFor(ctx, "biz-1", search.AllCampaigns)
	require.NoError(t, err)
	st.Calls = nil
	clients, err = svc.LoadClientsFor(ctx, "biz-1", "")
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients, "only the all sentinel widens the scope")
	assert.Equal(t, search.SelectCampaignClients(all, ""), clients)
	assert.Empty(t, st.Ops())
}

func TestLoadClientsForExcludesInvalidClients(t *testing.T) {
	svc, st := setupTestService(t)
	st.PutClient(model.Client{ID: "ghost", BusinessID: "biz-1", CampaignID: "stamps", Name: " ", Progress: 1})
	st.PutClient(model.Client{
		ID: "early", BusinessID: "biz-1", CampaignID: "stamps", Name: "Eli",
		LastVisitAt: timePtr(testNow.Add(time.Hour)),
	})

	clients, err := svc.LoadClientsFor(context.Background(), "biz-1", "stamps")
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestDashboard(t *testing.T) {
	svc, st := setupTestService(t)

	d, err := svc.Dashboard(context.Background(), "biz-1")
	require.NoError(t, err)
	require.Len(t, d.Campaigns, 1)
	assert.Equal(t, "Programa de sellos", d.Campaigns[0].TypeLabel)
	assert.Equal(t, "10 sellos", d.Campaigns[0].ObjectiveLabel)
	assert.Equal(t, "Activa", d.Campaigns[0].StatusLabel)
	assert.Equal(t, 1, d.Summary.Total)
	assert.Equal(t, 1, d.Summary.Active)
	assert.Equal(t, 2, d.Summary.ClientsTotal)
	assert.Len(t, d.Excluded, 1)
	assert.Equal(t, []string{"list_campaigns", "list_clients"}, st.Ops())
}

func TestCampaignViewLogsMissingLabels(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := setupTestService(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	v := svc.view(model.Campaign{ID: "odd", Type: "raffle", Objective: 3, Active: true})
	assert.Empty(t, v.TypeLabel)
	assert.Empty(t, v.ObjectiveLabel)
	assert.Equal(t, "Activa", v.StatusLabel)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "campaign_id=odd")
}

func TestDashboardEnglishLabels(t *testing.T) {
	svc, _ := setupTestService(t, WithLanguage(language.English))

	d, err := svc.Dashboard(context.Background(), "biz-1")
	require.NoError(t, err)
	require.Len(t, d.Campaigns, 1)
	assert.Equal(t, "Stamp program", d.Campaigns[0].TypeLabel)
	assert.Equal(t, "10 stamps", d.Campaigns[0].ObjectiveLabel)
}

func TestClientsViewDefaultsToNewestCampaign(t *testing.T) {
	svc, _ := setupTestService(t)

	page, err := svc.ClientsView(context.Background(), "biz-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "stamps", page.CampaignID)
	require.Len(t, page.Clients, 2)
	assert.Equal(t, 2, page.Summary.Total)
	assert.Equal(t, 1, page.Summary.ActiveRecently)
	assert.Equal(t, 3, page.Summary.TotalVisits)
}

func TestClientsViewFiltersBeforeAggregating(t *testing.T) {
	svc, _ := setupTestService(t)

	page, err := svc.ClientsView(context.Background(), "biz-1", "stamps", "GARCÍA")
	require.NoError(t, err)
	require.Len(t, page.Clients, 1)

	row := page.Clients[0]
	assert.Equal(t, "ana", row.ID)
	assert.Equal(t, "Ana García", row.DisplayName)
	assert.Equal(t, "7/10", row.ProgressLabel)
	assert.Equal(t, "70", row.Percent)
	assert.False(t, row.Complete)
	assert.True(t, row.ActiveRecently)
	assert.Equal(t, 1, page.Summary.Total)
	assert.Equal(t, 3, page.Summary.TotalVisits)
}

func TestClientsViewUnknownCampaignHasNoRatio(t *testing.T) {
	svc, st := setupTestService(t)
	st.PutClient(model.Client{ID: "orphan", BusinessID: "biz-1", CampaignID: "broken", Name: "Olga"})

	page, err := svc.ClientsView(context.Background(), "biz-1", search.AllCampaigns, "olga")
	require.NoError(t, err)
	require.Len(t, page.Clients, 1)
	assert.Equal(t, model.NoRatio, page.Clients[0].ProgressLabel)
	assert.Empty(t, page.Clients[0].Percent)
}

func TestClientsViewWithoutCampaigns(t *testing.T) {
	svc, st := setupTestService(t)

	page, err := svc.ClientsView(context.Background(), "biz-9", "", "ana")
	require.NoError(t, err)
	assert.Empty(t, page.CampaignID)
	assert.NotNil(t, page.Clients)
	assert.Empty(t, page.Clients)
	assert.Equal(t, []string{"list_campaigns"}, st.Ops())
}

func TestCampaignForm(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	mode, values, err := svc.CampaignForm(ctx, "biz-1", "")
	require.NoError(t, err)
	assert.Equal(t, form.ModeCreate, mode)
	assert.Equal(t, "2024-03-15", values.StartDate)
	assert.Equal(t, form.DefaultObjective, values.Objective)

	mode, values, err = svc.CampaignForm(ctx, "biz-1", "stamps")
	require.NoError(t, err)
	assert.Equal(t, form.ModeEdit, mode)
	assert.Equal(t, "Café gratis", values.Name)
	assert.Equal(t, "2024-01-01", values.StartDate)

	_, _, err = svc.CampaignForm(ctx, "biz-1", "visits-other")
	assert.ErrorIs(t, err, form.ErrNotOwner)

	_, _, err = svc.CampaignForm(ctx, "biz-1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, model.IsStoreError(err))
}

func TestSubmitCampaignFormCreate(t *testing.T) {
	svc, st := setupTestService(t)

	res, err := svc.SubmitCampaignForm(context.Background(), "biz-1", "", []form.Edit{
		{Field: "nombre", Value: "Pizza"},
		{Field: "reward", Value: "Una pizza"},
		{Field: "objetivo", Value: "8"},
	})
	require.NoError(t, err)
	assert.Equal(t, form.Result{Mode: form.ModeCreate, CampaignID: "campaign-1", NextView: form.ViewCampaigns}, res)
	assert.Equal(t, "biz-1", st.LastCampaign.BusinessID)
	assert.Equal(t, "Pizza", st.LastCampaign.Name)
	assert.Equal(t, 8, st.LastCampaign.Objective)
	assert.Equal(t, "2024-03-15", st.LastCampaign.StartDate)
	assert.Equal(t, []string{"insert_campaign"}, st.Ops())
}

func TestSubmitCampaignFormEdit(t *testing.T) {
	svc, st := setupTestService(t)

	res, err := svc.SubmitCampaignForm(context.Background(), "biz-1", "stamps", []form.Edit{
		{Field: "active", Value: "false"},
		{Field: "end_date", Value: "2024-06-30 23:59:59"},
	})
	require.NoError(t, err)
	assert.Equal(t, form.ModeEdit, res.Mode)
	assert.Equal(t, "stamps", res.CampaignID)
	assert.False(t, st.LastCampaign.Active)
	require.NotNil(t, st.LastCampaign.EndDate)
	assert.Equal(t, "2024-06-30", *st.LastCampaign.EndDate)
	assert.Equal(t, "Café gratis", st.LastCampaign.Name)
	assert.Equal(t, []string{"get_campaign", "update_campaign"}, st.Ops())
}

func TestSubmitCampaignFormRejects(t *testing.T) {
	tests := []struct {
		name       string
		existingID string
		edits      []form.Edit
		wantErr    error
	}{
		{
			name:    "coerced objective",
			edits:   []form.Edit{{Field: "name", Value: "X"}, {Field: "reward", Value: "Y"}, {Field: "objective", Value: "ten"}},
			wantErr: model.ErrInvalidObjective,
		},
		{
			name:    "missing name",
			edits:   []form.Edit{{Field: "reward", Value: "Y"}},
			wantErr: model.ErrMissingName,
		},
		{
			name:    "unknown field",
			edits:   []form.Edit{{Field: "business_id", Value: "biz-2"}},
			wantErr: form.ErrUnknownField,
		},
		{
			name:       "end before start",
			existingID: "stamps",
			edits:      []form.Edit{{Field: "fecha_fin", Value: "2023-12-31"}},
			wantErr:    model.ErrEndBeforeStart,
		},
		{
			name:       "other owner",
			existingID: "visits-other",
			wantErr:    form.ErrNotOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := setupTestService(t)
			_, err := svc.SubmitCampaignForm(context.Background(), "biz-1", tt.existingID, tt.edits)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotContains(t, st.Ops(), "insert_campaign")
			assert.NotContains(t, st.Ops(), "update_campaign")
		})
	}
}

func TestSubmitCampaignFormStoreFailure(t *testing.T) {
	svc, st := setupTestService(t)
	st.Err = errors.New("timeout")

	_, err := svc.SubmitCampaignForm(context.Background(), "biz-1", "", []form.Edit{
		{Field: "name", Value: "Pizza"},
		{Field: "reward", Value: "Una pizza"},
	})
	require.Error(t, err)
	assert.True(t, model.IsStoreError(err))
}

func TestEnrollClient(t *testing.T) {
	svc, st := setupTestService(t)

	c, err := svc.EnrollClient(context.Background(), "biz-1", EnrollInput{
		CampaignID: "stamps", Name: " Carla ", Email: "carla@example.com", Phone: "  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "client-1", c.ID)
	assert.Equal(t, "Carla", c.Name)
	assert.Equal(t, "biz-1", c.BusinessID)
	assert.Equal(t, 0, c.Progress)
	require.NotNil(t, c.Email)
	assert.Equal(t, "carla@example.com", *c.Email)
	assert.Nil(t, c.Phone)
	assert.Nil(t, c.Surname)
	assert.Equal(t, []string{"get_campaign", "insert_client"}, st.Ops())
}

func TestEnrollClientRejects(t *testing.T) {
	svc, st := setupTestService(t)
	st.PutCampaign(model.CampaignRecord{
		ID: "paused", BusinessID: "biz-1", Name: "Pausada", Type: "points",
		Objective: 100, Reward: "Regalo", StartDate: "2024-01-01", Active: false,
	})
	ctx := context.Background()

	_, err := svc.EnrollClient(ctx, "biz-1", EnrollInput{CampaignID: "paused", Name: "Dani"})
	assert.ErrorIs(t, err, ErrCampaignInactive)

	_, err = svc.EnrollClient(ctx, "biz-1", EnrollInput{CampaignID: "visits-other", Name: "Dani"})
	assert.ErrorIs(t, err, form.ErrNotOwner)

	_, err = svc.EnrollClient(ctx, "biz-1", EnrollInput{CampaignID: "stamps", Name: ""})
	assert.ErrorIs(t, err, model.ErrMissingName)

	_, err = svc.EnrollClient(ctx, "biz-1", EnrollInput{CampaignID: "broken", Name: "Dani"})
	assert.ErrorIs(t, err, model.ErrInvalidCampaignType)

	assert.NotContains(t, st.Ops(), "insert_client")
}

func TestRecordVisit(t *testing.T) {
	svc, st := setupTestService(t)

	c, err := svc.RecordVisit(context.Background(), "biz-1", "ana", 2)
	require.NoError(t, err)
	assert.Equal(t, 9, c.Progress)
	assert.Equal(t, 4, c.VisitCount)
	require.NotNil(t, c.LastVisitAt)
	assert.True(t, c.LastVisitAt.Equal(testNow))

	stored, err := st.GetClient(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Progress)
	assert.Equal(t, "stamps", stored.CampaignID)
}

func TestRecordVisitCountsOneUnit(t *testing.T) {
	svc, st := setupTestService(t)
	st.PutClient(model.Client{ID: "eve", BusinessID: "biz-2", CampaignID: "visits-other", Name: "Eve", Progress: 4})

	c, err := svc.RecordVisit(context.Background(), "biz-2", "eve", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Progress, "visit campaigns add one per visit")

	c, err = svc.RecordVisit(context.Background(), "biz-1", "bob", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Progress, "zero amount counts as one")
}

func TestRecordVisitRejects(t *testing.T) {
	svc, st := setupTestService(t)
	ctx := context.Background()

	_, err := svc.RecordVisit(ctx, "biz-1", "ana", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordVisit(ctx, "biz-2", "ana", 1)
	assert.ErrorIs(t, err, form.ErrNotOwner)

	_, err = svc.RecordVisit(ctx, "biz-1", "nobody", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NotContains(t, st.Ops(), "update_client")
}

func TestConnectCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{name: "not found", err: model.NewStoreError("get campaign", store.ErrNotFound), want: connect.CodeNotFound},
		{name: "store failure", err: model.NewStoreError("list campaigns", errors.New("down")), want: connect.CodeUnavailable},
		{name: "not owner", err: form.ErrNotOwner, want: connect.CodePermissionDenied},
		{name: "inactive", err: ErrCampaignInactive, want: connect.CodeFailedPrecondition},
		{name: "validation", err: model.ErrMissingReward, want: connect.CodeInvalidArgument},
		{name: "unknown field", err: form.ErrUnknownField, want: connect.CodeInvalidArgument},
		{name: "other", err: errors.New("boom"), want: connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connectCode(tt.err))
		})
	}
}
