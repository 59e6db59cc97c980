package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kkkkikiki/loyalty/internal/model"
)

var now = time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestActiveCountWindow(t *testing.T) {
	clients := []model.Client{
		{Name: "a", LastVisitAt: daysAgo(5), VisitCount: 3},
		{Name: "b", LastVisitAt: daysAgo(40), VisitCount: 9},
		{Name: "c", VisitCount: 1},
	}

	assert.Equal(t, 1, ActiveCount(clients, now, 30))
	assert.Equal(t, 3, TotalCount(clients))
	assert.Equal(t, 13, SumVisits(clients))

	s := SummarizeClients(clients, now, 30)
	assert.Equal(t, ClientSummary{Total: 3, ActiveRecently: 1, TotalVisits: 13}, s)
}

func TestEmptyInputs(t *testing.T) {
	assert.Zero(t, TotalCount(nil))
	assert.Zero(t, ActiveCount(nil, now, 30))
	assert.Zero(t, SumVisits(nil))
	assert.Zero(t, TotalCampaigns(nil))
	assert.Zero(t, ActiveCampaigns([]model.Campaign{}))
	assert.Equal(t, ClientSummary{}, SummarizeClients(nil, now, 30))
	assert.Equal(t, CampaignSummary{}, SummarizeCampaigns(nil))
}

func TestActiveNeverExceedsTotal(t *testing.T) {
	var clients []model.Client
	for i := 0; i < 60; i++ {
		c := model.Client{Name: "c"}
		if i%3 != 0 {
			c.LastVisitAt = daysAgo(i)
		}
		clients = append(clients, c)
		for _, window := range []int{0, 1, 30, 365} {
			assert.LessOrEqual(t, ActiveCount(clients, now, window), TotalCount(clients))
		}
	}
}

func TestCampaignCounts(t *testing.T) {
	campaigns := []model.Campaign{{Active: true}, {Active: false}, {Active: true}}

	assert.Equal(t, 3, TotalCampaigns(campaigns))
	assert.Equal(t, 2, ActiveCampaigns(campaigns))
	assert.Equal(t, CampaignSummary{Total: 3, Active: 2}, SummarizeCampaigns(campaigns))
}

func TestInputsUntouched(t *testing.T) {
	clients := []model.Client{{Name: "a", VisitCount: 2, LastVisitAt: daysAgo(1)}}
	before := clients[0]

	SummarizeClients(clients, now, 30)
	ActiveCount(clients, now, 30)

	assert.Equal(t, before, clients[0])
}
