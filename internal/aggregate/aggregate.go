// Package aggregate computes summary statistics over campaign and client
// collections. Every function is total: empty or nil input yields zero values,
// and inputs are never modified.
package aggregate

import (
	"time"

	"github.com/kkkkikiki/loyalty/internal/model"
)

// CampaignSummary holds the dashboard counters for a set of campaigns.
type CampaignSummary struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	// ClientsTotal is filled by callers that have the owner's clients at hand.
	ClientsTotal int `json:"clients_total"`
}

// ClientSummary holds the counters shown under a client list.
type ClientSummary struct {
	Total          int `json:"total"`
	ActiveRecently int `json:"active_recently"`
	TotalVisits    int `json:"total_visits"`
}

// TotalCount returns the number of clients.
func TotalCount(clients []model.Client) int {
	return len(clients)
}

// ActiveCount returns how many clients visited within the trailing window.
func ActiveCount(clients []model.Client, now time.Time, windowDays int) int {
	n := 0
	for _, c := range clients {
		if model.IsRecentlyActive(c, now, windowDays) {
			n++
		}
	}
	return n
}

// SumVisits returns the total visit count across clients.
func SumVisits(clients []model.Client) int {
	sum := 0
	for _, c := range clients {
		sum += c.VisitCount
	}
	return sum
}

// TotalCampaigns returns the number of campaigns.
func TotalCampaigns(campaigns []model.Campaign) int {
	return len(campaigns)
}

// ActiveCampaigns returns how many campaigns have the active flag set.
func ActiveCampaigns(campaigns []model.Campaign) int {
	n := 0
	for _, c := range campaigns {
		if c.Active {
			n++
		}
	}
	return n
}

// SummarizeClients computes every client counter in a single pass.
func SummarizeClients(clients []model.Client, now time.Time, windowDays int) ClientSummary {
	s := ClientSummary{Total: len(clients)}
	for _, c := range clients {
		s.TotalVisits += c.VisitCount
		if model.IsRecentlyActive(c, now, windowDays) {
			s.ActiveRecently++
		}
	}
	return s
}

// SummarizeCampaigns computes the campaign counters in a single pass.
func SummarizeCampaigns(campaigns []model.Campaign) CampaignSummary {
	s := CampaignSummary{Total: len(campaigns)}
	for _, c := range campaigns {
		if c.Active {
			s.Active++
		}
	}
	return s
}
