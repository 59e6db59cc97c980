// Package search narrows client collections by campaign and by free text.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/kkkkikiki/loyalty/internal/model"
)

// AllCampaigns selects every client regardless of campaign.
const AllCampaigns = "all"

// FilterClients returns the clients whose name, surname, email or phone
// contains query, compared after Unicode case folding. An empty query returns
// clients unchanged. Order is preserved.
func FilterClients(clients []model.Client, query string) []model.Client {
	if query == "" {
		return clients
	}

	// Casers are stateful, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]model.Client, 0, len(clients))
	for _, c := range clients {
		if matches(fold, c, needle) {
			out = append(out, c)
		}
	}
	return out
}

func matches(fold cases.Caser, c model.Client, needle string) bool {
	if strings.Contains(fold.String(c.Name), needle) {
		return true
	}
	for _, field := range []*string{c.Surname, c.Email, c.Phone} {
		if field != nil && strings.Contains(fold.String(*field), needle) {
			return true
		}
	}
	return false
}

// SelectCampaignClients returns the clients enrolled in campaignID, or all of
// them for AllCampaigns. Order is preserved.
func SelectCampaignClients(clients []model.Client, campaignID string) []model.Client {
	if campaignID == AllCampaigns {
		return clients
	}
	out := make([]model.Client, 0, len(clients))
	for _, c := range clients {
		if c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out
}

// Pipeline applies campaign scope first and the text filter second.
func Pipeline(clients []model.Client, campaignID, query string) []model.Client {
	return FilterClients(SelectCampaignClients(clients, campaignID), query)
}
