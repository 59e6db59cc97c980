package service

import (
	"github.com/kkkkikiki/loyalty/internal/form"
	"github.com/kkkkikiki/loyalty/internal/model"
)

type ListCampaignsRequest struct {
	OwnerID string `json:"owner_id"`
}

type ListCampaignsResponse struct {
	Dashboard
}

type ListClientsRequest struct {
	OwnerID string `json:"owner_id"`
	// CampaignID is a campaign id, "all", or empty for the newest campaign.
	CampaignID string `json:"campaign_id,omitempty"`
	Query      string `json:"query,omitempty"`
}

type ListClientsResponse struct {
	ClientsPage
}

type GetCampaignFormRequest struct {
	OwnerID string `json:"owner_id"`
	// CampaignID is empty for a new campaign.
	CampaignID string `json:"campaign_id,omitempty"`
}

type GetCampaignFormResponse struct {
	Mode   form.Mode   `json:"mode"`
	Values form.Values `json:"values"`
}

type SubmitCampaignFormRequest struct {
	OwnerID    string      `json:"owner_id"`
	CampaignID string      `json:"campaign_id,omitempty"`
	Edits      []form.Edit `json:"edits"`
}

type SubmitCampaignFormResponse struct {
	Result form.Result `json:"result"`
}

type EnrollClientRequest struct {
	OwnerID string `json:"owner_id"`
	EnrollInput
}

type EnrollClientResponse struct {
	Client model.Client `json:"client"`
}

type RecordVisitRequest struct {
	OwnerID  string `json:"owner_id"`
	ClientID string `json:"client_id"`
	Amount   int    `json:"amount,omitempty"`
}

type RecordVisitResponse struct {
	Client model.Client `json:"client"`
}
