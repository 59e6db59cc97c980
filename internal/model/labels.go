package model

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	es := language.Spanish
	message.SetString(es, "campaign.type.stamps", "Programa de sellos")
	message.SetString(es, "campaign.type.points", "Programa de puntos")
	message.SetString(es, "campaign.type.visits", "Programa de visitas")
	message.SetString(es, "campaign.objective.stamps", "%d sellos")
	message.SetString(es, "campaign.objective.points", "%d puntos")
	message.SetString(es, "campaign.objective.visits", "%d visitas")
	message.SetString(es, "campaign.status.active", "Activa")
	message.SetString(es, "campaign.status.inactive", "Inactiva")

	en := language.English
	message.SetString(en, "campaign.type.stamps", "Stamp program")
	message.SetString(en, "campaign.type.points", "Points program")
	message.SetString(en, "campaign.type.visits", "Visits program")
	message.SetString(en, "campaign.objective.stamps", "%d stamps")
	message.SetString(en, "campaign.objective.points", "%d points")
	message.SetString(en, "campaign.objective.visits", "%d visits")
	message.SetString(en, "campaign.status.active", "Active")
	message.SetString(en, "campaign.status.inactive", "Inactive")
}

// Label returns the human-readable program name for t.
func (t CampaignType) Label(tag language.Tag) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCampaignType, string(t))
	}
	return message.NewPrinter(tag).Sprintf("campaign.type." + string(t)), nil
}

// ObjectiveLabel renders an objective with its unit, e.g. "10 sellos".
func (t CampaignType) ObjectiveLabel(tag language.Tag, objective int) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCampaignType, string(t))
	}
	return message.NewPrinter(tag).Sprintf("campaign.objective."+string(t), objective), nil
}

// StatusLabel renders the active flag.
func (c Campaign) StatusLabel(tag language.Tag) string {
	key := "campaign.status.inactive"
	if c.Active {
		key = "campaign.status.active"
	}
	return message.NewPrinter(tag).Sprintf(key)
}
