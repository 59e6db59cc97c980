// Package form reconciles a stored campaign with user edits and decides
// whether a submit inserts or updates.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kkkkikiki/loyalty/internal/model"
)

var (
	ErrUnknownField = errors.New("unknown form field")
	ErrInvalidField = errors.New("invalid field value")
)

// Field names one editable campaign attribute.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldType        Field = "type"
	FieldObjective   Field = "objective"
	FieldReward      Field = "reward"
	FieldStartDate   Field = "start_date"
	FieldEndDate     Field = "end_date"
	FieldActive      Field = "active"
)

var fieldNames = map[string]Field{
	"name":         FieldName,
	"description":  FieldDescription,
	"type":         FieldType,
	"objective":    FieldObjective,
	"reward":       FieldReward,
	"start_date":   FieldStartDate,
	"end_date":     FieldEndDate,
	"active":       FieldActive,
	"nombre":       FieldName,
	"descripcion":  FieldDescription,
	"tipo":         FieldType,
	"objetivo":     FieldObjective,
	"recompensa":   FieldReward,
	"fecha_inicio": FieldStartDate,
	"fecha_fin":    FieldEndDate,
	"activa":       FieldActive,
}

// ParseField resolves a form field name. Unknown names are rejected.
func ParseField(name string) (Field, error) {
	f, ok := fieldNames[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Values is the editable state of a campaign form. Dates are date-only
// strings; an empty EndDate means no end date.
type Values struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Type        model.CampaignType `json:"type"`
	Objective   int                `json:"objective"`
	Reward      string             `json:"reward"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	Active      bool               `json:"active"`
}

// DefaultObjective is the objective a new campaign form starts with.
const DefaultObjective = 10

// Defaults returns the values of an empty create form.
func Defaults(today model.Date) Values {
	return Values{
		Type:      model.CampaignStamps,
		Objective: DefaultObjective,
		StartDate: today.String(),
		Active:    true,
	}
}

// FromCampaign returns the values of an edit form loaded from c. Dates are
// reduced to their calendar portion.
func FromCampaign(c model.Campaign) Values {
	v := Values{
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		Objective:   c.Objective,
		Reward:      c.Reward,
		StartDate:   c.StartDate.String(),
		Active:      c.Active,
	}
	if c.EndDate != nil {
		v.EndDate = c.EndDate.String()
	}
	return v
}

// ApplyEdit returns v with field set to value. v itself is not modified.
// A non-numeric objective becomes 0; Validate rejects it at submit.
func ApplyEdit(v Values, field Field, value string) (Values, error) {
	switch field {
	case FieldName:
		v.Name = value
	case FieldDescription:
		v.Description = value
	case FieldReward:
		v.Reward = value
	case FieldType:
		t, err := model.ParseCampaignType(value)
		if err != nil {
			return v, err
		}
		v.Type = t
	case FieldObjective:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			n = 0
		}
		v.Objective = n
	case FieldStartDate:
		d, err := model.NormalizeDate(value)
		if err != nil {
			return v, err
		}
		v.StartDate = d
	case FieldEndDate:
		if strings.TrimSpace(value) == "" {
			v.EndDate = ""
			break
		}
		d, err := model.NormalizeDate(value)
		if err != nil {
			return v, err
		}
		v.EndDate = d
	case FieldActive:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return v, fmt.Errorf("%w: active=%q", ErrInvalidField, value)
		}
		v.Active = b
	default:
		return v, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return v, nil
}

// Campaign builds the campaign described by v on top of base, which carries
// identity and creation time.
func (v Values) Campaign(base model.Campaign) (model.Campaign, error) {
	start, err := model.ParseDate(v.StartDate)
	if err != nil {
		return model.Campaign{}, fmt.Errorf("start date: %w", err)
	}
	c := base
	c.Name = strings.TrimSpace(v.Name)
	c.Description = strings.TrimSpace(v.Description)
	c.Type = v.Type
	c.Objective = v.Objective
	c.Reward = strings.TrimSpace(v.Reward)
	c.StartDate = start
	c.EndDate = nil
	c.Active = v.Active
	if v.EndDate != "" {
		end, err := model.ParseDate(v.EndDate)
		if err != nil {
			return model.Campaign{}, fmt.Errorf("end date: %w", err)
		}
		c.EndDate = &end
	}
	return c, nil
}

// Validate checks the values before they are submitted.
func (v Values) Validate() error {
	c, err := v.Campaign(model.Campaign{})
	if err != nil {
		return err
	}
	return c.Validate()
}
