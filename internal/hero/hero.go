// Package hero defines the catalog record and the payloads used to create and
// patch it.
package hero

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrInvalidDraft = errors.New("invalid hero")

type Hero struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Alias       string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Powers      []string `json:"powers" yaml:"powers"`
	Nationality string   `json:"nationality" yaml:"nationality"`
	Team        string   `json:"team,omitempty" yaml:"team,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
}

// Clone returns a copy that shares no memory with h.
func (h Hero) Clone() Hero {
	h.Powers = slices.Clone(h.Powers)
	return h
}

func (h Hero) Draft() Draft {
	return Draft{
		Name:        h.Name,
		Alias:       h.Alias,
		Powers:      slices.Clone(h.Powers),
		Nationality: h.Nationality,
		Team:        h.Team,
		Description: h.Description,
		Image:       h.Image,
	}
}

// Draft carries every field of a Hero except the identifier, which the store
// assigns.
type Draft struct {
	Name        string   `json:"name"`
	Alias       string   `json:"alias,omitempty"`
	Powers      []string `json:"powers"`
	Nationality string   `json:"nationality"`
	Team        string   `json:"team,omitempty"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
}

func (d Draft) Hero(id string) Hero {
	return Hero{
		ID:          id,
		Name:        d.Name,
		Alias:       d.Alias,
		Powers:      slices.Clone(d.Powers),
		Nationality: d.Nationality,
		Team:        d.Team,
		Description: d.Description,
		Image:       d.Image,
	}
}

// Validate reports the required fields a draft is missing. Alias and team are
// optional.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.Nationality) == "" {
		missing = append(missing, "nationality")
	}
	if strings.TrimSpace(d.Image) == "" {
		missing = append(missing, "image")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if len(d.Powers) == 0 {
		missing = append(missing, "powers")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDraft, strings.Join(missing, ", "))
	}
	return nil
}

// Patch converts the draft into a patch that overwrites every field.
func (d Draft) Patch() Patch {
	powers := slices.Clone(d.Powers)
	if powers == nil {
		powers = []string{}
	}
	return Patch{
		Name:        &d.Name,
		Alias:       &d.Alias,
		Powers:      powers,
		Nationality: &d.Nationality,
		Team:        &d.Team,
		Description: &d.Description,
		Image:       &d.Image,
	}
}

// Patch is a merge patch: nil fields keep their current value. A non-nil
// empty Powers replaces the list.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Alias       *string  `json:"alias,omitempty"`
	Powers      []string `json:"powers,omitempty"`
	Nationality *string  `json:"nationality,omitempty"`
	Team        *string  `json:"team,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

func (p Patch) Apply(h Hero) Hero {
	out := h.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Alias != nil {
		out.Alias = *p.Alias
	}
	if p.Powers != nil {
		out.Powers = slices.Clone(p.Powers)
	}
	if p.Nationality != nil {
		out.Nationality = *p.Nationality
	}
	if p.Team != nil {
		out.Team = *p.Team
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	return out
}

