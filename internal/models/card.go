package models

import (
	"strings"

	"github.com/google/uuid"
)

// Card is a single printing of a card as supplied by the Scryfall catalog.
// Cards are loaded once and never modified afterwards.
type Card struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	FaceNames       []string  `json:"face_names,omitempty"` // Names of the individual faces of multi-faced cards
	SetCode         string    `json:"set_code"`
	SetName         string    `json:"set_name"`
	CollectorNumber string    `json:"collector_number"` // Empty for very old data
	MultiverseIDs   []int     `json:"multiverse_ids,omitempty"`
	Artist          string    `json:"artist"`
	ReleasedAt      string    `json:"released_at"` // "2009-09-04"
}

// Names returns every name the card can be identified by: the full name
// followed by any face names that differ from it.
func (c *Card) Names() []string {
	names := []string{c.Name}
	for _, face := range c.FaceNames {
		if face != "" && face != c.Name {
			names = append(names, face)
		}
	}
	return names
}

// strictBasics are the five basic land types. Snow-covered basics and Wastes
// are deliberately absent.
var strictBasics = map[string]bool{
	"Plains":   true,
	"Island":   true,
	"Swamp":    true,
	"Mountain": true,
	"Forest":   true,
}

// IsStrictBasic reports whether name is one of the five basic land types
// (not Snow-Covered or Wastes).
func IsStrictBasic(name string) bool {
	return strictBasics[name]
}

// NormalizeSetCode returns the canonical (lower-case) form of a set code.
func NormalizeSetCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
