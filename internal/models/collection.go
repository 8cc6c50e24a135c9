package models

import (
	"time"

	"github.com/google/uuid"
)

// CountType is the kind of copy being counted for a printing.
type CountType string

const (
	CountNonfoil CountType = "nonfoil"
	CountFoil    CountType = "foil"
)

// AllCountTypes returns all count types in their canonical column order
func AllCountTypes() []CountType {
	return []CountType{CountNonfoil, CountFoil}
}

// CardCounts maps a canonical card id to the number of copies owned per count type.
type CardCounts map[uuid.UUID]map[CountType]int

// Add accumulates counts for a card, dropping the card entirely if nothing is left.
func (cc CardCounts) Add(id uuid.UUID, counts map[CountType]int) {
	current := cc[id]
	if current == nil {
		current = make(map[CountType]int, len(counts))
	}
	for ct, n := range counts {
		if n == 0 {
			continue
		}
		current[ct] += n
		if current[ct] == 0 {
			delete(current, ct)
		}
	}
	if len(current) == 0 {
		delete(cc, id)
		return
	}
	cc[id] = current
}

// Merge adds every count from other into cc.
func (cc CardCounts) Merge(other CardCounts) {
	for id, counts := range other {
		cc.Add(id, counts)
	}
}

// Total returns the number of physical cards across all printings and count types.
func (cc CardCounts) Total() int {
	total := 0
	for _, counts := range cc {
		for _, n := range counts {
			total += n
		}
	}
	return total
}

// CollectionItem is the persisted count row for one printing.
type CollectionItem struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID    uuid.UUID `json:"card_id" gorm:"type:text;not null;uniqueIndex"`
	Nonfoil   int       `json:"nonfoil" gorm:"not null;default:0"`
	Foil      int       `json:"foil" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Counts returns the item's nonzero counts keyed by count type.
func (i *CollectionItem) Counts() map[CountType]int {
	counts := make(map[CountType]int, 2)
	if i.Nonfoil != 0 {
		counts[CountNonfoil] = i.Nonfoil
	}
	if i.Foil != 0 {
		counts[CountFoil] = i.Foil
	}
	return counts
}

// CollectionEntry is a stored count joined with its catalog entry.
type CollectionEntry struct {
	Card   *Card             `json:"card"`
	Counts map[CountType]int `json:"counts"`
	Total  int               `json:"total"`
}

// CollectionStats summarizes the stored collection
type CollectionStats struct {
	TotalCards   int `json:"total_cards"`
	UniqueCards  int `json:"unique_cards"`
	NonfoilCards int `json:"nonfoil_cards"`
	FoilCards    int `json:"foil_cards"`
}
