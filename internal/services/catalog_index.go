package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/codyseavey/mtgssm/internal/models"
)

// CardKey is a sparse lookup key over the identifying fields of a card.
// Empty strings and a zero MultiverseID mean "absent".
type CardKey struct {
	SetCode         string
	Name            string
	CollectorNumber string
	MultiverseID    int
	Artist          string
}

// CatalogIndex is a read-only multi-key index over the catalog.
// It is built once and safe for concurrent use afterwards.
type CatalogIndex struct {
	byID   map[uuid.UUID]*models.Card
	byKey  map[CardKey]map[uuid.UUID]struct{}
	bySet  map[string][]*models.Card
	setOrd []string
}

// NewCatalogIndex indexes every card under every sparse key the legacy
// matcher may probe, with and without the set code. Each key maps to a set
// of ids; collisions are left for the matcher to decide.
func NewCatalogIndex(cards []models.Card) *CatalogIndex {
	cards = append([]models.Card(nil), cards...)
	idx := &CatalogIndex{
		byID:  make(map[uuid.UUID]*models.Card, len(cards)),
		byKey: make(map[CardKey]map[uuid.UUID]struct{}, len(cards)*8),
		bySet: make(map[string][]*models.Card),
	}

	for i := range cards {
		card := &cards[i]
		if _, dup := idx.byID[card.ID]; dup {
			continue
		}
		idx.byID[card.ID] = card

		setCode := models.NormalizeSetCode(card.SetCode)
		idx.bySet[setCode] = append(idx.bySet[setCode], card)

		for _, key := range keysForCard(card, setCode) {
			ids := idx.byKey[key]
			if ids == nil {
				ids = make(map[uuid.UUID]struct{}, 1)
				idx.byKey[key] = ids
			}
			ids[card.ID] = struct{}{}
		}
	}

	idx.sortSets()
	return idx
}

// keysForCard returns the keys formed from the card's own non-empty fields.
// A bare set+name key exists only for cards without a collector number, so a
// query without a number falls through to the multiverse id and artist keys.
func keysForCard(card *models.Card, setCode string) []CardKey {
	var keys []CardKey
	for _, set := range []string{setCode, ""} {
		for _, name := range card.Names() {
			keys = append(keys, CardKey{SetCode: set, Name: name, CollectorNumber: card.CollectorNumber})
			for _, mvid := range card.MultiverseIDs {
				if mvid > 0 {
					keys = append(keys, CardKey{SetCode: set, Name: name, MultiverseID: mvid})
				}
			}
			if card.Artist != "" {
				keys = append(keys, CardKey{SetCode: set, Name: name, Artist: card.Artist})
			}
		}
	}
	return keys
}

func (idx *CatalogIndex) sortSets() {
	for code, cards := range idx.bySet {
		sort.SliceStable(cards, func(i, j int) bool {
			return collectorLess(cards[i], cards[j])
		})
		idx.setOrd = append(idx.setOrd, code)
	}

	// Oldest sets first; a set's release date is its earliest printing's.
	released := make(map[string]string, len(idx.bySet))
	for code, cards := range idx.bySet {
		for _, c := range cards {
			if r := released[code]; r == "" || (c.ReleasedAt != "" && c.ReleasedAt < r) {
				released[code] = c.ReleasedAt
			}
		}
	}
	sort.Slice(idx.setOrd, func(i, j int) bool {
		a, b := idx.setOrd[i], idx.setOrd[j]
		if released[a] != released[b] {
			return released[a] < released[b]
		}
		return a < b
	})
}

// collectorLess orders cards by the numeric part of their collector number,
// then the variant characters around it, then name and id.
func collectorLess(a, b *models.Card) bool {
	an, av := splitCollectorNumber(a.CollectorNumber)
	bn, bv := splitCollectorNumber(b.CollectorNumber)
	if an != bn {
		return an < bn
	}
	if av != bv {
		return av < bv
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID.String() < b.ID.String()
}

// splitCollectorNumber splits "P1" into (1, "P") and "12a" into (12, "a").
// Numbers without digits sort after everything else.
func splitCollectorNumber(number string) (int, string) {
	var digits, variant strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else {
			variant.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return int(^uint(0) >> 1), variant.String()
	}
	return n, variant.String()
}

// Card returns the catalog entry with the given id, or nil.
func (idx *CatalogIndex) Card(id uuid.UUID) *models.Card {
	return idx.byID[id]
}

// Lookup returns the ids stored under key, sorted lexicographically.
// Set codes match case-insensitively. A nil result means nothing is indexed
// under the key.
func (idx *CatalogIndex) Lookup(key CardKey) []uuid.UUID {
	key.SetCode = models.NormalizeSetCode(key.SetCode)
	found := idx.byKey[key]
	if len(found) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// Len returns the number of distinct cards in the index.
func (idx *CatalogIndex) Len() int {
	return len(idx.byID)
}

// KeyCount returns the number of distinct lookup keys.
func (idx *CatalogIndex) KeyCount() int {
	return len(idx.byKey)
}

// SetCodes returns all indexed set codes, oldest set first.
func (idx *CatalogIndex) SetCodes() []string {
	out := make([]string, len(idx.setOrd))
	copy(out, idx.setOrd)
	return out
}

// SetCards returns the cards of a set in collector number order.
func (idx *CatalogIndex) SetCards(setCode string) []*models.Card {
	return idx.bySet[models.NormalizeSetCode(setCode)]
}

// sortIDs sorts ids by their canonical string form.
func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
