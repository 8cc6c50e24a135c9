package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/codyseavey/mtgssm/internal/metrics"
	"github.com/codyseavey/mtgssm/internal/models"
)

var (
	// ErrNoMatch is returned when no candidate key finds any card.
	ErrNoMatch = errors.New("no matching card")
	// ErrAmbiguousMatch is returned when the first key with results finds
	// several cards and none can be chosen.
	ErrAmbiguousMatch = errors.New("multiple matching cards")
)

// MatchError describes a failed resolution. It wraps ErrNoMatch or
// ErrAmbiguousMatch.
type MatchError struct {
	Query      models.LegacyQuery
	Candidates []uuid.UUID // Populated for ambiguous matches
	Err        error
}

func (e *MatchError) Error() string {
	q := e.Query
	msg := fmt.Sprintf("%v for set=%q name=%q number=%q multiverseid=%d artist=%q",
		e.Err, q.SetCode, q.Name, q.CollectorNumber, q.MultiverseID, q.Artist)
	if len(e.Candidates) > 0 {
		ids := make([]string, len(e.Candidates))
		for i, id := range e.Candidates {
			ids[i] = id.String()
		}
		msg += " (candidates: " + strings.Join(ids, ", ") + ")"
	}
	return msg
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// MatchObserver receives progress notifications from the legacy matcher.
type MatchObserver interface {
	Searching(q models.LegacyQuery)
	Found(q models.LegacyQuery, card *models.Card)
	Failed(q models.LegacyQuery, err error)
}

// LogObserver prints matcher progress through the standard logger.
type LogObserver struct{}

func (LogObserver) Searching(q models.LegacyQuery) {
	log.Printf("[LegacyMatcher] Searching => Set: %s; Name: %s; Number: %s; MVID: %d",
		q.SetCode, q.Name, q.CollectorNumber, q.MultiverseID)
}

func (LogObserver) Found(_ models.LegacyQuery, card *models.Card) {
	log.Printf("[LegacyMatcher] Found ==> Set: %s; Name: %s; Number: %s; MVIDs: %v",
		card.SetCode, card.Name, card.CollectorNumber, card.MultiverseIDs)
}

func (LogObserver) Failed(_ models.LegacyQuery, err error) {
	log.Printf("[LegacyMatcher] %v", err)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) Searching(models.LegacyQuery)           {}
func (NopObserver) Found(models.LegacyQuery, *models.Card) {}
func (NopObserver) Failed(models.LegacyQuery, error)       {}

// MultiObserver fans notifications out to several observers.
type MultiObserver []MatchObserver

func (m MultiObserver) Searching(q models.LegacyQuery) {
	for _, o := range m {
		o.Searching(q)
	}
}

func (m MultiObserver) Found(q models.LegacyQuery, card *models.Card) {
	for _, o := range m {
		o.Found(q, card)
	}
}

func (m MultiObserver) Failed(q models.LegacyQuery, err error) {
	for _, o := range m {
		o.Failed(q, err)
	}
}

// LegacyMatcher resolves partial or legacy identifying information to a
// single canonical card id. It holds no mutable state and may be shared
// across goroutines.
type LegacyMatcher struct {
	index    *CatalogIndex
	aliases  SetAliases
	observer MatchObserver
}

// NewLegacyMatcher creates a matcher over index. A nil observer logs
// progress with LogObserver.
func NewLegacyMatcher(index *CatalogIndex, aliases SetAliases, observer MatchObserver) *LegacyMatcher {
	if observer == nil {
		observer = LogObserver{}
	}
	if aliases == nil {
		aliases = SetAliases{}
	}
	return &LegacyMatcher{
		index:    index,
		aliases:  aliases,
		observer: observer,
	}
}

// Index returns the catalog index the matcher probes.
func (m *LegacyMatcher) Index() *CatalogIndex {
	return m.index
}

// setCandidates returns the set codes to search, in priority order: the
// literal code, its lower-case form, its alias targets and finally the
// empty code (no set constraint).
func (m *LegacyMatcher) setCandidates(setCode string) []string {
	codes := []string{setCode, strings.ToLower(setCode)}
	codes = append(codes, m.aliases.Targets(setCode)...)
	return append(codes, "")
}

// CandidateKeys returns every key probed for q, in probe order: for each set
// code, set+name+number, set+name+multiverse id, set+name+artist and finally
// name+artist with no set. Empty query fields leave their slot empty, which
// only matches catalog cards missing the same field.
func (m *LegacyMatcher) CandidateKeys(q models.LegacyQuery) []CardKey {
	sets := m.setCandidates(q.SetCode)
	keys := make([]CardKey, 0, len(sets)*4)
	for _, set := range sets {
		keys = append(keys,
			CardKey{SetCode: set, Name: q.Name, CollectorNumber: q.CollectorNumber},
			CardKey{SetCode: set, Name: q.Name, MultiverseID: q.MultiverseID},
			CardKey{SetCode: set, Name: q.Name, Artist: q.Artist},
			CardKey{Name: q.Name, Artist: q.Artist},
		)
	}
	return keys
}

// Resolve returns the canonical id for q. The first candidate key with any
// results decides the outcome: a single id wins outright, several copies of a
// basic land resolve to the lexicographically smallest id, anything else is
// ambiguous. Failures are *MatchError values wrapping ErrNoMatch or
// ErrAmbiguousMatch.
func (m *LegacyMatcher) Resolve(q models.LegacyQuery) (uuid.UUID, error) {
	q.CollectorNumber = strings.TrimSpace(q.CollectorNumber)
	q.Artist = strings.TrimSpace(q.Artist)
	m.observer.Searching(q)

	for _, key := range m.CandidateKeys(q) {
		found := m.index.Lookup(key)
		if len(found) == 0 {
			continue
		}

		// Lookup sorts ids, so found[0] is the smallest.
		if len(found) == 1 || models.IsStrictBasic(q.Name) {
			id := found[0]
			m.observer.Found(q, m.index.Card(id))
			return id, nil
		}

		err := &MatchError{Query: q, Candidates: found, Err: ErrAmbiguousMatch}
		m.observer.Failed(q, err)
		return uuid.Nil, err
	}

	err := &MatchError{Query: q, Err: ErrNoMatch}
	m.observer.Failed(q, err)
	return uuid.Nil, err
}

// MetricsObserver counts resolution outcomes.
type MetricsObserver struct{}

func (MetricsObserver) Searching(models.LegacyQuery) {}

func (MetricsObserver) Found(models.LegacyQuery, *models.Card) {
	metrics.ResolutionsTotal.WithLabelValues("matched").Inc()
}

func (MetricsObserver) Failed(_ models.LegacyQuery, err error) {
	if errors.Is(err, ErrAmbiguousMatch) {
		metrics.ResolutionsTotal.WithLabelValues("ambiguous").Inc()
		return
	}
	metrics.ResolutionsTotal.WithLabelValues("no_match").Inc()
}
