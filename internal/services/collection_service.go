package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/mtgssm/internal/metrics"
	"github.com/codyseavey/mtgssm/internal/models"
)

// CollectionService persists card counts, one collection_items row per card.
type CollectionService struct {
	db *gorm.DB
}

func NewCollectionService(db *gorm.DB) *CollectionService {
	return &CollectionService{db: db}
}

// Load returns every stored count.
func (s *CollectionService) Load(ctx context.Context) (models.CardCounts, error) {
	var items []models.CollectionItem
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	counts := make(models.CardCounts, len(items))
	for i := range items {
		counts.Add(items[i].CardID, items[i].Counts())
	}
	return counts, nil
}

// Merge adds counts to the stored collection in a single transaction.
// Negative counts subtract; stored counts never drop below zero.
func (s *CollectionService) Merge(ctx context.Context, counts models.CardCounts) error {
	items := itemsFromCounts(counts)
	if len(items) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "card_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"nonfoil":    gorm.Expr("collection_items.nonfoil + excluded.nonfoil"),
				"foil":       gorm.Expr("collection_items.foil + excluded.foil"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).CreateInBatches(&items, 500).Error
		if err != nil {
			return err
		}
		return clampStoredCounts(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to merge collection: %w", err)
	}
	return s.refreshMetrics(ctx)
}

// Replace overwrites the stored collection with counts.
func (s *CollectionService) Replace(ctx context.Context, counts models.CardCounts) error {
	items := itemsFromCounts(counts)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CollectionItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&items, 500).Error; err != nil {
			return err
		}
		return clampStoredCounts(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to replace collection: %w", err)
	}
	return s.refreshMetrics(ctx)
}

// Stats summarizes the stored collection.
func (s *CollectionService) Stats(ctx context.Context) (*models.CollectionStats, error) {
	var stats models.CollectionStats
	err := s.db.WithContext(ctx).Model(&models.CollectionItem{}).
		Select("COALESCE(SUM(nonfoil), 0) + COALESCE(SUM(foil), 0) AS total_cards, " +
			"COUNT(*) AS unique_cards, " +
			"COALESCE(SUM(nonfoil), 0) AS nonfoil_cards, " +
			"COALESCE(SUM(foil), 0) AS foil_cards").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute collection stats: %w", err)
	}
	return &stats, nil
}

// clampStoredCounts raises negative counts to zero and drops rows left
// holding nothing.
func clampStoredCounts(tx *gorm.DB) error {
	err := tx.Model(&models.CollectionItem{}).
		Where("nonfoil < 0 OR foil < 0").
		Updates(map[string]any{
			"nonfoil": gorm.Expr("MAX(nonfoil, 0)"),
			"foil":    gorm.Expr("MAX(foil, 0)"),
		}).Error
	if err != nil {
		return err
	}
	return tx.Where("nonfoil = 0 AND foil = 0").Delete(&models.CollectionItem{}).Error
}

func (s *CollectionService) refreshMetrics(ctx context.Context) error {
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	metrics.CollectionCardsTotal.Set(float64(stats.TotalCards))
	metrics.CollectionUniqueCards.Set(float64(stats.UniqueCards))
	return nil
}

// itemsFromCounts converts counts to rows ordered by card id.
func itemsFromCounts(counts models.CardCounts) []models.CollectionItem {
	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sortIDs(ids)

	now := time.Now()
	items := make([]models.CollectionItem, 0, len(ids))
	for _, id := range ids {
		c := counts[id]
		if c[models.CountNonfoil] == 0 && c[models.CountFoil] == 0 {
			continue
		}
		items = append(items, models.CollectionItem{
			CardID:    id,
			Nonfoil:   c[models.CountNonfoil],
			Foil:      c[models.CountFoil],
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return items
}

// Entries joins stored counts with their catalog entries, ordered by set and
// collector number. Cards missing from the catalog are returned without card data.
func Entries(index *CatalogIndex, counts models.CardCounts) []models.CollectionEntry {
	entries := make([]models.CollectionEntry, 0, len(counts))
	for id, c := range counts {
		total := 0
		for _, n := range c {
			total += n
		}
		card := index.Card(id)
		if card == nil {
			card = &models.Card{ID: id}
		}
		entries = append(entries, models.CollectionEntry{Card: card, Counts: c, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Card, entries[j].Card
		if as, bs := models.NormalizeSetCode(a.SetCode), models.NormalizeSetCode(b.SetCode); as != bs {
			return as < bs
		}
		return collectorLess(a, b)
	})
	return entries
}
