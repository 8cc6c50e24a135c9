package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// legacyCountColumns maps count columns of older schemas to their current names.
var legacyCountColumns = map[string]string{
	"copies": "nonfoil",
	"foils":  "foil",
}

// cleanupDuplicateCollectionItems folds duplicate collection_items rows for the
// same card into the newest row before the unique constraint is added.
// This runs BEFORE AutoMigrate to prevent constraint violations
func cleanupDuplicateCollectionItems(db *gorm.DB) error {
	if !db.Migrator().HasTable("collection_items") {
		return nil // No table, no duplicates to clean
	}

	var sums []string
	for _, column := range []string{"nonfoil", "foil", "copies", "foils"} {
		if db.Migrator().HasColumn("collection_items", column) {
			sums = append(sums, fmt.Sprintf(
				"%[1]s = (SELECT COALESCE(SUM(c2.%[1]s), 0) FROM collection_items c2 WHERE c2.card_id = collection_items.card_id)",
				column))
		}
	}
	if len(sums) > 0 {
		result := db.Exec(`
			UPDATE collection_items
			SET ` + strings.Join(sums, ", ") + `
			WHERE id IN (
				SELECT MAX(id)
				FROM collection_items
				GROUP BY card_id
				HAVING COUNT(*) > 1
			)
		`)
		if result.Error != nil {
			return result.Error
		}
	}

	// Keep only the newest row per card, which now holds the summed counts
	result := db.Exec(`
		DELETE FROM collection_items
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM collection_items
			GROUP BY card_id
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate collection_items entries", result.RowsAffected)
	}
	return nil
}

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	return migrateLegacyCountColumns(db)
}

// migrateLegacyCountColumns moves counts stored under the old copies/foils
// columns into nonfoil/foil and drops the old columns.
// This is safe to run multiple times as the old columns are gone afterwards.
func migrateLegacyCountColumns(db *gorm.DB) error {
	for legacy, current := range legacyCountColumns {
		if !db.Migrator().HasColumn("collection_items", legacy) {
			continue
		}
		log.Printf("Migrating collection_items: %s -> %s", legacy, current)

		result := db.Exec(fmt.Sprintf(`
			UPDATE collection_items
			SET %[2]s = %[2]s + COALESCE(%[1]s, 0)
			WHERE %[1]s IS NOT NULL AND %[1]s != 0
		`, legacy, current))
		if result.Error != nil {
			return fmt.Errorf("failed to migrate %s column: %w", legacy, result.Error)
		}
		log.Printf("Migrated %d collection_items rows", result.RowsAffected)

		if err := db.Migrator().DropColumn("collection_items", legacy); err != nil {
			return fmt.Errorf("failed to drop legacy %s column: %w", legacy, err)
		}
	}
	return nil
}
