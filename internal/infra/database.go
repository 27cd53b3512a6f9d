package infra

import (
	"fmt"

	"assettrack/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates or updates the schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.AccessoryRecord{},
		&model.ActivityEvent{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully
// handle on its own. Each statement uses IF NOT EXISTS semantics so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the most common listing: what's currently out.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_accessory_records_in_action') THEN
		    CREATE INDEX idx_accessory_records_in_action
		        ON accessory_records (status, asset_type)
		        WHERE status <> 'on_stock';
		  END IF;
		END $$`,
		// Lineage lookups on Return are by exact id; keep the reverse
		// direction (find all derived records of a source) indexed too.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_accessory_records_lineage') THEN
		    CREATE INDEX idx_accessory_records_lineage
		        ON accessory_records (lineage_id)
		        WHERE lineage_id IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
