package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ecomai/internal/models"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// The bootstrap SQL below is Postgres dialect (gen_random_uuid,
		// TEXT[], JSONB); sqlite gets its schema from the models.
		err = db.AutoMigrate(
			&models.Product{},
			&models.HistoryItem{},
			&models.Store{},
			&models.Order{},
			&models.AdSpend{},
			&models.TrackedData{},
			&models.TrackedWinner{},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate tables: %w", err)
		}
		return &Database{DB: db}, nil
	}

	// PostgreSQL for production
	db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		price DECIMAL(10,2),
		image TEXT,
		source_type TEXT DEFAULT 'Import',
		source_platform TEXT,
		source_country TEXT,
		source_domain TEXT,
		store_id TEXT,
		in_app_tags TEXT[],
		language TEXT,
		ranking INTEGER,
		edit_type TEXT,
		import_id TEXT,
		original_product_id TEXT,
		product_data JSONB,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS history_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		bulk_edit_id TEXT NOT NULL,
		status TEXT DEFAULT 'Processing',
		type TEXT,
		name TEXT,
		total_products INTEGER DEFAULT 0,
		products_processed INTEGER DEFAULT 0,
		tokens INTEGER DEFAULT 0,
		output_file TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (user_id, bulk_edit_id)
	);

	CREATE TABLE IF NOT EXISTS stores (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		domain TEXT UNIQUE NOT NULL,
		access_token TEXT NOT NULL,
		currency TEXT,
		language TEXT,
		last_order_sync TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id TEXT NOT NULL,
		external_id BIGINT NOT NULL,
		name TEXT,
		total_price DECIMAL(10,2),
		currency TEXT,
		financial_status TEXT,
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (store_id, external_id)
	);

	CREATE TABLE IF NOT EXISTS ad_spends (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id TEXT NOT NULL,
		date TEXT NOT NULL,
		source TEXT NOT NULL,
		amount DECIMAL(10,2),
		currency TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (store_id, date, source)
	);

	CREATE TABLE IF NOT EXISTS tracked_data (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id TEXT NOT NULL,
		snapshot_id TEXT NOT NULL,
		handle TEXT NOT NULL,
		title TEXT,
		product_id TEXT,
		current_rank INTEGER,
		source_domain TEXT,
		source_country TEXT,
		timestamp TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS tracked_winners (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		handle TEXT NOT NULL,
		title TEXT,
		product_id TEXT,
		start_rank INTEGER,
		current_rank INTEGER,
		source_domain TEXT,
		source_country TEXT,
		status TEXT DEFAULT 'winner',
		processed BOOLEAN DEFAULT false,
		timestamp TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
