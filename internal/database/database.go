package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to database...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection successful")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('viewer', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create documents table
		`CREATE TABLE IF NOT EXISTS documents (
			document_id BIGSERIAL PRIMARY KEY,
			document_type TEXT NOT NULL,
			source_filename TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Parsed source tables, one per document category. These are populated
		// by the extraction service; this API only reads them.
		`CREATE TABLE IF NOT EXISTS parsed_electricity (
			parsed_id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
			kwh DOUBLE PRECISION NOT NULL CHECK (kwh >= 0),
			unit TEXT DEFAULT 'kwh',
			location TEXT,
			period_start TEXT,
			period_end TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS parsed_stationary_fuel (
			parsed_id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
			fuel_type TEXT,
			quantity DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
			unit TEXT,
			period_start TEXT,
			period_end TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS parsed_vehicle_fuel (
			parsed_id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
			fuel_type TEXT,
			quantity DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
			unit TEXT,
			period_start TEXT,
			period_end TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS parsed_shipping (
			parsed_id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
			weight_tons DOUBLE PRECISION NOT NULL CHECK (weight_tons >= 0),
			distance_miles DOUBLE PRECISION NOT NULL CHECK (distance_miles >= 0),
			transport_mode TEXT,
			period_start TEXT,
			period_end TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS parsed_waste (
			parsed_id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
			waste_weight DOUBLE PRECISION NOT NULL CHECK (waste_weight >= 0),
			unit TEXT DEFAULT 'kg',
			disposal_method TEXT,
			period_start TEXT,
			period_end TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS parsed_water (
			parsed_id BIGSERIAL PRIMARY KEY,
			document_id BIGINT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
			water_volume DOUBLE PRECISION NOT NULL CHECK (water_volume >= 0),
			unit TEXT DEFAULT 'gallons',
			location TEXT,
			period_start TEXT,
			period_end TEXT
		)`,

		// Canonical activity ledger. One row per parsed source row; the
		// unique pair makes recomputes idempotent upserts.
		`CREATE TABLE IF NOT EXISTS activities (
			activity_id BIGSERIAL PRIMARY KEY,
			parsed_table TEXT NOT NULL,
			parsed_id BIGINT NOT NULL,
			activity_type TEXT NOT NULL,
			scope INT CHECK (scope IN (1, 2, 3)),
			location TEXT,
			period_start TEXT,
			period_end TEXT,
			UNIQUE (parsed_table, parsed_id)
		)`,

		// One emission row per activity, replaced in place on recompute.
		`CREATE TABLE IF NOT EXISTS emissions (
			emission_id BIGSERIAL PRIMARY KEY,
			activity_id BIGINT NOT NULL UNIQUE REFERENCES activities(activity_id) ON DELETE CASCADE,
			emissions_kg_co2e DOUBLE PRECISION NOT NULL,
			emissions_metric_tons DOUBLE PRECISION NOT NULL,
			factor_used DOUBLE PRECISION NOT NULL,
			factor_unit TEXT NOT NULL
		)`,

		// Derived metric tables; each refresh appends a fresh row.
		`CREATE TABLE IF NOT EXISTS energy_metrics (
			id BIGSERIAL PRIMARY KEY,
			period_start TEXT,
			period_end TEXT,
			total_kwh DOUBLE PRECISION NOT NULL DEFAULT 0,
			denominator_type TEXT NOT NULL,
			denominator_value DOUBLE PRECISION NOT NULL,
			energy_intensity_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			energy_intensity_unit TEXT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS water_metrics (
			id BIGSERIAL PRIMARY KEY,
			period_start TEXT,
			period_end TEXT,
			total_water_gallons DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_water_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
			record_count INT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS waste_metrics (
			id BIGSERIAL PRIMARY KEY,
			period_start TEXT,
			period_end TEXT,
			total_waste_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			recycled_waste_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			composted_waste_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			landfill_waste_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			diversion_rate DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (diversion_rate >= 0 AND diversion_rate <= 1),
			no_waste_data BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Vendor knowledge base
		`CREATE TABLE IF NOT EXISTS vendors (
			vendor_id VARCHAR(20) PRIMARY KEY,
			vendor_name VARCHAR(100) NOT NULL,
			category VARCHAR(50) NOT NULL,
			product_or_service VARCHAR(150) NOT NULL,
			carbon_intensity NUMERIC(10,4) NOT NULL CHECK (carbon_intensity >= 0),
			sustainability_score SMALLINT NOT NULL CHECK (sustainability_score BETWEEN 0 AND 100),
			distance_km_from_sme NUMERIC(10,2) CHECK (distance_km_from_sme >= 0),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS selected_vendors (
			vendor_id VARCHAR(20) PRIMARY KEY REFERENCES vendors(vendor_id) ON DELETE CASCADE,
			selected_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Recommendations are replaced wholesale on every refresh.
		`CREATE TABLE IF NOT EXISTS recommendations (
			recommendation_id TEXT PRIMARY KEY,
			activity_id BIGINT NOT NULL REFERENCES activities(activity_id) ON DELETE CASCADE,
			criteria VARCHAR(30) NOT NULL,
			title TEXT NOT NULL,
			recommendation_text TEXT NOT NULL,
			current_kg_co2e NUMERIC(18,6),
			recommended_kg_co2e NUMERIC(18,6),
			saving_kg_co2e NUMERIC(18,6),
			saving_tco2e NUMERIC(18,6),
			score NUMERIC(18,6),
			priority TEXT NOT NULL CHECK(priority IN ('high', 'medium', 'low')),
			record_count INT NOT NULL DEFAULT 1,
			source_parsed_id BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Versioned snapshots plus a single-row pointer. The pointer only
		// advances inside the refresh transaction, so readers always get a
		// complete payload.
		`CREATE TABLE IF NOT EXISTS dashboard_snapshots (
			version BIGINT PRIMARY KEY,
			payload JSONB NOT NULL,
			refreshed_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS snapshot_pointer (
			id INT PRIMARY KEY CHECK (id = 1),
			version BIGINT NOT NULL REFERENCES dashboard_snapshots(version)
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_electricity_document ON parsed_electricity(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_stationary_fuel_document ON parsed_stationary_fuel(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_vehicle_fuel_document ON parsed_vehicle_fuel(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_shipping_document ON parsed_shipping(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_waste_document ON parsed_waste(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_water_document ON parsed_water(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_scope ON activities(scope)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(activity_type)`,
		`CREATE INDEX IF NOT EXISTS idx_vendors_category ON vendors(category)`,
		`CREATE INDEX IF NOT EXISTS idx_vendors_sustainability_score ON vendors(sustainability_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_criteria ON recommendations(criteria)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_score ON recommendations(score DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
