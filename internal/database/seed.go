package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding default users...")

	viewerPassword, err := bcrypt.GenerateFromPassword([]byte("viewer123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "viewer@pulse.local",
			"password": string(viewerPassword),
			"name":     "Dashboard Viewer",
			"role":     "viewer",
		},
		{
			"id":       uuid.New().String(),
			"email":    "admin@pulse.local",
			"password": string(adminPassword),
			"name":     "Admin User",
			"role":     "admin",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded default users")
	return nil
}

// SeedVendors loads the vendor knowledge base. Safe to re-run: existing
// rows are refreshed via ON CONFLICT DO UPDATE.
func SeedVendors(db *sqlx.DB) error {
	log.Println("🌱 Seeding vendor knowledge base...")

	type vendorRow struct {
		ID         string
		Name       string
		Category   string
		Product    string
		Carbon     float64
		Score      int
		DistanceKm float64
	}

	vendors := []vendorRow{
		{"LOG-001", "GreenMile Freight", "Logistics", "Regional trucking", 0.1120, 88, 42.0},
		{"LOG-002", "Pacific Haul Co", "Logistics", "Long-haul trucking", 0.1580, 61, 310.5},
		{"LOG-003", "RailLink Cargo", "Logistics", "Intermodal rail freight", 0.0310, 79, 187.0},
		{"LOG-004", "SwiftShip Express", "Logistics", "Expedited delivery", 0.2240, 44, 95.0},
		{"ENE-001", "SunGrid Renewables", "Energy", "Solar power purchase agreements", 0.0410, 94, 120.0},
		{"ENE-002", "WindWard Power", "Energy", "Wind energy supply", 0.0150, 91, 260.0},
		{"ENE-003", "ValleyGas Utility", "Energy", "Natural gas supply", 0.4480, 38, 18.5},
		{"ENE-004", "CleanVolt Energy", "Energy Provider", "Green electricity plans", 0.0920, 86, 75.0},
		{"PAK-001", "EcoWrap Packaging", "Packaging", "Recycled cardboard boxes", 1.2000, 82, 66.0},
		{"PAK-002", "DuraPack Industries", "Packaging", "Plastic shipping containers", 4.8000, 35, 140.0},
		{"PAK-003", "FiberForm Supply", "Packaging", "Molded fiber inserts", 1.9500, 71, 205.0},
		{"MAT-001", "TerraSteel Works", "Raw Materials", "Recycled steel stock", 6.2000, 68, 330.0},
		{"MAT-002", "Summit Alloys", "Raw Materials", "Virgin aluminum sheet", 11.5000, 29, 410.0},
		{"MAT-003", "Cascade Polymers", "Raw Materials", "Bio-based resin pellets", 3.4000, 77, 255.0},
	}

	for _, v := range vendors {
		_, err := db.Exec(`
			INSERT INTO vendors
				(vendor_id, vendor_name, category, product_or_service,
				 carbon_intensity, sustainability_score, distance_km_from_sme)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (vendor_id) DO UPDATE SET
				vendor_name          = EXCLUDED.vendor_name,
				category             = EXCLUDED.category,
				product_or_service   = EXCLUDED.product_or_service,
				carbon_intensity     = EXCLUDED.carbon_intensity,
				sustainability_score = EXCLUDED.sustainability_score,
				distance_km_from_sme = EXCLUDED.distance_km_from_sme`,
			v.ID, v.Name, v.Category, v.Product, v.Carbon, v.Score, v.DistanceKm)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d vendors", len(vendors))
	return nil
}
