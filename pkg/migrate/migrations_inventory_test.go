package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ridgelinearms/armory-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestOrderMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS shipments",
		"CREATE TABLE IF NOT EXISTS order_lines",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_base_number",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shipments_order_suffix",
		"version INTEGER NOT NULL DEFAULT 1",
		"snapshot_wholesale_price NUMERIC(12,2) NOT NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationEnforcesSingleActiveRule(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	if !strings.Contains(string(data), "idx_tier_markup_rules_single_active") {
		t.Fatalf("missing partial unique index guarding the single active rule")
	}
}
