package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_users.sql",
		"00002_create_refresh_tokens.sql",
		"00003_create_user_essences.sql",
		"00004_create_products.sql",
		"00005_create_product_prices.sql",
		"00006_create_stock.sql",
		"00007_create_checks.sql",
		"00008_create_sold_products.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"users":          "00001_create_users.sql",
		"refresh_tokens": "00002_create_refresh_tokens.sql",
		"user_essences":  "00003_create_user_essences.sql",
		"products":       "00004_create_products.sql",
		"product_prices": "00005_create_product_prices.sql",
		"stock":          "00006_create_stock.sql",
		"checks":         "00007_create_checks.sql",
		"sold_products":  "00008_create_sold_products.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		createTableStmt := "CREATE TABLE " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		dropTableStmt := "DROP TABLE " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestChecksTableHasPurchasingMethodConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00007_create_checks.sql"))
	if err != nil {
		t.Fatalf("Failed to read checks migration: %v", err)
	}

	contentStr := string(content)

	for _, method := range []string{"'cash'", "'cashless'"} {
		if !strings.Contains(contentStr, method) {
			t.Errorf("Checks table purchasing_method constraint missing value: %s", method)
		}
	}

	if !strings.Contains(contentStr, "identifier UUID NOT NULL UNIQUE") {
		t.Error("Checks table missing unique UUID identifier column")
	}
}

func TestStockTableForbidsNegativeQuantities(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00006_create_stock.sql"))
	if err != nil {
		t.Fatalf("Failed to read stock migration: %v", err)
	}

	if !strings.Contains(string(content), "CHECK (quantity_in_stock >= 0)") {
		t.Error("Stock table missing non-negative quantity constraint")
	}
}

func TestSoldProductsTableSnapshotsCatalogData(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00008_create_sold_products.sql"))
	if err != nil {
		t.Fatalf("Failed to read sold_products migration: %v", err)
	}

	contentStr := string(content)

	// The sold line must carry its own copy of the catalog data so later
	// price or title changes do not rewrite issued checks.
	snapshotColumns := []string{
		"product_identifier UUID",
		"title VARCHAR",
		"units VARCHAR",
		"quantity NUMERIC",
		"price NUMERIC",
		"discount NUMERIC",
		"total_price NUMERIC",
	}

	for _, column := range snapshotColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Sold products table missing snapshot column definition: %s", column)
		}
	}
}

func TestUsersTableHasRequiredColumns(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("../../migrations", "00001_create_users.sql"))
	if err != nil {
		t.Fatalf("Failed to read users migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id BIGSERIAL PRIMARY KEY",
		"email VARCHAR",
		"password_hash VARCHAR",
		"first_name VARCHAR",
		"last_name VARCHAR",
		"role VARCHAR",
		"created_at TIMESTAMPTZ",
		"updated_at TIMESTAMPTZ",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Users table missing required column definition: %s", column)
		}
	}
}
