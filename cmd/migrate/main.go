package main

import (
	"fmt"
	"log"
	"os"

	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/pkg/database"

	"github.com/joho/godotenv"
)

// enumTypes lists the Postgres enums referenced by the model gorm tags.
var enumTypes = []struct {
	name   string
	values string
}{
	{"subscription_status", "'pending', 'active', 'cancelled'"},
	{"session_status", "'scheduled', 'completed', 'cancelled', 'rescheduled'"},
	{"invoice_type", "'registration', 'monthly', 'additional'"},
	{"invoice_payment_status", "'unpaid', 'paid', 'overdue', 'cancelled'"},
	{"payment_record_status", "'pending', 'confirmed', 'rejected'"},
	{"booking_status", "'pending', 'confirmed', 'cancelled'"},
	{"discount_type", "'percentage', 'fixed_amount', 'free_service'"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions and enums...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, e := range enumTypes {
		setupSQL = append(setupSQL, fmt.Sprintf(
			`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = '%s') THEN CREATE TYPE %s AS ENUM (%s); END IF; END $$;`,
			e.name, e.name, e.values,
		))
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: setup SQL failed: %v", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Service{},
		&model.TimeSlot{},
		&model.Promotion{},
		&model.Subscription{},
		&model.Session{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.PaymentRecord{},
		&model.Booking{},
		&model.Notification{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating indexes and functions...")

	postMigrationSQL := []string{
		// At most one proof under review per invoice.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_records_one_pending
		 ON payment_records (invoice_id) WHERE status = 'pending';`,

		`CREATE INDEX IF NOT EXISTS idx_invoices_unpaid_due
		 ON invoices (due_date) WHERE payment_status = 'unpaid';`,

		`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
		DECLARE _new_value TIMESTAMP WITH TIME ZONE;
		BEGIN
		  _new_value := now();
		  IF NEW.updated_at IS DISTINCT FROM _new_value THEN NEW.updated_at = _new_value; END IF;
		  RETURN NEW;
		END; $$;`,
	}

	for _, table := range []string{"subscriptions", "sessions", "invoices", "payment_records", "bookings", "promotions"} {
		postMigrationSQL = append(postMigrationSQL,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS set_%s_updated_at ON %s;`, table, table),
			fmt.Sprintf(`CREATE TRIGGER set_%s_updated_at BEFORE UPDATE ON %s FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`, table, table),
		)
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed.")
}
