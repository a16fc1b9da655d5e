package main

import (
	"log"
	"os"

	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/pkg/database"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

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

	log.Println("Seeding service catalog...")
	seedServices(db)

	log.Println("Seeding time slots...")
	seedTimeSlots(db)

	if email := os.Getenv("SEED_ADMIN_EMAIL"); email != "" {
		admin := model.User{Email: email, FullName: "Portal Admin", Role: "admin"}
		if err := db.Where("email = ?", email).FirstOrCreate(&admin).Error; err != nil {
			log.Printf("Error creating admin '%s': %v", email, err)
		} else {
			log.Printf("Admin ready: %s (%s)", admin.Email, admin.Id)
		}
	}

	log.Println("Seeding completed!")
}

func seedServices(db *gorm.DB) {
	price := func(s string) *decimal.Decimal {
		return lo.ToPtr(decimal.RequireFromString(s))
	}

	services := []model.Service{
		{Name: "Early stimulation", Category: "stimulation", Description: "Sensory and motor play for babies", BasePrice: price("450"), DurationMinutes: 45, Capacity: 6, AgeMinMonths: lo.ToPtr(3), AgeMaxMonths: lo.ToPtr(36), IsActive: true},
		{Name: "Daycare half day", Category: "daycare", Description: "Morning care with snack", BasePrice: price("800"), DurationMinutes: 240, Capacity: 12, AgeMinMonths: lo.ToPtr(12), AgeMaxMonths: lo.ToPtr(60), IsActive: true},
		{Name: "Language therapy", Category: "therapy", Description: "One to one sessions with a therapist", BasePrice: price("600"), DurationMinutes: 50, Capacity: 1, IsActive: true},
		{Name: "Parenting workshop", Category: "workshop", Description: "Group workshop, priced per cohort", BasePrice: nil, DurationMinutes: 90, Capacity: 20, IsActive: true},
	}

	for _, s := range services {
		var existing model.Service
		if err := db.Where("name = ?", s.Name).First(&existing).Error; err == nil {
			log.Printf("Service '%s' already exists, skipping...", s.Name)
			continue
		}

		if err := db.Create(&s).Error; err != nil {
			log.Printf("Error creating service '%s': %v", s.Name, err)
		} else {
			log.Printf("Created service: %s (%s)", s.Name, s.Id)
		}
	}
}

func seedTimeSlots(db *gorm.DB) {
	slots := []model.TimeSlot{
		{Label: "Early morning", StartTime: "08:00", EndTime: "09:00", IsActive: true},
		{Label: "Morning", StartTime: "10:00", EndTime: "11:00", IsActive: true},
		{Label: "Afternoon", StartTime: "15:00", EndTime: "16:00", IsActive: true},
		{Label: "Evening", StartTime: "17:30", EndTime: "18:30", IsActive: true},
	}

	for _, slot := range slots {
		if err := db.Where("start_time = ?", slot.StartTime).FirstOrCreate(&slot).Error; err != nil {
			log.Printf("Error creating slot %s: %v", slot.StartTime, err)
			continue
		}
		log.Printf("Slot ready: %s %s", slot.Label, slot.StartTime)
	}
}
