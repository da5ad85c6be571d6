// Package main seeds a fresh installation: the admin account, the
// standard tariff table and a few starter courses. Safe to re-run; it
// skips anything that already exists.
package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"compas/internal/config"
	"compas/internal/models"
	"compas/internal/repositories"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")
	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Failed to close database connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("Failed to close Redis connection: %v", err)
			}
		}
	}()

	seedAdmin(adminEmail, adminPassword, adminPhone)
	seedTariffs()
	seedCourses()
}

func seedAdmin(email, password, phone string) {
	var existing models.User
	if err := repositories.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("Admin user already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := models.User{
		Email:    email,
		Password: string(hashed),
		Name:     "Administrator",
		Phone:    phone,
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := repositories.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}
	log.Printf("Created admin user %s", email)
}

// seedTariffs loads the academy's standing tariff table: per-course
// tiers up to four, the flat rate from five courses, and the daily late
// fee.
func seedTariffs() {
	var count int64
	repositories.DB.Model(&models.TariffEntry{}).Count(&count)
	if count > 0 {
		log.Println("Tariff table already seeded")
		return
	}

	entries := []models.TariffEntry{
		{Kind: models.TariffCourseCount, NumCourses: 1, Fare: 20000},
		{Kind: models.TariffCourseCount, NumCourses: 2, Fare: 25000},
		{Kind: models.TariffCourseCount, NumCourses: 3, Fare: 30000},
		{Kind: models.TariffCourseCount, NumCourses: 4, Fare: 32000},
		{Kind: models.TariffCourseFlat, Fare: 35000},
		{Kind: models.TariffLateFee, Fare: 800},
	}
	if err := repositories.DB.Create(&entries).Error; err != nil {
		log.Fatal("Failed to seed tariff table:", err)
	}
	log.Printf("Seeded %d tariff entries", len(entries))
}

func seedCourses() {
	var count int64
	repositories.DB.Model(&models.Course{}).Count(&count)
	if count > 0 {
		log.Println("Courses already seeded")
		return
	}

	var admin models.User
	if err := repositories.DB.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		log.Println("No admin user found, skipping course seed")
		return
	}

	courses := []models.Course{
		{Name: "Salsa I", Style: "salsa", InstructorID: admin.ID, Weekday: 1, StartTime: "18:00", DurationMin: 60, Capacity: 20},
		{Name: "Ballet Infantil", Style: "ballet", InstructorID: admin.ID, Weekday: 3, StartTime: "16:30", DurationMin: 60, Capacity: 15},
		{Name: "Folklore", Style: "folklore", InstructorID: admin.ID, Weekday: 6, StartTime: "10:00", DurationMin: 90, Capacity: 25},
	}
	if err := repositories.DB.Create(&courses).Error; err != nil {
		log.Fatal("Failed to seed courses:", err)
	}
	log.Printf("Seeded %d starter courses", len(courses))
}
