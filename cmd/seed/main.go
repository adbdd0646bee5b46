package main

import (
	"fmt"
	"log"
	"os"

	"github.com/comunavision/backend/internal/config"
	"github.com/comunavision/backend/internal/database"
	"github.com/comunavision/backend/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config:", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("open database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.FieldDefinition{},
		&models.Comunero{},
		&models.AuditLog{},
		&models.Notification{},
	); err != nil {
		log.Fatal("migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	// Seed starter form fields
	fields := []models.FieldDefinition{
		{Name: "zona", Type: models.FieldTypeSelect, Required: true, Options: []string{"A", "B", "C"}, Order: 1, Active: true},
		{Name: "sexo", Type: models.FieldTypeSelect, Required: false, Options: []string{"M", "F", "X"}, Order: 2, Active: true},
		{Name: "telefono", Type: models.FieldTypeText, Required: false, Order: 3, Active: true},
		{Name: "fecha_nacimiento", Type: models.FieldTypeDate, Required: false, Order: 4, Active: true},
		{Name: "jefe_hogar", Type: models.FieldTypeBoolean, Required: false, Order: 5, Active: true},
	}

	for _, field := range fields {
		result := db.Where("nombre_campo = ?", field.Name).FirstOrCreate(&field)
		if result.Error != nil {
			log.Printf("Failed to seed field %s: %v", field.Name, result.Error)
		} else if result.RowsAffected > 0 {
			fmt.Printf("✓ Created form field: %s (%s)\n", field.Name, field.Type)
		} else {
			fmt.Printf("  Form field already exists: %s\n", field.Name)
		}
	}

	// Seed default admin user
	adminEmail := os.Getenv("CV_DEFAULT_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@localhost"
	}
	adminPassword := os.Getenv("CV_DEFAULT_ADMIN_PASSWORD")
	forceAdmin := os.Getenv("CV_FORCE_DEFAULT_ADMIN") == "1"

	user := models.User{
		Email:  adminEmail,
		Name:   "Administrador",
		Role:   models.RoleAdmin,
		Active: true,
	}

	if adminPassword != "" {
		if err := user.SetPassword(adminPassword); err != nil {
			log.Printf("Failed to hash default admin password: %v", err)
		}
	} else {
		// Placeholder hash, not loginable until reset-password is run.
		user.PasswordHash = "$2a$10$example_hashed_password"
	}

	var existing models.User
	if err := db.Where("email = ?", user.Email).First(&existing).Error; err != nil {
		if result := db.Create(&user); result.Error != nil {
			log.Printf("Failed to seed user: %v", result.Error)
		} else {
			fmt.Printf("✓ Created default admin: %s\n", user.Email)
		}
	} else if forceAdmin && adminPassword != "" {
		if err := existing.SetPassword(adminPassword); err == nil {
			existing.Role = models.RoleAdmin
			existing.Active = true
			db.Save(&existing)
			fmt.Printf("✓ Updated existing admin password for: %s\n", existing.Email)
		} else {
			log.Printf("Failed to update existing admin password: %v", err)
		}
	} else {
		fmt.Printf("  User already exists: %s\n", existing.Email)
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
}
