package Models

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}
	connection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	// 1. Models with no dependencies
	DB.AutoMigrate(
		&User{},
		&ChangeEntry{},
	)

	// 2. Models referencing users
	DB.AutoMigrate(
		&Task{},       // Depends on User (AssignedTo)
		&Preference{}, // Per-user key/value state
	)

	// 3. Models referencing both users and tasks
	DB.AutoMigrate(
		&TaskLog{}, // Depends on Task and User
	)

	seedAdmin()
}

// seedAdmin makes sure a first login is always possible on a fresh database.
func seedAdmin() {
	var count int64
	if err := DB.Model(&User{}).Count(&count).Error; err != nil {
		log.Println(err)
		return
	}
	if count > 0 {
		return
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	passwordByte, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println(err)
		return
	}
	admin := User{
		Name:       "Admin",
		Password:   passwordByte,
		Permission: PermissionAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Println(err)
	}
}
