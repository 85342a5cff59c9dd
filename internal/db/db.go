package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"astra/internal/config"
	"astra/internal/lead"
	"astra/internal/order"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&lead.Lead{}, &order.Order{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return EnsureAdmin(db)
}

// EnsureAdmin guarantees at least one admin account exists. When none
// does, leftover credentialed rows are removed and a default admin/admin
// account is created, so a fresh deployment is always reachable.
func EnsureAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&lead.Lead{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := db.Where("login IS NOT NULL").Delete(&lead.Lead{}).Error; err != nil {
		return err
	}

	hash, err := lead.HashPassword("admin")
	if err != nil {
		return err
	}
	name := "Administrator"
	login := "admin"
	admin := lead.Lead{
		Name:     &name,
		Login:    &login,
		Password: hash,
		IsAdmin:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[DB] Created default admin account (admin/admin)")
	return nil
}
