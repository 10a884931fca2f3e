package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/towerpro/models"
)

// SeedFile is the roster file read by scripts/seed.go.
type SeedFile struct {
	Users []struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Role     string `json:"role"`
	} `json:"users"`
	Inspectors []models.Inspector `json:"inspectors"`
}

func ReadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f SeedFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Seed creates the users and inspectors in f that do not exist yet. Users
// are matched by phone, inspectors by name.
func Seed(db *gorm.DB, f *SeedFile) error {
	log := GetLogger()
	for _, u := range f.Users {
		var existing models.User
		err := db.Where("phone = ?", u.Phone).First(&existing).Error
		if err == nil {
			log.WithField("phone", u.Phone).Info("user exists, skipping")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Phone, err)
		}
		user := models.User{
			Name:         u.Name,
			Email:        u.Email,
			Phone:        u.Phone,
			PasswordHash: string(hash),
			Role:         u.Role,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("create user %s: %w", u.Phone, err)
		}
		log.WithField("phone", u.Phone).Info("created user")
	}

	for _, in := range f.Inspectors {
		var existing models.Inspector
		err := db.Where("name = ?", in.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&in).Error; err != nil {
			return fmt.Errorf("create inspector %s: %w", in.Name, err)
		}
		log.WithField("inspector", in.Name).Info("created inspector")
	}
	return nil
}
