package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/config"
	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	env *config.EnvironmentVariable
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, env *config.EnvironmentVariable) *Seeder {
	return &Seeder{db: db, env: env}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedModeratorsGroup(); err != nil {
		return fmt.Errorf("failed to seed moderators group: %w", err)
	}

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedModeratorsGroup ensures the moderators group exists. Group
// membership is what the authorization layer checks, so the group has
// to be present before anyone can be promoted.
func (s *Seeder) SeedModeratorsGroup() error {
	var group model.Group
	err := s.db.Where("name = ?", model.ModeratorGroupName).First(&group).Error
	if err == nil {
		log.Println("⏭️  Moderators group already exists, skipping...")
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	group = model.Group{Name: model.ModeratorGroupName}
	if err := s.db.Create(&group).Error; err != nil {
		return err
	}

	log.Printf("✅ Created group: %s\n", group.Name)
	return nil
}

// SeedAdminUser creates the default superuser account
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("is_superuser = ?", true).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	if s.env.BOOTSTRAP_ADMIN == "" || s.env.BOOTSTRAP_ADMIN_PWD == "" {
		log.Println("⚠️  BOOTSTRAP_ADMIN and BOOTSTRAP_ADMIN_PWD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(s.env.BOOTSTRAP_ADMIN_PWD)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        s.env.BOOTSTRAP_ADMIN,
		PasswordHash: passwordHash,
		FirstName:    "System",
		LastName:     "Administrator",
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}
