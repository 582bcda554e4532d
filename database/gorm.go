package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alexsergeyev/skillforge/config"
	"github.com/alexsergeyev/skillforge/model"
)

// Storage is the interface the rest of the application depends on.
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	DB() *gorm.DB
}

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnvironmentVariable) (*GORMStore, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)

	gormLogger := logger.Default.LogMode(logger.Info)
	if env.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
		// Map driver errors like unique violations onto gorm.ErrDuplicatedKey
		// so handlers can branch without driver-specific checks.
		TranslateError: true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		&model.Group{},
		&model.User{},

		&model.Course{},
		&model.Lesson{},
		&model.Subscription{},

		&model.Payment{},

		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	)

	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the GORM DB instance for use in handlers and services
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}
