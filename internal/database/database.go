package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bendahara/internal/logger"
	"bendahara/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager creates a new database manager
func NewManager(config *Config) (*Manager, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  config.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, config: config}, nil
}

// NewMigrator opens golang-migrate over config's migrations directory and
// database. Release it with CloseMigrator.
func NewMigrator(config *Config) (*migrate.Migrate, error) {
	mig, err := migrate.New(config.MigrationsSource(), config.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance from %s: %w", config.MigrationsSource(), err)
	}
	return mig, nil
}

// CloseMigrator closes both ends of mig, logging rather than returning errors.
func CloseMigrator(mig *migrate.Migrate) {
	srcErr, dbErr := mig.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}

// RunMigrations applies every pending migration.
func (m *Manager) RunMigrations() error {
	logger.Get().Infow("Running database migrations", "source", m.config.MigrationsSource())

	mig, err := NewMigrator(m.config)
	if err != nil {
		return err
	}
	defer CloseMigrator(mig)

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedSystemCategories inserts the system categories whose code is not yet
// present. Existing rows, including admin edits to their names and flags,
// are left alone. It returns how many rows were inserted.
func SeedSystemCategories(ctx context.Context, db *gorm.DB) (int64, error) {
	seed := models.SystemCategories()
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&seed)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed system categories: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SeedAdmin creates admin unless an active admin already exists. It reports
// whether a row was inserted. admin.Password must already be hashed.
func SeedAdmin(ctx context.Context, db *gorm.DB, admin *models.User) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	admin.Role = models.RoleAdmin
	admin.IsActive = true
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	return true, nil
}
