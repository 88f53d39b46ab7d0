// Package container provides dependency injection and lifecycle management
// for the expense claim service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Database     DatabaseConfig
	Pricing      PricingConfig
	Distance     DistanceConfig
	Notification NotificationConfig
	Reminder     ReminderConfig
	Storage      StorageConfig
	Bootstrap    BootstrapConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file, or ":memory:"
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

// PricingConfig holds the default unit prices.
type PricingConfig struct {
	PricePerKm    float64
	PricePerNight float64
	MealBasePrice float64
}

// DistanceConfig holds the distance table, keyed "from|to".
type DistanceConfig struct {
	DefaultKm float64
	Table     map[string]float64
}

// NotificationConfig holds outgoing message settings.
type NotificationConfig struct {
	SenderName      string
	SenderAddress   string
	AccountantEmail string

	// PoolSize bounds concurrently running async event handlers
	PoolSize int

	// KeepOutbox stores a copy of every sent message under the storage dir
	KeepOutbox bool
}

// ReminderConfig holds reminder worker settings.
type ReminderConfig struct {
	Enabled      bool
	Interval     time.Duration
	PendingAfter time.Duration
}

// StorageConfig holds generated document settings.
type StorageConfig struct {
	// OutputDir is the base directory for archived reports and statements
	OutputDir string

	// CompanyName heads payment statements
	CompanyName string
}

// BootstrapConfig names the administrator created on an empty database.
type BootstrapConfig struct {
	AdminName  string
	AdminEmail string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/frais.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
		},
		Pricing: PricingConfig{
			PricePerKm:    0.50,
			PricePerNight: 80,
			MealBasePrice: 20,
		},
		Distance: DistanceConfig{
			DefaultKm: 100,
		},
		Notification: NotificationConfig{
			SenderName:    "Frais & Co",
			SenderAddress: "noreply@frais.local",
			PoolSize:      8,
		},
		Reminder: ReminderConfig{
			Interval:     time.Hour,
			PendingAfter: 72 * time.Hour,
		},
		Storage: StorageConfig{
			OutputDir:   "data/documents",
			CompanyName: "Frais & Co",
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}
	if c.Reminder.Enabled && c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder.interval must be positive")
	}
	return nil
}
