package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FRAIS_SERVER_PORT
const EnvPrefix = "FRAIS"

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Pricing      PricingConfig      `mapstructure:"pricing"`
	Distance     DistanceConfig     `mapstructure:"distance"`
	Notification NotificationConfig `mapstructure:"notification"`
	Reminder     ReminderConfig     `mapstructure:"reminder"`
	Export       ExportConfig       `mapstructure:"export"`
	Bootstrap    BootstrapConfig    `mapstructure:"bootstrap"`
	Logger       LoggerConfig       `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
}

// PricingConfig holds the unit prices applied when a caller gives none
type PricingConfig struct {
	PricePerKm    float64 `mapstructure:"price_per_km"`
	PricePerNight float64 `mapstructure:"price_per_night"`
	MealBasePrice float64 `mapstructure:"meal_base_price"`
}

// DistanceConfig holds the known road distances, keyed "from|to"
type DistanceConfig struct {
	DefaultKm float64            `mapstructure:"default_km"`
	Table     map[string]float64 `mapstructure:"table"`
}

// NotificationConfig holds outgoing message configuration
type NotificationConfig struct {
	SenderName      string `mapstructure:"sender_name"`
	SenderAddress   string `mapstructure:"sender_address"`
	AccountantEmail string `mapstructure:"accountant_email"`
	PoolSize        int    `mapstructure:"pool_size"`
	KeepOutbox      bool   `mapstructure:"keep_outbox"`
}

// ReminderConfig holds pending-claim reminder configuration
type ReminderConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	PendingAfter time.Duration `mapstructure:"pending_after"`
}

// ExportConfig holds report and statement configuration
type ExportConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	CompanyName string `mapstructure:"company_name"`
}

// BootstrapConfig names the administrator created on an empty database
type BootstrapConfig struct {
	AdminName  string `mapstructure:"admin_name"`
	AdminEmail string `mapstructure:"admin_email"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. An empty
// configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/frais.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)

	// Pricing defaults
	v.SetDefault("pricing.price_per_km", 0.50)
	v.SetDefault("pricing.price_per_night", 80.0)
	v.SetDefault("pricing.meal_base_price", 20.0)

	// Distance defaults
	v.SetDefault("distance.default_km", 100.0)
	v.SetDefault("distance.table", map[string]interface{}{
		"paris|lyon":        465,
		"paris|marseille":   775,
		"lyon|marseille":    315,
		"paris|lille":       225,
		"paris|bordeaux":    585,
		"lyon|grenoble":     110,
		"paris|nantes":      385,
		"toulouse|bordeaux": 245,
	})

	// Notification defaults
	v.SetDefault("notification.sender_name", "Frais & Co")
	v.SetDefault("notification.sender_address", "noreply@frais.local")
	v.SetDefault("notification.accountant_email", "")
	v.SetDefault("notification.pool_size", 8)
	v.SetDefault("notification.keep_outbox", false)

	// Reminder defaults
	v.SetDefault("reminder.enabled", false)
	v.SetDefault("reminder.interval", time.Hour)
	v.SetDefault("reminder.pending_after", 72*time.Hour)

	// Export defaults
	v.SetDefault("export.output_dir", "data/documents")
	v.SetDefault("export.company_name", "Frais & Co")

	// Bootstrap defaults
	v.SetDefault("bootstrap.admin_name", "")
	v.SetDefault("bootstrap.admin_email", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the short environment names kept for operators
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("notification.accountant_email", "FRAIS_ACCOUNTANT_EMAIL", "ACCOUNTANT_EMAIL")
	_ = v.BindEnv("database.path", "FRAIS_DATABASE_PATH", "FRAIS_DB_PATH")
	_ = v.BindEnv("bootstrap.admin_email", "FRAIS_BOOTSTRAP_ADMIN_EMAIL", "FRAIS_ADMIN_EMAIL")
	_ = v.BindEnv("export.company_name", "FRAIS_EXPORT_COMPANY_NAME", "COMPANY_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Pricing.PricePerKm <= 0 || c.Pricing.PricePerNight <= 0 || c.Pricing.MealBasePrice <= 0 {
		return fmt.Errorf("pricing values must be positive")
	}

	if c.Distance.DefaultKm <= 0 {
		return fmt.Errorf("distance.default_km must be positive")
	}
	for pair, km := range c.Distance.Table {
		if !strings.Contains(pair, "|") {
			return fmt.Errorf("distance.table key %q must be \"from|to\"", pair)
		}
		if km <= 0 {
			return fmt.Errorf("distance.table[%s] must be positive", pair)
		}
	}

	if c.Reminder.Enabled {
		if c.Notification.AccountantEmail == "" {
			return fmt.Errorf("notification.accountant_email is required when reminders are enabled")
		}
		if c.Reminder.Interval <= 0 || c.Reminder.PendingAfter <= 0 {
			return fmt.Errorf("reminder.interval and reminder.pending_after must be positive")
		}
	}

	if (c.Bootstrap.AdminName == "") != (c.Bootstrap.AdminEmail == "") {
		return fmt.Errorf("bootstrap.admin_name and bootstrap.admin_email must be set together")
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console")
	}

	return nil
}
