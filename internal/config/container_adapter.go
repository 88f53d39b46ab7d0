package config

import (
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
		},
		Pricing: container.PricingConfig{
			PricePerKm:    c.Pricing.PricePerKm,
			PricePerNight: c.Pricing.PricePerNight,
			MealBasePrice: c.Pricing.MealBasePrice,
		},
		Distance: container.DistanceConfig{
			DefaultKm: c.Distance.DefaultKm,
			Table:     c.Distance.Table,
		},
		Notification: container.NotificationConfig{
			SenderName:      c.Notification.SenderName,
			SenderAddress:   c.Notification.SenderAddress,
			AccountantEmail: c.Notification.AccountantEmail,
			PoolSize:        c.Notification.PoolSize,
			KeepOutbox:      c.Notification.KeepOutbox,
		},
		Reminder: container.ReminderConfig{
			Enabled:      c.Reminder.Enabled,
			Interval:     c.Reminder.Interval,
			PendingAfter: c.Reminder.PendingAfter,
		},
		Storage: container.StorageConfig{
			OutputDir:   c.Export.OutputDir,
			CompanyName: c.Export.CompanyName,
		},
		Bootstrap: container.BootstrapConfig{
			AdminName:  c.Bootstrap.AdminName,
			AdminEmail: c.Bootstrap.AdminEmail,
		},
	}
}
