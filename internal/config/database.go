// internal/config/database.go
package config

import (
	"fmt"
)

// DSN returns the connection string for the configured driver. For sqlite
// DATABASE_URL is used as the file name, falling back to a local file.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	if d.Driver == "sqlite" {
		return "storefront.db?_pragma=foreign_keys(1)"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
