package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the per-device settings, read from the environment
// (.env is loaded by main before this runs).
type Config struct {
	DBDriver     string // sqlite (default) or mysql
	DBDSN        string
	RelayURL     string
	RelayChannel string
	APIAddr      string
	DeviceID     string
}

func Load() Config {
	cfg := Config{
		DBDriver:     getEnv("HOTEL_DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("HOTEL_DB_DSN", "hotel_ops.db"),
		RelayURL:     getEnv("RELAY_URL", "ws://localhost:8081/ws"),
		RelayChannel: getEnv("RELAY_CHANNEL", "hotel-ops"),
		APIAddr:      getEnv("API_ADDR", ":8080"),
		DeviceID:     os.Getenv("DEVICE_ID"),
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}
	return cfg
}

// InitDB opens the local store database for this device.
func InitDB(cfg Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.DBDriver)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
