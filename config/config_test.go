package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "RESTAURANT_LAT", "RESTAURANT_LNG", "JWT_SECRET", "EVENTS_BACKEND", "RESERVATION_OVERLAP_CHECK"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "log", cfg.Events.Backend)
	assert.InDelta(t, 40.7128, cfg.Restaurant.Latitude, 1e-9)
	assert.InDelta(t, -74.0060, cfg.Restaurant.Longitude, 1e-9)
	assert.False(t, cfg.Restaurant.StrictOverlapCheck)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("RESTAURANT_LAT", "51.5074")
	t.Setenv("RESTAURANT_LNG", "-0.1278")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RESERVATION_OVERLAP_CHECK", "true")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.InDelta(t, 51.5074, cfg.Restaurant.Latitude, 1e-9)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.True(t, cfg.Restaurant.StrictOverlapCheck)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
}

func TestValidate(t *testing.T) {
	t.Run("debug mode gets a development secret", func(t *testing.T) {
		cfg := &Config{
			Server:   ServerConfig{GinMode: "debug"},
			Database: DatabaseConfig{Driver: "sqlite"},
			Events:   EventsConfig{Backend: "log"},
		}
		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.Auth.JWTSecret)
	})

	t.Run("release mode requires a secret", func(t *testing.T) {
		cfg := &Config{
			Server:   ServerConfig{GinMode: "release"},
			Database: DatabaseConfig{Driver: "sqlite"},
			Events:   EventsConfig{Backend: "log"},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{Driver: "mongodb"},
			Events:   EventsConfig{Backend: "log"},
			Auth:     AuthConfig{JWTSecret: []byte("x")},
		}
		assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")
	})

	t.Run("origin out of range", func(t *testing.T) {
		cfg := &Config{
			Database:   DatabaseConfig{Driver: "sqlite"},
			Events:     EventsConfig{Backend: "kafka"},
			Auth:       AuthConfig{JWTSecret: []byte("x")},
			Restaurant: RestaurantConfig{Latitude: 123},
		}
		assert.Error(t, cfg.Validate())
	})
}

func TestOpenDatabaseMigratesSQLite(t *testing.T) {
	db, err := OpenDatabase(DatabaseConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	for _, table := range []string{"users", "menu_items", "orders", "payments", "reservations", "tables", "delivery_trackings", "route_points"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
