// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/partyroom/partyroom/internal/api"
	"github.com/partyroom/partyroom/internal/notify"
	pgstorage "github.com/partyroom/partyroom/internal/storage/postgres"
	redisstorage "github.com/partyroom/partyroom/internal/storage/redis"
	"github.com/partyroom/partyroom/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeFile     = "file"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// DefaultPort matches the port existing clients are built against
const DefaultPort = 3000

// Config holds all server configuration
type Config struct {
	Server    api.ServerConfig
	LogLevel  slog.Level
	WebSocket ws.Config

	// StorageType selects the wallet backend
	StorageType string
	// DataFile is the document used by the file backend
	DataFile string
	Redis    redisstorage.Config
	Postgres pgstorage.Config

	// NATS is nil when wallet events are not published
	NATS *notify.NATSConfig
}

// Default returns the configuration used when no variables are set
func Default() Config {
	server := api.DefaultServerConfig()
	server.Port = DefaultPort
	return Config{
		Server:      server,
		LogLevel:    slog.LevelInfo,
		WebSocket:   ws.DefaultConfig(),
		StorageType: StorageTypeFile,
		DataFile:    "database.json",
		Redis:       redisstorage.DefaultConfig(),
		Postgres:    pgstorage.DefaultConfig(),
	}
}

// Load reads configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Server.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.WebSocket.AllowedOrigins = splitList(v)
	}

	if v := getenv("STORAGE_TYPE"); v != "" {
		cfg.StorageType = strings.ToLower(v)
	}
	if v := getenv("DATA_FILE"); v != "" {
		cfg.DataFile = v
	}

	switch cfg.StorageType {
	case StorageTypeMemory, StorageTypeFile:
	case StorageTypeRedis:
		v := getenv("REDIS_URL")
		if v == "" {
			return Config{}, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=%s", StorageTypeRedis)
		}
		cfg.Redis.URL = v
		if p := getenv("REDIS_KEY_PREFIX"); p != "" {
			cfg.Redis.KeyPrefix = p
		}
	case StorageTypePostgres:
		v := getenv("DATABASE_URL")
		if v == "" {
			return Config{}, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=%s", StorageTypePostgres)
		}
		cfg.Postgres.URL = v
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_TYPE %q: must be one of memory, file, redis, postgres", cfg.StorageType)
	}

	if v := getenv("NATS_URL"); v != "" {
		natsCfg := notify.DefaultNATSConfig()
		natsCfg.URL = v
		cfg.NATS = &natsCfg
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
