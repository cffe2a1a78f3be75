package cli

import (
	"os"
	"time"
)

// Config holds partyctl settings. Flags override the PARTYROOM_* environment.
type Config struct {
	ServerURL string
	// Email is the identity lobby commands present when --email is not given
	Email   string
	Timeout time.Duration
	Output  string
	Verbose bool
}

// DefaultConfig reads PARTYROOM_SERVER, PARTYROOM_EMAIL and PARTYROOM_TIMEOUT
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("PARTYROOM_SERVER", "http://localhost:3000"),
		Email:     os.Getenv("PARTYROOM_EMAIL"),
		Timeout:   getDurationOrDefault("PARTYROOM_TIMEOUT", 30*time.Second),
		Output:    "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDurationOrDefault ignores values time.ParseDuration rejects
func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
