// Package config reads service configuration from the environment. All
// values are passed down explicitly; nothing in the pipeline reads ambient
// state.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// MySQLDSN enables the audit store when set.
	MySQLDSN string
	// RedisURL enables the registry cache when set.
	RedisURL string

	OpenFDAEndpoint  string
	RxNormEndpoint   string
	DrugBankEndpoint string
	DrugBankAPIKey   string

	RegistryTimeout time.Duration
	CacheTTL        time.Duration

	OCRLanguages []string
	OCRDPI       int
}

// Load reads configuration from the environment, applying defaults for
// everything unset.
func Load() Config {
	return Config{
		Port:             env("PORT", "8080"),
		MySQLDSN:         os.Getenv("MYSQL_DSN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		OpenFDAEndpoint:  os.Getenv("OPENFDA_ENDPOINT"),
		RxNormEndpoint:   os.Getenv("RXNORM_ENDPOINT"),
		DrugBankEndpoint: os.Getenv("DRUGBANK_ENDPOINT"),
		DrugBankAPIKey:   os.Getenv("DRUGBANK_API_KEY"),
		RegistryTimeout:  envDuration("REGISTRY_TIMEOUT", 10*time.Second),
		CacheTTL:         envDuration("REGISTRY_CACHE_TTL", 6*time.Hour),
		OCRLanguages:     envList("OCR_LANGUAGES", []string{"eng"}),
		OCRDPI:           envInt("OCR_DPI", 300),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
