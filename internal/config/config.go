package config

import (
	"log"
	"os"
	"strconv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory" or "firestore"
	UseMockLLM     bool   // true = scripted interpreter even on GCP

	// Planner knobs. The threshold gates auto-execution of interpreted
	// actions; below it the assistant asks instead of acting.
	ConfidenceThreshold float64
	DefaultCycleDays    int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("NONNON_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("PORT", "8080"),

		GCPProjectID: getEnv("NONNON_GCP_PROJECT", ""),
		GCPLocation:  getEnv("NONNON_GCP_LOCATION", "asia-southeast1"),
		ModelName:    getEnv("NONNON_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("NONNON_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("NONNON_USE_MOCK_LLM", mode == ModeLocal),

		ConfidenceThreshold: getFloatEnv("NONNON_CONFIDENCE_THRESHOLD", 0.6),
		DefaultCycleDays:    getIntEnv("NONNON_DEFAULT_CYCLE_DAYS", 365),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("NONNON_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
