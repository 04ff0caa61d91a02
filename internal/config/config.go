package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the plugger service reads from the environment.
type Config struct {
	Addr        string
	DatabaseURL string

	MangaCarts   []int
	ApogeeCarts  []int
	OfflineCarts []int

	NoPlugPriority    int
	ForcePlugPriority int

	VisibilityHalfWindowHours float64
	OnlyVisiblePlates         bool

	KafkaBrokers []string
	KafkaTopic   string
	S3Bucket     string
	S3Prefix     string

	JWTSecret string
	AllowAnon bool
}

const (
	defaultAddr              = ":8072"
	defaultMangaCarts        = "1,2,3,4,5,6"
	defaultApogeeCarts       = "7,8,9"
	defaultNoPlugPriority    = 2
	defaultForcePlugPriority = 10
	defaultHalfWindow        = 1.0
	defaultKafkaTopic        = "plugger.allocations"
)

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Addr:        getEnv("PLUGGER_ADDR", defaultAddr),
		DatabaseURL: firstNonEmpty(os.Getenv("PLUGGER_DATABASE_URL"), os.Getenv("DATABASE_URL")),

		MangaCarts:   parseCarts(getEnv("PLUGGER_MANGA_CARTS", defaultMangaCarts)),
		ApogeeCarts:  parseCarts(getEnv("PLUGGER_APOGEE_CARTS", defaultApogeeCarts)),
		OfflineCarts: parseCarts(os.Getenv("PLUGGER_OFFLINE_CARTS")),

		NoPlugPriority:    getInt("PLUGGER_NOPLUG_PRIORITY", defaultNoPlugPriority),
		ForcePlugPriority: getInt("PLUGGER_FORCE_PLUG_PRIORITY", defaultForcePlugPriority),

		VisibilityHalfWindowHours: getFloat("PLUGGER_VISIBILITY_HALF_WINDOW_HOURS", defaultHalfWindow),
		OnlyVisiblePlates:         getBool("PLUGGER_ONLY_VISIBLE", true),

		KafkaBrokers: parseCSV(os.Getenv("PLUGGER_KAFKA_BROKERS")),
		KafkaTopic:   getEnv("PLUGGER_KAFKA_TOPIC", defaultKafkaTopic),
		S3Bucket:     os.Getenv("PLUGGER_S3_BUCKET"),
		S3Prefix:     os.Getenv("PLUGGER_S3_PREFIX"),

		JWTSecret: os.Getenv("PLUGGER_JWT_SECRET"),
		AllowAnon: getBool("PLUGGER_ALLOW_ANON", false),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or PLUGGER_DATABASE_URL required")
	}
	if len(cfg.MangaCarts) == 0 {
		return Config{}, fmt.Errorf("PLUGGER_MANGA_CARTS must list at least one cart")
	}
	if cfg.JWTSecret == "" && !cfg.AllowAnon {
		return Config{}, fmt.Errorf("PLUGGER_JWT_SECRET required unless PLUGGER_ALLOW_ANON=true")
	}
	return cfg, nil
}

func parseCarts(raw string) []int {
	chunks := strings.Split(raw, ",")
	carts := make([]int, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if v, err := strconv.Atoi(chunk); err == nil {
			carts = append(carts, v)
		}
	}
	return carts
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
