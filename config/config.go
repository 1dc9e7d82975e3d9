package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatasetPath     string
	DatasetSource   string
	DatasetEncoding string

	ExportDir    string
	ExportPrefix string

	HTTPPort int
	LogLevel string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	ChromeBin   string
	SnapshotDir string

	Simulator SimulatorConfig
}

// SimulatorConfig holds the investment simulator constants. The reference
// area and rent drive the band yield estimate; the Min/Max pairs bound the
// user-supplied inputs (cost as a percentage).
type SimulatorConfig struct {
	ReferenceArea float64
	ReferenceRent float64

	PriceMin   float64
	PriceMax   float64
	RentMin    float64
	RentMax    float64
	CostMinPct float64
	CostMaxPct float64
}

// DefaultSimulator returns the simulator constants used by the dashboard.
func DefaultSimulator() SimulatorConfig {
	return SimulatorConfig{
		ReferenceArea: 60,
		ReferenceRent: 12,
		PriceMin:      500,
		PriceMax:      10000,
		RentMin:       5,
		RentMax:       50,
		CostMinPct:    10,
		CostMaxPct:    50,
	}
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	def := DefaultSimulator()

	return &Config{
		DatasetPath:     getEnv("DATASET_PATH", "./data/osaka_mansion_cleaned.csv"),
		DatasetSource:   getEnv("DATASET_SOURCE", "csv"),
		DatasetEncoding: getEnv("DATASET_ENCODING", "utf-8"),

		ExportDir:    getEnv("EXPORT_DIR", "./output"),
		ExportPrefix: getEnv("EXPORT_PREFIX", "osaka_mansion_filtered"),

		HTTPPort: getEnvInt("HTTP_PORT", 8501),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "mansion"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "mansion123"),
		PostgresDB:       getEnv("POSTGRES_DB", "mansion_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		ChromeBin:   getEnv("CHROME_BIN", ""),
		SnapshotDir: getEnv("SNAPSHOT_DIR", "./output/snapshots"),

		Simulator: SimulatorConfig{
			ReferenceArea: getEnvFloat("SIM_REFERENCE_AREA", def.ReferenceArea),
			ReferenceRent: getEnvFloat("SIM_REFERENCE_RENT", def.ReferenceRent),
			PriceMin:      getEnvFloat("SIM_PRICE_MIN", def.PriceMin),
			PriceMax:      getEnvFloat("SIM_PRICE_MAX", def.PriceMax),
			RentMin:       getEnvFloat("SIM_RENT_MIN", def.RentMin),
			RentMax:       getEnvFloat("SIM_RENT_MAX", def.RentMax),
			CostMinPct:    getEnvFloat("SIM_COST_MIN_PCT", def.CostMinPct),
			CostMaxPct:    getEnvFloat("SIM_COST_MAX_PCT", def.CostMaxPct),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
