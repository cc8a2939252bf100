package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SeedPath    string `mapstructure:"SEED_PATH"`

	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	DistanceCacheTTL time.Duration `mapstructure:"DISTANCE_CACHE_TTL"`

	ORSAPIKey            string  `mapstructure:"ORS_API_KEY"`
	ORSBaseURL           string  `mapstructure:"ORS_BASE_URL"`
	ORSProfile           string  `mapstructure:"ORS_PROFILE"`
	ORSRequestsPerSecond float64 `mapstructure:"ORS_REQUESTS_PER_SECOND"`
	ORSGeocodeCountry    string  `mapstructure:"ORS_GEOCODE_COUNTRY"`

	AverageSpeedKmh  float64       `mapstructure:"AVERAGE_SPEED_KMH"`
	MinTravelMinutes int           `mapstructure:"MIN_TRAVEL_MINUTES"`
	MinSlackMinutes  int           `mapstructure:"MIN_SLACK_MINUTES"`
	LunchStart       string        `mapstructure:"LUNCH_START"`
	LunchMinutes     int           `mapstructure:"LUNCH_MINUTES"`
	LookupTimeout    time.Duration `mapstructure:"LOOKUP_TIMEOUT"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"SQLITE_PATH":             "data/app.db",
	"DATABASE_URL":            "",
	"SEED_PATH":               "data/seeds/locations.json",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"DISTANCE_CACHE_TTL":      "168h",
	"ORS_API_KEY":             "",
	"ORS_BASE_URL":            "https://api.openrouteservice.org",
	"ORS_PROFILE":             "driving-car",
	"ORS_REQUESTS_PER_SECOND": 5.0,
	"ORS_GEOCODE_COUNTRY":     "IN",
	"AVERAGE_SPEED_KMH":       40.0,
	"MIN_TRAVEL_MINUTES":      15,
	"MIN_SLACK_MINUTES":       60,
	"LUNCH_START":             "",
	"LUNCH_MINUTES":           0,
	"LOOKUP_TIMEOUT":          "5s",
	"ALLOWED_ORIGINS":         "*",
}

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("config: unmarshal failed, using defaults: %v", err)
	}
	return cfg
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	out := []string{}
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
