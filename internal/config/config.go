package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-outfit/internal/weather"
)

const defaultConfigFile = "configs/config.yaml"

var errInvalidConfig = errors.New("invalid config")

type AppConfig struct {
	KMAAPIKey          string `yaml:"kmaApiKey"`
	KMABaseURL         string `yaml:"kmaBaseUrl"`
	OpenWeatherAPIKey  string `yaml:"openWeatherApiKey"`
	OpenWeatherBaseURL string `yaml:"openWeatherBaseUrl"`
	GeocoderAPIKey     string `yaml:"geocoderApiKey"`
	IPLookupURL        string `yaml:"ipLookupUrl"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `yaml:"httpTimeout"`

	// RefreshInterval controls background forecast refreshes (0 = disabled).
	RefreshInterval time.Duration `yaml:"refreshInterval"`

	// PreferencesDBPath is the sqlite file for saved options (empty = in memory).
	PreferencesDBPath string `yaml:"preferencesDbPath"`

	// Timezone is the regional provider's local zone.
	Timezone string `yaml:"timezone"`

	// DefaultLocation is used when no position can be estimated.
	DefaultLocation weather.Location `yaml:"defaultLocation"`

	Port string `yaml:"port"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		HTTPTimeout:     10 * time.Second,
		Timezone:        "Asia/Seoul",
		DefaultLocation: weather.Location{Lat: 37.5665, Lon: 126.9780, City: "서울"},
		Port:            "8080",
	}
}

// Load reads configuration from .env, an optional YAML file and the
// environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigFile); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigFile); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hydrateFromFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *AppConfig) error {
	cfg.KMAAPIKey = getenvDefault("KMA_API_KEY", cfg.KMAAPIKey)
	cfg.KMABaseURL = getenvDefault("KMA_BASE_URL", cfg.KMABaseURL)
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", cfg.OpenWeatherAPIKey)
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", cfg.OpenWeatherBaseURL)
	cfg.GeocoderAPIKey = getenvDefault("GEOCODER_API_KEY", cfg.GeocoderAPIKey)
	cfg.IPLookupURL = getenvDefault("IP_LOOKUP_URL", cfg.IPLookupURL)
	cfg.PreferencesDBPath = getenvDefault("PREFERENCES_DB_PATH", cfg.PreferencesDBPath)
	cfg.Timezone = getenvDefault("TIMEZONE", cfg.Timezone)
	cfg.DefaultLocation.City = getenvDefault("DEFAULT_CITY", cfg.DefaultLocation.City)
	cfg.Port = getenvDefault("PORT", cfg.Port)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return err
	}
	if cfg.DefaultLocation.Lat, err = getenvFloat("DEFAULT_LAT", cfg.DefaultLocation.Lat); err != nil {
		return err
	}
	if cfg.DefaultLocation.Lon, err = getenvFloat("DEFAULT_LON", cfg.DefaultLocation.Lon); err != nil {
		return err
	}
	return nil
}

// Validate checks ranges and that the time zone exists.
func (c *AppConfig) Validate() error {
	var problems []string
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "HTTP_TIMEOUT must be positive")
	}
	if c.RefreshInterval < 0 {
		problems = append(problems, "REFRESH_INTERVAL must not be negative")
	}
	if c.RefreshInterval > 0 && c.RefreshInterval < time.Minute {
		problems = append(problems, "REFRESH_INTERVAL must be at least 1m")
	}
	if c.DefaultLocation.Lat < -90 || c.DefaultLocation.Lat > 90 {
		problems = append(problems, "DEFAULT_LAT out of range")
	}
	if c.DefaultLocation.Lon < -180 || c.DefaultLocation.Lon > 180 {
		problems = append(problems, "DEFAULT_LON out of range")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("unknown TIMEZONE %q", c.Timezone))
	}
	if strings.TrimSpace(c.Port) == "" {
		problems = append(problems, "PORT must be set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the configured time zone. Validate guarantees it loads.
func (c *AppConfig) Location() *time.Location {
	tz, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return tz
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
