package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the walks service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Route    RouteConfig    `mapstructure:"route"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	AppEnv       string `mapstructure:"app_env"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

// SourcesConfig configures the external data providers the route builder
// fans out to.
type SourcesConfig struct {
	OverpassURL      string `mapstructure:"overpass_url"`
	WikipediaAPIURL  string `mapstructure:"wikipedia_api_url"`
	WikipediaRESTURL string `mapstructure:"wikipedia_rest_url"`
	OSRMURL          string `mapstructure:"osrm_url"`
	NominatimURL     string `mapstructure:"nominatim_url"`
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
}

// RouteConfig holds the tunable heuristics of itinerary generation.
type RouteConfig struct {
	RadiusCapMeters        float64 `mapstructure:"radius_cap_meters"`
	MinViableCandidates    int     `mapstructure:"min_viable_candidates"`
	EnrichmentLimit        int     `mapstructure:"enrichment_limit"`
	QuietMaxStops          int     `mapstructure:"quiet_max_stops"`
	LivelyMaxStops         int     `mapstructure:"lively_max_stops"`
	BalancedMaxStops       int     `mapstructure:"balanced_max_stops"`
	ArrivalThresholdMeters float64 `mapstructure:"arrival_threshold_meters"`
	DefaultOriginLat       float64 `mapstructure:"default_origin_lat"`
	DefaultOriginLng       float64 `mapstructure:"default_origin_lng"`
	DefaultOriginLabel     string  `mapstructure:"default_origin_label"`
}

// Load reads configuration from an optional config file and environment
// variables. Environment variables use the WALKS_ prefix, for example
// WALKS_DATABASE_HOST maps to database.host.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.app_env", "development")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "walks")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "wanderwalks")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "service-walks")

	v.SetDefault("sources.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("sources.wikipedia_api_url", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("sources.wikipedia_rest_url", "https://en.wikipedia.org/api/rest_v1/page/summary")
	v.SetDefault("sources.osrm_url", "https://router.project-osrm.org")
	v.SetDefault("sources.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("sources.user_agent", "wanderwalks/1.0 (service-walks)")
	v.SetDefault("sources.timeout_seconds", 25)

	v.SetDefault("route.radius_cap_meters", 10000.0)
	v.SetDefault("route.min_viable_candidates", 5)
	v.SetDefault("route.enrichment_limit", 10)
	v.SetDefault("route.quiet_max_stops", 12)
	v.SetDefault("route.lively_max_stops", 15)
	v.SetDefault("route.balanced_max_stops", 10)
	v.SetDefault("route.arrival_threshold_meters", 50.0)
	v.SetDefault("route.default_origin_lat", 52.520008)
	v.SetDefault("route.default_origin_lng", 13.404954)
	v.SetDefault("route.default_origin_label", "Berlin, Germany")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	v.SetEnvPrefix("WALKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, "kafka.brokers is required")
	}
	if c.Sources.OverpassURL == "" {
		errs = append(errs, "sources.overpass_url is required")
	}
	if c.Sources.OSRMURL == "" {
		errs = append(errs, "sources.osrm_url is required")
	}
	if c.Route.RadiusCapMeters <= 0 {
		errs = append(errs, "route.radius_cap_meters must be positive")
	}
	if c.Route.MinViableCandidates <= 0 {
		errs = append(errs, "route.min_viable_candidates must be positive")
	}
	if c.Route.ArrivalThresholdMeters <= 0 {
		errs = append(errs, "route.arrival_threshold_meters must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
