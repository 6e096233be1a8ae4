package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Viewer    ViewerConfig    `mapstructure:"viewer"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MigrateURL is the DSN in the form expected by the golang-migrate pgx/v5 driver.
func (d DatabaseConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(d.DSN(), "postgres")
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// TrackerConfig drives the position tracker backend.
type TrackerConfig struct {
	MaxPositions int    `mapstructure:"max_positions"`
	PollInterval int    `mapstructure:"poll_interval"` // seconds
	Timeout      int    `mapstructure:"timeout"`       // seconds
	Source       string `mapstructure:"source"`        // "opennotify" or "sgp4"
	UpstreamURL  string `mapstructure:"upstream_url"`
	TLELine1     string `mapstructure:"tle_line1"`
	TLELine2     string `mapstructure:"tle_line2"`
}

func (t TrackerConfig) PollEvery() time.Duration { return time.Duration(t.PollInterval) * time.Second }
func (t TrackerConfig) TimeoutAfter() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// ViewerConfig drives the trail viewer.
type ViewerConfig struct {
	Port            int     `mapstructure:"port"`
	APIURL          string  `mapstructure:"api_url"`
	PollInterval    int     `mapstructure:"poll_interval"` // milliseconds
	Timeout         int     `mapstructure:"timeout"`       // seconds
	MaxPathSegments int     `mapstructure:"max_path_segments"`
	RetryThreshold  int     `mapstructure:"retry_threshold"`
	CenterLat       float64 `mapstructure:"center_lat"`
	CenterLon       float64 `mapstructure:"center_lon"`
	Zoom            int     `mapstructure:"zoom"`
	StreetTiles     string  `mapstructure:"street_tiles"`
	TerrainTiles    string  `mapstructure:"terrain_tiles"`
}

func (v ViewerConfig) PollEvery() time.Duration {
	return time.Duration(v.PollInterval) * time.Millisecond
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "isstrack")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "isstrack")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "segment-archive")
	v.SetDefault("tracker.max_positions", 15000)
	v.SetDefault("tracker.poll_interval", 2)
	v.SetDefault("tracker.timeout", 3)
	v.SetDefault("tracker.source", "opennotify")
	v.SetDefault("tracker.upstream_url", "http://api.open-notify.org/iss-now.json")
	v.SetDefault("viewer.port", 8080)
	v.SetDefault("viewer.api_url", "http://localhost:8000")
	v.SetDefault("viewer.poll_interval", 5000)
	v.SetDefault("viewer.timeout", 4)
	v.SetDefault("viewer.max_path_segments", 4)
	v.SetDefault("viewer.retry_threshold", 3)
	v.SetDefault("viewer.center_lat", 0.0)
	v.SetDefault("viewer.center_lon", 0.0)
	v.SetDefault("viewer.zoom", 2)
	v.SetDefault("viewer.street_tiles", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("viewer.terrain_tiles", "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ISSTRACK_TRACKER_POLL_INTERVAL → tracker.poll_interval
	v.SetEnvPrefix("ISSTRACK")
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
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.Temporal.Enabled && c.Temporal.HostPort == "" {
		errs = append(errs, "temporal.host_port is required")
	}

	if c.Tracker.MaxPositions <= 0 {
		errs = append(errs, "tracker.max_positions must be positive")
	}
	if c.Tracker.PollInterval <= 0 {
		errs = append(errs, "tracker.poll_interval must be positive")
	}
	if c.Tracker.Timeout <= 0 {
		errs = append(errs, "tracker.timeout must be positive")
	}
	switch c.Tracker.Source {
	case "opennotify":
		if c.Tracker.UpstreamURL == "" {
			errs = append(errs, "tracker.upstream_url is required for the opennotify source")
		}
	case "sgp4":
		if c.Tracker.TLELine1 == "" || c.Tracker.TLELine2 == "" {
			errs = append(errs, "tracker.tle_line1 and tracker.tle_line2 are required for the sgp4 source")
		}
	default:
		errs = append(errs, fmt.Sprintf("tracker.source must be opennotify or sgp4, got %q", c.Tracker.Source))
	}

	if c.Viewer.Port <= 0 || c.Viewer.Port > 65535 {
		errs = append(errs, fmt.Sprintf("viewer.port must be 1-65535, got %d", c.Viewer.Port))
	}
	if c.Viewer.APIURL == "" {
		errs = append(errs, "viewer.api_url is required")
	}
	if c.Viewer.PollInterval <= 0 {
		errs = append(errs, "viewer.poll_interval must be positive")
	}
	if c.Viewer.Timeout <= 0 {
		errs = append(errs, "viewer.timeout must be positive")
	}
	if c.Viewer.MaxPathSegments < 0 {
		errs = append(errs, "viewer.max_path_segments must not be negative")
	}
	if c.Viewer.RetryThreshold <= 0 {
		errs = append(errs, "viewer.retry_threshold must be positive")
	}
	if c.Viewer.CenterLat < -90 || c.Viewer.CenterLat > 90 {
		errs = append(errs, "viewer.center_lat must be within [-90, 90]")
	}
	if c.Viewer.CenterLon < -180 || c.Viewer.CenterLon > 180 {
		errs = append(errs, "viewer.center_lon must be within [-180, 180]")
	}
	if c.Viewer.StreetTiles == "" || c.Viewer.TerrainTiles == "" {
		errs = append(errs, "viewer.street_tiles and viewer.terrain_tiles are required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
