package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

// EnvPrefix namespaces every environment variable, e.g. TRIPWISE_STORAGE_BACKEND.
const EnvPrefix = "TRIPWISE"

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory", "sqlite" or "firestore"
	SQLitePath     string
	UseMockLLM     bool // true = use mock even on GCP

	Planner   PlannerConfig
	Inventory InventoryConfig
	Log       LogConfig
	HTTP      HTTPConfig
}

type PlannerConfig struct {
	HomeCity      string
	LeadDays      int
	BookingPolicy string // "report" or "compensate"
	OracleTimeout time.Duration
}

type InventoryConfig struct {
	// PriceJitter is the maximum relative variation applied to hotel prices.
	PriceJitter float64
}

type LogConfig struct {
	Level  string
	Format string
}

type HTTPConfig struct {
	AllowedOrigins []string
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", string(ModeLocal))
	v.SetDefault("port", "8080")
	v.SetDefault("gcp.project", "")
	v.SetDefault("gcp.location", "us-central1")
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.sqlite_path", "data/tripwise.db")
	v.SetDefault("planner.home_city", "Delhi")
	v.SetDefault("planner.lead_days", 14)
	v.SetDefault("planner.booking_policy", "report")
	v.SetDefault("planner.oracle_timeout", 20*time.Second)
	v.SetDefault("inventory.price_jitter", 0.1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000"})
	return v
}

// Load reads the optional config file and builds a validated Config.
// Environment variables and bound flags override the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	mode := Mode(strings.ToLower(v.GetString("mode")))

	cfg := &Config{
		Mode: mode,

		Port: v.GetString("port"),

		GCPProjectID: v.GetString("gcp.project"),
		GCPLocation:  v.GetString("gcp.location"),
		ModelName:    v.GetString("model_name"),

		StorageBackend: strings.ToLower(v.GetString("storage.backend")),
		SQLitePath:     v.GetString("storage.sqlite_path"),
		UseMockLLM:     mode != ModeGCP,

		Planner: PlannerConfig{
			HomeCity:      v.GetString("planner.home_city"),
			LeadDays:      v.GetInt("planner.lead_days"),
			BookingPolicy: strings.ToLower(v.GetString("planner.booking_policy")),
			OracleTimeout: v.GetDuration("planner.oracle_timeout"),
		},
		Inventory: InventoryConfig{
			PriceJitter: v.GetFloat64("inventory.price_jitter"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: splitList(v.GetStringSlice("http.allowed_origins")),
		},
	}
	if v.IsSet("use_mock_llm") {
		cfg.UseMockLLM = v.GetBool("use_mock_llm")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both list values and comma-separated strings.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeGCP:
	default:
		return fmt.Errorf("unknown mode %q (want local or gcp)", c.Mode)
	}

	// Minimal validation in GCP mode
	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return fmt.Errorf("%s_GCP_PROJECT must be set in gcp mode", EnvPrefix)
	}

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}

	switch c.StorageBackend {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case "firestore":
		if c.GCPProjectID == "" {
			return fmt.Errorf("%s_GCP_PROJECT is required for the firestore backend", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want memory, sqlite or firestore)", c.StorageBackend)
	}

	if !c.UseMockLLM && c.GCPProjectID == "" {
		return fmt.Errorf("the Vertex AI model needs %s_GCP_PROJECT; set %s_USE_MOCK_LLM=true to run offline", EnvPrefix, EnvPrefix)
	}

	if !slices.Contains([]string{"report", "compensate"}, c.Planner.BookingPolicy) {
		return fmt.Errorf("unknown booking policy %q (want report or compensate)", c.Planner.BookingPolicy)
	}
	if c.Planner.LeadDays < 0 {
		return fmt.Errorf("planner.lead_days must not be negative")
	}
	if c.Planner.OracleTimeout <= 0 {
		return fmt.Errorf("planner.oracle_timeout must be positive")
	}
	if c.Inventory.PriceJitter < 0 || c.Inventory.PriceJitter >= 1 {
		return fmt.Errorf("inventory.price_jitter %v out of range [0,1)", c.Inventory.PriceJitter)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if !slices.Contains([]string{"json", "text"}, c.Log.Format) {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
