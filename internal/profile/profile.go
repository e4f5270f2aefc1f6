package profile

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the assistant stores its own data
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of the server
	Version string

	// LLM configuration
	LLMProvider string  // SCHEDULE_LLM_PROVIDER (openai, deepseek, ollama)
	LLMAPIKey   string  // SCHEDULE_LLM_API_KEY
	LLMBaseURL  string  // SCHEDULE_LLM_BASE_URL
	LLMModel    string  // SCHEDULE_LLM_MODEL
	LLMTimeout  int     // SCHEDULE_LLM_TIMEOUT_SECONDS (default: 30)
	LLMRateRPS  float64 // SCHEDULE_LLM_RATE_RPS (default: 2, requests per second)

	// Agent configuration
	ConfidenceThreshold float64 // SCHEDULE_AGENT_CONFIDENCE_THRESHOLD (default: 0.7)

	// Constraint engine configuration
	ConstraintEngineURL     string // SCHEDULE_CONSTRAINT_ENGINE_URL (empty disables the advisory check)
	ConstraintEngineTimeout int    // SCHEDULE_CONSTRAINT_ENGINE_TIMEOUT_SECONDS (default: 5)

	// Scheduling defaults, used when a user has no stored settings
	DefaultTimezone      string // SCHEDULE_DEFAULT_TIMEZONE (default: UTC)
	DefaultDayStart      string // SCHEDULE_DEFAULT_DAY_START (default: 09:00)
	DefaultDayEnd        string // SCHEDULE_DEFAULT_DAY_END (default: 18:00)
	DefaultBufferMinutes int    // SCHEDULE_DEFAULT_BUFFER_MINUTES (default: 10)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if an LLM backend is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMProvider != "" && (p.LLMAPIKey != "" || p.LLMBaseURL != "" || p.LLMProvider == "ollama")
}

// Validate checks the profile for consistency and fills derived defaults.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}
	if p.Driver != "sqlite" {
		return errors.Errorf("unknown db driver %q: only 'sqlite' is supported", p.Driver)
	}
	if p.DSN == "" {
		p.DSN = fmt.Sprintf("%s/schedule_%s.db", p.Data, p.Mode)
	}
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return errors.Errorf("confidence threshold must be within [0,1], got %v", p.ConfidenceThreshold)
	}
	return nil
}

// FromEnv loads configuration from environment variables using the
// SCHEDULE_ prefix (e.g. SCHEDULE_PORT, SCHEDULE_LLM_PROVIDER).
func FromEnv(version string) (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("schedule")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "dev")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8230)
	v.SetDefault("data", ".")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("dsn", "")

	v.SetDefault("llm_provider", "ollama")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", "llama3.1")
	v.SetDefault("llm_timeout_seconds", 30)
	v.SetDefault("llm_rate_rps", 2.0)

	v.SetDefault("agent_confidence_threshold", 0.7)

	v.SetDefault("constraint_engine_url", "")
	v.SetDefault("constraint_engine_timeout_seconds", 5)

	v.SetDefault("default_timezone", "UTC")
	v.SetDefault("default_day_start", "09:00")
	v.SetDefault("default_day_end", "18:00")
	v.SetDefault("default_buffer_minutes", 10)

	p := &Profile{
		Mode:    v.GetString("mode"),
		Addr:    v.GetString("addr"),
		Port:    v.GetInt("port"),
		Data:    v.GetString("data"),
		DSN:     v.GetString("dsn"),
		Driver:  v.GetString("driver"),
		Version: version,

		LLMProvider: v.GetString("llm_provider"),
		LLMAPIKey:   v.GetString("llm_api_key"),
		LLMBaseURL:  v.GetString("llm_base_url"),
		LLMModel:    v.GetString("llm_model"),
		LLMTimeout:  v.GetInt("llm_timeout_seconds"),
		LLMRateRPS:  v.GetFloat64("llm_rate_rps"),

		ConfidenceThreshold: v.GetFloat64("agent_confidence_threshold"),

		ConstraintEngineURL:     v.GetString("constraint_engine_url"),
		ConstraintEngineTimeout: v.GetInt("constraint_engine_timeout_seconds"),

		DefaultTimezone:      v.GetString("default_timezone"),
		DefaultDayStart:      v.GetString("default_day_start"),
		DefaultDayEnd:        v.GetString("default_day_end"),
		DefaultBufferMinutes: v.GetInt("default_buffer_minutes"),
	}

	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}
