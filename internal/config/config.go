package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP
	Port string
	Env  string

	// Storage; empty DatabaseURL runs on the in-memory log
	DatabaseURL string

	// Redis incident fan-out; empty RedisAddr disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel  string
	LogFormat string

	// Optional YAML overlay for Tuning
	ConfigFile string

	Tuning Tuning
}

// Tuning holds the pipeline's thresholds and timing windows
type Tuning struct {
	VibrationCritical   float64 `yaml:"vibration_critical"`
	VibrationMajor      float64 `yaml:"vibration_major"`
	VibrationRawDivisor float64 `yaml:"vibration_raw_divisor"`
	VibrationMax        float64 `yaml:"vibration_max"`

	AlcoholModerate float64 `yaml:"alcohol_moderate"`
	AlcoholHigh     float64 `yaml:"alcohol_high"`

	CriticalDebounce     time.Duration `yaml:"critical_debounce"`
	LogThrottle          time.Duration `yaml:"log_throttle"`
	SOSTTL               time.Duration `yaml:"sos_ttl"`
	DrowsinessStaleAfter time.Duration `yaml:"drowsiness_stale_after"`
	HazardWindow         time.Duration `yaml:"hazard_window"`
}

// AgentConfig configures the SOS agent that runs next to the GSM modem
type AgentConfig struct {
	BackendURL     string
	PollInterval   time.Duration
	ContactRefresh time.Duration
	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string
}

type fileConfig struct {
	Tuning Tuning `yaml:"tuning"`
}

// Load reads the environment and, when CONFIG_FILE is set, the YAML overlay
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "5000"),
		Env:           getEnv("GO_ENV", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		ConfigFile:    getEnv("CONFIG_FILE", ""),
	}

	if cfg.ConfigFile != "" {
		tuning, err := LoadTuning(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = tuning
	} else {
		cfg.Tuning.applyDefaults()
	}

	return cfg, nil
}

// LoadAgent reads the SOS agent settings from the environment
func LoadAgent() *AgentConfig {
	return &AgentConfig{
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:5000"),
		PollInterval:   getEnvDuration("SOS_POLL_INTERVAL", 3*time.Second),
		ContactRefresh: getEnvDuration("CONTACT_REFRESH_INTERVAL", time.Minute),
		RequestTimeout: getEnvDuration("AGENT_REQUEST_TIMEOUT", 2*time.Second),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

// LoadTuning reads the tuning block of a YAML file and fills unset fields
// with defaults
func LoadTuning(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Tuning{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	fc.Tuning.applyDefaults()
	if err := fc.Tuning.validate(); err != nil {
		return Tuning{}, fmt.Errorf("config: tuning: %w", err)
	}

	return fc.Tuning, nil
}

// DefaultTuning returns the calibrated defaults
func DefaultTuning() Tuning {
	var t Tuning
	t.applyDefaults()
	return t
}

func (t *Tuning) applyDefaults() {
	if t.VibrationCritical == 0 {
		t.VibrationCritical = 0.8
	}
	if t.VibrationMajor == 0 {
		t.VibrationMajor = 0.5
	}
	if t.VibrationRawDivisor == 0 {
		t.VibrationRawDivisor = 35000
	}
	if t.VibrationMax == 0 {
		t.VibrationMax = 1.2
	}
	if t.AlcoholModerate == 0 {
		t.AlcoholModerate = 30
	}
	if t.AlcoholHigh == 0 {
		t.AlcoholHigh = 70
	}
	if t.CriticalDebounce == 0 {
		t.CriticalDebounce = 5 * time.Second
	}
	if t.LogThrottle == 0 {
		t.LogThrottle = time.Second
	}
	if t.SOSTTL == 0 {
		t.SOSTTL = 30 * time.Second
	}
	if t.DrowsinessStaleAfter == 0 {
		t.DrowsinessStaleAfter = 5 * time.Second
	}
	if t.HazardWindow == 0 {
		t.HazardWindow = 30 * time.Second
	}
}

func (t *Tuning) validate() error {
	if t.VibrationMajor >= t.VibrationCritical {
		return fmt.Errorf("vibration_major (%v) must be below vibration_critical (%v)", t.VibrationMajor, t.VibrationCritical)
	}
	if t.AlcoholModerate >= t.AlcoholHigh {
		return fmt.Errorf("alcohol_moderate (%v) must be below alcohol_high (%v)", t.AlcoholModerate, t.AlcoholHigh)
	}
	if t.VibrationRawDivisor < 0 {
		return fmt.Errorf("vibration_raw_divisor must be positive")
	}
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"critical_debounce", t.CriticalDebounce},
		{"log_throttle", t.LogThrottle},
		{"sos_ttl", t.SOSTTL},
		{"drowsiness_stale_after", t.DrowsinessStaleAfter},
		{"hazard_window", t.HazardWindow},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s (%v) must be positive", d.name, d.value)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
