package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the injected policy surface for the assignment engine. It is
// read once at startup; components receive it by value and never write it.
type Config struct {
	// MaxActivePerTechnician caps pending+accepted+in_progress assignments
	// per technician.
	MaxActivePerTechnician int `yaml:"max_active_per_technician"`

	// ExpiryWindowDays is how long a pending assignment may sit before the
	// sweep expires it.
	ExpiryWindowDays int `yaml:"expiry_window_days"`

	// Lead times are the maximum recommended scheduling horizon per
	// priority, in hours. Scheduling past them yields a warning, not an
	// error.
	LeadTimeHighHours   int `yaml:"lead_time_high_hours"`
	LeadTimeMediumHours int `yaml:"lead_time_medium_hours"`
	LeadTimeLowHours    int `yaml:"lead_time_low_hours"`

	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	Sync SyncConfig `yaml:"sync"`

	// Reserved toggles. Read but unused by the default policy.
	AutoAccept    bool `yaml:"auto_accept"`
	Notifications bool `yaml:"notifications"`
}

// SyncConfig controls outbound synchronization retries.
type SyncConfig struct {
	MaxRetries  int           `yaml:"max_retries"`
	BackoffBase time.Duration `yaml:"backoff_base"`
	BackoffCap  time.Duration `yaml:"backoff_cap"`
}

// Default returns the shipped policy values.
func Default() Config {
	return Config{
		MaxActivePerTechnician: 10,
		ExpiryWindowDays:       7,
		LeadTimeHighHours:      24,
		LeadTimeMediumHours:    72,
		LeadTimeLowHours:       168,
		SweepInterval:          time.Hour,
		Sync: SyncConfig{
			MaxRetries:  3,
			BackoffBase: 500 * time.Millisecond,
			BackoffCap:  30 * time.Second,
		},
	}
}

// Load reads the YAML policy file at path (if it exists) over the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.MaxActivePerTechnician <= 0 {
		return Config{}, fmt.Errorf("max_active_per_technician must be positive, got %d", cfg.MaxActivePerTechnician)
	}
	if cfg.ExpiryWindowDays <= 0 {
		return Config{}, fmt.Errorf("expiry_window_days must be positive, got %d", cfg.ExpiryWindowDays)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := getenvInt("FIELDOPS_MAX_ACTIVE"); ok {
		cfg.MaxActivePerTechnician = v
	}
	if v, ok := getenvInt("FIELDOPS_EXPIRY_DAYS"); ok {
		cfg.ExpiryWindowDays = v
	}
	if v, ok := getenvInt("FIELDOPS_SYNC_RETRIES"); ok {
		cfg.Sync.MaxRetries = v
	}
}

func getenvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LeadTimeHours returns the recommended scheduling horizon for a priority
// string ("high", "medium", "low"); unknown priorities get the low horizon.
func (c Config) LeadTimeHours(priority string) int {
	switch priority {
	case "high":
		return c.LeadTimeHighHours
	case "medium":
		return c.LeadTimeMediumHours
	default:
		return c.LeadTimeLowHours
	}
}
