// Package config loads and validates engine configuration from TOML.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ConfigurationError reports an invalid setting. Fatal at
// initialization only; nothing at runtime produces one.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// QueueConfig sets per-queue capacities. Each capacity must be >= 1;
// one slot is always sacrificed, so usable depth is capacity-1.
type QueueConfig struct {
	Render      int `toml:"render"`
	Generic     int `toml:"generic"`
	Callback    int `toml:"callback"`
	FrameEvents int `toml:"frame_events"`
	Resource    int `toml:"resource"`
	Audio       int `toml:"audio"`
}

// ExecutorConfig sets dispatcher behavior.
type ExecutorConfig struct {
	// Commands/second per agent; 0 disables rate limiting
	RateLimitPerAgent uint32 `toml:"rate_limit_per_agent"`

	// One log record per executed command when on
	AuditLogging bool `toml:"audit_logging"`
}

// AudioConfig sets playback behavior.
type AudioConfig struct {
	Enabled      bool    `toml:"enabled"`
	SampleRate   int     `toml:"sample_rate"`
	MasterVolume float64 `toml:"master_volume"`
}

// JobsConfig sets the I/O worker pool.
type JobsConfig struct {
	Workers int `toml:"workers"`
}

// Config is the full engine configuration.
type Config struct {
	Queues   QueueConfig    `toml:"queues"`
	Executor ExecutorConfig `toml:"executor"`
	Audio    AudioConfig    `toml:"audio"`
	Jobs     JobsConfig     `toml:"jobs"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Queues: QueueConfig{
			Render:      1000,
			Generic:     500,
			Callback:    100,
			FrameEvents: 256,
			Resource:    200,
			Audio:       64,
		},
		Executor: ExecutorConfig{
			RateLimitPerAgent: 100,
			AuditLogging:      false,
		},
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   44100,
			MasterVolume: 0.7,
		},
		Jobs: JobsConfig{
			Workers: 4,
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting, returning the first violation.
func (c *Config) Validate() error {
	queues := []struct {
		name string
		cap  int
	}{
		{"queues.render", c.Queues.Render},
		{"queues.generic", c.Queues.Generic},
		{"queues.callback", c.Queues.Callback},
		{"queues.frame_events", c.Queues.FrameEvents},
		{"queues.resource", c.Queues.Resource},
		{"queues.audio", c.Queues.Audio},
	}
	for _, q := range queues {
		if q.cap < 1 {
			return &ConfigurationError{Field: q.name,
				Reason: fmt.Sprintf("capacity must be >= 1, got %d", q.cap)}
		}
	}

	if c.Audio.SampleRate <= 0 {
		return &ConfigurationError{Field: "audio.sample_rate",
			Reason: fmt.Sprintf("must be positive, got %d", c.Audio.SampleRate)}
	}
	if c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 1 {
		return &ConfigurationError{Field: "audio.master_volume",
			Reason: fmt.Sprintf("must be in [0, 1], got %g", c.Audio.MasterVolume)}
	}
	if c.Jobs.Workers < 1 {
		return &ConfigurationError{Field: "jobs.workers",
			Reason: fmt.Sprintf("must be >= 1, got %d", c.Jobs.Workers)}
	}
	return nil
}
