// Package config provides the configuration structure for landing-judge.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied to fields left unset in the loaded TOML.
const (
	DefaultPort             = 5005
	DefaultBannerDurationMS = 8000
	DefaultDataFile         = "landings.json"
	DefaultAudioDir         = "static/audio"
	DefaultQuotesFile       = "quotes.json"
	DefaultRegion           = "us-east-1"
	DefaultVoiceID          = "Joanna"
	DefaultOutputFormat     = "mp3"
)

// ServerConfig holds the configuration for the HTTP server.
type ServerConfig struct {
	Port             int `toml:"port"`
	BannerDurationMS int `toml:"banner_duration_ms"`
}

// StorageConfig holds the configuration for persisted files.
type StorageConfig struct {
	DataFile   string `toml:"data_file"`
	AudioDir   string `toml:"audio_dir"`
	QuotesFile string `toml:"quotes_file"`
}

// PollyConfig holds the configuration for the Amazon Polly synthesizer.
type PollyConfig struct {
	Region       string `toml:"region"`
	VoiceID      string `toml:"voice_id"`
	OutputFormat string `toml:"output_format"`
	Enabled      bool   `toml:"enabled"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Polly   PollyConfig   `toml:"polly"`
	Paths   PathsConfig   `toml:"paths"`
}

// Load loads the configuration for landing-judge and fills in defaults for
// unset fields.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Server.BannerDurationMS == 0 {
		c.Server.BannerDurationMS = DefaultBannerDurationMS
	}

	if c.Storage.DataFile == "" {
		c.Storage.DataFile = DefaultDataFile
	}

	if c.Storage.AudioDir == "" {
		c.Storage.AudioDir = DefaultAudioDir
	}

	if c.Storage.QuotesFile == "" {
		c.Storage.QuotesFile = DefaultQuotesFile
	}

	if c.Polly.Region == "" {
		c.Polly.Region = DefaultRegion
	}

	if c.Polly.VoiceID == "" {
		c.Polly.VoiceID = DefaultVoiceID
	}

	if c.Polly.OutputFormat == "" {
		c.Polly.OutputFormat = DefaultOutputFormat
	}
}
