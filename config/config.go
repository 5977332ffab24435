package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL     = "http://localhost:8000"
	DefaultHistoryBackend = "json"
	DefaultHealthInterval = 30 * time.Second
)

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	HealthInterval string `toml:"health_interval,omitempty"`
}

type VoiceConfig struct {
	VoiceID       string `toml:"voice_id,omitempty"`
	STTCommand    string `toml:"stt_command,omitempty"`
	PlayerCommand string `toml:"player_command,omitempty"`
}

type HistoryConfig struct {
	Backend string `toml:"backend"`
}

// UserConfig mirrors config.toml on disk.
type UserConfig struct {
	DataDirectory string        `toml:"data_directory"`
	API           APIConfig     `toml:"api"`
	History       HistoryConfig `toml:"history"`
	Voice         VoiceConfig   `toml:"voice"`
}

// envOverrides is parsed from the process environment after the TOML file.
// Fields without a value in the environment keep what the file provided.
type envOverrides struct {
	APIBaseURL     string        `env:"JARVIS_API_BASE_URL"`
	DataDir        string        `env:"JARVIS_DATA_DIR"`
	HistoryBackend string        `env:"JARVIS_HISTORY_BACKEND"`
	VoiceID        string        `env:"JARVIS_VOICE_ID"`
	STTCommand     string        `env:"JARVIS_STT_COMMAND"`
	PlayerCommand  string        `env:"JARVIS_PLAYER_COMMAND"`
	HealthInterval time.Duration `env:"JARVIS_HEALTH_INTERVAL"`
	Debug          bool          `env:"JARVIS_DEBUG"`
}

type Config struct {
	DataDirectory  string
	APIBaseURL     string
	HistoryBackend string
	HealthInterval time.Duration
	VoiceID        string
	STTCommand     string
	PlayerCommand  string
	Debug          bool

	Keybindings *KeyBindingsConfig
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyUserConfig(u *UserConfig) error {
	if u.DataDirectory != "" {
		c.DataDirectory = u.DataDirectory
	}
	if u.API.BaseURL != "" {
		c.APIBaseURL = u.API.BaseURL
	}
	if u.API.HealthInterval != "" {
		d, err := time.ParseDuration(u.API.HealthInterval)
		if err != nil {
			return fmt.Errorf("invalid api.health_interval %q: %w", u.API.HealthInterval, err)
		}
		c.HealthInterval = d
	}
	if u.History.Backend != "" {
		c.HistoryBackend = u.History.Backend
	}
	c.VoiceID = u.Voice.VoiceID
	c.STTCommand = u.Voice.STTCommand
	c.PlayerCommand = u.Voice.PlayerCommand
	return nil
}

func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if o.APIBaseURL != "" {
		c.APIBaseURL = o.APIBaseURL
	}
	if o.DataDir != "" {
		c.DataDirectory = o.DataDir
	}
	if o.HistoryBackend != "" {
		c.HistoryBackend = o.HistoryBackend
	}
	if o.VoiceID != "" {
		c.VoiceID = o.VoiceID
	}
	if o.STTCommand != "" {
		c.STTCommand = o.STTCommand
	}
	if o.PlayerCommand != "" {
		c.PlayerCommand = o.PlayerCommand
	}
	if o.HealthInterval > 0 {
		c.HealthInterval = o.HealthInterval
	}
	c.Debug = o.Debug
	return nil
}

func (c *Config) validate() error {
	switch c.HistoryBackend {
	case "json", "sqlite", "bolt", "memory":
	default:
		return fmt.Errorf("unknown history backend: %s", c.HistoryBackend)
	}
	if c.HealthInterval <= 0 {
		return fmt.Errorf("health interval must be positive, got %s", c.HealthInterval)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		DataDirectory:  GetDefaultDataDir(),
		APIBaseURL:     DefaultAPIBaseURL,
		HistoryBackend: DefaultHistoryBackend,
		HealthInterval: DefaultHealthInterval,
		Keybindings:    DefaultKeybindings(),
	}
}

// Load resolves configuration: defaults, then config.toml, then .env, then environment.
func Load() (*Config, error) {
	return LoadFrom(GetConfigFilePath())
}

func LoadFrom(configPath string) (*Config, error) {
	cfg := defaultConfig()

	userCfg, err := LoadUserConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if err := cfg.applyUserConfig(userCfg); err != nil {
		return nil, err
	}

	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}
	if ok, msg := kb.Validate(); !ok {
		return nil, fmt.Errorf("invalid keybindings: %s", msg)
	}
	cfg.Keybindings = kb

	return cfg, nil
}
