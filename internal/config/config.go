package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath   = "config.toml"
	DefaultHTTPAddr     = ":8080"
	DefaultGraphBaseURL = "https://graph.facebook.com"
	DefaultGraphVersion = "v18.0"
	DefaultMediaRoot    = "./media"
)

type Config struct {
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
	Graph  GraphConfig  `toml:"graph"`
	Media  MediaConfig  `toml:"media"`
	Ingest IngestConfig `toml:"ingest"`
	Notify NotifyConfig `toml:"notify"`
	Email  EmailConfig  `toml:"email"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// GraphConfig holds the WhatsApp Cloud API (Graph) collaborator settings.
type GraphConfig struct {
	BaseURL        string `toml:"base_url"`
	Version        string `toml:"version"`
	PhoneNumberID  string `toml:"phone_number_id"`
	AccessToken    string `toml:"access_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type MediaConfig struct {
	Root     string `toml:"root"`
	MaxBytes int64  `toml:"max_bytes"`
}

type IngestConfig struct {
	MaxConcurrency int `toml:"max_concurrency"`
}

type NotifyConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// EmailConfig configures the optional ops-notification mailer. An empty
// Host disables sending.
type EmailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Graph: GraphConfig{
			BaseURL:        DefaultGraphBaseURL,
			Version:        DefaultGraphVersion,
			TimeoutSeconds: 30,
		},
		Media: MediaConfig{
			Root:     DefaultMediaRoot,
			MaxBytes: 100 * 1024 * 1024,
		},
		Ingest: IngestConfig{
			MaxConcurrency: 8,
		},
		Notify: NotifyConfig{
			TimeoutSeconds: 10,
		},
		Email: EmailConfig{
			Port: 587,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
