package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full process configuration, loaded from an optional
// YAML file with NOTEBOT_ environment variables layered on top.
type Config struct {
	Server  ServerConfig `koanf:"server"`
	GitLab  GitLabConfig `koanf:"gitlab"`
	Agent   AgentConfig  `koanf:"agent"`
	DataDir string       `koanf:"data_dir"`

	// CommandsFile optionally points to a commands.yaml overriding
	// per-command triggers, models and templates.
	CommandsFile string `koanf:"commands_file"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type GitLabConfig struct {
	URL           string `koanf:"url"`
	Token         string `koanf:"token"`
	DefaultBranch string `koanf:"default_branch"`
}

type AgentConfig struct {
	Binary      string `koanf:"binary"`
	Model       string `koanf:"model"`
	TemplateDir string `koanf:"template_dir"`
}

// Load reads configuration from the given YAML path (empty means
// ./notebot.yaml, missing file tolerated) and the environment.
// NOTEBOT_SERVER__PORT=9000 maps to server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	candidate := path
	if candidate == "" {
		candidate = "notebot.yaml"
	}
	if err := k.Load(file.Provider(candidate), yaml.Parser()); err != nil {
		if path != "" || !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config %s: %w", candidate, err)
		}
	}

	if err := k.Load(env.Provider("NOTEBOT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "NOTEBOT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"server.host":           "0.0.0.0",
		"server.port":           8585,
		"gitlab.url":            "https://gitlab.example.com",
		"gitlab.default_branch": "main",
		"agent.binary":          "opencode",
		"agent.model":           "minimax/MiniMax-M2.1",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}
}

// ResolveDataDir returns the data directory, defaulting to ~/.notebot,
// creating it if needed.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".notebot")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return dir, nil
}
