// Package config loads the engine's YAML configuration file and applies
// defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Pool   PoolConfig   `yaml:"pool"`
	Docker DockerConfig `yaml:"docker"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	// ListenAddress is the gRPC listener for job submission.
	ListenAddress string `yaml:"listen_address"`
	// MetricsAddress serves /metrics and /healthz over HTTP.
	MetricsAddress string `yaml:"metrics_address"`
}

type PoolConfig struct {
	// Size is the number of workers. 0 means one per CPU.
	Size int `yaml:"size"`
}

type DockerConfig struct {
	Image string `yaml:"image"`
	// BuildContext is a folder with a Dockerfile. When set, the image is
	// built at startup; when empty, Image must already exist.
	BuildContext string `yaml:"build_context"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:  ":9090",
			MetricsAddress: ":9091",
		},
		Pool: PoolConfig{
			Size: runtime.NumCPU(),
		},
		Docker: DockerConfig{
			Image: "dispatch-worker:latest",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Pool.Size == 0 {
		c.Pool.Size = runtime.NumCPU()
	}
	if c.Pool.Size < 0 {
		return fmt.Errorf("pool.size must not be negative, got %d", c.Pool.Size)
	}
	if c.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if c.Docker.Image == "" {
		return fmt.Errorf("docker.image must not be empty")
	}
	return nil
}
