package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/sfl-io/sflreport/pkg/shared/files"
)

// Config is the YAML configuration of sflreport.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Report     Report     `yaml:"report"`
	Publisher  Publisher  `yaml:"publisher"`
	Artifacts  Artifacts  `yaml:"artifacts"`
}

// Logger holds logging settings.
type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// HTTPClient holds settings for the HTTP clients talking to VCS APIs.
type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

// TLSClientConfig toggles certificate verification.
type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

// Proxy is an optional HTTP proxy.
type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Report holds the defaults for report rendering.
type Report struct {
	Ranking             []string  `yaml:"ranking"`
	Thresholds          []float64 `yaml:"thresholds"`
	Order               string    `yaml:"order"`
	ToolName            string    `yaml:"tool_name"`
	StacktraceMaxLength int       `yaml:"stacktrace_max_length"`
}

// Publisher selects and authenticates the VCS receiving the comment.
type Publisher struct {
	VCS     string `yaml:"vcs"`
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Artifacts configures the storage receiving report artifacts.
type Artifacts struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := files.ValidatePath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the configuration file, falling back to an empty
// configuration when the file does not exist, and applies env overrides.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	configPath, err := files.ExpandPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := LoadYAML(configPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config %q: %w", configPath, err)
		}
	}

	UpdateConfigFromEnv(cfg, os.Getenv)
	return cfg, nil
}
