package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Pipeline struct {
		FetchTimeout   time.Duration `yaml:"fetch_timeout"`
		ProcessTimeout time.Duration `yaml:"process_timeout"`
	} `yaml:"pipeline"`

	Fetcher struct {
		UserAgent    string  `yaml:"user_agent"`
		RateLimit    float64 `yaml:"rate_limit"` // requests per second, 0 disables limiting
		Burst        int     `yaml:"burst"`
		MaxBodyBytes int64   `yaml:"max_body_bytes"`
		CAFile       string  `yaml:"ca_file"`
	} `yaml:"fetcher"`

	Dictionaries struct {
		Charged  string `yaml:"charged"`
		Lemmas   string `yaml:"lemmas"`
		Fallback string `yaml:"fallback"`
	} `yaml:"dictionaries"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	UI struct {
		Color    bool `yaml:"color"`
		Progress bool `yaml:"progress"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/jaundice/config.yaml"),
			"/etc/jaundice/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// UI toggles default to on; a file that omits them keeps them on.
	config := Config{}
	config.UI.Color = true
	config.UI.Progress = true
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	config.UI.Color = true
	config.UI.Progress = true
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 5 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		// a full batch may take fetch_timeout + process_timeout
		config.Server.WriteTimeout = 30 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 15 * time.Second
	}

	if config.Pipeline.FetchTimeout == 0 {
		config.Pipeline.FetchTimeout = 10 * time.Second
	}
	if config.Pipeline.ProcessTimeout == 0 {
		config.Pipeline.ProcessTimeout = 3 * time.Second
	}

	if config.Fetcher.UserAgent == "" {
		config.Fetcher.UserAgent = "jaundice/1.0 (+https://github.com/xhad/jaundice)"
	}
	if config.Fetcher.Burst == 0 {
		config.Fetcher.Burst = 1
	}
	if config.Fetcher.MaxBodyBytes == 0 {
		config.Fetcher.MaxBodyBytes = 10 * 1024 * 1024
	}

	if config.Dictionaries.Charged == "" {
		config.Dictionaries.Charged = "charged_dict/negative_words.txt"
	}
	if config.Dictionaries.Fallback == "" {
		config.Dictionaries.Fallback = "snowball"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "article_scores"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func mergeWithEnv(config *Config) {
	if addr := os.Getenv("JAUNDICE_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if level := os.Getenv("JAUNDICE_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if charged := os.Getenv("JAUNDICE_CHARGED_DICT"); charged != "" {
		config.Dictionaries.Charged = charged
	}
}
