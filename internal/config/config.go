package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type Config struct {
	Server struct {
		Host               string `json:"host"`
		Port               int    `json:"port"`
		Subpath            string `json:"subpath"`
		JWTSecret          string `json:"jwtSecret"`
		TokenExpireMinutes int    `json:"tokenExpireMinutes"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	LLM struct {
		URL    string `json:"url"`
		Model  string `json:"model"`
		APIKey string `json:"api_key"`
	} `json:"llm"`
	Embedding struct {
		URL    string `json:"url"`
		Model  string `json:"model"`
		APIKey string `json:"api_key"`
	} `json:"embedding"`
	Qdrant struct {
		URL        string `json:"url"`
		Collection string `json:"collection"`
		APIKey     string `json:"api_key"`
	} `json:"qdrant"`
	Knowledge struct {
		DocumentPath string `json:"document_path"`
		FAQPath      string `json:"faq_path"`
	} `json:"knowledge"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads the JSON config from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		if c.Server.TokenExpireMinutes <= 0 {
			c.Server.TokenExpireMinutes = 60
		}
		if c.Knowledge.FAQPath == "" {
			c.Knowledge.FAQPath = "base/faq.md"
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
