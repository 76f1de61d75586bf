// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like VISION_GROQ_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one. The server
// can run from the repo root, cmd/server, or a test directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values. An
// unset variable expands to "", never to the literal placeholder: a
// credential left as "${GROQ_API_KEY}" must read as absent so the provider
// it guards stays out of the chain.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				if expanded := os.ExpandEnv(strVal); expanded != strVal {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials directly from well-known environment
// variables when the yaml left them empty. An absent credential disables
// that provider in the fallback chain; it is never an error here.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Vision.Groq.APIKey == "" {
		if val := os.Getenv("GROQ_API_KEY"); val != "" {
			cfg.Vision.Groq.APIKey = val
		}
	}
	if cfg.Vision.OpenRouter.APIKey == "" {
		if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
			cfg.Vision.OpenRouter.APIKey = val
		}
	}
	if cfg.ImageSearch.PexelsAPIKey == "" {
		if val := os.Getenv("PEXELS_API_KEY"); val != "" {
			cfg.ImageSearch.PexelsAPIKey = val
		}
	}
	if cfg.ImageSearch.UnsplashAccessKey == "" {
		if val := os.Getenv("UNSPLASH_ACCESS_KEY"); val != "" {
			cfg.ImageSearch.UnsplashAccessKey = val
		}
	}
	if cfg.Cache.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Cache.Address = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "outfit-advisor"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 90000
	}
	if cfg.Server.MaxImageBytes == 0 {
		cfg.Server.MaxImageBytes = 10 * 1024 * 1024
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.Vision.Groq.BaseURL == "" {
		cfg.Vision.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Vision.Groq.Model == "" {
		cfg.Vision.Groq.Model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	if cfg.Vision.Groq.Timeout == 0 {
		cfg.Vision.Groq.Timeout = 60000
	}
	if cfg.Vision.OpenRouter.BaseURL == "" {
		cfg.Vision.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Vision.OpenRouter.Model == "" {
		cfg.Vision.OpenRouter.Model = "meta-llama/llama-3.2-11b-vision-instruct"
	}
	if cfg.Vision.OpenRouter.Timeout == 0 {
		cfg.Vision.OpenRouter.Timeout = 60000
	}

	if cfg.ImageSearch.Timeout == 0 {
		cfg.ImageSearch.Timeout = 10000
	}
	if cfg.ImageSearch.PlaceholderURL == "" {
		cfg.ImageSearch.PlaceholderURL = "https://placehold.co/400x500"
	}

	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
