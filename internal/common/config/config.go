// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Vision      VisionConfig      `mapstructure:"vision"`
	ImageSearch ImageSearchConfig `mapstructure:"image_search"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	ReadTimeout    int      `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"`   // milliseconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`    // milliseconds
	RequestTimeout int      `mapstructure:"request_timeout"` // milliseconds, bounds the whole analyze pipeline
	MaxImageBytes  int64    `mapstructure:"max_image_bytes"` // multipart image size cap
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig holds the model provider chain settings. A provider with an
// empty API key is disabled, not an error.
type VisionConfig struct {
	Groq       ModelProviderConfig `mapstructure:"groq"`
	OpenRouter ModelProviderConfig `mapstructure:"openrouter"`
}

type ModelProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// ImageSearchConfig holds the garment image lookup chain settings.
type ImageSearchConfig struct {
	PexelsAPIKey      string `mapstructure:"pexels_api_key"`
	UnsplashAccessKey string `mapstructure:"unsplash_access_key"`
	DuckDuckGo        bool   `mapstructure:"duckduckgo"` // keyless fallback provider
	Timeout           int    `mapstructure:"timeout"`    // milliseconds, per lookup
	PlaceholderURL    string `mapstructure:"placeholder_url"`
}

// CacheConfig holds the optional redis cache. Empty address disables caching.
type CacheConfig struct {
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
