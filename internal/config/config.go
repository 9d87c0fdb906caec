package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docextract/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	Upload     UploadConfig
	Raster     RasterConfig
	AttemptLog AttemptLogConfig
	S3         S3Config
	Models     []ModelConfig
	Providers  ProvidersConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	StaticDir    string        `mapstructure:"static_dir"`
}

// LogConfig holds logging settings. File is an optional JSON operator log.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig holds settings for transient uploaded documents.
type UploadConfig struct {
	Dir           string `mapstructure:"dir"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// RasterConfig holds headless browser settings for PDF rendering.
type RasterConfig struct {
	ChromePath  string `mapstructure:"chrome_path"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// AttemptLogConfig holds settings for the append-only model attempt log.
// When ArchiveBucket is set every record is mirrored to S3.
type AttemptLogConfig struct {
	Path          string `mapstructure:"path"`
	ArchiveBucket string `mapstructure:"archive_bucket"`
	ArchivePrefix string `mapstructure:"archive_prefix"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// ModelConfig names one model in the fixed extraction list and the provider serving it.
type ModelConfig struct {
	ID       string
	Provider string
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Endpoint    string `mapstructure:"endpoint"`
	Region      string `mapstructure:"region"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxTokens   int    `mapstructure:"max_tokens"`
}

// Timeout returns the configured timeout, or def when unset.
func (p *ProviderConfig) Timeout(def time.Duration) time.Duration {
	if p.TimeoutSecs <= 0 {
		return def
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	OpenAI  ProviderConfig `mapstructure:"openai"`
	Claude  ProviderConfig `mapstructure:"claude"`
	Gemini  ProviderConfig `mapstructure:"gemini"`
	Ollama  ProviderConfig `mapstructure:"ollama"`
	Bedrock ProviderConfig `mapstructure:"bedrock"`
}

// Get returns the provider config by name, or nil for unknown names.
func (p *ProvidersConfig) Get(name string) *ProviderConfig {
	switch name {
	case "openai":
		return &p.OpenAI
	case "claude":
		return &p.Claude
	case "gemini":
		return &p.Gemini
	case "ollama":
		return &p.Ollama
	case "bedrock":
		return &p.Bedrock
	default:
		return nil
	}
}

// DefaultModels is the extraction model list used when none is configured.
const DefaultModels = "openai:gpt-4-turbo,openai:gpt-4o-mini,openai:gpt-4o"

var providerNames = []string{"openai", "claude", "gemini", "ollama", "bedrock"}

// Load reads configuration from environment variables with the DOCEXTRACT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.static_dir", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_file_size_mb", 20)

	v.SetDefault("raster.chrome_path", "")
	v.SetDefault("raster.timeout_secs", 60)

	v.SetDefault("attempt_log.path", "model_logs.txt")
	v.SetDefault("attempt_log.archive_bucket", "")
	v.SetDefault("attempt_log.archive_prefix", "attempt-logs")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("models", DefaultModels)

	for _, name := range providerNames {
		v.SetDefault("providers."+name+".api_key", "")
		v.SetDefault("providers."+name+".endpoint", "")
		v.SetDefault("providers."+name+".region", "")
		v.SetDefault("providers."+name+".timeout_secs", 120)
		v.SetDefault("providers."+name+".max_tokens", 1000)
	}
	v.SetDefault("providers.ollama.endpoint", "http://localhost:11434")
	v.SetDefault("providers.bedrock.region", "us-east-1")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "DOCEXTRACT_SERVER_PORT",
		"server.read_timeout":         "DOCEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "DOCEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.environment":          "DOCEXTRACT_SERVER_ENVIRONMENT",
		"server.static_dir":           "DOCEXTRACT_SERVER_STATIC_DIR",
		"log.level":                   "DOCEXTRACT_LOG_LEVEL",
		"log.format":                  "DOCEXTRACT_LOG_FORMAT",
		"log.file":                    "DOCEXTRACT_LOG_FILE",
		"cors.allowed_origins":        "DOCEXTRACT_CORS_ALLOWED_ORIGINS",
		"upload.dir":                  "DOCEXTRACT_UPLOAD_DIR",
		"upload.max_file_size_mb":     "DOCEXTRACT_UPLOAD_MAX_FILE_SIZE_MB",
		"raster.chrome_path":          "DOCEXTRACT_RASTER_CHROME_PATH",
		"raster.timeout_secs":         "DOCEXTRACT_RASTER_TIMEOUT_SECS",
		"attempt_log.path":            "DOCEXTRACT_ATTEMPT_LOG_PATH",
		"attempt_log.archive_bucket":  "DOCEXTRACT_ATTEMPT_LOG_ARCHIVE_BUCKET",
		"attempt_log.archive_prefix":  "DOCEXTRACT_ATTEMPT_LOG_ARCHIVE_PREFIX",
		"s3.region":                   "DOCEXTRACT_S3_REGION",
		"s3.endpoint":                 "DOCEXTRACT_S3_ENDPOINT",
		"s3.access_key":               "DOCEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":               "DOCEXTRACT_S3_SECRET_KEY",
		"models":                      "DOCEXTRACT_MODELS",
	}
	for _, name := range providerNames {
		prefix := "DOCEXTRACT_PROVIDERS_" + strings.ToUpper(name) + "_"
		for _, field := range []string{"api_key", "endpoint", "region", "timeout_secs", "max_tokens"} {
			envBindings["providers."+name+"."+field] = prefix + strings.ToUpper(field)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if DOCEXTRACT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		StaticDir:    v.GetString("server.static_dir"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		File:   v.GetString("log.file"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Upload = UploadConfig{
		Dir:           v.GetString("upload.dir"),
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Raster = RasterConfig{
		ChromePath:  v.GetString("raster.chrome_path"),
		TimeoutSecs: v.GetInt("raster.timeout_secs"),
	}
	cfg.AttemptLog = AttemptLogConfig{
		Path:          v.GetString("attempt_log.path"),
		ArchiveBucket: v.GetString("attempt_log.archive_bucket"),
		ArchivePrefix: v.GetString("attempt_log.archive_prefix"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	providerConfig := func(name string) ProviderConfig {
		return ProviderConfig{
			APIKey:      v.GetString("providers." + name + ".api_key"),
			Endpoint:    v.GetString("providers." + name + ".endpoint"),
			Region:      v.GetString("providers." + name + ".region"),
			TimeoutSecs: v.GetInt("providers." + name + ".timeout_secs"),
			MaxTokens:   v.GetInt("providers." + name + ".max_tokens"),
		}
	}
	cfg.Providers = ProvidersConfig{
		OpenAI:  providerConfig("openai"),
		Claude:  providerConfig("claude"),
		Gemini:  providerConfig("gemini"),
		Ollama:  providerConfig("ollama"),
		Bedrock: providerConfig("bedrock"),
	}

	models, err := ParseModels(v.GetString("models"))
	if err != nil {
		return nil, err
	}
	cfg.Models = models

	return cfg, nil
}

// ParseModels parses a comma-separated list of provider:model entries. Everything after the
// first colon is the model id, so ids may themselves contain colons.
func ParseModels(raw string) ([]ModelConfig, error) {
	entries := splitList(raw)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no models configured", domain.ErrInvalidModelConfig)
	}

	seen := make(map[string]bool, len(entries))
	models := make([]ModelConfig, 0, len(entries))
	for _, entry := range entries {
		provider, id, ok := strings.Cut(entry, ":")
		provider = strings.ToLower(strings.TrimSpace(provider))
		id = strings.TrimSpace(id)
		if !ok || provider == "" || id == "" {
			return nil, fmt.Errorf("%w: entry %q must be provider:model", domain.ErrInvalidModelConfig, entry)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: model %q listed more than once", domain.ErrInvalidModelConfig, id)
		}
		seen[id] = true
		models = append(models, ModelConfig{ID: id, Provider: provider})
	}
	return models, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
