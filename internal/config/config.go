package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Crawl    CrawlConfig    `yaml:"crawl" mapstructure:"crawl"`
	Download DownloadConfig `yaml:"download" mapstructure:"download"`
	Gemini   ProviderConfig `yaml:"gemini" mapstructure:"gemini"`
	Groq     ProviderConfig `yaml:"groq" mapstructure:"groq"`
	OpenAI   ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Ollama   ProviderConfig `yaml:"ollama" mapstructure:"ollama"`
	Claude   ProviderConfig `yaml:"claude" mapstructure:"claude"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ScrapeConfig configures page fetching.
type ScrapeConfig struct {
	Engine      string        `yaml:"engine" mapstructure:"engine"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Browser     BrowserConfig `yaml:"browser" mapstructure:"browser"`
}

// BrowserConfig configures the headless browser engine.
type BrowserConfig struct {
	Bin       string `yaml:"bin" mapstructure:"bin"`
	Headless  bool   `yaml:"headless" mapstructure:"headless"`
	NoSandbox bool   `yaml:"no_sandbox" mapstructure:"no_sandbox"`
}

// CacheConfig configures the local page cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// CrawlConfig configures sitemap crawling.
type CrawlConfig struct {
	MaxPages          int     `yaml:"max_pages" mapstructure:"max_pages"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DownloadConfig configures linked-file downloads.
type DownloadConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ProviderConfig holds per-provider model and endpoint settings.
type ProviderConfig struct {
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PAGESIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("scrape.engine", "browser")
	v.SetDefault("scrape.timeout_secs", 45)
	v.SetDefault("scrape.browser.headless", true)
	v.SetDefault("scrape.browser.no_sandbox", false)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("crawl.max_pages", 200)
	v.SetDefault("crawl.requests_per_second", 4.0)
	v.SetDefault("crawl.timeout_secs", 10)
	v.SetDefault("download.dir", "downloads")
	v.SetDefault("download.concurrency", 4)
	v.SetDefault("download.timeout_secs", 60)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("groq.model", "llama3-8b-8192")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("ollama.model", "llama3")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("claude.model", "claude-haiku-4-5-20251001")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// defaultCachePath places the page cache under the user cache directory,
// falling back to the working directory when none is available.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "pages.db"
	}
	return filepath.Join(dir, "pagesift", "pages.db")
}

// InitLogger initializes the global zap logger. Output goes to stderr so
// extraction results on stdout stay clean.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
