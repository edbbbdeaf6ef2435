package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for stocknews.
type Config struct {
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	FinMind   FinMindConfig   `mapstructure:"finmind"   yaml:"finmind"`
	Market    MarketConfig    `mapstructure:"market"    yaml:"market"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ScrapeConfig controls the news scraping pipeline.
type ScrapeConfig struct {
	Keyword    string        `mapstructure:"keyword"     yaml:"keyword"`
	StartDate  string        `mapstructure:"start_date"  yaml:"start_date"`
	EndDate    string        `mapstructure:"end_date"    yaml:"end_date"`
	MaxPages   int           `mapstructure:"max_pages"   yaml:"max_pages"`
	Delay      time.Duration `mapstructure:"delay"       yaml:"delay"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	Sources    []string      `mapstructure:"sources"     yaml:"sources"`
}

// FetcherConfig controls the plain HTTP fetcher.
type FetcherConfig struct {
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"  yaml:"accept_language"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"    yaml:"max_redirects"`
}

// BrowserConfig controls the headless browser renderer.
type BrowserConfig struct {
	Headless   bool          `mapstructure:"headless"    yaml:"headless"`
	NavTimeout time.Duration `mapstructure:"nav_timeout" yaml:"nav_timeout"`
	WindowSize string        `mapstructure:"window_size" yaml:"window_size"`
}

// StorageConfig controls output/storage.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputDir       string `mapstructure:"output_dir"       yaml:"output_dir"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// FinMindConfig controls the financial-data API client.
type FinMindConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Token   string        `mapstructure:"token"    yaml:"token"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// MarketConfig controls the price-history client.
type MarketConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// SentimentConfig controls the LLM news-analysis client.
type SentimentConfig struct {
	Provider    string        `mapstructure:"provider"    yaml:"provider"`
	Endpoint    string        `mapstructure:"endpoint"    yaml:"endpoint"`
	Model       string        `mapstructure:"model"       yaml:"model"`
	APIKey      string        `mapstructure:"api_key"     yaml:"api_key"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			MaxPages:   5,
			Delay:      1500 * time.Millisecond,
			MaxRetries: 3,
			RetryDelay: 1 * time.Second,
			Sources:    []string{"yahoo", "udn", "cw", "ltn", "cna"},
		},
		Fetcher: FetcherConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage:  "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7",
			Timeout:         15 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			FollowRedirects: true,
			MaxRedirects:    10,
		},
		Browser: BrowserConfig{
			Headless:   true,
			NavTimeout: 30 * time.Second,
			WindowSize: "1920,1080",
		},
		Storage: StorageConfig{
			Type:            "csv",
			OutputDir:       ".",
			MongoDatabase:   "stocknews",
			MongoCollection: "articles",
		},
		FinMind: FinMindConfig{
			BaseURL: "https://api.finmindtrade.com/api/v4/data",
			Timeout: 30 * time.Second,
		},
		Market: MarketConfig{
			BaseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
			Timeout: 30 * time.Second,
		},
		Sentiment: SentimentConfig{
			Provider:    "ollama",
			Endpoint:    "http://localhost:11434",
			Model:       "llama3.1:latest",
			Temperature: 0.2,
			MaxTokens:   800,
			Timeout:     120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
