package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "STOCK_RESEARCH_CONFIG"
	dotenvPathEnv      = "STOCK_RESEARCH_DOTENV"
	logLevelEnv        = "LOG_LEVEL"
	papersPathEnv      = "PAPERS_PATH"
	databaseDSNEnv     = "DATABASE_DSN"
	promptTemplateEnv  = "PROMPT_TEMPLATE_PATH"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	openAIBaseURLEnv   = "OPENAI_BASE_URL"
	wordpressSiteEnv   = "WORDPRESS_SITE"
	wordpressUserEnv   = "WORDPRESS_USERNAME"
	wordpressPassEnv   = "WORDPRESS_APP_PASSWORD"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	webhookPortEnv     = "PORT"
	webhookLogsDirEnv  = "WEBHOOK_LOGS_DIR"
	webhookSecretEnv   = "OPENAI_WEBHOOK_SECRET"
	webhookS3BucketEnv = "WEBHOOK_S3_BUCKET"
	awsRegionEnv       = "AWS_REGION"

	// LoaderFile and LoaderPostgres name the built-in corpus loaders.
	LoaderFile     = "file"
	LoaderPostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Corpus        CorpusConfig       `yaml:"corpus"`
	Database      DatabaseConfig     `yaml:"database"`
	Research      ResearchConfig     `yaml:"research"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	WordPress     WordPressConfig    `yaml:"wordpress"`
	Notifications NotificationConfig `yaml:"notifications"`
	Webhook       WebhookConfig      `yaml:"webhook"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CorpusConfig lists the paper sources merged into one corpus.
type CorpusConfig struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one corpus source and the loader that reads it.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Loader  string            `yaml:"loader"`
	Path    string            `yaml:"path"`
	Options map[string]string `yaml:"options"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ResearchConfig tunes prompt building and pair selection.
type ResearchConfig struct {
	PromptTemplate string        `yaml:"promptTemplate"`
	PairAttempts   int           `yaml:"pairAttempts"`
	Interval       time.Duration `yaml:"interval"`
}

// OpenAIConfig defines how to contact the deep-research API.
type OpenAIConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	APIKey            string        `yaml:"apiKey"`
	Model             string        `yaml:"model"`
	CheckModel        string        `yaml:"checkModel"`
	DisableBackground bool          `yaml:"disableBackground"`
	DisableWebSearch  bool          `yaml:"disableWebSearch"`
	Timeout           time.Duration `yaml:"timeout"`
}

// WordPressConfig holds REST API credentials for the blog.
type WordPressConfig struct {
	Site        string `yaml:"site"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"appPassword"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WebhookConfig configures the callback receiver.
type WebhookConfig struct {
	Port            int           `yaml:"port"`
	LogsDir         string        `yaml:"logsDir"`
	Secret          string        `yaml:"secret"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	S3              S3Config      `yaml:"s3"`
}

// S3Config enables archiving callbacks to a bucket instead of the logs dir.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

// Enabled reports whether callbacks go to S3.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Load reads .env, the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	loadDotenv(os.Getenv(dotenvPathEnv))

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Corpus.Sources) == 0 {
		cfg.Corpus.Sources = defaultConfig().Corpus.Sources
	}
	if cfg.Research.PairAttempts < 1 {
		cfg.Research.PairAttempts = 1
	}

	return cfg
}

func loadDotenv(path string) {
	var err error
	if path != "" {
		err = godotenv.Load(path)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(papersPathEnv); v != "" {
		c.Corpus.Sources = []SourceConfig{{Name: "papers", Loader: LoaderFile, Path: v}}
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(promptTemplateEnv); v != "" {
		c.Research.PromptTemplate = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(openAIBaseURLEnv); v != "" {
		c.OpenAI.BaseURL = v
	}

	if v := os.Getenv(wordpressSiteEnv); v != "" {
		c.WordPress.Site = v
	}
	if v := os.Getenv(wordpressUserEnv); v != "" {
		c.WordPress.Username = v
	}
	if v := os.Getenv(wordpressPassEnv); v != "" {
		c.WordPress.AppPassword = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(webhookPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err != nil {
			log.Printf("config: invalid %s %q, keeping %d", webhookPortEnv, v, c.Webhook.Port)
		} else {
			c.Webhook.Port = port
		}
	}
	if v := os.Getenv(webhookLogsDirEnv); v != "" {
		c.Webhook.LogsDir = v
	}
	if v := os.Getenv(webhookSecretEnv); v != "" {
		c.Webhook.Secret = v
	}
	if v := os.Getenv(webhookS3BucketEnv); v != "" {
		c.Webhook.S3.Bucket = v
	}
	if v := os.Getenv(awsRegionEnv); v != "" {
		c.Webhook.S3.Region = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Corpus.Sources) > 0 {
		base.Corpus.Sources = override.Corpus.Sources
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Research.PromptTemplate != "" {
		base.Research.PromptTemplate = override.Research.PromptTemplate
	}
	if override.Research.PairAttempts != 0 {
		base.Research.PairAttempts = override.Research.PairAttempts
	}
	if override.Research.Interval != 0 {
		base.Research.Interval = override.Research.Interval
	}

	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.CheckModel != "" {
		base.OpenAI.CheckModel = override.OpenAI.CheckModel
	}
	if override.OpenAI.Timeout != 0 {
		base.OpenAI.Timeout = override.OpenAI.Timeout
	}
	base.OpenAI.DisableBackground = override.OpenAI.DisableBackground
	base.OpenAI.DisableWebSearch = override.OpenAI.DisableWebSearch

	if override.WordPress.Site != "" {
		base.WordPress.Site = override.WordPress.Site
	}
	if override.WordPress.Username != "" {
		base.WordPress.Username = override.WordPress.Username
	}
	if override.WordPress.AppPassword != "" {
		base.WordPress.AppPassword = override.WordPress.AppPassword
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Webhook.Port != 0 {
		base.Webhook.Port = override.Webhook.Port
	}
	if override.Webhook.LogsDir != "" {
		base.Webhook.LogsDir = override.Webhook.LogsDir
	}
	if override.Webhook.Secret != "" {
		base.Webhook.Secret = override.Webhook.Secret
	}
	if override.Webhook.MaxBodyBytes != 0 {
		base.Webhook.MaxBodyBytes = override.Webhook.MaxBodyBytes
	}
	if override.Webhook.ShutdownTimeout != 0 {
		base.Webhook.ShutdownTimeout = override.Webhook.ShutdownTimeout
	}
	if override.Webhook.S3.Bucket != "" {
		base.Webhook.S3 = override.Webhook.S3
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Corpus: CorpusConfig{
			Sources: []SourceConfig{
				{Name: "papers", Loader: LoaderFile, Path: "papers.json"},
			},
		},
		Research: ResearchConfig{PairAttempts: 3},
		OpenAI: OpenAIConfig{
			Model:      "o3-deep-research",
			CheckModel: "gpt-3.5-turbo",
			Timeout:    time.Hour,
		},
		WordPress: WordPressConfig{Site: "https://mysite.com"},
		Webhook: WebhookConfig{
			Port:            3002,
			LogsDir:         "logs",
			MaxBodyBytes:    50 << 20,
			ShutdownTimeout: 10 * time.Second,
			S3:              S3Config{Prefix: "webhooks/"},
		},
	}
}
