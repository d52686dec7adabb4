package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

const defaultMaxUploadBytes int64 = 50 << 20 // 50 MiB

type Config struct {
	App       AppConfig       `toml:"app"`
	Storage   StorageConfig   `toml:"storage"`
	Static    StaticConfig    `toml:"static"`
	CORS      CORSConfig      `toml:"cors"`
	Responder ResponderConfig `toml:"responder"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`

	// WebsitesPort is the host platform's port hint. It is only logged.
	WebsitesPort string `toml:"-"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type StorageConfig struct {
	Root           string `toml:"root"`
	ProductionRoot string `toml:"production_root"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
	PublicPrefix   string `toml:"public_prefix"`
}

type StaticConfig struct {
	Root string `toml:"root"`
}

type CORSConfig struct {
	AllowOrigins []string `toml:"allow_origins"`
}

type ResponderConfig struct {
	Mode           string `toml:"mode"`
	Sender         string `toml:"sender"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	SystemPrompt   string `toml:"system_prompt"`
	HistoryWindow  int    `toml:"history_window"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type RabbitMQConfig struct {
	URL          string `toml:"url"`
	MessageQueue string `toml:"message_queue"`
	ReplyQueue   string `toml:"reply_queue"`
}

const (
	ResponderNone     = "none"
	ResponderOpenAI   = "openai"
	ResponderRabbitMQ = "rabbitmq"
)

func Load() (*Config, error) {
	cfg := Default()

	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file failed: %w", err)
		}
	}

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if cfg.App.GinMode == "" {
		cfg.App.GinMode = defaultGinMode(cfg.Mode())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.App.Port)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	prefix := c.Storage.PublicPrefix
	if !strings.HasPrefix(prefix, "/") || prefix == "/" || prefix == "/api" || strings.HasPrefix(prefix, "/api/") {
		return fmt.Errorf("invalid public_prefix %q", prefix)
	}
	switch c.Responder.Mode {
	case ResponderNone, ResponderOpenAI, ResponderRabbitMQ:
	default:
		return fmt.Errorf("unsupported responder mode %q", c.Responder.Mode)
	}
	if c.Responder.Mode == ResponderRabbitMQ && c.RabbitMQ.URL == "" {
		return fmt.Errorf("responder mode rabbitmq requires rabbitmq.url")
	}
	return nil
}

// Mode reports the deployment mode. Anything but "production" is development.
func (c *Config) Mode() Mode {
	if strings.EqualFold(strings.TrimSpace(c.App.Env), string(ModeProduction)) {
		return ModeProduction
	}
	return ModeDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Mode() == ModeProduction
}

// UploadRoot is the storage directory for the current mode.
func (c *Config) UploadRoot() string {
	if c.IsProduction() && c.Storage.ProductionRoot != "" {
		return c.Storage.ProductionRoot
	}
	return c.Storage.Root
}

// StaticRoot is where the SPA is served from. Only production serves it.
func (c *Config) StaticRoot() string {
	if !c.IsProduction() {
		return ""
	}
	return c.Static.Root
}

// defaultGinMode keeps gin's route dump and debug warnings out of production logs.
func defaultGinMode(mode Mode) string {
	if mode == ModeProduction {
		return "release"
	}
	return "debug"
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// Default returns the built-in configuration before any file or env override.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "casedesk",
			Env:  string(ModeDevelopment),
			Host: "0.0.0.0",
			Port: 3001,
		},
		Storage: StorageConfig{
			Root:           "uploads",
			ProductionRoot: "/home/site/uploads",
			MaxUploadBytes: defaultMaxUploadBytes,
			PublicPrefix:   "/uploads",
		},
		Static: StaticConfig{
			Root: "public",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Responder: ResponderConfig{
			Mode:           ResponderNone,
			Sender:         "AI",
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			SystemPrompt:   "You are a paralegal assistant for a law firm. Answer questions about the client's case concisely.",
			HistoryWindow:  20,
			TimeoutSeconds: 30,
		},
		RabbitMQ: RabbitMQConfig{
			URL:          "",
			MessageQueue: "casedesk.chat.created",
			ReplyQueue:   "casedesk.chat.reply",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Env = getEnv("NODE_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.WebsitesPort = getEnv("WEBSITES_PORT", cfg.WebsitesPort)

	cfg.Storage.Root = getEnv("UPLOAD_DIR", cfg.Storage.Root)
	cfg.Storage.ProductionRoot = getEnv("UPLOAD_DIR_PRODUCTION", cfg.Storage.ProductionRoot)
	cfg.Storage.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", cfg.Storage.MaxUploadBytes)

	cfg.Static.Root = getEnv("STATIC_ROOT", cfg.Static.Root)
	if raw, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok && strings.TrimSpace(raw) != "" {
		cfg.CORS.AllowOrigins = splitList(raw)
	}

	cfg.Responder.Mode = strings.ToLower(getEnv("RESPONDER_MODE", cfg.Responder.Mode))
	cfg.Responder.Sender = getEnv("RESPONDER_SENDER", cfg.Responder.Sender)
	cfg.Responder.BaseURL = getEnv("LLM_BASE_URL", cfg.Responder.BaseURL)
	cfg.Responder.APIKey = getEnv("LLM_API_KEY", cfg.Responder.APIKey)
	cfg.Responder.Model = getEnv("LLM_MODEL", cfg.Responder.Model)
	cfg.Responder.SystemPrompt = getEnv("LLM_SYSTEM_PROMPT", cfg.Responder.SystemPrompt)
	cfg.Responder.HistoryWindow = getEnvAsInt("LLM_HISTORY_WINDOW", cfg.Responder.HistoryWindow)
	cfg.Responder.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.Responder.TimeoutSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.MessageQueue = getEnv("RABBITMQ_MESSAGE_QUEUE", cfg.RabbitMQ.MessageQueue)
	cfg.RabbitMQ.ReplyQueue = getEnv("RABBITMQ_REPLY_QUEUE", cfg.RabbitMQ.ReplyQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
