package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"

	GeneratorMock   = "mock"
	GeneratorRemote = "remote"
	GeneratorOpenAI = "openai"
	GeneratorOllama = "ollama"

	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config содержит конфигурацию приложения.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"debug"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`

	// Сессии браузера. Секрет БЕЗ envconfig тега
	SessionSecret      string
	SessionIdleTTL     time.Duration `envconfig:"SESSION_IDLE_TTL" default:"24h"`
	SessionSweepPeriod time.Duration `envconfig:"SESSION_SWEEP_PERIOD" default:"5m"`
	SecureCookies      bool          `envconfig:"SECURE_COOKIES" default:"false"`

	// Аутентификация: local (симуляция) или remote (auth service)
	AuthMode       string        `envconfig:"AUTH_MODE" default:"local"`
	AuthServiceURL string        `envconfig:"AUTH_SERVICE_URL"`
	AuthLatency    time.Duration `envconfig:"AUTH_LATENCY" default:"1s"`
	AuthTokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`

	// Коллекция уроков: local (только в сессии) или remote (lesson service)
	LessonsMode        string        `envconfig:"LESSONS_MODE" default:"local"`
	LessonServiceURL   string        `envconfig:"LESSON_SERVICE_URL"`
	LessonFetchTimeout time.Duration `envconfig:"LESSON_FETCH_TIMEOUT" default:"10s"`
	RemoteTimeout      time.Duration `envconfig:"REMOTE_TIMEOUT" default:"60s"`

	// Генерация планов: mock | remote | openai | ollama
	GeneratorMode string        `envconfig:"GENERATOR_MODE" default:"mock"`
	MockLatency   time.Duration `envconfig:"MOCK_LATENCY" default:"2s"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL"`
	AIModel       string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AITemperature float32       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	OpenAIAPIKey  string

	// Хранилище: memory или redis
	StorageBackend string        `envconfig:"STORAGE_BACKEND" default:"memory"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	RedisTTL       time.Duration `envconfig:"REDIS_TTL" default:"720h"`
	RedisPassword  string

	// Лимит POST /login и /register на IP
	AuthRateLimit  uint          `envconfig:"AUTH_RATE_LIMIT" default:"10"`
	AuthRatePeriod time.Duration `envconfig:"AUTH_RATE_PERIOD" default:"1m"`

	// Настройки CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8080"`
}

// GetAllowedOrigins разбивает строку CORSAllowedOrigins на список.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",") {
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsProduction - включает secure-куки и json-логи.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	var err error
	if cfg.SessionSecret, err = SecretOrEnv("session_secret", "SESSION_SECRET"); err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		cfg.SessionSecret = "neuroteach-dev-secret"
		log.Println("Warning: session secret not set, using development default")
	}
	if cfg.GeneratorMode == GeneratorOpenAI {
		if cfg.OpenAIAPIKey, err = SecretOrEnv("openai_api_key", "OPENAI_API_KEY"); err != nil {
			return nil, err
		}
	}
	// Пароль Redis необязателен
	if pass, err := SecretOrEnv("redis_password", "REDIS_PASSWORD"); err == nil {
		cfg.RedisPassword = pass
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет режимы и обязательные адреса сервисов.
func (c *Config) Validate() error {
	if err := oneOf("AUTH_MODE", c.AuthMode, ModeLocal, ModeRemote); err != nil {
		return err
	}
	if err := oneOf("LESSONS_MODE", c.LessonsMode, ModeLocal, ModeRemote); err != nil {
		return err
	}
	if err := oneOf("GENERATOR_MODE", c.GeneratorMode, GeneratorMock, GeneratorRemote, GeneratorOpenAI, GeneratorOllama); err != nil {
		return err
	}
	if err := oneOf("STORAGE_BACKEND", c.StorageBackend, StorageMemory, StorageRedis); err != nil {
		return err
	}

	if c.AuthMode == ModeRemote {
		if err := requireURL("AUTH_SERVICE_URL", c.AuthServiceURL); err != nil {
			return err
		}
	}
	if c.LessonsMode == ModeRemote || c.GeneratorMode == GeneratorRemote {
		if err := requireURL("LESSON_SERVICE_URL", c.LessonServiceURL); err != nil {
			return err
		}
	}
	if c.GeneratorMode == GeneratorOllama {
		if err := requireURL("AI_BASE_URL", c.AIBaseURL); err != nil {
			return err
		}
	}
	if c.GeneratorMode == GeneratorOpenAI && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for generator mode %q", c.GeneratorMode)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.LessonFetchTimeout <= 0 {
		return fmt.Errorf("LESSON_FETCH_TIMEOUT must be positive, got %s", c.LessonFetchTimeout)
	}
	if c.AuthRateLimit == 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive")
	}
	return nil
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, expected one of %s", name, value, strings.Join(allowed, ", "))
}

func requireURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q", name, value)
	}
	return nil
}
