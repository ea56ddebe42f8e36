package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"smart_time/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort       string
	Version       string
	DatabaseURL   string
	JWTSecret     string
	JWTTTL        time.Duration
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	APIRateLimit    int
	APIRateWindow   time.Duration
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	TimerRateLimit  int
	TimerRateWindow time.Duration

	// Telegram reminder bot
	BotToken   string
	BotEnabled bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("app_version", "dev")
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("redis_db", 0)
	v.SetDefault("api_rate_limit", 120)
	v.SetDefault("api_rate_window_seconds", 60)
	v.SetDefault("auth_rate_limit", 5)
	v.SetDefault("auth_rate_window_seconds", 60)
	v.SetDefault("timer_rate_limit", 30)
	v.SetDefault("timer_rate_window_seconds", 60)
	v.SetDefault("bot_enabled", false)
}

// Parse reads .env, the environment and an optional yaml file (CONFIG_FILE)
func Parse() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return fromViper(v)
}

// Load is Parse for binaries: a broken config is fatal
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

func fromViper(v *viper.Viper) (*Config, error) {
	dbURL := strings.TrimSpace(v.GetString("database_url"))
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := v.GetString("jwt_secret")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	ttl := v.GetDuration("jwt_ttl")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	botToken := v.GetString("bot_token")
	botEnabled := v.GetBool("bot_enabled")
	if botEnabled && botToken == "" {
		return nil, errors.New("BOT_ENABLED is true but BOT_TOKEN is not set")
	}

	return &Config{
		AppPort:         v.GetString("app_port"),
		Version:         v.GetString("app_version"),
		DatabaseURL:     dbURL,
		JWTSecret:       jwtSecret,
		JWTTTL:          ttl,
		AllowedOrigin:   v.GetString("allowed_origin"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogJSON:         v.GetBool("log_json"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		APIRateLimit:    positive(v.GetInt("api_rate_limit"), 120),
		APIRateWindow:   seconds(v.GetInt("api_rate_window_seconds"), 60),
		AuthRateLimit:   positive(v.GetInt("auth_rate_limit"), 5),
		AuthRateWindow:  seconds(v.GetInt("auth_rate_window_seconds"), 60),
		TimerRateLimit:  positive(v.GetInt("timer_rate_limit"), 30),
		TimerRateWindow: seconds(v.GetInt("timer_rate_window_seconds"), 60),
		BotToken:        botToken,
		BotEnabled:      botEnabled,
	}, nil
}

func positive(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}

func seconds(n, fallback int) time.Duration {
	return time.Duration(positive(n, fallback)) * time.Second
}
