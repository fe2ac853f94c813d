package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"othello_webapp/internal/domain"
	"othello_webapp/internal/logger"
	"othello_webapp/internal/turn"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	// Engine
	EngineURL       string
	EngineTimeout   time.Duration
	EngineBeginPath string

	// Turn control
	HumanSide          domain.Side
	ThinkDelay         time.Duration
	ClearMessageOnMove bool
	MsgThinking        string
	MsgHumanPass       string
	MsgOpponentPass    string
	MsgEngineError     string

	// Sessions
	JWTSecret          string
	SessionIdleTimeout time.Duration

	// Optional backing services
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// API limits
	APIRateLimit  int
	APIRateWindow int
}

// Load reads the config from env (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	engineURL := strings.TrimRight(env("ENGINE_URL", "http://localhost:5000"), "/")
	if engineURL == "" {
		logger.Fatal("ENGINE_URL is not set")
	}

	side, err := domain.ParseSide(env("HUMAN_SIDE", "BLACK"))
	if err != nil {
		logger.Fatal("invalid HUMAN_SIDE", "error", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = randomSecret()
		logger.Warn("JWT_SECRET is not set, using a random secret; session tokens will not survive a restart")
	}

	beginPath := "/play_game"
	if v, ok := os.LookupEnv("ENGINE_BEGIN_PATH"); ok {
		beginPath = v
	}

	return &Config{
		AppPort:       env("APP_PORT", "8080"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:      env("LOG_LEVEL", "info"),
		LogJSON:       envBool("LOG_JSON", false),

		EngineURL:       engineURL,
		EngineTimeout:   envDuration("ENGINE_TIMEOUT", 8*time.Second),
		EngineBeginPath: beginPath,

		HumanSide:          side,
		ThinkDelay:         envDuration("THINK_DELAY", 1500*time.Millisecond),
		ClearMessageOnMove: envBool("CLEAR_MESSAGE_ON_MOVE", true),
		MsgThinking:        os.Getenv("MSG_THINKING"),
		MsgHumanPass:       os.Getenv("MSG_HUMAN_PASS"),
		MsgOpponentPass:    os.Getenv("MSG_OPPONENT_PASS"),
		MsgEngineError:     os.Getenv("MSG_ENGINE_ERROR"),

		JWTSecret:          jwtSecret,
		SessionIdleTimeout: envDuration("SESSION_IDLE_TIMEOUT", time.Hour),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		APIRateLimit:  envInt("API_RATE_LIMIT", 120),
		APIRateWindow: envInt("API_RATE_WINDOW_SECONDS", 60),
	}
}

// TurnMessages returns the default texts with any configured overrides.
func (c *Config) TurnMessages() turn.Messages {
	m := turn.DefaultMessages()
	if c.MsgThinking != "" {
		m.Thinking = c.MsgThinking
	}
	if c.MsgHumanPass != "" {
		m.HumanPass = c.MsgHumanPass
	}
	if c.MsgOpponentPass != "" {
		m.OpponentPass = c.MsgOpponentPass
	}
	if c.MsgEngineError != "" {
		m.EngineError = c.MsgEngineError
	}
	return m
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("ignoring invalid integer env", "key", key, "value", v)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("ignoring invalid boolean env", "key", key, "value", v)
		return def
	}
	return b
}

// envDuration accepts Go durations ("1500ms") or a bare number of milliseconds.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	logger.Warn("ignoring invalid duration env", "key", key, "value", v)
	return def
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Fatal("failed to generate JWT secret", "error", err)
	}
	return hex.EncodeToString(b)
}
