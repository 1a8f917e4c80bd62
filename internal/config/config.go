package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Logging       LoggingConfig
	Transcription TranscriptionConfig
	Formatting    FormattingConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	Type         string // sqlite, postgres, mysql, sqlserver
	Host         string
	Port         string
	User         string
	Password     string
	Name         string // file path for sqlite
	MaxOpenConns int
	LogLevel     string
}

type JWTConfig struct {
	Secret                 string
	Expiration             time.Duration
	RefreshTokenExpiration time.Duration
}

// RedisConfig enables refresh-token sessions when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TranscriptionConfig struct {
	WhisperURL string
	Model      string
	Language   string
	FFmpegPath string
	Timeout    time.Duration
}

type FormattingConfig struct {
	OllamaURL   string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	jwtExp, err := getEnvAsDuration("JWT_EXPIRATION", "1h")
	if err != nil {
		return nil, err
	}
	refreshExp, err := getEnvAsDuration("REFRESH_TOKEN_EXPIRATION", "720h")
	if err != nil {
		return nil, err
	}
	transcriptionTimeout, err := getEnvAsDuration("TRANSCRIPTION_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}
	formattingTimeout, err := getEnvAsDuration("FORMATTING_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}
	maxUpload, err := getEnvAsInt("MAX_UPLOAD_BYTES", 50<<20)
	if err != nil {
		return nil, err
	}
	maxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	temperature, err := strconv.ParseFloat(getEnv("OLLAMA_TEMPERATURE", "0.1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Host:           getEnv("HOST", "0.0.0.0"),
			Env:            getEnv("ENV", "development"),
			MaxUploadBytes: int64(maxUpload),
		},
		Database: DatabaseConfig{
			Type:         getEnv("DB_TYPE", "sqlite"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", ""),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "notes.db"),
			MaxOpenConns: maxOpenConns,
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			Secret:                 getEnv("JWT_SECRET", devJWTSecret),
			Expiration:             jwtExp,
			RefreshTokenExpiration: refreshExp,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Transcription: TranscriptionConfig{
			WhisperURL: getEnv("WHISPER_URL", "http://localhost:8000"),
			Model:      getEnv("WHISPER_MODEL", "base"),
			Language:   getEnv("WHISPER_LANGUAGE", "en"),
			FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
			Timeout:    transcriptionTimeout,
		},
		Formatting: FormattingConfig{
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:       getEnv("OLLAMA_MODEL", "llama3.2"),
			Temperature: temperature,
			Timeout:     formattingTimeout,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "postgresql", "mysql", "mariadb", "sqlserver", "mssql":
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", c.Database.Type)
	}
	if c.Server.Env == "production" && c.JWT.Secret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	if c.JWT.Expiration <= 0 || c.JWT.RefreshTokenExpiration <= 0 {
		return fmt.Errorf("token expirations must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
