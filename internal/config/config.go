// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"blog-go-template/internal/platform/pg"
)

// Service names the process being configured.
type Service string

const (
	Posts    Service = "posts"
	Comments Service = "comments"
	Gateway  Service = "gateway"
)

var defaultAddr = map[Service]string{
	Gateway:  ":5000",
	Posts:    ":5001",
	Comments: ":5002",
}

// Config holds application configuration values.
type Config struct {
	Service Service `validate:"required,oneof=posts comments gateway"`
	Env     string  `validate:"required,oneof=dev prod"`
	HTTP    struct {
		Addr string `validate:"required"`
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
	DB struct {
		Driver string `validate:"required,oneof=sqlite postgres"`
		Path   string
		DSN    string
	}
	PostsServiceURL string `validate:"omitempty,url"`
	Gateway         struct {
		RoutesFile     string  `validate:"required"`
		RateRPS        float64 `validate:"gte=0"`
		RateBurst      int     `validate:"gte=0"`
		HealthSchedule string  `validate:"required"`
	}
}

var validate = validator.New()

// Load reads configuration for service from environment variables and an
// optional .env file.
func Load(service Service) (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Service = service
	c.Env = getenv("ENV", "prod")
	c.HTTP.Addr = getenv("HTTP_ADDR", defaultAddr[service])
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/"+string(service)+".log")
	c.DB.Driver = strings.ToLower(getenv("DB_DRIVER", "sqlite"))
	c.DB.Path = getenv("DB_PATH", ":memory:")
	c.DB.DSN = os.Getenv("DB_DSN")
	c.PostsServiceURL = strings.TrimRight(os.Getenv("POSTS_SERVICE_URL"), "/")
	c.Gateway.RoutesFile = getenv("GATEWAY_ROUTES_FILE", "configs/gateway.yaml")
	c.Gateway.HealthSchedule = getenv("GATEWAY_HEALTH_SCHEDULE", "@every 10s")

	var err error
	if c.Gateway.RateRPS, err = getfloat("GATEWAY_RATE_RPS", 10); err != nil {
		return Config{}, err
	}
	if c.Gateway.RateBurst, err = getint("GATEWAY_RATE_BURST", 20); err != nil {
		return Config{}, err
	}
	if c.DB.DSN == "" && os.Getenv("DB_HOST") != "" {
		port, err := getint("DB_PORT", 5432)
		if err != nil {
			return Config{}, err
		}
		c.DB.DSN = pg.BuildDSN(pg.DSNConfig{
			Host:            os.Getenv("DB_HOST"),
			Port:            port,
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			Database:        os.Getenv("DB_NAME"),
			SSLMode:         os.Getenv("DB_SSLMODE"),
			ApplicationName: string(service),
		})
	}

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	if service != Gateway && c.DB.Driver == "postgres" && c.DB.DSN == "" {
		return Config{}, errors.New("DB_DSN or DB_HOST required when DB_DRIVER is postgres")
	}
	if service == Comments && c.PostsServiceURL == "" {
		return Config{}, errors.New("POSTS_SERVICE_URL required for the comments service")
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getfloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}
