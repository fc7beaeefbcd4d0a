package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Cache      Cache
	Providers  Providers
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
}

type Cache struct {
	Enabled bool          `env:"CACHE_ENABLED" env-default:"true"`
	TTL     time.Duration `env:"CACHE_TTL" env-default:"1h"`
}

type Providers struct {
	Primary         string        `env:"API_PRIMARY" env-default:"frankfurter"`
	Secondary       string        `env:"API_SECONDARY" env-default:"exchangerate"`
	ExchangeRateKey string        `env:"API_EXCHANGERATE_KEY"`
	Timeout         time.Duration `env:"API_TIMEOUT" env-default:"10s"`
	FrankfurterURL  string        `env:"API_FRANKFURTER_URL" env-default:"https://api.frankfurter.app"`
	ExchangeRateURL string        `env:"API_EXCHANGERATE_URL" env-default:"https://v6.exchangerate-api.com"`
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-default:"localhost"`
	Port     int           `env:"BD_PORT" env-default:"5432"`
	User     string        `env:"BD_USER" env-default:"postgres"`
	Password string        `env:"BD_PASSWORD" env-default:"postgres"`
	DBName   string        `env:"BD_DBNAME" env-default:"conversor"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"public"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	Host     string `env:"REDIS_HOST" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

func NewConfig() *Config {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		log.Fatal("Error reading env")
	}

	return cfg
}
