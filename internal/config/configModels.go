package config

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Env              string           `yaml:"env" env:"ENV" env-default:"local"`
	HttpServer       HttpServerConfig `yaml:"httpServer"`
	DBConfig         DBConfig         `yaml:"db"`
	BotConfig        BotConfig        `yaml:"bot"`
	RedisConfig      RedisConfig      `yaml:"redis"`
	LLMConfig        LLMConfig        `yaml:"llm"`
	DefinitionConfig DefinitionConfig `yaml:"definition"`
}

type HttpServerConfig struct {
	Address string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0"`
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

func (c HttpServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Address, c.Port)
}

type DBConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"postgres"`
	User     string `yaml:"user" env:"DB_USER" env-default:"user"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	Schema   string `yaml:"schema" env:"DB_SCHEMA" env-default:"readiness"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// DSN builds a lib/pq connection string with the schema on the search path.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type BotConfig struct {
	Enabled       bool     `yaml:"enabled" env:"TGBOT_ENABLED"`
	Admins        []string `yaml:"admins" env-default:"admin"`
	TgbotApiToken string   `yaml:"tgbot_apitoken" env:"TGBOT_APITOKEN"`
}

type RedisConfig struct {
	// Empty address keeps sessions in memory.
	Address    string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"sessionTTL" env-default:"30m"`
}

type LLMConfig struct {
	// Empty key selects the offline narrative generator.
	APIKey  string        `yaml:"apiKey" env:"OPENROUTER_API_KEY"`
	Model   string        `yaml:"model" env:"OPENROUTER_MODEL" env-default:"openai/gpt-4o-mini"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

type DefinitionConfig struct {
	// File replaces the database definition source when set.
	File          string `yaml:"file" env:"DEFINITION_FILE"`
	StrictWeights bool   `yaml:"strictWeights" env:"DEFINITION_STRICT_WEIGHTS" env-default:"false"`
}
