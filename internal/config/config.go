package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "config.yml"

var envs = []string{"local", "dev", "prod"}

func MustLoad() *Config {
	op := "config.MustLoad()"
	log := slog.With(
		slog.String("op", op),
	)

	configPath := resolveConfigPath(os.Args[1:])
	if configPath == "" {
		log.Warn("config path is empty. Loading default config path",
			slog.String("defaultConfigPath", defaultConfigPath))
		configPath = defaultConfigPath
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}
	return cfg
}

// LoadPath reads the YAML file at configPath, applies env overrides and
// checks the result.
func LoadPath(configPath string) (*Config, error) {
	op := "config.LoadPath"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	var errs []error
	if !contains(envs, cfg.Env) {
		errs = append(errs, fmt.Errorf("env %q is not one of %s", cfg.Env, strings.Join(envs, ", ")))
	}
	if cfg.BotConfig.Enabled && cfg.BotConfig.TgbotApiToken == "" {
		errs = append(errs, errors.New("bot is enabled but tgbot_apitoken is empty"))
	}
	if cfg.RedisConfig.SessionTTL <= 0 {
		errs = append(errs, errors.New("redis.sessionTTL must be positive"))
	}
	if f := cfg.DefinitionConfig.File; f != "" {
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("definition file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// IsAdmin reports whether the Telegram username is listed in bot.admins.
// Entries may carry a leading "@"; the match ignores case.
func (cfg *Config) IsAdmin(username string) bool {
	if username == "" {
		return false
	}
	for _, a := range cfg.BotConfig.Admins {
		if strings.EqualFold(strings.TrimPrefix(a, "@"), username) {
			return true
		}
	}
	return false
}

// resolveConfigPath takes the -config flag from args, else
// CONFIG_FILEPATH+CONFIG_FILENAME.
func resolveConfigPath(args []string) string {
	op := "config.resolveConfigPath()"
	log := slog.With(
		slog.String("op", op),
	)

	var res string
	fs := flag.NewFlagSet("readinessbot", flag.ContinueOnError)
	fs.StringVar(&res, "config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		log.Warn("cannot parse command line", slog.String("error", err.Error()))
	}

	if res != "" {
		log.Info("load config path from command line.",
			slog.String("path", res))
		return res
	}
	res = os.Getenv("CONFIG_FILEPATH") + os.Getenv("CONFIG_FILENAME")
	log.Info(
		"load config path from env",
		slog.String("CONFIG_FILEPATH", os.Getenv("CONFIG_FILEPATH")),
		slog.String("CONFIG_FILENAME", os.Getenv("CONFIG_FILENAME")),
	)
	return res
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
