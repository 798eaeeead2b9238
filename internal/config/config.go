package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken            string
	DBDriver            string
	DBUser              string
	DBPassword          string
	DBName              string
	DBHost              string
	DBPort              string
	DBFile              string
	TickIntervalMinutes int
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{
		BotToken:   os.Getenv("BOT_TOKEN"),
		DBDriver:   os.Getenv("DB_DRIVER"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBFile:     os.Getenv("DB_FILE"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("config.Load: BOT_TOKEN is required")
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("config.Load: DB_USER, DB_PASSWORD, DB_NAME are required for postgres")
		}

		if cfg.DBHost == "" {
			cfg.DBHost = "localhost"
		}

		if cfg.DBPort == "" {
			cfg.DBPort = "5432"
		}
	case "sqlite":
		if cfg.DBFile == "" {
			cfg.DBFile = "wisherbot.db"
		}
	default:
		return nil, fmt.Errorf("config.Load: unknown DB_DRIVER %q", cfg.DBDriver)
	}

	cfg.TickIntervalMinutes = 60
	if raw := os.Getenv("TICK_INTERVAL_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("config.Load: TICK_INTERVAL_MINUTES must be a positive integer, got %q", raw)
		}

		cfg.TickIntervalMinutes = minutes
	}

	return cfg, nil
}
