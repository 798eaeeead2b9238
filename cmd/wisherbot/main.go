package main

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/wisherbot/internal/bot"
	"github.com/gratefultolord/wisherbot/internal/config"
	"github.com/gratefultolord/wisherbot/internal/db"
	"github.com/gratefultolord/wisherbot/internal/reminder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer database.Close()

	script := "db_scripts/init_sqlite.sql"
	if cfg.DBDriver == "postgres" {
		script = "db_scripts/init_postgres.sql"
	}

	if err := db.RunMigrations(database.Conn, script); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Error creating telegram bot: %v", err)
	}

	birthdayRepo := db.NewBirthdayRepository(database.Conn)
	sender := bot.NewTelegramSender(botAPI)

	botService := bot.New(botAPI, sender, birthdayRepo)

	scheduler := reminder.NewScheduler(
		birthdayRepo,
		sender,
		time.Duration(cfg.TickIntervalMinutes)*time.Minute,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.Run(ctx)

	log.Printf("Bot started as @%s", botAPI.Self.UserName)

	botService.Start()
}
