package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/girlyearning/nyx/internal/discord"
	"github.com/girlyearning/nyx/internal/dotenv"
)

func main() {
	// Environment variables set by the deployment win over .env entries
	if err := dotenv.LoadDefault(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
		fmt.Println("Continuing with environment variables from system...")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	config, err := discord.LoadConfig()
	if err != nil {
		logger.Error("error loading configuration", "error", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	bot, err := discord.NewBot(config, logger)
	if err != nil {
		logger.Error("error creating bot", "error", err)
		os.Exit(1)
	}

	if err := bot.Start(); err != nil {
		logger.Error("error starting bot", "error", err)
		os.Exit(1)
	}

	discord.SetupCloseHandler(func() error {
		logger.Info("shutting down bot")
		return bot.Stop()
	})

	logger.Info("Nyx is awake", "prefix", config.CommandPrefix)
	select {}
}
