package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/datalyr/foresight-go/internal/config"
	"github.com/datalyr/foresight-go/internal/services"
)

func main() {
	fmt.Println("🔧 Validating Telegram bot configuration...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := checkConfig(cfg); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.Telegram.BotToken))

	// Check webhook URL
	if cfg.Telegram.WebhookURL == "" {
		fmt.Println("⚠️  TELEGRAM_WEBHOOK_URL is not configured")
	} else {
		fmt.Printf("✅ TELEGRAM_WEBHOOK_URL is configured: %s\n", cfg.Telegram.WebhookURL)
	}

	// Try to create bot instance
	b, err := bot.New(cfg.Telegram.BotToken)
	if err != nil {
		fmt.Printf("❌ Failed to create Telegram bot: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Telegram bot created successfully")

	// Try to get bot info (this makes an actual API call)
	fmt.Println("🔍 Testing bot API connection...")
	ctx := context.Background()
	botInfo, err := b.GetMe(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get bot info: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Bot API connection successful!\n")
	fmt.Printf("   Bot Name: %s\n", botInfo.FirstName)
	fmt.Printf("   Bot Username: @%s\n", botInfo.Username)
	fmt.Printf("   Bot ID: %d\n", botInfo.ID)

	// Deliver a test message through the notification service when a
	// target chat is provided
	if chatID := os.Getenv("TELEGRAM_TEST_CHAT_ID"); chatID != "" {
		notifier := services.NewNotificationService(nil, cfg.Telegram.BotToken)
		if err := notifier.SendTestMessage(ctx, chatID, "Foresight test message: Telegram notifications are working."); err != nil {
			fmt.Printf("❌ Failed to send test message: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Test message delivered to chat %s\n", chatID)
	}

	fmt.Println("\n🎉 All Telegram bot configuration checks passed!")
}

// checkConfig validates the Telegram section of the configuration without
// touching the network.
func checkConfig(cfg *config.Config) error {
	if cfg.Telegram.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not configured")
	}
	return nil
}
