package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/forecast"
	foresight "github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/telemetry"
)

// NotificationService delivers trend alerts to users over Telegram. With no
// bot token configured the service stays constructible and every send
// reports the bot as uninitialized.
type NotificationService struct {
	users  *database.UserRepository
	bot    *bot.Bot
	tracer *telemetry.BusinessTracer
}

// NewNotificationService creates a notification service. An empty token
// leaves the Telegram bot disabled.
func NewNotificationService(users *database.UserRepository, telegramBotToken string) *NotificationService {
	var telegramBot *bot.Bot
	if telegramBotToken != "" {
		var err error
		telegramBot, err = bot.New(telegramBotToken)
		if err != nil {
			logrus.WithError(err).Error("Failed to initialize Telegram bot")
			telegramBot = nil
		}
	}

	return &NotificationService{
		users:  users,
		bot:    telegramBot,
		tracer: telemetry.NewBusinessTracer(),
	}
}

// Enabled reports whether the Telegram bot was initialized.
func (ns *NotificationService) Enabled() bool {
	return ns.bot != nil
}

// NotifyTrendAlert sends a formatted trend alert to every user with a linked
// Telegram chat. Individual delivery failures are logged and skipped.
func (ns *NotificationService) NotifyTrendAlert(ctx context.Context, alert foresight.TrendAlert) error {
	ctx, span := ns.tracer.TraceNotification(ctx, "trend_alert", "telegram")
	defer span.End()

	if ns.bot == nil {
		err := fmt.Errorf("telegram bot not initialized")
		ns.tracer.RecordNotificationResult(span, false, 0, err)
		return err
	}

	recipients, err := ns.users.GetTelegramRecipients(ctx)
	if err != nil {
		err = fmt.Errorf("failed to get telegram recipients: %w", err)
		ns.tracer.RecordNotificationResult(span, false, 0, err)
		return err
	}
	if len(recipients) == 0 {
		logrus.WithField("dataset_id", alert.DatasetID).Info("No Telegram recipients registered, skipping trend alert")
		ns.tracer.RecordNotificationResult(span, true, 0, nil)
		return nil
	}

	message := ns.formatTrendAlertMessage(alert)

	sent := 0
	for _, user := range recipients {
		if user.TelegramChatID == nil || *user.TelegramChatID == "" {
			continue
		}
		if err := ns.sendMessage(ctx, *user.TelegramChatID, message); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to send trend alert")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{
		"dataset_id": alert.DatasetID,
		"sent":       sent,
		"recipients": len(recipients),
	}).Info("Trend alert delivered")
	ns.tracer.RecordNotificationResult(span, true, sent, nil)
	return nil
}

// SendTestMessage sends a plain message to a single chat, used by the
// validation script and health tooling.
func (ns *NotificationService) SendTestMessage(ctx context.Context, chatID, message string) error {
	if ns.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	return ns.sendMessage(ctx, chatID, message)
}

func (ns *NotificationService) sendMessage(ctx context.Context, chatID, message string) error {
	parsedChatID, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %s: %w", chatID, err)
	}

	_, err = ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    parsedChatID,
		Text:      message,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// formatTrendAlertMessage renders the alert as Markdown for Telegram.
func (ns *NotificationService) formatTrendAlertMessage(alert foresight.TrendAlert) string {
	var sb strings.Builder

	arrow := "📊"
	switch alert.TrendDirection {
	case string(forecast.TrendIncreasing):
		arrow = "📈"
	case string(forecast.TrendDecreasing):
		arrow = "📉"
	case string(forecast.TrendSeasonal):
		arrow = "🔁"
	}

	sb.WriteString(fmt.Sprintf("%s *Trend Alert*\n\n", arrow))
	if alert.DatasetName != "" {
		sb.WriteString(fmt.Sprintf("*Dataset:* %s\n", alert.DatasetName))
	} else {
		sb.WriteString(fmt.Sprintf("*Dataset:* %s\n", alert.DatasetID))
	}
	sb.WriteString(fmt.Sprintf("*Direction:* %s\n", alert.TrendDirection))
	sb.WriteString(fmt.Sprintf("*Method:* %s\n", forecast.Method(alert.Method).DisplayName()))
	sb.WriteString(fmt.Sprintf("*Confidence:* %s\n\n", alert.Confidence))
	sb.WriteString(fmt.Sprintf("Last actual: %.2f\n", alert.LastActual))
	sb.WriteString(fmt.Sprintf("Next forecast: %.2f\n", alert.NextForecast))

	change := alert.NextForecast - alert.LastActual
	if alert.LastActual != 0 {
		sb.WriteString(fmt.Sprintf("Change: %+.2f (%+.1f%%)\n", change, change/alert.LastActual*100))
	}

	sb.WriteString("\n💡 Review the full forecast before acting on a single period.")

	return sb.String()
}
