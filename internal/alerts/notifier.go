package alerts

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/config"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/httputil"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// Notifier implements contracts.AlertPort over Slack and Telegram.
// Channels are independent: one failing does not stop the other, and a
// notifier with no channels configured silently drops messages (local
// mode).
type Notifier struct {
	http *httputil.Client
	log  *logger.Logger

	slackWebhook string
	telegram     *bot.Bot
	chatID       string
}

func NewNotifier(http *httputil.Client, cfg config.AlertConfig, log *logger.Logger) (*Notifier, error) {
	n := &Notifier{
		http:         http,
		log:          log,
		slackWebhook: cfg.SlackWebhookURL,
		chatID:       cfg.TelegramChatID,
	}

	if cfg.TelegramToken != "" {
		if cfg.TelegramChatID == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID required when TELEGRAM_BOT_TOKEN is set")
		}
		if _, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", cfg.TelegramChatID, err)
		}
		tg, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("telegram bot init: %w", err)
		}
		n.telegram = tg
	}

	return n, nil
}

func (n *Notifier) Notify(ctx context.Context, rec *contracts.Recommendation) error {
	return n.deliver(ctx, FormatRecommendation(rec))
}

func (n *Notifier) NotifyRegimeChange(ctx context.Context, from, to contracts.Regime, alloc *contracts.HedgeAllocation) error {
	return n.deliver(ctx, FormatRegimeChange(from, to, alloc))
}

func (n *Notifier) deliver(ctx context.Context, message string) error {
	var firstErr error

	if n.slackWebhook != "" {
		if err := n.sendSlack(ctx, message); err != nil {
			n.log.WithError(err).Warn("slack delivery failed")
			firstErr = err
		}
	}

	if n.telegram != nil {
		if _, err := n.telegram.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: n.chatID,
			Text:   message,
		}); err != nil {
			n.log.WithError(err).Warn("telegram delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("alert delivery: %w: %v", contracts.ErrUnavailable, firstErr)
	}
	return nil
}

func (n *Notifier) sendSlack(ctx context.Context, message string) error {
	resp, err := n.http.PostJSON(ctx, n.slackWebhook, map[string]string{"text": message})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook status %d", resp.StatusCode)
	}
	return nil
}
