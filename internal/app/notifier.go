// internal/app/notifier.go
package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"

	"homework_status_bot/internal/domain/failure"
	"homework_status_bot/internal/domain/notification"
	domainTelegram "homework_status_bot/internal/domain/telegram"
)

// Notifier delivers one rendered message to the downstream chat.
type Notifier interface {
	// Notify sends text. key identifies the record the message belongs to.
	// Failures are returned as *failure.DeliveryError.
	Notify(ctx context.Context, key, text string) error
}

// TelegramNotifier implements Notifier on top of a Telegram client.
type TelegramNotifier struct {
	telegramClient domainTelegram.Client
	chatID         string
	limiter        *rate.Limiter
	journal        notification.Journal // nil disables the journal
	logger         logrus.FieldLogger
	now            func() time.Time
}

func NewTelegramNotifier(
	tc domainTelegram.Client,
	chatID string,
	ratePerSec float64,
	journal notification.Journal,
	logger logrus.FieldLogger,
) *TelegramNotifier {
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &TelegramNotifier{
		telegramClient: tc,
		chatID:         chatID,
		limiter:        rate.NewLimiter(rate.Limit(ratePerSec), burst),
		journal:        journal,
		logger:         logger,
		now:            time.Now,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, key, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return &failure.DeliveryError{Message: text, Err: err}
	}

	if err := n.telegramClient.SendMessage(ctx, n.chatID, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return &failure.DeliveryError{Message: text, Err: err}
	}

	if n.journal != nil {
		entry := &notification.Entry{Key: key, Message: text, ChatID: n.chatID, SentAt: n.now()}
		if err := n.journal.Append(ctx, entry); err != nil {
			n.logger.WithError(err).WithField("key", key).Warn("Failed to append notification journal entry")
		}
	}
	return nil
}
