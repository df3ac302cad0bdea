// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

// chatRecipient addresses a chat by numeric id or by @username; the Bot API
// accepts both in chat_id.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// NewBot builds a send-only bot. It is created offline so a flaky network at
// startup does not kill the daemon; a bad token surfaces on the first send.
// An empty apiURL selects the public Bot API.
func NewBot(token, apiURL string, timeout time.Duration) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(ctx context.Context, recipientChatID string, text string, options *telebot.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if options == nil {
		options = &telebot.SendOptions{}
	}

	_, err := tba.bot.Send(chatRecipient(recipientChatID), text, options)
	return err
}
