package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// CommandHandler receives bot commands without the leading slash.
type CommandHandler interface {
	HandleCommand(ctx context.Context, chatID int64, command string) error
}

// Client wraps the Telegram Bot API.
type Client struct {
	api *tgbotapi.BotAPI
}

func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	log.Info().Str("bot", api.Self.UserName).Msg("Connected to Telegram")
	return &Client{api: api}, nil
}

// Send posts a single text message to chatID.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Listen long-polls for updates and dispatches commands until ctx is done.
func (c *Client) Listen(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.api.GetUpdatesChan(u)

	log.Info().Msg("Listening for Telegram commands")

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			log.Info().Msg("Telegram listener stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			dispatch(ctx, handler, update)
		}
	}
}

// dispatch forwards command messages to handler and ignores everything else.
func dispatch(ctx context.Context, handler CommandHandler, update tgbotapi.Update) bool {
	if update.Message == nil || !update.Message.IsCommand() {
		return false
	}
	// Failures are already logged by the handler.
	_ = handler.HandleCommand(ctx, update.Message.Chat.ID, update.Message.Command())
	return true
}
