package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	chatIDs  []int64
	commands []string
}

func (r *recordingHandler) HandleCommand(ctx context.Context, chatID int64, command string) error {
	r.chatIDs = append(r.chatIDs, chatID)
	r.commands = append(r.commands, command)
	return nil
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(text)},
			},
		},
	}
}

func TestDispatch_Commands(t *testing.T) {
	h := &recordingHandler{}

	assert.True(t, dispatch(context.Background(), h, commandUpdate(42, "/weekly")))
	assert.True(t, dispatch(context.Background(), h, commandUpdate(7, "/start")))

	assert.Equal(t, []int64{42, 7}, h.chatIDs)
	assert.Equal(t, []string{"weekly", "start"}, h.commands)
}

func TestDispatch_IgnoresNonCommands(t *testing.T) {
	h := &recordingHandler{}

	assert.False(t, dispatch(context.Background(), h, tgbotapi.Update{}))
	assert.False(t, dispatch(context.Background(), h, tgbotapi.Update{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hello"},
	}))
	assert.Empty(t, h.commands)
}
