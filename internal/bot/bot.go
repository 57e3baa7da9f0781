package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tv-notifier/internal/model"
	"tv-notifier/internal/schedule"
	"tv-notifier/internal/sync"
)

// Sender delivers one text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

const (
	CommandStart  = "start"
	CommandWeekly = "weekly"
)

// Handler answers inbound chat commands.
type Handler struct {
	engine *schedule.Engine
	sender Sender
	state  *sync.State
	now    func() time.Time
}

// NewHandler builds a Handler. state may be nil.
func NewHandler(engine *schedule.Engine, sender Sender, state *sync.State) *Handler {
	return &Handler{
		engine: engine,
		sender: sender,
		state:  state,
		now:    time.Now,
	}
}

// HandleCommand replies to command (without the leading slash) in chatID.
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command string) error {
	command = strings.ToLower(strings.TrimPrefix(command, "/"))
	log.Info().Str("command", command).Int64("chat_id", chatID).Msg("Command received")

	var text string
	switch command {
	case CommandWeekly:
		text = h.Weekly(ctx)
	default:
		text = h.status()
	}

	if err := h.sender.Send(ctx, chatID, text); err != nil {
		log.Error().Err(err).Str("command", command).Int64("chat_id", chatID).Msg("Failed to send reply")
		return err
	}
	return nil
}

// Weekly renders this week's schedule, or a short apology when the store
// can't be read.
func (h *Handler) Weekly(ctx context.Context) string {
	week, err := h.engine.ThisWeek(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load weekly schedule")
		return schedule.WeeklyErrorMessage
	}

	log.Info().
		Str("from", model.FormatDate(week.From)).
		Str("to", model.FormatDate(week.To)).
		Int("days", len(week.Days)).
		Msg("Weekly schedule built")

	return schedule.RenderWeek(week)
}

func (h *Handler) status() string {
	var last time.Time
	if h.state != nil {
		if run := h.state.Last(); run != nil {
			last = run.At
		}
	}
	return schedule.RenderStatus(h.now(), last)
}
