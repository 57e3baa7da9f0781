package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"tv-notifier/internal/schedule"
)

// Notifier sends the daily "airs tomorrow" reminders to one chat.
type Notifier struct {
	engine *schedule.Engine
	sender Sender
	chatID int64
}

func NewNotifier(engine *schedule.Engine, sender Sender, chatID int64) *Notifier {
	return &Notifier{
		engine: engine,
		sender: sender,
		chatID: chatID,
	}
}

// NotifyResult counts the reminders of one check.
type NotifyResult struct {
	Sent   int
	Failed int
}

// CheckTomorrow sends one reminder per event airing tomorrow. A failed send
// is logged and the remaining reminders still go out.
func (n *Notifier) CheckTomorrow(ctx context.Context) (NotifyResult, error) {
	var res NotifyResult

	events, err := n.engine.Tomorrow(ctx)
	if err != nil {
		return res, err
	}

	if len(events) == 0 {
		log.Info().Msg("No shows airing tomorrow")
		return res, nil
	}

	log.Info().Int("count", len(events)).Msg("Sending reminders")

	for _, ev := range events {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if err := n.sender.Send(ctx, n.chatID, schedule.RenderReminder(ev.Summary)); err != nil {
			log.Warn().
				Err(err).
				Str("uid", ev.UID).
				Msg("Failed to send reminder")
			res.Failed++
			continue
		}
		log.Debug().Str("uid", ev.UID).Msg("Reminder sent")
		res.Sent++
	}

	log.Info().
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg("Reminder check complete")

	return res, nil
}
