package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"tv-notifier/internal/model"
)

// EventReader is the read side of the event store.
type EventReader interface {
	QueryByDate(ctx context.Context, date time.Time) ([]model.Event, error)
	QueryByDateRange(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

// Episode is one airing of a show.
type Episode struct {
	UID     string
	Season  string
	Episode string
}

// Show groups the episodes of one title on one day.
type Show struct {
	Title    string
	Episodes []Episode
}

// Seasons lists the distinct seasons in first-seen order.
func (s Show) Seasons() []string {
	var out []string
	seen := make(map[string]bool)
	for _, ep := range s.Episodes {
		if !seen[ep.Season] {
			seen[ep.Season] = true
			out = append(out, ep.Season)
		}
	}
	return out
}

// Day holds the shows airing on Date, in first-encounter order.
type Day struct {
	Date  time.Time
	Shows []Show
}

// Week is the grouped view from From through To.
type Week struct {
	From time.Time
	To   time.Time
	Days []Day
}

// Empty reports that nothing is scheduled in the range.
func (w Week) Empty() bool {
	return len(w.Days) == 0
}

// Engine answers schedule questions from the event store.
type Engine struct {
	events EventReader
	now    func() time.Time
}

func NewEngine(events EventReader) *Engine {
	return &Engine{events: events, now: time.Now}
}

// WithClock replaces the clock used to determine today.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Today is the current calendar date.
func (e *Engine) Today() time.Time {
	return model.DateOf(e.now())
}

// Tomorrow returns the events airing tomorrow.
func (e *Engine) Tomorrow(ctx context.Context) ([]model.Event, error) {
	return e.events.QueryByDate(ctx, model.AddDays(e.Today(), 1))
}

// WeekRange returns today and the first Sunday on or after today.
func WeekRange(today time.Time) (from, to time.Time) {
	from = model.DateOf(today)
	untilSunday := (7 - int(from.Weekday())) % 7
	return from, from.AddDate(0, 0, untilSunday)
}

// ThisWeek groups the events from today through Sunday by date, then by
// show title.
func (e *Engine) ThisWeek(ctx context.Context) (Week, error) {
	from, to := WeekRange(e.Today())
	week := Week{From: from, To: to}

	events, err := e.events.QueryByDateRange(ctx, from, to)
	if err != nil {
		return week, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.Before(events[j].StartDate)
		}
		return events[i].UID < events[j].UID
	})

	week.Days = group(events, from)
	return week, nil
}

func group(events []model.Event, today time.Time) []Day {
	var days []Day
	for _, ev := range events {
		date := model.DateOf(ev.StartDate)
		if date.Before(today) {
			continue
		}

		title, season, episode, ok := ParseSummary(ev.Summary)
		if !ok {
			log.Warn().
				Str("uid", ev.UID).
				Str("summary", ev.Summary).
				Msg("Skipping event with unexpected summary format")
			continue
		}

		if len(days) == 0 || !days[len(days)-1].Date.Equal(date) {
			days = append(days, Day{Date: date})
		}
		d := &days[len(days)-1]

		idx := -1
		for i := range d.Shows {
			if d.Shows[i].Title == title {
				idx = i
				break
			}
		}
		if idx < 0 {
			d.Shows = append(d.Shows, Show{Title: title})
			idx = len(d.Shows) - 1
		}
		d.Shows[idx].Episodes = append(d.Shows[idx].Episodes, Episode{
			UID:     ev.UID,
			Season:  season,
			Episode: episode,
		})
	}
	return days
}
