package feed

import (
	"bytes"
	"errors"
	"fmt"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog/log"

	"tv-notifier/internal/model"
)

var (
	// ErrFormat reports a document that is not a calendar at all.
	ErrFormat = errors.New("feed is not a valid calendar")
	// ErrRecordSkipped marks a single VEVENT that lacked a required field.
	ErrRecordSkipped = errors.New("calendar entry skipped")
)

// Parse extracts the events of a raw iCalendar document in document order.
// Entries missing a UID, DTSTART or SUMMARY are logged and left out.
func Parse(body []byte) ([]model.Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrFormat)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	vevents := cal.Events()
	events := make([]model.Event, 0, len(vevents))
	skipped := 0

	for i, ve := range vevents {
		ev, err := parseVEvent(ve)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping calendar entry")
			skipped++
			continue
		}
		events = append(events, ev)
	}

	log.Debug().
		Int("events", len(events)).
		Int("skipped", skipped).
		Msg("Feed parsed")

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, fmt.Errorf("%w: missing UID", ErrRecordSkipped)
	}
	out.UID = uid.Value

	summary := ve.GetProperty(ical.ComponentPropertySummary)
	if summary == nil {
		return out, fmt.Errorf("%w: %s: missing SUMMARY", ErrRecordSkipped, out.UID)
	}
	out.Summary = summary.Value

	if ve.GetProperty(ical.ComponentPropertyDtStart) == nil {
		return out, fmt.Errorf("%w: %s: missing DTSTART", ErrRecordSkipped, out.UID)
	}
	// The library resolves TZID; the date is taken in the event's own zone.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("%w: %s: bad DTSTART: %v", ErrRecordSkipped, out.UID, err)
	}
	out.StartDate = model.DateOf(start)

	return out, nil
}
