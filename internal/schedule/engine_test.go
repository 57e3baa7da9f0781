package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tv-notifier/internal/model"
	"tv-notifier/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// clockAt returns a clock fixed at 09:30 local time on the given date.
func clockAt(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 9, 30, 0, 0, time.Local) }
}

func seededEngine(t *testing.T, now func() time.Time, events ...model.Event) *Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	for _, ev := range events {
		_, err := st.InsertIfAbsent(context.Background(), ev)
		require.NoError(t, err)
	}
	return NewEngine(st).WithClock(now)
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		to    time.Time
	}{
		{"sunday collapses to one day", day(2024, 5, 12), day(2024, 5, 12)},
		{"wednesday runs to sunday", day(2024, 5, 8), day(2024, 5, 12)},
		{"monday spans full week", day(2024, 5, 6), day(2024, 5, 12)},
		{"saturday", day(2024, 5, 11), day(2024, 5, 12)},
		{"crosses month end", day(2024, 5, 30), day(2024, 6, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := WeekRange(tt.today)
			assert.True(t, from.Equal(tt.today), "from = %s", from)
			assert.True(t, to.Equal(tt.to), "to = %s", to)
		})
	}
}

func TestEngine_Tomorrow(t *testing.T) {
	e := seededEngine(t, clockAt(2024, 5, 9),
		model.Event{UID: "1", Summary: "Show A: 2x05", StartDate: day(2024, 5, 10)},
		model.Event{UID: "2", Summary: "Malformed Entry", StartDate: day(2024, 5, 10)},
		model.Event{UID: "3", Summary: "Show B: 1x01", StartDate: day(2024, 5, 9)},
		model.Event{UID: "4", Summary: "Show C: 1x01", StartDate: day(2024, 5, 11)},
	)

	got, err := e.Tomorrow(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	summaries := []string{got[0].Summary, got[1].Summary}
	assert.ElementsMatch(t, []string{"Show A: 2x05", "Malformed Entry"}, summaries)
}

func TestEngine_ThisWeek_GroupsByDateAndTitle(t *testing.T) {
	e := seededEngine(t, clockAt(2024, 5, 9),
		model.Event{UID: "1", Summary: "Show A: 2x05", StartDate: day(2024, 5, 10)},
		model.Event{UID: "2", Summary: "Show A: 2x06", StartDate: day(2024, 5, 10)},
	)

	week, err := e.ThisWeek(context.Background())
	require.NoError(t, err)
	require.False(t, week.Empty())
	assert.True(t, week.From.Equal(day(2024, 5, 9)))
	assert.True(t, week.To.Equal(day(2024, 5, 12)))

	require.Len(t, week.Days, 1)
	d := week.Days[0]
	assert.True(t, d.Date.Equal(day(2024, 5, 10)))
	require.Len(t, d.Shows, 1)
	assert.Equal(t, "Show A", d.Shows[0].Title)
	assert.Equal(t, []Episode{
		{UID: "1", Season: "2", Episode: "05"},
		{UID: "2", Season: "2", Episode: "06"},
	}, d.Shows[0].Episodes, "episode tokens keep leading zeros for grouping")
}

func TestEngine_ThisWeek_SeasonPerShow(t *testing.T) {
	e := seededEngine(t, clockAt(2024, 5, 8),
		model.Event{UID: "a", Summary: "Alpha: 1x03", StartDate: day(2024, 5, 8)},
		model.Event{UID: "b", Summary: "Beta: 4x10", StartDate: day(2024, 5, 8)},
	)

	week, err := e.ThisWeek(context.Background())
	require.NoError(t, err)
	require.Len(t, week.Days, 1)
	require.Len(t, week.Days[0].Shows, 2)
	assert.Equal(t, []string{"1"}, week.Days[0].Shows[0].Seasons())
	assert.Equal(t, []string{"4"}, week.Days[0].Shows[1].Seasons())
}

func TestEngine_ThisWeek_ExcludesOutOfRangeAndMalformed(t *testing.T) {
	e := seededEngine(t, clockAt(2024, 5, 8),
		model.Event{UID: "past", Summary: "Old: 1x01", StartDate: day(2024, 5, 7)},
		model.Event{UID: "bad", Summary: "Malformed Entry", StartDate: day(2024, 5, 9)},
		model.Event{UID: "noep", Summary: "Special: Pilot", StartDate: day(2024, 5, 9)},
		model.Event{UID: "ok", Summary: "Good: 3x02", StartDate: day(2024, 5, 9)},
		model.Event{UID: "next", Summary: "Next Week: 1x01", StartDate: day(2024, 5, 13)},
	)

	week, err := e.ThisWeek(context.Background())
	require.NoError(t, err)
	require.Len(t, week.Days, 1)
	require.Len(t, week.Days[0].Shows, 1)
	assert.Equal(t, "Good", week.Days[0].Shows[0].Title)
}

func TestEngine_ThisWeek_Empty(t *testing.T) {
	e := seededEngine(t, clockAt(2024, 5, 8))

	week, err := e.ThisWeek(context.Background())
	require.NoError(t, err)
	assert.True(t, week.Empty())
	assert.Equal(t, NoShowsMessage, RenderWeek(week))
}

type failingReader struct{}

func (failingReader) QueryByDate(ctx context.Context, date time.Time) ([]model.Event, error) {
	return nil, store.ErrUnavailable
}

func (failingReader) QueryByDateRange(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	return nil, store.ErrUnavailable
}

func TestEngine_StorageErrors(t *testing.T) {
	e := NewEngine(failingReader{}).WithClock(clockAt(2024, 5, 8))

	_, err := e.Tomorrow(context.Background())
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	_, err = e.ThisWeek(context.Background())
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}
