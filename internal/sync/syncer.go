package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tv-notifier/internal/feed"
	"tv-notifier/internal/model"
)

// Fetcher supplies the raw calendar document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// EventWriter is the store side of a sync.
type EventWriter interface {
	InsertIfAbsent(ctx context.Context, ev model.Event) (bool, error)
}

// Result summarizes one synchronization run.
type Result struct {
	RunID      string
	Parsed     int
	Inserted   int
	Duplicates int
	Failed     int
}

// Syncer runs fetch -> cache -> parse -> store. Runs are idempotent: events
// already known by UID are left untouched.
type Syncer struct {
	fetcher   Fetcher
	store     EventWriter
	cachePath string
	state     *State
	now       func() time.Time
}

// NewSyncer builds a Syncer. cachePath and state are optional.
func NewSyncer(fetcher Fetcher, store EventWriter, cachePath string, state *State) *Syncer {
	return &Syncer{
		fetcher:   fetcher,
		store:     store,
		cachePath: cachePath,
		state:     state,
		now:       time.Now,
	}
}

// Sync performs one run. Fetch and parse failures abort the run before
// anything is written; a failed insert only skips that event.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", res.RunID).Logger()

	logger.Info().Msg("Starting feed sync")

	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("sync %s: %w", res.RunID, err)
	}

	if s.cachePath != "" {
		if err := writeCache(s.cachePath, body); err != nil {
			logger.Warn().Err(err).Str("path", s.cachePath).Msg("Failed to write feed cache")
		}
	}

	events, err := feed.Parse(body)
	if err != nil {
		return res, fmt.Errorf("sync %s: %w", res.RunID, err)
	}
	res.Parsed = len(events)

	for _, ev := range events {
		inserted, err := s.store.InsertIfAbsent(ctx, ev)
		if err != nil {
			logger.Warn().Err(err).Str("uid", ev.UID).Msg("Failed to store event")
			res.Failed++
			continue
		}
		if inserted {
			res.Inserted++
		} else {
			res.Duplicates++
		}
	}

	logger.Info().
		Int("parsed", res.Parsed).
		Int("inserted", res.Inserted).
		Int("duplicates", res.Duplicates).
		Int("failed", res.Failed).
		Msg("Feed sync complete")

	if s.state != nil {
		s.state.Record(LastRun{
			RunID:    res.RunID,
			At:       s.now(),
			Parsed:   res.Parsed,
			Inserted: res.Inserted,
			Failed:   res.Failed,
		})
		if err := s.state.Save(); err != nil {
			logger.Warn().Err(err).Msg("Failed to save sync state")
		}
	}

	return res, nil
}

// writeCache replaces the cache artifact via temp file + rename so a reader
// never sees a half-written document.
func writeCache(path string, body []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".feed-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
