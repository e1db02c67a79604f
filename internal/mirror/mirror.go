// Package mirror copies the events of one Google calendar into a CalDAV
// calendar. The mirror is one-way: changes made on the CalDAV side are
// overwritten on the next run.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gdata/internal/export"
	"gdata/internal/google"
	"gdata/internal/models"
)

const (
	// DefaultStateFile is where the mirror keeps its state between runs.
	DefaultStateFile = "mirror-state.json"
	// DefaultWindow is how far ahead events are mirrored.
	DefaultWindow = 7 * 24 * time.Hour

	statusCancelled = "cancelled"
)

// Entry records one mirrored event.
type Entry struct {
	UID  string `json:"uid"`
	ETag string `json:"etag"`
}

// State keeps track of which events have been mirrored.
// The key is the Google event ID.
type State map[string]Entry

// Source lists the events of a Google calendar.
type Source interface {
	Events(ctx context.Context, cal *models.Calendar, opts *google.EventListOptions) ([]*models.Event, error)
}

// Target stores events on the CalDAV side.
type Target interface {
	PutEvent(ctx context.Context, ev *models.Event, uid string) error
	DeleteEvent(ctx context.Context, uid string) error
}

// Options tune a Mirror. Zero values get defaults.
type Options struct {
	StateFile string
	DryRun    bool
	Window    time.Duration
	Now       func() time.Time
}

// Result counts what a run did.
type Result struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Failed    int
}

// Mirror orchestrates the copy from Google Calendar to CalDAV.
type Mirror struct {
	logger    *slog.Logger
	source    Source
	target    Target
	calendar  *models.Calendar
	stateFile string
	state     State
	dryRun    bool
	window    time.Duration
	now       func() time.Time
}

// New creates a Mirror for cal, loading the state file if there is one.
func New(logger *slog.Logger, source Source, target Target, cal *models.Calendar, opts Options) (*Mirror, error) {
	if cal == nil || cal.IsNew() {
		return nil, google.ErrNoCalendar
	}
	if opts.StateFile == "" {
		opts.StateFile = DefaultStateFile
	}
	if opts.Window == 0 {
		opts.Window = DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	state, err := loadState(opts.StateFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load mirror state: %w", err)
		}
		logger.Info("No mirror state file found, starting fresh.", "file", opts.StateFile)
		state = make(State)
	}

	return &Mirror{
		logger:    logger,
		source:    source,
		target:    target,
		calendar:  cal,
		stateFile: opts.StateFile,
		state:     state,
		dryRun:    opts.DryRun,
		window:    opts.Window,
		now:       opts.Now,
	}, nil
}

// Run performs one mirror cycle. A failure on a single event is logged and
// counted; only failing to list events or to save the state aborts the run.
func (m *Mirror) Run(ctx context.Context) (*Result, error) {
	m.logger.Info("Starting mirror cycle.", "calendarID", m.calendar.ID)

	now := m.now()
	events, err := m.source.Events(ctx, m.calendar, &google.EventListOptions{
		TimeMin:      now,
		TimeMax:      now.Add(m.window),
		SingleEvents: true,
		OrderBy:      "startTime",
		ShowDeleted:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google events: %w", err)
	}
	m.logger.Info("Fetched Google events.", "count", len(events))

	res := &Result{}
	for _, ev := range events {
		if err := m.mirrorEvent(ctx, ev, res); err != nil {
			res.Failed++
			m.logger.Error("Failed to mirror event", "summary", ev.Summary, "id", ev.ID, "error", err)
		}
	}

	if !m.dryRun {
		if err := m.saveState(); err != nil {
			return res, err
		}
	}

	m.logger.Info("Mirror cycle finished.", "created", res.Created, "updated", res.Updated,
		"deleted", res.Deleted, "unchanged", res.Unchanged, "failed", res.Failed)
	return res, nil
}

// Watch runs a cycle now and then every interval until ctx is done. Failed
// cycles are logged and the next tick tries again.
func (m *Mirror) Watch(ctx context.Context, interval time.Duration) error {
	m.logger.Info("Starting watcher.", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.Run(ctx); err != nil {
			m.logger.Error("Mirror cycle failed", "error", err)
		}
		if ctx.Err() != nil {
			m.logger.Info("Watcher stopped.")
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			m.logger.Info("Watcher stopped.")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// State returns the current mirror state.
func (m *Mirror) State() State {
	return m.state
}

func (m *Mirror) mirrorEvent(ctx context.Context, ev *models.Event, res *Result) error {
	entry, seen := m.state[ev.ID]

	if ev.Status == statusCancelled {
		if !seen {
			return nil
		}
		if m.dryRun {
			m.logger.Info("[DRY RUN] Would delete event", "summary", ev.Summary, "uid", entry.UID)
			res.Deleted++
			return nil
		}
		if err := m.target.DeleteEvent(ctx, entry.UID); err != nil {
			return err
		}
		delete(m.state, ev.ID)
		res.Deleted++
		return nil
	}

	if seen && entry.ETag == ev.ETag {
		m.logger.Debug("Event unchanged, skipping.", "summary", ev.Summary, "id", ev.ID)
		res.Unchanged++
		return nil
	}

	uid := entry.UID
	if uid == "" {
		uid = export.EventUID(ev)
	}

	if m.dryRun {
		m.logger.Info("[DRY RUN] Would write event", "summary", ev.Summary, "start", ev.Start.Time, "uid", uid)
	} else {
		if err := m.target.PutEvent(ctx, ev, uid); err != nil {
			return err
		}
		m.state[ev.ID] = Entry{UID: uid, ETag: ev.ETag}
	}

	if seen {
		res.Updated++
	} else {
		res.Created++
	}
	return nil
}

// loadState loads the mirror state from the JSON file.
func loadState(file string) (State, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state == nil {
		state = make(State)
	}
	return state, nil
}

// saveState saves the current mirror state to the JSON file.
func (m *Mirror) saveState() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mirror state: %w", err)
	}
	if err := os.WriteFile(m.stateFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to save mirror state: %w", err)
	}
	return nil
}
