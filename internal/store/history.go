package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/duckshell/internal/hooks"
)

// HistoryEntry is one submitted shell line.
type HistoryEntry struct {
	ID        int64
	Line      string
	CreatedAt time.Time
}

// PluginEvent is one recorded plugin lifecycle event.
type PluginEvent struct {
	ID        string
	Event     string
	Plugin    string
	Path      string
	Origin    string
	CreatedAt time.Time
}

// AddHistory appends a submitted line.
func (db *DB) AddHistory(ctx context.Context, line string) error {
	_, err := db.sql.ExecContext(ctx,
		"INSERT INTO history (line, created_at) VALUES (?, ?)",
		line, now())
	if err != nil {
		return fmt.Errorf("adding history: %w", err)
	}
	return nil
}

// RecentHistory returns up to limit most recent lines, oldest first.
func (db *DB) RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := db.sql.QueryContext(ctx, `
		SELECT id, line, created_at FROM (
			SELECT id, line, created_at FROM history ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.Line, &ts); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.CreatedAt = parseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordEvent stores a plugin lifecycle event. ID and CreatedAt are filled
// in when empty.
func (db *DB) RecordEvent(ctx context.Context, e PluginEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := db.sql.ExecContext(ctx, `
		INSERT INTO plugin_events (id, seq, event, plugin, path, origin, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM plugin_events), ?, ?, ?, ?, ?)`,
		e.ID, e.Event, e.Plugin, e.Path, e.Origin, e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording plugin event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit most recent plugin events, oldest first.
func (db *DB) RecentEvents(ctx context.Context, limit int) ([]PluginEvent, error) {
	rows, err := db.sql.QueryContext(ctx, `
		SELECT id, event, plugin, path, origin, created_at FROM (
			SELECT * FROM plugin_events ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying plugin events: %w", err)
	}
	defer rows.Close()

	var out []PluginEvent
	for rows.Next() {
		var e PluginEvent
		var ts string
		if err := rows.Scan(&e.ID, &e.Event, &e.Plugin, &e.Path, &e.Origin, &ts); err != nil {
			return nil, fmt.Errorf("scanning plugin event: %w", err)
		}
		e.CreatedAt = parseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

var pluginEvents = []string{hooks.EventPluginInstalled, hooks.EventPluginRemoved, hooks.EventPluginUpdated}

const hookName = "store"

// Subscribe records every plugin lifecycle event emitted on m.
func (db *DB) Subscribe(m *hooks.Manager) {
	for _, event := range pluginEvents {
		m.On(event, hookName, func(ctx context.Context, p hooks.Payload) error {
			return db.RecordEvent(ctx, PluginEvent{
				Event:  p.Event,
				Plugin: field(p.Data, "plugin"),
				Path:   field(p.Data, "path"),
				Origin: field(p.Data, "origin"),
			})
		})
	}
}

// Unsubscribe detaches the handlers added by Subscribe. Call it before Close
// when m outlives the database.
func (db *DB) Unsubscribe(m *hooks.Manager) {
	for _, event := range pluginEvents {
		m.Off(event, hookName)
	}
}

func field(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
