package msglog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"dbglog/internal/severity"
)

// Entry is one stored message.
type Entry struct {
	ID        int64             `json:"id"`
	SessionID string            `json:"session_id"`
	CreatedAt time.Time         `json:"created_at"`
	Category  string            `json:"category"`
	Severity  severity.Severity `json:"severity"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
}

// Filter narrows Query results. Zero values match everything.
type Filter struct {
	Limit       int
	MinSeverity severity.Severity
	Category    string
	SessionID   string
}

// Query returns the newest matching messages, oldest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.MinSeverity > severity.Verbose {
		where = append(where, "severity >= ?")
		args = append(args, int(f.MinSeverity))
	}
	if f.Category != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, f.Category)
	}
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	query := "SELECT id, session_id, created_at, category, severity, level, message FROM messages"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			sev     int
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &created, &e.Category, &sev, &e.Level, &e.Message); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		e.Severity = severity.Severity(sev)
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Clear deletes every stored message and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM messages")
	if err != nil {
		return 0, fmt.Errorf("clear messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// RenderWindow formats entries as a table with times relative to now.
func RenderWindow(entries []Entry, now time.Time) string {
	if len(entries) == 0 {
		return "Message log is empty."
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "Level", "Category", "Message"})
	for _, e := range entries {
		tw.AppendRow(table.Row{humanize.RelTime(e.CreatedAt, now, "ago", "from now"), e.Level, e.Category, e.Message})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: 100},
	})
	return tw.Render()
}
