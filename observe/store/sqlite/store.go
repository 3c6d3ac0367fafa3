package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/secondlabor/laborhub/observe"
	auditstore "github.com/secondlabor/laborhub/observe/store"
)

//go:embed schema.sql
var schemaSQL string

const defaultLimit = 200

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable wal: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveEvent(ctx context.Context, event observe.Event) error {
	if s == nil || s.db == nil {
		return nil
	}
	event.Normalize()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode audit attributes: %w", err)
	}
	const q = `
INSERT INTO audit_events (
  event_id, task_id, worker_id, session_id, kind, status, name,
  message, error, duration_ms, attributes, timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err = s.db.ExecContext(
		ctx,
		q,
		event.ID,
		event.TaskID,
		event.WorkerID,
		event.SessionID,
		string(event.Kind),
		string(event.Status),
		event.Name,
		event.Message,
		event.Error,
		event.DurationMs,
		string(attrs),
		event.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

func (s *Store) ListEventsByTask(ctx context.Context, taskID string, query auditstore.ListQuery) ([]observe.Event, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("taskID is required")
	}
	return s.list(ctx, "task_id = ?", taskID, query)
}

func (s *Store) ListEventsByWorker(ctx context.Context, workerID string, query auditstore.ListQuery) ([]observe.Event, error) {
	if strings.TrimSpace(workerID) == "" {
		return nil, fmt.Errorf("workerID is required")
	}
	return s.list(ctx, "worker_id = ?", workerID, query)
}

func (s *Store) list(ctx context.Context, predicate string, value string, query auditstore.ListQuery) ([]observe.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	q := fmt.Sprintf(`
SELECT event_id, task_id, worker_id, session_id, kind, status, name,
       message, error, duration_ms, attributes, timestamp
FROM audit_events
WHERE %s
ORDER BY timestamp ASC
LIMIT ? OFFSET ?;
`, predicate)

	rows, err := s.db.QueryContext(ctx, q, value, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	out := make([]observe.Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}
	return out, nil
}

func scanEvent(scanner interface{ Scan(dest ...any) error }) (observe.Event, error) {
	var (
		e      observe.Event
		kind   string
		status string
		attrs  string
		tsRaw  string
	)
	if err := scanner.Scan(
		&e.ID,
		&e.TaskID,
		&e.WorkerID,
		&e.SessionID,
		&kind,
		&status,
		&e.Name,
		&e.Message,
		&e.Error,
		&e.DurationMs,
		&attrs,
		&tsRaw,
	); err != nil {
		return observe.Event{}, fmt.Errorf("failed to scan audit event: %w", err)
	}
	e.Kind = observe.Kind(kind)
	e.Status = observe.Status(status)
	if tsRaw != "" {
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err == nil {
			e.Timestamp = ts
		}
	}
	if attrs != "" {
		_ = json.Unmarshal([]byte(attrs), &e.Attributes)
	}
	e.Normalize()
	return e, nil
}

func (s *Store) AggregateMetrics(ctx context.Context, query auditstore.MetricsQuery) (auditstore.MetricsSummary, error) {
	if s == nil || s.db == nil {
		return auditstore.MetricsSummary{}, nil
	}
	args := []any{}
	where := ""
	if query.Since != nil {
		where = " AND timestamp >= ?"
		args = append(args, query.Since.UTC().Format(time.RFC3339Nano))
	}

	counter := func(name string, status observe.Status) (int64, error) {
		q := "SELECT COUNT(*) FROM audit_events WHERE name = ? AND status = ?" + where
		qArgs := append([]any{name, string(status)}, args...)
		var n int64
		if err := s.db.QueryRowContext(ctx, q, qArgs...).Scan(&n); err != nil {
			return 0, err
		}
		return n, nil
	}

	metrics := auditstore.MetricsSummary{}
	var err error
	if metrics.TasksPublished, err = counter("task.publish", observe.StatusCompleted); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics tasks published: %w", err)
	}
	if metrics.TasksJoined, err = counter("task.join", observe.StatusCompleted); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics tasks joined: %w", err)
	}
	if metrics.UpdatesPosted, err = counter("task.update", observe.StatusCompleted); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics updates posted: %w", err)
	}
	if metrics.TasksDelivered, err = counter("task.deliver", observe.StatusCompleted); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics tasks delivered: %w", err)
	}
	if metrics.DeliveryFailures, err = counter("task.deliver", observe.StatusFailed); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics delivery failures: %w", err)
	}
	if metrics.TokenExchanges, err = counter("oauth.exchange", observe.StatusCompleted); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics token exchanges: %w", err)
	}
	if metrics.TokenRefreshes, err = counter("oauth.refresh", observe.StatusCompleted); err != nil {
		return auditstore.MetricsSummary{}, fmt.Errorf("metrics token refreshes: %w", err)
	}
	return metrics, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ auditstore.Store = (*Store)(nil)
