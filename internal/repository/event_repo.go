package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"
)

// eventSource describes the table pair backing one event type.
type eventSource struct {
	table      string
	codeColumn string
	dictTable  string
	unknown    string
}

// eventSources is the closed mapping from event type to SQL identifiers.
// Only these constants are ever spliced into query text.
var eventSources = map[models.EventType]eventSource{
	models.EventAlarm: {table: "bms_alarm", codeColumn: "bms_alarm", dictTable: "bms_alarm_enum", unknown: "Unknown alarm code"},
	models.EventFault: {table: "bms_fault", codeColumn: "bms_fault", dictTable: "bms_fault_enum", unknown: "Unknown fault code"},
}

func lookupSource(typ models.EventType) (eventSource, error) {
	src, ok := eventSources[typ]
	if !ok {
		return eventSource{}, fmt.Errorf("unknown event type %q", typ)
	}
	return src, nil
}

const ownedDevicesSubquery = `SELECT device_id FROM bms_identification WHERE user_id = ?`

type EventSQL struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewEventSQL(conn *sql.DB, d db.Dialect) *EventSQL {
	return &EventSQL{db: conn, dialect: d}
}

var _ EventRepo = (*EventSQL)(nil)

// selectBranch renders the SELECT of one event table for the feed union.
func (s eventSource) selectBranch(typ models.EventType, f EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.DeviceID != "" {
		conds = append(conds, "e.device_id = ?")
		args = append(args, f.DeviceID)
	}
	if !f.Scope.All {
		conds = append(conds, "e.device_id IN ("+ownedDevicesSubquery+")")
		args = append(args, f.Scope.OwnerID)
	}

	q := fmt.Sprintf(`SELECT e.id AS id, e.device_id AS device_id, e.timestamp AS timestamp,
		'%s' AS event_type, e.%s AS code, e.read AS read,
		COALESCE(d.name, '%s') AS description
		FROM %s e LEFT JOIN %s d ON d.value = e.%s`,
		typ, s.codeColumn, s.unknown, s.table, s.dictTable, s.codeColumn)
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q, args
}

// feedQuery unions every event source and orders the result newest first.
func feedQuery(f EventFilter) (string, []any) {
	var (
		branches []string
		args     []any
	)
	for _, typ := range models.EventTypes {
		q, a := eventSources[typ].selectBranch(typ, f)
		branches = append(branches, q)
		args = append(args, a...)
	}
	q := strings.Join(branches, "\nUNION ALL\n") +
		"\nORDER BY timestamp DESC, event_type ASC, id DESC LIMIT ?"
	args = append(args, f.Limit)
	return q, args
}

// Feed returns alarms and faults merged into one list, newest first, capped at f.Limit.
func (r *EventSQL) Feed(ctx context.Context, f EventFilter) ([]models.LogEntry, error) {
	q, args := feedQuery(f)
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query event feed: %w", err)
	}
	defer rows.Close()

	out := make([]models.LogEntry, 0, f.Limit)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(
			&e.ID, &e.DeviceID, scanTime(&e.Timestamp),
			&e.EventType, &e.Code, &e.Read, &e.Description,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags one event as read and returns the number of rows changed.
// Zero rows (unknown id, or outside the scope) is not an error.
func (r *EventSQL) MarkRead(ctx context.Context, scope Scope, typ models.EventType, id int64) (int64, error) {
	src, err := lookupSource(typ)
	if err != nil {
		return 0, err
	}
	q := "UPDATE " + src.table + " SET read = TRUE WHERE id = ?"
	args := []any{id}
	if !scope.All {
		q += " AND device_id IN (" + ownedDevicesSubquery + ")"
		args = append(args, scope.OwnerID)
	}

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("mark %s %d read: %w", typ, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for %s %d: %w", typ, id, err)
	}
	return n, nil
}

// Insert appends an alarm or fault event. A zero at is set to now (UTC).
func (r *EventSQL) Insert(ctx context.Context, typ models.EventType, deviceID string, at time.Time, code int) (int64, error) {
	src, err := lookupSource(typ)
	if err != nil {
		return 0, err
	}
	if at.IsZero() {
		at = time.Now()
	}
	q := "INSERT INTO " + src.table + " (device_id, timestamp, " + src.codeColumn + ") VALUES (?, ?, ?) RETURNING id"

	var id int64
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), deviceID, at.UTC(), code).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s for %q: %w", typ, deviceID, err)
	}
	return id, nil
}

// UpsertCode registers a dictionary name for a code; an existing entry is kept.
func (r *EventSQL) UpsertCode(ctx context.Context, typ models.EventType, value int, name string) error {
	src, err := lookupSource(typ)
	if err != nil {
		return err
	}
	q := "INSERT INTO " + src.dictTable + " (value, name) VALUES (?, ?) ON CONFLICT (value) DO NOTHING"
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), value, name); err != nil {
		return fmt.Errorf("insert %s code %d: %w", typ, value, err)
	}
	return nil
}
