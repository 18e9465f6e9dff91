package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"
)

type ReadingSQL struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewReadingSQL(conn *sql.DB, d db.Dialect) *ReadingSQL {
	return &ReadingSQL{db: conn, dialect: d}
}

var _ ReadingRepo = (*ReadingSQL)(nil)

const (
	readingColumns = `id, device_id, timestamp, pack_voltage, pack_current, soc, soh, cycle_count, cell_temps`

	insertReadingSQL = `
		INSERT INTO bms_values (device_id, timestamp, pack_voltage, pack_current, soc, soh, cycle_count, cell_temps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	selectReadingsSinceSQL = `SELECT ` + readingColumns + ` FROM bms_values
		WHERE device_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC, id ASC`

	selectReadingsAllSQL = `SELECT ` + readingColumns + ` FROM bms_values
		WHERE device_id = ?
		ORDER BY timestamp DESC, id DESC`

	// Newest reading per device (ties: highest id) left-joined with the newest GPS fix.
	// %s is replaced by the scope joins/conditions of the inner readings query.
	latestStatesSQL = `
		SELECT r.id, r.device_id, r.timestamp, r.pack_voltage, r.pack_current, r.soc, r.soh, r.cycle_count, r.cell_temps,
		       g.gps_lat_coordinate, g.gps_long_coordinate
		FROM (
			SELECT v.id, v.device_id, v.timestamp, v.pack_voltage, v.pack_current, v.soc, v.soh, v.cycle_count, v.cell_temps,
			       ROW_NUMBER() OVER (PARTITION BY v.device_id ORDER BY v.timestamp DESC, v.id DESC) AS rn
			FROM bms_values v%s
		) r
		LEFT JOIN (
			SELECT device_id, gps_lat_coordinate, gps_long_coordinate,
			       ROW_NUMBER() OVER (PARTITION BY device_id ORDER BY timestamp DESC, id DESC) AS rn
			FROM iot_gps
		) g ON g.device_id = r.device_id AND g.rn = 1
		WHERE r.rn = 1
		ORDER BY r.device_id`
)

// marshalCellTemps converts the slice to a JSON string; nil stays NULL.
func marshalCellTemps(temps []float64) (sql.NullString, error) {
	if temps == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(temps)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalCellTemps parses a JSON string into a slice.
func unmarshalCellTemps(s sql.NullString) ([]float64, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var temps []float64
	if err := json.Unmarshal([]byte(s.String), &temps); err != nil {
		return nil, fmt.Errorf("decode cell_temps: %w", err)
	}
	return temps, nil
}

// latestStatesQuery builds the latest-state query for a scope and optional device.
func latestStatesQuery(scope Scope, deviceID string) (string, []any) {
	var (
		join  string
		conds []string
		args  []any
	)
	if !scope.All {
		join = " JOIN bms_identification bi ON bi.device_id = v.device_id"
		conds = append(conds, "bi.user_id = ?")
		args = append(args, scope.OwnerID)
	}
	if deviceID != "" {
		conds = append(conds, "v.device_id = ?")
		args = append(args, deviceID)
	}

	filter := join
	if len(conds) > 0 {
		filter += " WHERE " + strings.Join(conds, " AND ")
	}
	return fmt.Sprintf(latestStatesSQL, filter), args
}

// Latest returns one row per visible device that has at least one reading.
func (r *ReadingSQL) Latest(ctx context.Context, scope Scope, deviceID string) ([]models.LatestState, error) {
	q, args := latestStatesQuery(scope, deviceID)
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query latest states: %w", err)
	}
	defer rows.Close()

	out := make([]models.LatestState, 0, 16)
	for rows.Next() {
		var (
			st       models.LatestState
			temps    sql.NullString
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(
			&st.ID, &st.DeviceID, scanTime(&st.Timestamp),
			&st.PackVoltage, &st.PackCurrent, &st.SOC, &st.SOH, &st.CycleCount,
			&temps, &lat, &lng,
		); err != nil {
			return nil, fmt.Errorf("scan latest state: %w", err)
		}
		if st.CellTemps, err = unmarshalCellTemps(temps); err != nil {
			return nil, err
		}
		if lat.Valid {
			st.Latitude = &lat.Float64
		}
		if lng.Valid {
			st.Longitude = &lng.Float64
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Since returns readings with timestamp >= since, oldest first.
func (r *ReadingSQL) Since(ctx context.Context, deviceID string, since time.Time) ([]models.Reading, error) {
	return r.list(ctx, selectReadingsSinceSQL, deviceID, since.UTC())
}

// All returns the full reading history of a device, newest first.
func (r *ReadingSQL) All(ctx context.Context, deviceID string) ([]models.Reading, error) {
	return r.list(ctx, selectReadingsAllSQL, deviceID)
}

func (r *ReadingSQL) list(ctx context.Context, q string, args ...any) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var (
			rd    models.Reading
			temps sql.NullString
		)
		if err := rows.Scan(
			&rd.ID, &rd.DeviceID, scanTime(&rd.Timestamp),
			&rd.PackVoltage, &rd.PackCurrent, &rd.SOC, &rd.SOH, &rd.CycleCount,
			&temps,
		); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if rd.CellTemps, err = unmarshalCellTemps(temps); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert appends a reading. A zero Timestamp is set to now (UTC).
func (r *ReadingSQL) Insert(ctx context.Context, rd models.Reading) (int64, error) {
	temps, err := marshalCellTemps(rd.CellTemps)
	if err != nil {
		return 0, err
	}
	ts := rd.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.dialect.Rebind(insertReadingSQL),
		rd.DeviceID,
		ts.UTC(),
		rd.PackVoltage,
		rd.PackCurrent,
		rd.SOC,
		rd.SOH,
		rd.CycleCount,
		temps,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert reading for %q: %w", rd.DeviceID, err)
	}
	return id, nil
}
