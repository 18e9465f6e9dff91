package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"
)

type GPSSQL struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewGPSSQL(conn *sql.DB, d db.Dialect) *GPSSQL {
	return &GPSSQL{db: conn, dialect: d}
}

var _ GPSRepo = (*GPSSQL)(nil)

const (
	selectRouteSQL = `
		SELECT gps_lat_coordinate, gps_long_coordinate FROM iot_gps
		WHERE device_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	insertGPSSQL = `
		INSERT INTO iot_gps (device_id, timestamp, gps_lat_coordinate, gps_long_coordinate, gps_speed)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
)

// Route returns every position of a device, oldest first.
func (r *GPSSQL) Route(ctx context.Context, deviceID string) ([]models.RoutePoint, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(selectRouteSQL), deviceID)
	if err != nil {
		return nil, fmt.Errorf("query route of %q: %w", deviceID, err)
	}
	defer rows.Close()

	out := make([]models.RoutePoint, 0, 64)
	for rows.Next() {
		var p models.RoutePoint
		if err := rows.Scan(&p.Lat, &p.Lng); err != nil {
			return nil, fmt.Errorf("scan route point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert appends a GPS fix. A zero Timestamp is set to now (UTC).
func (r *GPSSQL) Insert(ctx context.Context, fix models.GPSFix) (int64, error) {
	ts := fix.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertGPSSQL),
		fix.DeviceID, ts.UTC(), fix.Latitude, fix.Longitude, fix.Speed,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert gps fix for %q: %w", fix.DeviceID, err)
	}
	return id, nil
}
