package db

import (
	"database/sql"
	"fmt"
)

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id {{pk}},
    name TEXT NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user'
);
`

const schemaIdentification = `
CREATE TABLE IF NOT EXISTS bms_identification (
    device_id TEXT PRIMARY KEY,
    device_type TEXT,
    battery_number TEXT,
    firmware_version TEXT,
    hardware_version TEXT,
    user_id INTEGER REFERENCES users(id)
);
`

// cell_temps holds a JSON array of per-cell temperatures.
const schemaValues = `
CREATE TABLE IF NOT EXISTS bms_values (
    id {{pk}},
    device_id TEXT NOT NULL,
    timestamp {{ts}} NOT NULL,
    pack_voltage REAL NOT NULL,
    pack_current REAL NOT NULL,
    soc REAL NOT NULL,
    soh REAL NOT NULL,
    cycle_count INTEGER NOT NULL,
    cell_temps TEXT
);
`

const schemaGPS = `
CREATE TABLE IF NOT EXISTS iot_gps (
    id {{pk}},
    device_id TEXT NOT NULL,
    timestamp {{ts}} NOT NULL,
    gps_lat_coordinate REAL NOT NULL,
    gps_long_coordinate REAL NOT NULL,
    gps_speed REAL NOT NULL DEFAULT 0
);
`

const schemaAlarm = `
CREATE TABLE IF NOT EXISTS bms_alarm (
    id {{pk}},
    device_id TEXT NOT NULL,
    timestamp {{ts}} NOT NULL,
    bms_alarm INTEGER NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE
);
`

const schemaFault = `
CREATE TABLE IF NOT EXISTS bms_fault (
    id {{pk}},
    device_id TEXT NOT NULL,
    timestamp {{ts}} NOT NULL,
    bms_fault INTEGER NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE
);
`

const schemaAlarmEnum = `
CREATE TABLE IF NOT EXISTS bms_alarm_enum (
    value INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);
`

const schemaFaultEnum = `
CREATE TABLE IF NOT EXISTS bms_fault_enum (
    value INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);
`

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_bms_values_device_ts ON bms_values (device_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_iot_gps_device_ts ON iot_gps (device_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_bms_alarm_device_ts ON bms_alarm (device_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_bms_fault_device_ts ON bms_fault (device_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_bms_identification_user ON bms_identification (user_id)`,
}

// EnsureSchema creates all tables and indexes that do not exist yet.
func EnsureSchema(db *sql.DB, d Dialect) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	stmts := []string{
		schemaUsers,
		schemaIdentification,
		schemaValues,
		schemaGPS,
		schemaAlarm,
		schemaFault,
		schemaAlarmEnum,
		schemaFaultEnum,
	}
	stmts = append(stmts, schemaIndexes...)

	for i, stmt := range stmts {
		if _, err := tx.Exec(d.expand(stmt)); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
