package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"
)

type DeviceSQL struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewDeviceSQL(conn *sql.DB, d db.Dialect) *DeviceSQL {
	return &DeviceSQL{db: conn, dialect: d}
}

var _ DeviceRepo = (*DeviceSQL)(nil)

const (
	selectOwnedDeviceSQL = `SELECT 1 FROM bms_identification WHERE device_id = ? AND user_id = ?`

	upsertIdentificationSQL = `
		INSERT INTO bms_identification (device_id, device_type, battery_number, firmware_version, hardware_version, user_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (device_id) DO UPDATE SET
			device_type=excluded.device_type,
			battery_number=excluded.battery_number,
			firmware_version=excluded.firmware_version,
			hardware_version=excluded.hardware_version,
			user_id=excluded.user_id
	`
)

// OwnedBy reports whether an identification record links deviceID to userID.
func (r *DeviceSQL) OwnedBy(ctx context.Context, deviceID string, userID int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectOwnedDeviceSQL), deviceID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select owner of %q: %w", deviceID, err)
	}
	return true, nil
}

// UpsertIdentification inserts or replaces the identification record of a device.
func (r *DeviceSQL) UpsertIdentification(ctx context.Context, ident models.Identification) error {
	var owner sql.NullInt64
	if ident.UserID != nil {
		owner = sql.NullInt64{Int64: int64(*ident.UserID), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(upsertIdentificationSQL),
		ident.DeviceID,
		ident.DeviceType,
		ident.BatteryNumber,
		ident.FirmwareVersion,
		ident.HardwareVersion,
		owner,
	)
	if err != nil {
		return fmt.Errorf("upsert identification %q: %w", ident.DeviceID, err)
	}
	return nil
}
