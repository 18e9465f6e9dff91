package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDeviceSQL_OwnedBy(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(sqlmock.Sqlmock)
		want    bool
		wantErr bool
	}{
		{
			name: "owned",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectOwnedDeviceSQL)).WithArgs("D1", 5).
					WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
			},
			want: true,
		},
		{
			name: "not owned",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectOwnedDeviceSQL)).WithArgs("D1", 5).
					WillReturnError(sql.ErrNoRows)
			},
			want: false,
		},
		{
			name: "db error",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectOwnedDeviceSQL)).WithArgs("D1", 5).
					WillReturnError(errors.New("down"))
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn, mock := newMock(t)
			repo := NewDeviceSQL(conn, db.SQLite)
			tc.expect(mock)

			got, err := repo.OwnedBy(ctx(t), "D1", 5)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v, wantErr=%v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeviceSQL_UpsertIdentification(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewDeviceSQL(conn, db.SQLite)

	owner := 2
	mock.ExpectExec(regexp.QuoteMeta(upsertIdentificationSQL)).
		WithArgs("BAT001", "BMS", "BAT001", "1.0.0", "1.0.0", sql.NullInt64{Int64: 2, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertIdentificationSQL)).
		WithArgs("BAT003", "BMS", "BAT003", "1.0.0", "1.0.0", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	base := models.Identification{DeviceType: "BMS", FirmwareVersion: "1.0.0", HardwareVersion: "1.0.0"}

	owned := base
	owned.DeviceID, owned.BatteryNumber, owned.UserID = "BAT001", "BAT001", &owner
	if err := repo.UpsertIdentification(ctx(t), owned); err != nil {
		t.Fatalf("upsert owned: %v", err)
	}

	free := base
	free.DeviceID, free.BatteryNumber = "BAT003", "BAT003"
	if err := repo.UpsertIdentification(ctx(t), free); err != nil {
		t.Fatalf("upsert unowned: %v", err)
	}
}
