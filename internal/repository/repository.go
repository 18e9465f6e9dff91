package repository

import (
	"context"
	"database/sql"
	"time"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"
)

// Scope restricts device-keyed queries to what a principal may see.
type Scope struct {
	All     bool // admin: no restriction
	OwnerID int  // otherwise: devices whose identification.user_id = OwnerID
}

type Authorization interface {
	Create(ctx context.Context, u models.User) (int, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type DeviceRepo interface {
	OwnedBy(ctx context.Context, deviceID string, userID int) (bool, error)
	UpsertIdentification(ctx context.Context, ident models.Identification) error
}

type ReadingRepo interface {
	// Latest returns the newest reading per visible device; deviceID "" means every device.
	Latest(ctx context.Context, scope Scope, deviceID string) ([]models.LatestState, error)
	Since(ctx context.Context, deviceID string, since time.Time) ([]models.Reading, error)
	All(ctx context.Context, deviceID string) ([]models.Reading, error)
	Insert(ctx context.Context, r models.Reading) (int64, error)
}

type GPSRepo interface {
	Route(ctx context.Context, deviceID string) ([]models.RoutePoint, error)
	Insert(ctx context.Context, fix models.GPSFix) (int64, error)
}

// EventFilter narrows the merged alarm/fault feed.
type EventFilter struct {
	DeviceID string // "" = every visible device
	Scope    Scope
	Limit    int
}

type EventRepo interface {
	Feed(ctx context.Context, f EventFilter) ([]models.LogEntry, error)
	MarkRead(ctx context.Context, scope Scope, typ models.EventType, id int64) (int64, error)
	Insert(ctx context.Context, typ models.EventType, deviceID string, at time.Time, code int) (int64, error)
	UpsertCode(ctx context.Context, typ models.EventType, value int, name string) error
}

type Repository struct {
	Devices  DeviceRepo
	Readings ReadingRepo
	GPS      GPSRepo
	Events   EventRepo
	Auth     Authorization
}

func NewRepository(conn *sql.DB, d db.Dialect) *Repository {
	return &Repository{
		Devices:  NewDeviceSQL(conn, d),
		Readings: NewReadingSQL(conn, d),
		GPS:      NewGPSSQL(conn, d),
		Events:   NewEventSQL(conn, d),
		Auth:     NewUserRepository(conn, d),
	}
}
