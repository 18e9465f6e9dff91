package service

import (
	"context"
	"fmt"
	"time"

	"bms_telemetry/internal/config"
	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, name, email, password string) (models.User, error)
	GenerateToken(ctx context.Context, email, password string) (string, models.User, error)
	ParseToken(accessToken string) (int, error)
	ResolvePrincipal(ctx context.Context, userID int) (models.Principal, error)
}

// States exposes the newest known state of each visible battery.
type States interface {
	ListCurrentStates(ctx context.Context, p models.Principal) ([]models.BatterySnapshot, error)
	GetBattery(ctx context.Context, p models.Principal, deviceID string) (models.BatteryDetails, error)
}

// History builds metric series over a trailing time window.
type History interface {
	GetHistory(ctx context.Context, p models.Principal, deviceID, metric string, windowHours int) ([]SeriesPoint, error)
}

// EventLog merges alarms and faults into one feed and flips their read flag.
type EventLog interface {
	GetDeviceLog(ctx context.Context, p models.Principal, deviceID string) ([]models.LogEntry, error)
	GetNotifications(ctx context.Context, p models.Principal) ([]models.LogEntry, error)
	MarkRead(ctx context.Context, p models.Principal, eventType string, id int64) error
}

type Routes interface {
	GetRoute(ctx context.Context, p models.Principal, deviceID string) ([]models.RoutePoint, error)
}

type Export interface {
	ExportReadings(ctx context.Context, p models.Principal, deviceID string) ([]byte, error)
}

// Service aggregates all sub-services consumed by the HTTP layer.
type Service struct {
	States
	History
	EventLog
	Routes
	Export
	Authorization
}

// Options carries the tunables of the query services.
type Options struct {
	OnlineVoltageThreshold float64
	HistoryWindowHours     int
	DeviceLogLimit         int
	NotificationLimit      int
	Location               *time.Location
	EnforceDeviceScope     bool

	JWTSecret string
	TokenTTL  time.Duration
}

// OptionsFromConfig maps the loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := cfg.API.Location()
	if err != nil {
		return Options{}, fmt.Errorf("service options: %w", err)
	}
	return Options{
		OnlineVoltageThreshold: cfg.API.OnlineVoltageThreshold,
		HistoryWindowHours:     cfg.API.HistoryWindowHours,
		DeviceLogLimit:         cfg.API.DeviceLogLimit,
		NotificationLimit:      cfg.API.NotificationLimit,
		Location:               loc,
		EnforceDeviceScope:     cfg.Access.EnforceDeviceScope,
		JWTSecret:              cfg.Auth.JWTSecret,
		TokenTTL:               cfg.Auth.TokenTTL,
	}, nil
}

// NewService wires the repository layer into the concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	access := newAccess(repos.Devices, opts.EnforceDeviceScope)
	return &Service{
		States:        NewBatteryService(repos.Readings, access, opts.OnlineVoltageThreshold),
		History:       NewHistoryService(repos.Readings, access, opts.HistoryWindowHours, opts.Location),
		EventLog:      NewEventLogService(repos.Events, access, opts.DeviceLogLimit, opts.NotificationLimit),
		Routes:        NewRouteService(repos.GPS, access),
		Export:        NewExportService(repos.Readings, access),
		Authorization: NewAuthService(repos.Auth, opts.JWTSecret, opts.TokenTTL),
	}
}
