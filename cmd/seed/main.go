package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bms_telemetry/internal/config"
	"bms_telemetry/internal/logger"
	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
	"bms_telemetry/internal/repository/db"

	"golang.org/x/crypto/bcrypt"
)

const seedHours = 24

type seedUser struct {
	name, email, password, role string
}

var users = []seedUser{
	{name: "Admin", email: "admin@bms.com", password: "admin123", role: models.RoleAdmin},
	{name: "Fleet User", email: "user@bms.com", password: "user123", role: models.RoleUser},
	{name: "Demo", email: "demo@bms.com", password: "demo123", role: models.RoleUser},
}

type seedDevice struct {
	id       string
	owner    string // email; "" leaves the device unassigned
	voltage  float64
	lat, lng float64
}

var devices = []seedDevice{
	{id: "BAT001", owner: "user@bms.com", voltage: 12.6, lat: 41.3111, lng: 69.2797},
	{id: "BAT002", owner: "user@bms.com", voltage: 11.8, lat: 41.2995, lng: 69.2401},
	{id: "BAT003", voltage: 9.4, lat: 41.3275, lng: 69.2817},
}

var codes = map[models.EventType]map[int]string{
	models.EventAlarm: {1: "OverPackVoltageAlarm", 2: "UnderPackVoltageAlarm"},
	models.EventFault: {1: "OverPackVoltageFault", 2: "UnderPackVoltageFault"},
}

func main() {
	log := logger.Get(logger.InfoLevel)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	conn, dialect, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.Database.Driver, "err", err)
	}
	defer func() { _ = conn.Close() }()

	repos := repository.NewRepository(conn, dialect)
	ctx := context.Background()

	if err := seed(ctx, repos, time.Now().UTC().Truncate(time.Hour), log); err != nil {
		log.Fatalw("seed failed", "err", err)
	}
	log.Infow("seed complete", "driver", cfg.Database.Driver, "devices", len(devices), "hours", seedHours)
}

func seed(ctx context.Context, repos *repository.Repository, now time.Time, log *logger.Logger) error {
	ids := make(map[string]int, len(users))
	for _, u := range users {
		id, err := ensureUser(ctx, repos.Auth, u)
		if err != nil {
			return err
		}
		ids[u.email] = id
		log.Infow("user ready", "email", u.email, "id", id)
	}

	for typ, byValue := range codes {
		for value, name := range byValue {
			if err := repos.Events.UpsertCode(ctx, typ, value, name); err != nil {
				return fmt.Errorf("upsert %s code %d: %w", typ, value, err)
			}
		}
	}

	for i, d := range devices {
		ident := models.Identification{
			DeviceID:        d.id,
			DeviceType:      "LiFePO4",
			BatteryNumber:   fmt.Sprintf("PACK-%03d", i+1),
			FirmwareVersion: "1.4.2",
			HardwareVersion: "rev-b",
		}
		if d.owner != "" {
			owner := ids[d.owner]
			ident.UserID = &owner
		}
		if err := repos.Devices.UpsertIdentification(ctx, ident); err != nil {
			return fmt.Errorf("upsert identification %q: %w", d.id, err)
		}
		if err := seedTelemetry(ctx, repos, d, now); err != nil {
			return err
		}
	}

	if _, err := repos.Events.Insert(ctx, models.EventAlarm, "BAT002", now.Add(-2*time.Hour), 2); err != nil {
		return fmt.Errorf("insert alarm: %w", err)
	}
	if _, err := repos.Events.Insert(ctx, models.EventFault, "BAT003", now.Add(-time.Hour), 2); err != nil {
		return fmt.Errorf("insert fault: %w", err)
	}
	return nil
}

func ensureUser(ctx context.Context, auth repository.Authorization, u seedUser) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password for %q: %w", u.email, err)
	}
	id, err := auth.Create(ctx, models.User{Name: u.name, Email: u.email, Role: u.role, PasswordHash: string(hash)})
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		return 0, fmt.Errorf("create user %q: %w", u.email, err)
	}
	existing, err := auth.GetByEmail(ctx, u.email)
	if err != nil {
		return 0, fmt.Errorf("lookup user %q: %w", u.email, err)
	}
	if existing == nil {
		return 0, fmt.Errorf("user %q reported duplicate but not found", u.email)
	}
	return existing.ID, nil
}

// seedTelemetry writes one reading and one GPS fix per hour, oldest first.
func seedTelemetry(ctx context.Context, repos *repository.Repository, d seedDevice, now time.Time) error {
	for h := seedHours - 1; h >= 0; h-- {
		at := now.Add(-time.Duration(h) * time.Hour)
		step := float64(seedHours - 1 - h)
		r := models.Reading{
			DeviceID:    d.id,
			Timestamp:   at,
			PackVoltage: d.voltage - 0.02*step,
			PackCurrent: -1.5 + 0.1*step,
			SOC:         95 - 1.5*step,
			SOH:         97,
			CycleCount:  120,
			CellTemps:   []float64{24 + 0.2*step, 25 + 0.1*step, 23.5 + 0.15*step},
		}
		if _, err := repos.Readings.Insert(ctx, r); err != nil {
			return fmt.Errorf("insert reading %q at %s: %w", d.id, at.Format(time.RFC3339), err)
		}
		fix := models.GPSFix{
			DeviceID:  d.id,
			Timestamp: at,
			Latitude:  d.lat + 0.001*step,
			Longitude: d.lng + 0.0015*step,
			Speed:     18 + step,
		}
		if _, err := repos.GPS.Insert(ctx, fix); err != nil {
			return fmt.Errorf("insert gps %q at %s: %w", d.id, at.Format(time.RFC3339), err)
		}
	}
	return nil
}
