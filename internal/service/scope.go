package service

import (
	"context"
	"fmt"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

// ResolveScope maps a principal onto the device filter applied by every query.
func ResolveScope(p models.Principal) repository.Scope {
	if p.IsAdmin() {
		return repository.Scope{All: true}
	}
	return repository.Scope{OwnerID: p.ID}
}

// access applies the principal's scope to single-device operations.
type access struct {
	devices repository.DeviceRepo
	enforce bool
}

func newAccess(devices repository.DeviceRepo, enforce bool) access {
	return access{devices: devices, enforce: enforce}
}

// scopeFor is the scope used for device-keyed reads of p.
// With enforcement off, single-device reads are unrestricted.
func (a access) scopeFor(p models.Principal) repository.Scope {
	if !a.enforce {
		return repository.Scope{All: true}
	}
	return ResolveScope(p)
}

// authorize checks that deviceID is visible to p. A foreign device is
// reported as ErrNotFound so that its existence is not disclosed.
func (a access) authorize(ctx context.Context, p models.Principal, deviceID string) error {
	scope := a.scopeFor(p)
	if scope.All {
		return nil
	}
	owned, err := a.devices.OwnedBy(ctx, deviceID, scope.OwnerID)
	if err != nil {
		return storeErr("check device owner", err)
	}
	if !owned {
		return fmt.Errorf("device %q: %w", deviceID, ErrNotFound)
	}
	return nil
}
