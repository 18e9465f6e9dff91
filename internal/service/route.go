package service

import (
	"context"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

type RouteService struct {
	gps    repository.GPSRepo
	access access
}

func NewRouteService(gps repository.GPSRepo, a access) *RouteService {
	return &RouteService{gps: gps, access: a}
}

var _ Routes = (*RouteService)(nil)

// GetRoute returns the full position history of a device, oldest first.
func (s *RouteService) GetRoute(ctx context.Context, p models.Principal, deviceID string) ([]models.RoutePoint, error) {
	if err := s.access.authorize(ctx, p, deviceID); err != nil {
		return nil, err
	}
	points, err := s.gps.Route(ctx, deviceID)
	if err != nil {
		return nil, storeErr("get route", err)
	}
	return points, nil
}
