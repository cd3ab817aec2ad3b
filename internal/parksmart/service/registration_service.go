package service

import (
	"context"
	"errors"
	"strings"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/types"
)

// ErrInvalidPlate is returned when a registration plate fails normalization.
var ErrInvalidPlate = errors.New("invalid plate format")

// RegistrationService manages the registered-vehicle membership records.
// It sits outside the admission decision path, which only reads the table.
type RegistrationService struct {
	vehicles store.VehicleStore
}

func NewRegistrationService(vs store.VehicleStore) *RegistrationService {
	return &RegistrationService{vehicles: vs}
}

// Register normalizes and stores a new vehicle. The plate passes through
// the same rule as recognized plates; rejection fails with ErrInvalidPlate,
// an existing plate with store.ErrDuplicatePlate.
func (s *RegistrationService) Register(ctx context.Context, req types.RegisterVehicleRequest) (types.VehicleRecord, error) {
	plate, ok := NormalizePlate(req.Plate)
	if !ok {
		return types.VehicleRecord{}, ErrInvalidPlate
	}

	v := store.Vehicle{
		Plate:       plate,
		VehicleType: strings.TrimSpace(req.VehicleType),
		Owner:       strings.TrimSpace(req.Owner),
		ExpiryDate:  strings.TrimSpace(req.ExpiryDate),
	}

	id, err := s.vehicles.Insert(ctx, v)
	if err != nil {
		return types.VehicleRecord{}, err
	}
	v.ID = id
	return vehicleRecord(v), nil
}

// Unregister removes a vehicle by plate. Removing an unknown plate is a
// no-op, matching the delete endpoint's idempotent contract.
func (s *RegistrationService) Unregister(ctx context.Context, plate string) error {
	normalized, ok := NormalizePlate(plate)
	if !ok {
		// The stored plate is always normalized; a plate that cannot
		// normalize cannot be in the table.
		return nil
	}
	return s.vehicles.Delete(ctx, normalized)
}

// List returns all registered vehicles, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]types.VehicleRecord, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.VehicleRecord, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, vehicleRecord(v))
	}
	return out, nil
}

func vehicleRecord(v store.Vehicle) types.VehicleRecord {
	rec := types.VehicleRecord{
		ID:          v.ID,
		Plate:       v.Plate,
		VehicleType: v.VehicleType,
		Owner:       v.Owner,
		ExpiryDate:  v.ExpiryDate,
	}
	if !v.CreatedAt.IsZero() {
		rec.CreatedAt = v.CreatedAt.UTC().Format(types.TimeLayout)
	}
	return rec
}
