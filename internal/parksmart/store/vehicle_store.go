package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicatePlate is returned by Insert when the plate is already registered.
var ErrDuplicatePlate = errors.New("plate already registered")

// Vehicle is a membership record. Created and removed only through the
// registration endpoints; admission only reads it.
type Vehicle struct {
	ID          int64
	Plate       string // normalized, unique
	VehicleType string
	Owner       string
	ExpiryDate  string
	CreatedAt   time.Time
}

type VehicleStore interface {
	IsRegistered(ctx context.Context, plate string) (bool, error)
	Insert(ctx context.Context, v Vehicle) (int64, error)
	Delete(ctx context.Context, plate string) error
	List(ctx context.Context) ([]Vehicle, error)
}
