package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a couple of registered vehicles so a fresh dev database
// can exercise the camera admission flow immediately.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	seed := []struct {
		plate       string
		vehicleType string
		owner       string
	}{
		{"51F12345", "car", "Dev Owner"},
		{"29A99999", "motorbike", "Dev Owner"},
	}

	for _, v := range seed {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO registered_vehicles(plate, vehicle_type, owner, created_at_ms)
VALUES (?, ?, ?, ?);`, v.plate, v.vehicleType, v.owner, now); err != nil {
			return fmt.Errorf("seed vehicle %s: %w", v.plate, err)
		}
	}

	return nil
}
