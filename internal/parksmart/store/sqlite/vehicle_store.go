package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/parksmart-iot/parksmart/server/internal/db"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
)

type VehicleStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVehicleStore(db *sql.DB, writer *dbpkg.Worker) *VehicleStore {
	return &VehicleStore{db: db, writer: writer}
}

func (s *VehicleStore) IsRegistered(ctx context.Context, plate string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM registered_vehicles WHERE plate = ?;`, plate).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("IsRegistered query: %w", err)
	}
	return true, nil
}

func (s *VehicleStore) Insert(ctx context.Context, v store.Vehicle) (int64, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO registered_vehicles(plate, vehicle_type, owner, expiry_date, created_at_ms)
VALUES (?, ?, ?, ?, ?);`,
			v.Plate, v.VehicleType, v.Owner, v.ExpiryDate, v.CreatedAt.UTC().UnixMilli(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicatePlate
			}
			return fmt.Errorf("Insert vehicle: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Insert vehicle last id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *VehicleStore) Delete(ctx context.Context, plate string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM registered_vehicles WHERE plate = ?;`, plate); err != nil {
			return fmt.Errorf("Delete vehicle: %w", err)
		}
		return nil
	})
}

func (s *VehicleStore) List(ctx context.Context) ([]store.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, plate, vehicle_type, owner, expiry_date, created_at_ms
FROM registered_vehicles
ORDER BY id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("List vehicles query: %w", err)
	}
	defer rows.Close()

	var out []store.Vehicle
	for rows.Next() {
		var (
			v         store.Vehicle
			createdMs int64
		)
		if err := rows.Scan(&v.ID, &v.Plate, &v.VehicleType, &v.Owner,
			&v.ExpiryDate, &createdMs); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		v.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return out, nil
}
