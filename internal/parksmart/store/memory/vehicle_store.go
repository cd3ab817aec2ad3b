package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
)

// VehicleStore is an in-memory registered-vehicle table for tests and dev.
type VehicleStore struct {
	mu       sync.RWMutex
	nextID   int64
	vehicles map[string]store.Vehicle // keyed by plate
}

func NewVehicleStore(plates ...string) *VehicleStore {
	s := &VehicleStore{
		nextID:   1,
		vehicles: make(map[string]store.Vehicle),
	}
	for _, p := range plates {
		s.vehicles[p] = store.Vehicle{ID: s.nextID, Plate: p, CreatedAt: time.Now().UTC()}
		s.nextID++
	}
	return s
}

func (s *VehicleStore) IsRegistered(_ context.Context, plate string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vehicles[plate]
	return ok, nil
}

func (s *VehicleStore) Insert(_ context.Context, v store.Vehicle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[v.Plate]; ok {
		return 0, store.ErrDuplicatePlate
	}
	v.ID = s.nextID
	s.nextID++
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	s.vehicles[v.Plate] = v
	return v.ID, nil
}

func (s *VehicleStore) Delete(_ context.Context, plate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vehicles, plate)
	return nil
}

func (s *VehicleStore) List(_ context.Context) ([]store.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
