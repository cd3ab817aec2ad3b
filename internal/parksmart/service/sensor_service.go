package service

import (
	"sync"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/types"
)

// SensorService converts raw slot-occupancy samples into a derived
// occupancy view and fans it out on the realtime channel. It also keeps the
// latest view so a freshly connected dashboard can fetch the current state.
type SensorService struct {
	slotCount   int
	broadcaster Broadcaster

	mu     sync.RWMutex
	latest types.SensorUpdate
}

func NewSensorService(slotCount int, b Broadcaster) *SensorService {
	if slotCount <= 0 {
		slotCount = 4
	}
	s := &SensorService{
		slotCount:   slotCount,
		broadcaster: b,
	}
	s.latest = types.SensorUpdate{
		Slots:     make([]bool, slotCount),
		FreeSlots: slotCount,
	}
	return s
}

// Ingest normalizes the sample to the configured slot count (extra slots
// dropped, missing slots treated as free — the board sends a fixed-size
// frame, so this only matters for misconfigured firmware), derives the free
// count and publishes one combined event.
func (s *SensorService) Ingest(sample types.SensorSample) types.SensorUpdate {
	slots := make([]bool, s.slotCount)
	copy(slots, sample.Slots)

	free := 0
	for _, occupied := range slots {
		if !occupied {
			free++
		}
	}

	update := types.SensorUpdate{
		Slots:      slots,
		FreeSlots:  free,
		AirQuality: sample.AirQuality,
	}

	s.mu.Lock()
	s.latest = update
	s.mu.Unlock()

	s.broadcaster.Publish(types.EventSensorUpdate, update)
	return update
}

// Latest returns the most recently derived occupancy view.
func (s *SensorService) Latest() types.SensorUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.latest
	out.Slots = make([]bool, len(s.latest.Slots))
	copy(out.Slots, s.latest.Slots)
	return out
}
