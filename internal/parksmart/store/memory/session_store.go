package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
)

// SessionStore is an in-memory session ledger for tests and dev.
type SessionStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions []store.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{nextID: 1}
}

func (s *SessionStore) InsertEntry(_ context.Context, sess store.Session) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Status == store.StatusIn {
		for _, existing := range s.sessions {
			if existing.Status != store.StatusIn {
				continue
			}
			if sess.RFIDUID != "" && existing.RFIDUID == sess.RFIDUID {
				return 0, store.ErrOpenSessionExists
			}
			if sess.RFIDUID == "" && existing.RFIDUID == "" && existing.Plate == sess.Plate {
				return 0, store.ErrOpenSessionExists
			}
		}
	}

	sess.ID = s.nextID
	s.nextID++
	if sess.EntryTime.IsZero() {
		sess.EntryTime = time.Now().UTC()
	}
	s.sessions = append(s.sessions, sess)
	return sess.ID, nil
}

func (s *SessionStore) CloseExit(_ context.Context, id int64, exitTime time.Time, fee int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID != id {
			continue
		}
		if s.sessions[i].Status != store.StatusIn {
			return store.ErrSessionNotFound
		}
		t := exitTime
		f := fee
		s.sessions[i].ExitTime = &t
		s.sessions[i].Fee = &f
		s.sessions[i].Status = store.StatusOut
		return nil
	}
	return store.ErrSessionNotFound
}

func (s *SessionStore) FindOpenByPlate(_ context.Context, plate string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sessions) - 1; i >= 0; i-- {
		sess := s.sessions[i]
		if sess.Status == store.StatusIn && sess.RFIDUID == "" && sess.Plate == plate {
			out := sess
			return &out, nil
		}
	}
	return nil, nil
}

func (s *SessionStore) FindOpenByUID(_ context.Context, uid string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sessions) - 1; i >= 0; i-- {
		sess := s.sessions[i]
		if sess.Status == store.StatusIn && sess.RFIDUID == uid {
			out := sess
			return &out, nil
		}
	}
	return nil, nil
}

func (s *SessionStore) ListRecent(_ context.Context, limit int) ([]store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.Session, len(s.sessions))
	copy(out, s.sessions)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SessionStore) ListRange(_ context.Context, start, end time.Time) ([]store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.Session
	for _, sess := range s.sessions {
		if sess.EntryTime.Before(start) || sess.EntryTime.After(end) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// All returns a copy of every session row. Test-only helper.
func (s *SessionStore) All() []store.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}
