package store

import (
	"context"
	"errors"
	"time"
)

// Session statuses. A session is created IN or DENIED and an IN session
// transitions exactly once to OUT; rows are never deleted.
const (
	StatusIn     = "IN"
	StatusOut    = "OUT"
	StatusDenied = "DENIED"
)

var (
	// ErrSessionNotFound is returned by CloseExit when the session does not
	// exist or is no longer open.
	ErrSessionNotFound = errors.New("session not found")

	// ErrOpenSessionExists is returned by InsertEntry when an open session
	// already exists for the same plate or card UID.
	ErrOpenSessionExists = errors.New("open session already exists")
)

// Session is one logged entry/exit attempt, plate- or card-based.
type Session struct {
	ID        int64
	Plate     string // normalized plate, guest marker, or unresolved marker
	RFIDUID   string // empty unless this is a card session
	EntryTime time.Time
	ExitTime  *time.Time // set once, at IN -> OUT
	Fee       *int64     // set once, together with ExitTime
	ImagePath string
	Status    string
}

// SessionStore is the ledger of parking sessions.
type SessionStore interface {
	// InsertEntry appends a new session row and returns its id.
	// Inserting a second open session for a plate or UID that already has
	// one fails with ErrOpenSessionExists.
	InsertEntry(ctx context.Context, s Session) (int64, error)

	// CloseExit sets exit_time, fee and status=OUT on the session with the
	// given id, only if it is still open. ErrSessionNotFound otherwise.
	CloseExit(ctx context.Context, id int64, exitTime time.Time, fee int64) error

	// FindOpenByPlate returns the most recently created open session for a
	// plate (camera channel), or nil if there is none.
	FindOpenByPlate(ctx context.Context, plate string) (*Session, error)

	// FindOpenByUID returns the most recently created open session for a
	// card UID, or nil if there is none.
	FindOpenByUID(ctx context.Context, uid string) (*Session, error)

	// ListRecent returns up to limit sessions, newest first.
	ListRecent(ctx context.Context, limit int) ([]Session, error)

	// ListRange returns sessions whose entry time falls within
	// [start, end] inclusive, newest first.
	ListRange(ctx context.Context, start, end time.Time) ([]Session, error)
}
