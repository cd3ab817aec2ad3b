package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/parksmart-iot/parksmart/server/internal/db"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
)

type SessionStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSessionStore(db *sql.DB, writer *dbpkg.Worker) *SessionStore {
	return &SessionStore{db: db, writer: writer}
}

func (s *SessionStore) InsertEntry(ctx context.Context, sess store.Session) (int64, error) {
	if sess.EntryTime.IsZero() {
		sess.EntryTime = time.Now().UTC()
	}
	entryMs := sess.EntryTime.UTC().UnixMilli()

	var uid any
	if sess.RFIDUID != "" {
		uid = sess.RFIDUID
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Check-then-insert runs inside one writer transaction; the partial
		// unique indexes on open sessions are the backstop.
		if sess.Status == store.StatusIn {
			var existing int64
			var err error
			if sess.RFIDUID != "" {
				err = tx.QueryRowContext(ctx, `
SELECT id FROM parking_sessions
WHERE rfid_uid = ? AND status = 'IN'
ORDER BY id DESC LIMIT 1;`, sess.RFIDUID).Scan(&existing)
			} else {
				err = tx.QueryRowContext(ctx, `
SELECT id FROM parking_sessions
WHERE plate = ? AND rfid_uid IS NULL AND status = 'IN'
ORDER BY id DESC LIMIT 1;`, sess.Plate).Scan(&existing)
			}
			if err == nil {
				return store.ErrOpenSessionExists
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("InsertEntry open check: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO parking_sessions(plate, rfid_uid, entry_time_ms, image_path, status)
VALUES (?, ?, ?, ?, ?);`,
			sess.Plate, uid, entryMs, sess.ImagePath, sess.Status,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrOpenSessionExists
			}
			return fmt.Errorf("InsertEntry insert: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("InsertEntry last id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SessionStore) CloseExit(ctx context.Context, id int64, exitTime time.Time, fee int64) error {
	if exitTime.IsZero() {
		exitTime = time.Now().UTC()
	}
	exitMs := exitTime.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Matched by id and current status so the transition is single-shot
		// even if another exit raced us to the same session.
		res, err := tx.ExecContext(ctx, `
UPDATE parking_sessions
SET exit_time_ms = ?, fee = ?, status = 'OUT'
WHERE id = ? AND status = 'IN';`, exitMs, fee, id)
		if err != nil {
			return fmt.Errorf("CloseExit update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("CloseExit rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrSessionNotFound
		}
		return nil
	})
}

func (s *SessionStore) FindOpenByPlate(ctx context.Context, plate string) (*store.Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, plate, rfid_uid, entry_time_ms, exit_time_ms, fee, image_path, status
FROM parking_sessions
WHERE plate = ? AND rfid_uid IS NULL AND status = 'IN'
ORDER BY id DESC LIMIT 1;`, plate)
	return scanOptionalSession(row)
}

func (s *SessionStore) FindOpenByUID(ctx context.Context, uid string) (*store.Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, plate, rfid_uid, entry_time_ms, exit_time_ms, fee, image_path, status
FROM parking_sessions
WHERE rfid_uid = ? AND status = 'IN'
ORDER BY id DESC LIMIT 1;`, uid)
	return scanOptionalSession(row)
}

func (s *SessionStore) ListRecent(ctx context.Context, limit int) ([]store.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, plate, rfid_uid, entry_time_ms, exit_time_ms, fee, image_path, status
FROM parking_sessions
ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent query: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SessionStore) ListRange(ctx context.Context, start, end time.Time) ([]store.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, plate, rfid_uid, entry_time_ms, exit_time_ms, fee, image_path, status
FROM parking_sessions
WHERE entry_time_ms >= ? AND entry_time_ms <= ?
ORDER BY id DESC;`, start.UTC().UnixMilli(), end.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("ListRange query: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (store.Session, error) {
	var (
		sess    store.Session
		uid     sql.NullString
		entryMs int64
		exitMs  sql.NullInt64
		fee     sql.NullInt64
	)
	if err := r.Scan(&sess.ID, &sess.Plate, &uid, &entryMs, &exitMs, &fee,
		&sess.ImagePath, &sess.Status); err != nil {
		return store.Session{}, err
	}

	if uid.Valid {
		sess.RFIDUID = uid.String
	}
	sess.EntryTime = time.UnixMilli(entryMs).UTC()
	if exitMs.Valid {
		t := time.UnixMilli(exitMs.Int64).UTC()
		sess.ExitTime = &t
	}
	if fee.Valid {
		f := fee.Int64
		sess.Fee = &f
	}
	return sess, nil
}

func scanOptionalSession(row *sql.Row) (*store.Session, error) {
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}

func collectSessions(rows *sql.Rows) ([]store.Session, error) {
	var out []store.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
// modernc.org/sqlite surfaces these as plain errors, so match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
