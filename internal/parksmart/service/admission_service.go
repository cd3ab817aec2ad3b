package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/types"
	"github.com/parksmart-iot/parksmart/server/internal/recog"
)

// Reserved plate markers in the session ledger.
const (
	// UnresolvedPlate is logged when recognition failed but entry
	// processing continued.
	UnresolvedPlate = "UNKNOWN"
	// GuestPlate marks card-only sessions that have no plate.
	GuestPlate = "GUEST_RFID"
)

var (
	// ErrCaptureFailed: the gate camera was unreachable after the retry
	// budget. The attempt is terminal — no ledger mutation happens.
	ErrCaptureFailed = errors.New("image capture failed")

	// ErrCardBusy: RFID entry while the card already has an open session.
	ErrCardBusy = errors.New("card already checked in")

	// ErrVehicleInside: camera entry for a plate that already has an open
	// session.
	ErrVehicleInside = errors.New("vehicle already inside")

	// ErrSessionNotFound: exit with no matching open session.
	ErrSessionNotFound = errors.New("no open session")

	// ErrInvalidUID: RFID request with a blank card UID.
	ErrInvalidUID = errors.New("uid is required")

	// ErrInvalidRange: /history range parameters that do not parse.
	ErrInvalidRange = errors.New("invalid date range")
)

// Capturer grabs a still from a gate camera and returns the saved file path.
// Implementations apply their own bounded retry budget; an error means the
// budget is exhausted and the attempt is terminal.
type Capturer interface {
	Capture(ctx context.Context, addr, label string) (string, error)
}

// Recognizer turns a captured image into raw plate text. Any status other
// than recog.StatusSuccess means the plate stays unresolved; it never aborts
// the admission flow.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, recog.Status)
}

// AdmissionConfig carries the per-facility knobs of the controller.
type AdmissionConfig struct {
	EntryCameraAddr string
	ExitCameraAddr  string
	// GuestImagePath is the fixed evidence reference logged for card
	// sessions, which have no camera still.
	GuestImagePath string
	Fees           FeeSchedule
	HistoryLimit   int
}

// AdmissionService is the entry/exit state machine for both credential
// channels. Each decision produces a ledger mutation plus a fire-and-forget
// realtime event.
//
// Concurrent attempts for the same credential collapse into a single
// decision through a singleflight group keyed on channel, direction and
// credential, so a burst of gate retriggers yields exactly one ledger row.
// Collaborators (capture, recognition) are always invoked before entering
// the group: no serialization is held across external calls.
type AdmissionService struct {
	sessions    store.SessionStore
	vehicles    store.VehicleStore
	capturer    Capturer
	recognizer  Recognizer
	broadcaster Broadcaster
	cfg         AdmissionConfig
	logger      *log.Logger

	group singleflight.Group
	now   func() time.Time
}

func NewAdmissionService(
	sessions store.SessionStore,
	vehicles store.VehicleStore,
	capturer Capturer,
	recognizer Recognizer,
	broadcaster Broadcaster,
	cfg AdmissionConfig,
	logger *log.Logger,
) *AdmissionService {
	if cfg.Fees.RatePerMinute == 0 && cfg.Fees.Grace == 0 {
		cfg.Fees = DefaultFeeSchedule()
	}
	if cfg.GuestImagePath == "" {
		cfg.GuestImagePath = "/static/rfid_icon.png"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &AdmissionService{
		sessions:    sessions,
		vehicles:    vehicles,
		capturer:    capturer,
		recognizer:  recognizer,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// ── Camera channel ───────────────────────────────────────────────────────────

// PlateEntry processes a vehicle arriving at the camera gate.
func (s *AdmissionService) PlateEntry(ctx context.Context) (types.AdmissionResponse, error) {
	imgPath, err := s.capturer.Capture(ctx, s.cfg.EntryCameraAddr, "entry")
	if err != nil {
		return types.AdmissionResponse{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	plate := s.resolvePlate(ctx, imgPath)

	v, err, _ := s.group.Do("plate.entry:"+plate, func() (any, error) {
		return s.decidePlateEntry(ctx, plate, imgPath)
	})
	if err != nil {
		return types.AdmissionResponse{}, err
	}
	return v.(types.AdmissionResponse), nil
}

func (s *AdmissionService) decidePlateEntry(ctx context.Context, plate, imgPath string) (types.AdmissionResponse, error) {
	now := s.now().UTC()

	registered := false
	if plate != UnresolvedPlate {
		var err error
		registered, err = s.vehicles.IsRegistered(ctx, plate)
		if err != nil {
			return types.AdmissionResponse{}, err
		}
	}

	status := store.StatusDenied
	if registered {
		open, err := s.sessions.FindOpenByPlate(ctx, plate)
		if err != nil {
			return types.AdmissionResponse{}, err
		}
		if open != nil {
			return types.AdmissionResponse{}, ErrVehicleInside
		}
		status = store.StatusIn
	}

	_, err := s.sessions.InsertEntry(ctx, store.Session{
		Plate:     plate,
		EntryTime: now,
		ImagePath: imgPath,
		Status:    status,
	})
	if errors.Is(err, store.ErrOpenSessionExists) {
		return types.AdmissionResponse{}, ErrVehicleInside
	}
	if err != nil {
		return types.AdmissionResponse{}, err
	}

	decision := "Denied (Unregistered)"
	if registered {
		decision = "Allowed"
	}
	s.broadcaster.Publish(types.EventNewLog, types.LogEvent{
		Plate:  plate,
		Action: "ENTRY (Cam)",
		Status: decision,
		Time:   now.Format(types.TimeLayout),
		Image:  webImagePath(imgPath),
	})

	if !registered {
		return types.AdmissionResponse{
			Status: "denied",
			Action: types.ActionDenyEntry,
			Plate:  plate,
		}, nil
	}
	return types.AdmissionResponse{
		Status: "ok",
		Action: types.ActionAllowEntry,
		Plate:  plate,
	}, nil
}

// PlateExit processes a vehicle leaving through the camera gate.
func (s *AdmissionService) PlateExit(ctx context.Context) (types.AdmissionResponse, error) {
	imgPath, err := s.capturer.Capture(ctx, s.cfg.ExitCameraAddr, "exit")
	if err != nil {
		return types.AdmissionResponse{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	plate := s.resolvePlate(ctx, imgPath)
	if plate == UnresolvedPlate {
		// No plate, nothing to match against the ledger.
		return types.AdmissionResponse{}, ErrSessionNotFound
	}

	v, err, _ := s.group.Do("plate.exit:"+plate, func() (any, error) {
		return s.closeExit(ctx, exitLookup{
			plate:      plate,
			image:      webImagePath(imgPath),
			eventPlate: plate,
			action:     func(fee int64) string { return fmt.Sprintf("EXIT (Fee: %d)", fee) },
		})
	})
	if err != nil {
		return types.AdmissionResponse{}, err
	}
	resp := v.(types.AdmissionResponse)
	resp.Plate = plate
	return resp, nil
}

// ── RFID channel ─────────────────────────────────────────────────────────────

// RFIDEntry issues a guest ticket for a card at the entry gate.
func (s *AdmissionService) RFIDEntry(ctx context.Context, uid string) (types.AdmissionResponse, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return types.AdmissionResponse{}, ErrInvalidUID
	}

	v, err, _ := s.group.Do("rfid.entry:"+uid, func() (any, error) {
		return s.decideRFIDEntry(ctx, uid)
	})
	if err != nil {
		return types.AdmissionResponse{}, err
	}
	return v.(types.AdmissionResponse), nil
}

func (s *AdmissionService) decideRFIDEntry(ctx context.Context, uid string) (types.AdmissionResponse, error) {
	open, err := s.sessions.FindOpenByUID(ctx, uid)
	if err != nil {
		return types.AdmissionResponse{}, err
	}
	if open != nil {
		return types.AdmissionResponse{}, ErrCardBusy
	}

	now := s.now().UTC()
	_, err = s.sessions.InsertEntry(ctx, store.Session{
		Plate:     GuestPlate,
		RFIDUID:   uid,
		EntryTime: now,
		ImagePath: s.cfg.GuestImagePath,
		Status:    store.StatusIn,
	})
	if errors.Is(err, store.ErrOpenSessionExists) {
		return types.AdmissionResponse{}, ErrCardBusy
	}
	if err != nil {
		return types.AdmissionResponse{}, err
	}

	s.broadcaster.Publish(types.EventNewLog, types.LogEvent{
		Plate:  "RFID: " + uid,
		Action: "ENTRY (Guest)",
		Status: "Allowed",
		Time:   now.Format(types.TimeLayout),
		Image:  s.cfg.GuestImagePath,
	})

	return types.AdmissionResponse{
		Status: "ok",
		Action: types.ActionAllowEntry,
		UID:    uid,
	}, nil
}

// RFIDExit closes the guest session for a card at the exit gate.
func (s *AdmissionService) RFIDExit(ctx context.Context, uid string) (types.AdmissionResponse, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return types.AdmissionResponse{}, ErrInvalidUID
	}

	v, err, _ := s.group.Do("rfid.exit:"+uid, func() (any, error) {
		return s.closeExit(ctx, exitLookup{
			uid:        uid,
			image:      s.cfg.GuestImagePath,
			eventPlate: "RFID: " + uid,
			action:     func(int64) string { return "EXIT (Guest)" },
		})
	})
	if err != nil {
		return types.AdmissionResponse{}, err
	}
	resp := v.(types.AdmissionResponse)
	resp.UID = uid
	return resp, nil
}

// ── Shared exit path ─────────────────────────────────────────────────────────

type exitLookup struct {
	plate      string
	uid        string
	image      string
	eventPlate string
	action     func(fee int64) string
}

// closeExit finds the newest open session for the credential, bills it and
// closes it by session id — a single row, so a racing session of the same
// plate cannot be clobbered. The fee is computed exactly once; CloseExit
// only succeeds while the session is still open.
func (s *AdmissionService) closeExit(ctx context.Context, lk exitLookup) (types.AdmissionResponse, error) {
	var (
		sess *store.Session
		err  error
	)
	if lk.uid != "" {
		sess, err = s.sessions.FindOpenByUID(ctx, lk.uid)
	} else {
		sess, err = s.sessions.FindOpenByPlate(ctx, lk.plate)
	}
	if err != nil {
		return types.AdmissionResponse{}, err
	}
	if sess == nil {
		return types.AdmissionResponse{}, ErrSessionNotFound
	}

	fee, exitTime := s.cfg.Fees.Resolve(sess.EntryTime, nil, s.now)
	if err := s.sessions.CloseExit(ctx, sess.ID, exitTime, fee); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return types.AdmissionResponse{}, ErrSessionNotFound
		}
		return types.AdmissionResponse{}, err
	}

	s.broadcaster.Publish(types.EventNewLog, types.LogEvent{
		Plate:  lk.eventPlate,
		Action: lk.action(fee),
		Status: "Out",
		Time:   exitTime.Format(types.TimeLayout),
		Image:  lk.image,
		Fee:    &fee,
	})

	action := types.ActionAllowExit
	if fee > 0 {
		action = types.ActionPaymentDue
	}
	return types.AdmissionResponse{
		Status: "ok",
		Action: action,
		Fee:    &fee,
	}, nil
}

// ── History ──────────────────────────────────────────────────────────────────

// History returns session records for an inclusive date range
// (YYYY-MM-DD), or the latest rows when no range is given.
func (s *AdmissionService) History(ctx context.Context, startDate, endDate string) ([]types.SessionRecord, error) {
	var (
		sessions []store.Session
		err      error
	)

	if startDate != "" && endDate != "" {
		start, perr := time.ParseInLocation("2006-01-02", startDate, time.UTC)
		if perr != nil {
			return nil, fmt.Errorf("%w: start %q", ErrInvalidRange, startDate)
		}
		end, perr := time.ParseInLocation("2006-01-02", endDate, time.UTC)
		if perr != nil {
			return nil, fmt.Errorf("%w: end %q", ErrInvalidRange, endDate)
		}
		// Whole days: [start 00:00:00, end 23:59:59].
		end = end.Add(24*time.Hour - time.Second)
		sessions, err = s.sessions.ListRange(ctx, start, end)
	} else {
		sessions, err = s.sessions.ListRecent(ctx, s.cfg.HistoryLimit)
	}
	if err != nil {
		return nil, err
	}

	out := make([]types.SessionRecord, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionRecord(sess))
	}
	return out, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// resolvePlate runs recognition and normalization; any degradation maps to
// the unresolved marker instead of aborting the attempt.
func (s *AdmissionService) resolvePlate(ctx context.Context, imagePath string) string {
	raw, status := s.recognizer.Recognize(ctx, imagePath)
	if status != recog.StatusSuccess {
		s.logger.Printf("recognition degraded: status=%s image=%s", status, imagePath)
		return UnresolvedPlate
	}
	plate, ok := NormalizePlate(raw)
	if !ok {
		s.logger.Printf("recognized text rejected by normalizer: %q", raw)
		return UnresolvedPlate
	}
	return plate
}

func webImagePath(imgPath string) string {
	if imgPath == "" {
		return ""
	}
	return "/captures/" + filepath.Base(imgPath)
}

func sessionRecord(sess store.Session) types.SessionRecord {
	rec := types.SessionRecord{
		ID:        sess.ID,
		Plate:     sess.Plate,
		RFIDUID:   sess.RFIDUID,
		EntryTime: sess.EntryTime.UTC().Format(types.TimeLayout),
		ImagePath: sess.ImagePath,
		Status:    sess.Status,
		Fee:       sess.Fee,
	}
	if sess.ExitTime != nil {
		rec.ExitTime = sess.ExitTime.UTC().Format(types.TimeLayout)
	}
	return rec
}
