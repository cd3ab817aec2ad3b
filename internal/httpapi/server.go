package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/service"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/store"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/types"
)

type Dependencies struct {
	Logger       *log.Logger
	Addr         string
	Admission    *service.AdmissionService
	Registration *service.RegistrationService
	Sensors      *service.SensorService
	Relay        *service.GateCommandRelay
	// Realtime serves the websocket endpoint; nil disables /ws.
	Realtime http.Handler
	// CaptureDir, when set, is served read-only under /captures/.
	CaptureDir string
}

type Server struct {
	httpServer   *http.Server
	logger       *log.Logger
	mux          *http.ServeMux
	admission    *service.AdmissionService
	registration *service.RegistrationService
	sensors      *service.SensorService
	relay        *service.GateCommandRelay
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:       d.Logger,
		mux:          mux,
		admission:    d.Admission,
		registration: d.Registration,
		sensors:      d.Sensors,
		relay:        d.Relay,
	}

	mux.HandleFunc("POST /parking/{action}", s.handleParking)
	mux.HandleFunc("POST /rfid/{action}", s.handleRFID)
	mux.HandleFunc("POST /control/{action}", s.handleControl)
	mux.HandleFunc("GET /command", s.handleCommand)
	mux.HandleFunc("POST /sensors", s.handleSensors)
	mux.HandleFunc("GET /sensors/latest", s.handleSensorsLatest)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /registered", s.handleListRegistered)
	mux.HandleFunc("POST /registered", s.handleAddRegistered)
	mux.HandleFunc("DELETE /registered/{plate}", s.handleDeleteRegistered)

	if d.Realtime != nil {
		mux.Handle("GET /ws", d.Realtime)
	}
	if d.CaptureDir != "" {
		mux.Handle("GET /captures/",
			http.StripPrefix("/captures/", http.FileServer(http.Dir(d.CaptureDir))))
	}

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Admission ────────────────────────────────────────────────────────────────

func (s *Server) handleParking(w http.ResponseWriter, r *http.Request) {
	var (
		resp types.AdmissionResponse
		err  error
	)

	switch r.PathValue("action") {
	case "entry":
		resp, err = s.admission.PlateEntry(r.Context())
	case "exit":
		resp, err = s.admission.PlateExit(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "unknown_action", "action must be entry or exit")
		return
	}

	if err != nil {
		s.writeAdmissionError(w, r, err)
		return
	}
	if resp.Status == "denied" {
		writeJSON(w, http.StatusForbidden, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRFID(w http.ResponseWriter, r *http.Request) {
	var req types.RFIDRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	var (
		resp types.AdmissionResponse
		err  error
	)

	switch r.PathValue("action") {
	case "entry":
		resp, err = s.admission.RFIDEntry(r.Context(), req.UID)
	case "exit":
		resp, err = s.admission.RFIDExit(r.Context(), req.UID)
	default:
		writeError(w, http.StatusBadRequest, "unknown_action", "action must be entry or exit")
		return
	}

	if err != nil {
		s.writeAdmissionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeAdmissionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUID):
		writeError(w, http.StatusBadRequest, "invalid_uid", err.Error())
	case errors.Is(err, service.ErrCardBusy):
		writeDeny(w, http.StatusBadRequest, types.ActionDenyEntry, "card_busy")
	case errors.Is(err, service.ErrVehicleInside):
		writeDeny(w, http.StatusForbidden, types.ActionDenyEntry, "vehicle_inside")
	case errors.Is(err, service.ErrSessionNotFound):
		writeDeny(w, http.StatusNotFound, types.ActionDenyExit, "no_entry_record")
	case errors.Is(err, service.ErrCaptureFailed):
		s.logger.Printf("%s capture failure: %v", r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "capture_failed", "camera unreachable")
	default:
		s.logger.Printf("%s error: %v", r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}

// ── Gate commands ────────────────────────────────────────────────────────────

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("action") {
	case "open_entry":
		s.relay.Push(service.CommandOpenEntry)
	case "open_exit":
		s.relay.Push(service.CommandOpenExit)
	default:
		writeError(w, http.StatusBadRequest, "unknown_action", "unknown control action")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"command": s.relay.Poll()})
}

// ── Sensors ──────────────────────────────────────────────────────────────────

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	var sample types.SensorSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	s.sensors.Ingest(sample)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSensorsLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sensors.Latest())
}

// ── History ──────────────────────────────────────────────────────────────────

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := s.admission.History(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}
		s.logger.Printf("history error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if records == nil {
		records = []types.SessionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ── Registered vehicles ──────────────────────────────────────────────────────

func (s *Server) handleListRegistered(w http.ResponseWriter, r *http.Request) {
	records, err := s.registration.List(r.Context())
	if err != nil {
		s.logger.Printf("registered list error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if records == nil {
		records = []types.VehicleRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddRegistered(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterVehicleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	if _, err := s.registration.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlate):
			writeError(w, http.StatusBadRequest, "invalid_plate", "plate fails format validation")
		case errors.Is(err, store.ErrDuplicatePlate):
			writeError(w, http.StatusBadRequest, "duplicate_plate", "plate already registered")
		default:
			s.logger.Printf("registered add error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteRegistered(w http.ResponseWriter, r *http.Request) {
	if err := s.registration.Unregister(r.Context(), r.PathValue("plate")); err != nil {
		s.logger.Printf("registered delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
