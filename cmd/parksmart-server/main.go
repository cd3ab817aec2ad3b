package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parksmart-iot/parksmart/server/internal/camera"
	"github.com/parksmart-iot/parksmart/server/internal/config"
	"github.com/parksmart-iot/parksmart/server/internal/db"
	"github.com/parksmart-iot/parksmart/server/internal/httpapi"
	"github.com/parksmart-iot/parksmart/server/internal/parksmart/service"
	sqlitestore "github.com/parksmart-iot/parksmart/server/internal/parksmart/store/sqlite"
	"github.com/parksmart-iot/parksmart/server/internal/realtime"
	"github.com/parksmart-iot/parksmart/server/internal/recog"
)

func main() {
	logger := log.New(os.Stdout, "parksmart-server ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Printf("seed dev: %v", err)
		}
	}

	sessionStore := sqlitestore.NewSessionStore(conn, writer)
	vehicleStore := sqlitestore.NewVehicleStore(conn, writer)

	// Collaborators
	capturer := camera.New(cfg.CaptureDir, logger)
	recognizer := recog.New(cfg.RecognizerURL, logger)

	// Realtime
	hub := realtime.NewHub(logger)

	// Services
	relay := service.NewGateCommandRelay()
	sensors := service.NewSensorService(cfg.SlotCount, hub)
	registration := service.NewRegistrationService(vehicleStore)
	admission := service.NewAdmissionService(
		sessionStore, vehicleStore, capturer, recognizer, hub,
		service.AdmissionConfig{
			EntryCameraAddr: cfg.EntryCameraAddr,
			ExitCameraAddr:  cfg.ExitCameraAddr,
			Fees: service.FeeSchedule{
				Grace:         time.Duration(cfg.GraceMinutes) * time.Minute,
				RatePerMinute: cfg.RatePerMinute,
			},
			HistoryLimit: cfg.HistoryLimit,
		},
		logger,
	)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:       logger,
		Addr:         cfg.HTTPAddr,
		Admission:    admission,
		Registration: registration,
		Sensors:      sensors,
		Relay:        relay,
		Realtime:     hub,
		CaptureDir:   cfg.CaptureDir,
	})

	go func() {
		logger.Printf("listening on %s (env=%s)", cfg.HTTPAddr, cfg.Env)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
