package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-logbook/internal/auth"
	"github.com/ukydev/vehicle-logbook/internal/config"
	"github.com/ukydev/vehicle-logbook/internal/handlers"
	"github.com/ukydev/vehicle-logbook/internal/manager"
	"github.com/ukydev/vehicle-logbook/internal/middleware"
	"github.com/ukydev/vehicle-logbook/internal/store"
)

func newBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryBackend(cfg.StoreQuota), nil
	case "mongo":
		client, err := store.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return store.NewMongoBackend(client, cfg.MongoDB, "kv"), nil
	default:
		return store.NewFileBackend(cfg.StoreDir, cfg.StoreQuota)
	}
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	backend, err := newBackend(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create store backend")
	}
	st, err := store.Open(ctx, backend)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	mgr := manager.New(st)
	defer func() {
		if err := mgr.Close(context.Background()); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	authService, err := auth.NewService(cfg.JWTSecret, cfg.AuthUsername, cfg.AuthPassword, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}

	authHandler := handlers.NewAuthHandler(authService)
	vehicleHandler := handlers.NewVehicleHandler(mgr)
	maintenanceHandler := handlers.NewMaintenanceHandler(mgr)
	dataHandler := handlers.NewDataHandler(mgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/vehicles", vehicleHandler.Collection)
	mux.HandleFunc("/api/vehicles/{id}", vehicleHandler.Item)
	mux.HandleFunc("/api/vehicles/{id}/maintenance", vehicleHandler.Maintenance)
	mux.HandleFunc("/api/maintenance", maintenanceHandler.Collection)
	mux.HandleFunc("/api/maintenance/{id}", maintenanceHandler.Item)
	mux.HandleFunc("/api/search/vehicles", vehicleHandler.Search)
	mux.HandleFunc("/api/search/maintenance", maintenanceHandler.Search)
	mux.HandleFunc("/api/data/export", dataHandler.Export)
	mux.HandleFunc("/api/data/import", dataHandler.Import)
	mux.HandleFunc("/api/data/clear", dataHandler.Clear)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := rateLimiter.RateLimit(300, 60)(authMiddleware.Authenticate(mux))

	log.WithFields(log.Fields{"port": cfg.Port, "backend": cfg.StoreBackend}).Info("vehicle logbook server listening")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
