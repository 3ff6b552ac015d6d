package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-sync-server/internal/config"
	"pos-sync-server/internal/conflict"
	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/handler"
	"pos-sync-server/internal/middleware"
	"pos-sync-server/internal/repository"
	"pos-sync-server/internal/service"
	"pos-sync-server/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	terminalRepo := repository.NewTerminalRepository(client, cfg.Database.Name)
	inventoryRepo := repository.NewInventoryRepository(client, cfg.Database.Name)
	saleRepo := repository.NewSaleRepository(client, cfg.Database.Name)
	conflictRepo := repository.NewConflictRepository(client, cfg.Database.Name)
	syncMetadataRepo := repository.NewSyncMetadataRepository(client, cfg.Database.Name)

	// WebSocket Manager
	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	resolver := conflict.NewResolver(conflict.Options{
		DefaultStrategy:  domain.ResolutionStrategy(cfg.Conflict.DefaultStrategy),
		IdentifierFields: cfg.Conflict.IdentifierFields,
	})

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	adminService := service.NewAdminService(userRepo)
	terminalService := service.NewTerminalService(terminalRepo)
	inventoryService := service.NewInventoryService(inventoryRepo)
	salesService := service.NewSalesService(saleRepo, inventoryRepo)
	syncService := service.NewSyncService(inventoryRepo, saleRepo, conflictRepo, syncMetadataRepo, resolver, wsManager)

	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)
	terminalHandler := handler.NewTerminalHandler(terminalService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	salesHandler := handler.NewSalesHandler(salesService)
	syncHandler := handler.NewSyncHandler(syncService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	if cfg.RateLimit.Enabled {
		protected.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)))
	}

	protected.HandleFunc("/users", adminHandler.ListUsers).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users", adminHandler.CreateUser).Methods("POST", "OPTIONS")
	protected.HandleFunc("/users/{id}/role", adminHandler.AssignRole).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/users/{id}/status", adminHandler.ToggleUserStatus).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/terminals", terminalHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/terminals/register", terminalHandler.Register).Methods("POST", "OPTIONS")
	protected.HandleFunc("/terminals/{id}", terminalHandler.Revoke).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/inventory", inventoryHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/inventory", inventoryHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/inventory/{id}", inventoryHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/inventory/{id}", inventoryHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/inventory/{id}", inventoryHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/sales", salesHandler.Record).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sales", salesHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sales/{id}", salesHandler.Get).Methods("GET", "OPTIONS")

	protected.HandleFunc("/sync/inventory", syncHandler.PushInventory).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/sales", syncHandler.PushSales).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/conflicts", syncHandler.ListConflicts).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/conflicts/stats", syncHandler.ConflictStats).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/conflicts/{key}/resolve", syncHandler.ResolveConflict).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/last", syncHandler.LastSync).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	// Health endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting POS Sync Server on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"pos-sync-server"}`))
}
