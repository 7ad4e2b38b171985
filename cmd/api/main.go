package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/georgemunganga/shipzone-backend/internal/async"
	"github.com/georgemunganga/shipzone-backend/internal/database"
	"github.com/georgemunganga/shipzone-backend/internal/logging"
	"github.com/georgemunganga/shipzone-backend/internal/modules/inquiry"
	"github.com/georgemunganga/shipzone-backend/internal/modules/rates"
	"github.com/georgemunganga/shipzone-backend/internal/modules/warehouse"
)

func main() {
	_ = godotenv.Load()
	log := logging.Setup()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Bounded connection pool: exhaustion queues callers, never deadlocks.
	db.SetMaxOpenConns(envInt("DB_MAX_OPEN_CONNS", 20))
	db.SetMaxIdleConns(envInt("DB_MAX_IDLE_CONNS", 5))
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		// The process still starts: the zone cache degrades to its empty
		// state and rate requests answer with the inquiry fallback.
		log.Warn("database unreachable at startup", "error", err)
	}

	store := database.NewClient(db, database.DefaultRetryConfig())

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// ── Zone matching cache ─────────────────────────────────
	warehouseRepo := warehouse.NewPostgresRepository(store)
	zoneCache := rates.NewZoneCache(warehouseRepo, envDuration("ZONE_CACHE_TTL", rates.DefaultCacheTTL), log)
	if err := zoneCache.WarmUp(context.Background()); err != nil {
		log.Warn("initial zone snapshot load failed, continuing with empty cache", "error", err)
	}

	// ── Warehouse & zone administration ─────────────────────
	warehouseService := warehouse.NewService(warehouseRepo, zoneCache)
	warehouse.NewHandler(warehouseService).RegisterRoutes(router)

	// ── Inquiry pipeline ────────────────────────────────────
	pool := async.NewPool(envInt("PIPELINE_WORKERS", 4), envInt("PIPELINE_QUEUE", 64), log)
	var gateway inquiry.OrderGateway
	if baseURL := os.Getenv("SHOP_API_BASE_URL"); baseURL != "" {
		gateway = inquiry.NewShopifyGateway(baseURL, os.Getenv("SHOP_API_TOKEN"))
	} else {
		log.Warn("SHOP_API_BASE_URL not set, draft orders disabled; leads are still recorded")
	}
	inquiryRepo := inquiry.NewPostgresRepository(store)
	pipeline := inquiry.NewPipeline(inquiryRepo, gateway, pool,
		envDuration("DEDUP_WINDOW", inquiry.DefaultDedupWindow), log)

	inquiryService := inquiry.NewService(inquiryRepo)
	inquiry.NewHandler(inquiryService).RegisterRoutes(router)

	// ── Rate decision engine ────────────────────────────────
	rateService := rates.NewService(zoneCache, pipeline, rates.Config{
		ServiceName:     envStr("SHIPPING_SERVICE_NAME", "Standard Delivery"),
		FlatRateCents:   int64(envInt("FLAT_RATE_CENTS", 1500)),
		DefaultCurrency: envStr("DEFAULT_CURRENCY", "AUD"),
	}, log)
	rates.NewHandler(rateService).RegisterRoutes(router)

	// ── Health ──────────────────────────────────────────────
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"zone_cache":  zoneCache.Stats(),
			"queue_depth": pool.QueueDepth(),
		})
	})

	// ── Start server ────────────────────────────────────────
	port := envStr("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("shipzone API server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	// Drain queued pipeline work so accepted leads are not lost.
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Error("worker pool shutdown timed out", "error", err)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
