package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"sweepos-backend/internal/access"
	"sweepos-backend/internal/config"
	"sweepos-backend/internal/cron"
	"sweepos-backend/internal/database"
	"sweepos-backend/internal/gateway"
	"sweepos-backend/internal/handlers"
	"sweepos-backend/internal/metrics"
	"sweepos-backend/internal/middleware"
	"sweepos-backend/internal/storage"
)

func main() {
	// 1. Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to PostgreSQL
	db := database.New(&cfg.DB)
	defer db.Close()

	// 3. Initialize file storage: R2 when configured, local disk otherwise
	var fileStore storage.Store
	if cfg.R2.Enabled() {
		fileStore, err = storage.NewR2Store(
			cfg.R2.AccountID, cfg.R2.AccessKey, cfg.R2.SecretKey,
			cfg.R2.Bucket, cfg.R2.PublicURL,
		)
		if err != nil {
			log.Fatalf("Failed to initialize R2 storage: %v", err)
		}
		log.Println("File storage: Cloudflare R2")
	} else {
		fileStore, err = storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize file storage: %v", err)
		}
		log.Println("File storage: local disk")
	}

	// 4. Payment gateway (optional — sync endpoints return 503 when absent)
	var paymentSource gateway.PaymentSource
	if cfg.Stripe.SecretKey != "" {
		paymentSource = gateway.NewStripeGateway(cfg.Stripe.SecretKey)
		log.Println("Payment gateway: Stripe")
	}

	// 5. Set up router with global middleware
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 6. Initialize handlers with their dependencies
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	accessHandler := handlers.NewAccessHandler()
	clientHandler := handlers.NewClientHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db, paymentSource)
	orgHandler := handlers.NewOrganizationHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)
	settingsHandler := handlers.NewSettingsHandler(db)
	userHandler := handlers.NewUserHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	activityHandler := handlers.NewActivityHandler(db)
	uploadHandler := handlers.NewUploadHandler(db, fileStore, cfg.Upload.Dir)

	// Start background jobs
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	go cron.NewNotifier(db).Start(jobCtx)

	pool := db.GetPool()

	// 7. Public routes (no authentication required)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("SweepOS API"))
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(db.Health())
	})
	r.Handle("/metrics", metrics.Handler())

	// Auth routes — login is rate limited per IP
	r.Post("/api/auth/register", authHandler.Register)
	r.With(middleware.RateLimit(
		rate.Every(time.Minute/time.Duration(cfg.LoginRateLimit)), cfg.LoginRateLimit,
	)).Post("/api/auth/login", authHandler.Login)

	// Serve uploaded files (local storage only — R2 serves from its public URL)
	r.Get("/api/files/*", uploadHandler.ServeFile)

	// 8. Protected routes (require valid JWT)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		// Current user profile
		r.Get("/api/auth/me", authHandler.GetMe)

		// Access notices for gated frontend tabs
		r.Get("/api/access/notice", accessHandler.GetNotice)
		r.Get("/api/access/features", accessHandler.ListFeatures)

		// Dashboard (read-only — accessible to all authenticated users)
		r.Get("/api/dashboard/summary", dashboardHandler.GetSummary)

		// Notifications (user-scoped, all authenticated users)
		r.Get("/api/notifications", notificationHandler.List)
		r.Get("/api/notifications/unread-count", notificationHandler.UnreadCount)
		r.Put("/api/notifications/read-all", notificationHandler.MarkAllRead)
		r.Put("/api/notifications/{id}/read", notificationHandler.MarkRead)

		// Clients — gated behind the "clients" feature for tenant users
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireFeature(pool, access.FeatureClients))

			r.Get("/api/clients", clientHandler.List)
			r.Route("/api/clients/{id}", func(r chi.Router) {
				r.Get("/", clientHandler.GetByID)
				r.Get("/payments", paymentHandler.ListByClient)
			})

			// Write operations restricted to member role and above
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireMinRole("member"))

				r.Post("/api/clients", clientHandler.Create)
				r.Put("/api/clients/{id}", clientHandler.Update)
				r.Post("/api/clients/{id}/payments", paymentHandler.Record)
				r.Post("/api/clients/{id}/attachments", uploadHandler.Upload)
			})
			r.With(middleware.RequireMinRole("admin")).
				Delete("/api/clients/{id}", clientHandler.Delete)

			// Stripe sync additionally requires the "stripe" feature
			r.With(
				middleware.RequireFeature(pool, access.FeatureStripe),
				middleware.RequireMinRole("member"),
			).Post("/api/clients/{id}/payments/sync", paymentHandler.Sync)
		})

		// User management — gated behind the "users" feature
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireFeature(pool, access.FeatureUsers))
			r.Use(middleware.RequireMinRole("admin"))

			r.Get("/api/users", userHandler.List)
			r.Put("/api/users/{id}/role", userHandler.UpdateRole)
			r.Delete("/api/users/{id}", userHandler.Delete)
		})

		// Platform operations restricted to admin and above
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole("admin"))

			r.Get("/api/activity", activityHandler.List)

			r.Get("/api/organizations", orgHandler.List)
			r.Post("/api/organizations", orgHandler.Create)
			r.Route("/api/organizations/{id}", func(r chi.Router) {
				r.Get("/", orgHandler.GetByID)
				r.Put("/", orgHandler.Update)
			})
		})

		// super_admin only: destructive tenant ops, settings, global health
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole("super_admin"))

			r.Delete("/api/organizations/{id}", orgHandler.Delete)
			r.Get("/api/settings", settingsHandler.Get)
			r.Put("/api/settings", settingsHandler.Update)
			r.Get("/api/health/global", dashboardHandler.GetGlobalHealth)
		})
	})

	// 9. Start server with graceful shutdown
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server started on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-done
	log.Println("Server stopped")
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
