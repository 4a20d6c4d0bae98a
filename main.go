package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parklopediaAPI/handlers"
	"parklopediaAPI/internal/notification"
	"parklopediaAPI/middleware"
	"parklopediaAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	rewardsService      *services.RewardsService
	alertService        *services.AlertService
	garageService       *services.GarageService
	parkingService      *services.ParkingService
	catalogService      *services.CatalogService
	familyService       *services.FamilyService
	emergencyService    *services.EmergencyService
	notificationService *services.NotificationService
	dispatcher          *services.NotificationDispatcher
	scheduler           *services.Scheduler
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	userService = services.NewUserService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	rewardsService = services.NewRewardsService(dbPool)
	alertService = services.NewAlertService(dbPool)
	garageService = services.NewGarageService(dbPool)
	parkingService = services.NewParkingService(dbPool)
	catalogService = services.NewCatalogService(dbPool)
	familyService = services.NewFamilyService(dbPool)
	emergencyService = services.NewEmergencyService(dbPool)

	// Cross-service wiring. Setters keep construction order flat.
	rewardsService.SetNotificationService(notificationService)
	alertService.SetNotificationService(notificationService)
	garageService.SetNotificationService(notificationService)
	garageService.SetRewardsService(rewardsService)
	parkingService.SetNotificationService(notificationService)
	parkingService.SetRewardsService(rewardsService)
	emergencyService.SetNotificationService(notificationService)
	emergencyService.SetFamilyService(familyService)

	dispatcher = services.NewNotificationDispatcher(notificationService)
	notificationService.SetDispatcher(dispatcher)

	fcmService, err := notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		dispatcher.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	scheduler = services.NewScheduler(alertService, garageService, parkingService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer scheduler.Stop()
	defer dispatcher.Stop()

	userHandler := handlers.NewUserHandler(userService)
	rewardsHandler := handlers.NewRewardsHandler(rewardsService, userService)
	alertHandler := handlers.NewAlertHandler(alertService, userService)
	garageHandler := handlers.NewGarageHandler(garageService, userService)
	parkingHandler := handlers.NewParkingHandler(parkingService, userService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	familyHandler := handlers.NewFamilyHandler(familyService, userService)
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService, userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "parklopedia-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/rewards/streak/evaluate", rewardsHandler.EvaluateStreak).Methods("POST")
	protected.HandleFunc("/rewards/points/award", rewardsHandler.AwardPoints).Methods("POST")
	protected.HandleFunc("/rewards/achievements/check", rewardsHandler.CheckAchievements).Methods("POST")
	protected.HandleFunc("/rewards/achievements", rewardsHandler.GetAchievements).Methods("GET")
	protected.HandleFunc("/rewards/stats", rewardsHandler.GetStats).Methods("GET")
	protected.HandleFunc("/rewards/events", rewardsHandler.GetRecentEvents).Methods("GET")
	protected.HandleFunc("/rewards/catalog", rewardsHandler.GetRewardCatalog).Methods("GET")
	protected.HandleFunc("/rewards/redeem", rewardsHandler.RedeemReward).Methods("POST")
	protected.HandleFunc("/rewards/referral", rewardsHandler.GetReferralStats).Methods("GET")
	protected.HandleFunc("/rewards/referral/apply", rewardsHandler.ApplyReferral).Methods("POST")

	protected.HandleFunc("/alerts", alertHandler.CreateAlert).Methods("POST")
	protected.HandleFunc("/alerts", alertHandler.GetAlerts).Methods("GET")
	protected.HandleFunc("/alerts/dispatch", alertHandler.Dispatch).Methods("POST")
	protected.HandleFunc("/alerts/{id}", alertHandler.DeleteAlert).Methods("DELETE")

	protected.HandleFunc("/catalog/vehicles", catalogHandler.SearchVehicles).Methods("GET")
	protected.HandleFunc("/catalog/compare", catalogHandler.CompareVehicles).Methods("GET")

	protected.HandleFunc("/vehicles", garageHandler.AddVehicle).Methods("POST")
	protected.HandleFunc("/vehicles", garageHandler.GetVehicles).Methods("GET")
	protected.HandleFunc("/vehicles/{id}", garageHandler.GetVehicle).Methods("GET")
	protected.HandleFunc("/vehicles/{id}", garageHandler.DeleteVehicle).Methods("DELETE")
	protected.HandleFunc("/vehicles/{id}/documents", garageHandler.GetDocuments).Methods("GET")
	protected.HandleFunc("/documents", garageHandler.AddDocument).Methods("POST")
	protected.HandleFunc("/documents/{id}", garageHandler.DeleteDocument).Methods("DELETE")
	protected.HandleFunc("/documents/expiry-check", garageHandler.CheckExpiry).Methods("POST")

	protected.HandleFunc("/bookings", parkingHandler.CreateBooking).Methods("POST")
	protected.HandleFunc("/bookings", parkingHandler.GetBookings).Methods("GET")
	protected.HandleFunc("/bookings/{id}/pass", parkingHandler.GetBookingPass).Methods("GET")
	protected.HandleFunc("/bookings/{id}/cancel", parkingHandler.CancelBooking).Methods("PUT")

	protected.HandleFunc("/family/groups", familyHandler.CreateGroup).Methods("POST")
	protected.HandleFunc("/family/groups", familyHandler.GetGroups).Methods("GET")
	protected.HandleFunc("/family/groups/{id}/members", familyHandler.AddMember).Methods("POST")
	protected.HandleFunc("/family/groups/{id}/members", familyHandler.GetMembers).Methods("GET")
	protected.HandleFunc("/family/groups/{id}/members/{memberId}", familyHandler.RemoveMember).Methods("DELETE")

	protected.HandleFunc("/emergency/sos", emergencyHandler.TriggerSOS).Methods("POST")
	protected.HandleFunc("/emergency/incidents/{id}/resolve", emergencyHandler.ResolveIncident).Methods("PUT")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/unregister-device", notificationHandler.UnregisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
