package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nurzhan-dev/insurance-crm/internal/config"
	"github.com/nurzhan-dev/insurance-crm/internal/database"
	"github.com/nurzhan-dev/insurance-crm/internal/handlers"
	"github.com/nurzhan-dev/insurance-crm/internal/jobs"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	cronjobs "github.com/nurzhan-dev/insurance-crm/internal/scheduler"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/nurzhan-dev/insurance-crm/pkg/logger"
	"github.com/nurzhan-dev/insurance-crm/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// --- Services ---
	activityService := services.NewActivityService(activityRepo)
	progressService := services.NewGoalProgressService(goalRepo, saleRepo, clientRepo)
	userService := services.NewUserService(userRepo)
	clientService := services.NewClientService(clientRepo, progressService, activityService)
	saleService := services.NewSaleService(saleRepo, clientRepo, progressService, activityService)
	goalService := services.NewGoalService(goalRepo)
	reminderService := services.NewReminderService(reminderRepo, userRepo)
	documentService := services.NewDocumentService(documentRepo)
	dashboardService := services.NewDashboardService(clientRepo, saleRepo, goalRepo, reminderRepo, activityService, progressService)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	clientHandler := handlers.NewClientHandler(clientService)
	saleHandler := handlers.NewSaleHandler(saleService)
	goalHandler := handlers.NewGoalHandler(goalService, progressService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	documentHandler := handlers.NewDocumentHandler(documentService, cfg.UploadDir)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Client routes
	protectedClientRoutes := router.PathPrefix("/clients").Subrouter()
	protectedClientRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedClientRoutes.HandleFunc("", clientHandler.CreateClientHandler).Methods("POST")
	protectedClientRoutes.HandleFunc("", clientHandler.GetClientsHandler).Methods("GET")
	protectedClientRoutes.HandleFunc("/export", clientHandler.ExportClientsHandler).Methods("GET")
	protectedClientRoutes.HandleFunc("/import", clientHandler.ImportClientsHandler).Methods("POST")
	protectedClientRoutes.HandleFunc("/{id}", clientHandler.GetClientHandler).Methods("GET")
	protectedClientRoutes.HandleFunc("/{id}", clientHandler.UpdateClientHandler).Methods("PUT")
	protectedClientRoutes.HandleFunc("/{id}", clientHandler.DeleteClientHandler).Methods("DELETE")

	// Sale routes
	protectedSaleRoutes := router.PathPrefix("/sales").Subrouter()
	protectedSaleRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedSaleRoutes.HandleFunc("", saleHandler.CreateSaleHandler).Methods("POST")
	protectedSaleRoutes.HandleFunc("", saleHandler.GetSalesHandler).Methods("GET")
	protectedSaleRoutes.HandleFunc("/{id}", saleHandler.GetSaleHandler).Methods("GET")
	protectedSaleRoutes.HandleFunc("/{id}", saleHandler.UpdateSaleHandler).Methods("PUT")
	protectedSaleRoutes.HandleFunc("/{id}", saleHandler.DeleteSaleHandler).Methods("DELETE")

	// Goal routes
	protectedGoalRoutes := router.PathPrefix("/goals").Subrouter()
	protectedGoalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGoalRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.UpdateGoalHandler).Methods("PUT")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")

	// Goal recalculation is a maintenance action for managers and admins
	recalcRoutes := router.PathPrefix("/goals/recalculate").Subrouter()
	recalcRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	recalcRoutes.Use(middleware.RequireRole("manager", "admin"))
	recalcRoutes.HandleFunc("", goalHandler.RecalculateGoalsHandler).Methods("POST")

	// Reminder routes
	protectedReminderRoutes := router.PathPrefix("/reminders").Subrouter()
	protectedReminderRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedReminderRoutes.HandleFunc("", reminderHandler.CreateReminderHandler).Methods("POST")
	protectedReminderRoutes.HandleFunc("", reminderHandler.GetRemindersHandler).Methods("GET")
	protectedReminderRoutes.HandleFunc("/{id}", reminderHandler.UpdateReminderHandler).Methods("PUT")
	protectedReminderRoutes.HandleFunc("/{id}/complete", reminderHandler.CompleteReminderHandler).Methods("POST")
	protectedReminderRoutes.HandleFunc("/{id}", reminderHandler.DeleteReminderHandler).Methods("DELETE")

	// Document library routes
	protectedDocumentRoutes := router.PathPrefix("/documents").Subrouter()
	protectedDocumentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedDocumentRoutes.HandleFunc("", documentHandler.UploadDocumentHandler).Methods("POST")
	protectedDocumentRoutes.HandleFunc("", documentHandler.GetDocumentsHandler).Methods("GET")
	protectedDocumentRoutes.HandleFunc("/{id}/download", documentHandler.DownloadDocumentHandler).Methods("GET")
	protectedDocumentRoutes.HandleFunc("/{id}", documentHandler.DeleteDocumentHandler).Methods("DELETE")

	// Dashboard
	protectedDashboardRoutes := router.PathPrefix("/dashboard").Subrouter()
	protectedDashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedDashboardRoutes.HandleFunc("", dashboardHandler.GetDashboardHandler).Methods("GET")

	// Team routes (manager only)
	teamRoutes := router.PathPrefix("/team").Subrouter()
	teamRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	teamRoutes.Use(middleware.RequireRole("manager", "admin"))
	teamRoutes.HandleFunc("", userHandler.GetTeamHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/goals", goalHandler.GetAllGoalsHandler).Methods("GET")
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start background jobs
	renewalScanner := jobs.NewRenewalScanner(saleRepo, reminderRepo)
	cronjobs.StartCronJobs(reminderService, progressService, renewalScanner)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
