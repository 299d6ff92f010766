package main

import (
	"log"

	api "billmailer/cmd/api"
	auditdomain "billmailer/internal/auditlog/domain"
	auditRepo "billmailer/internal/auditlog/repository"
	auditUsecase "billmailer/internal/auditlog/usecase"
	authdomain "billmailer/internal/auth/domain"
	authRepo "billmailer/internal/auth/repository"
	authUsecase "billmailer/internal/auth/usecase"
	batchUsecase "billmailer/internal/batch/usecase"
	contactdomain "billmailer/internal/contact/domain"
	contactRepo "billmailer/internal/contact/repository"
	contactUsecase "billmailer/internal/contact/usecase"
	"billmailer/pkg/config"
	"billmailer/pkg/database"
	"billmailer/pkg/gmail"
	"billmailer/pkg/sendlock"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &contactdomain.Contact{}, &auditdomain.SendLogEntry{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	contactRepository := contactRepo.NewContactRepository(db)
	sendLogRepo := auditRepo.NewSendLogRepository(db)

	// Initialize Gmail service
	gmailService := gmail.NewService(cfg)

	// Cross-operator send lock backed by Redis. Without Redis the lock
	// degrades to a no-op and only the in-session guards apply.
	var locker batchUsecase.SendLocker = sendlock.Noop{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL: ", err)
		}
		locker = sendlock.New(redis.NewClient(opts))
	} else {
		log.Printf("[WARN] REDIS_URL not configured, cross-operator send lock disabled")
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	contactUsecaseInstance := contactUsecase.NewContactUsecase(contactRepository)
	auditUsecaseInstance := auditUsecase.NewAuditLogUsecase(sendLogRepo)
	batchUsecaseInstance := batchUsecase.NewBatchUsecase(contactUsecaseInstance, auditUsecaseInstance, gmailService, locker)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, contactUsecaseInstance, batchUsecaseInstance, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
