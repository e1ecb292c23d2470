package main

import (
	"context"
	"log"
	"strings"

	api "propdesk-backend/cmd/api"
	agentdomain "propdesk-backend/internal/agent/domain"
	agentRepo "propdesk-backend/internal/agent/repository"
	authdomain "propdesk-backend/internal/auth/domain"
	authRepo "propdesk-backend/internal/auth/repository"
	authUsecase "propdesk-backend/internal/auth/usecase"
	devdomain "propdesk-backend/internal/developer/domain"
	devRepo "propdesk-backend/internal/developer/repository"
	leaddomain "propdesk-backend/internal/lead/domain"
	leadRepo "propdesk-backend/internal/lead/repository"
	leadUsecase "propdesk-backend/internal/lead/usecase"
	notifdomain "propdesk-backend/internal/notification/domain"
	notifRepo "propdesk-backend/internal/notification/repository"
	notifUsecase "propdesk-backend/internal/notification/usecase"
	"propdesk-backend/internal/portalsync"
	projdomain "propdesk-backend/internal/project/domain"
	projRepo "propdesk-backend/internal/project/repository"
	propdomain "propdesk-backend/internal/property/domain"
	propRepo "propdesk-backend/internal/property/repository"
	"propdesk-backend/pkg/config"
	"propdesk-backend/pkg/crypto"
	"propdesk-backend/pkg/database"
	"propdesk-backend/pkg/fcm"
	"propdesk-backend/pkg/propertyfinder"
	"propdesk-backend/pkg/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Decrypt secrets that are stored encrypted at rest
	if cfg.EncryptionKey != "" {
		if cfg.PfCompanyLicense != "" {
			plaintext, err := crypto.Decrypt(cfg.PfCompanyLicense, cfg.EncryptionKey)
			if err != nil {
				log.Fatal("Failed to decrypt PF_COMPANY_LICENSE:", err)
			}
			cfg.PfCompanyLicense = plaintext
		}
		if cfg.LeadImapPassword != "" {
			plaintext, err := crypto.Decrypt(cfg.LeadImapPassword, cfg.EncryptionKey)
			if err != nil {
				log.Fatal("Failed to decrypt LEAD_IMAP_PASSWORD:", err)
			}
			cfg.LeadImapPassword = plaintext
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.DeviceToken{},
		&propdomain.Property{},
		&agentdomain.Agent{},
		&devdomain.Developer{},
		&projdomain.Project{},
		&leaddomain.Lead{},
		&notifdomain.Notification{},
		&portalsync.PfLocation{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	deviceTokenRepository := authRepo.NewDeviceTokenRepository(db)
	propertyRepository := propRepo.NewPropertyRepository(db)
	agentRepository := agentRepo.NewAgentRepository(db)
	developerRepository := devRepo.NewDeveloperRepository(db)
	projectRepository := projRepo.NewProjectRepository(db)
	leadRepository := leadRepo.NewLeadRepository(db)
	notificationRepository := notifRepo.NewNotificationRepository(db)

	// Initialize FCM client (optional, notifications work without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, FCM disabled")
	}

	notificationService := notifUsecase.NewNotificationService(notificationRepository, deviceTokenRepository, fcmClient)

	// Initialize PropertyFinder portal integration
	portalClient := propertyfinder.NewClient(cfg.PfBaseURL, cfg.PfTokenURL, cfg.PfClientID, cfg.PfClientSecret)
	locationStore := portalsync.NewLocationStore(db)
	locationResolver := portalsync.NewLocationResolver(locationStore, portalClient)

	orchestrator := portalsync.NewOrchestrator(
		portalClient,
		propertyRepository,
		agentRepository,
		locationResolver,
		notificationService,
		portalsync.Config{CompanyLicense: cfg.PfCompanyLicense},
	)

	syncQueue := portalsync.NewQueue(orchestrator, cfg.PfSyncWorkers, 0)
	syncQueue.Start()

	scheduler := portalsync.NewScheduler(orchestrator, notificationService, cfg.PfSyncIntervalHours, cfg.PfSyncTimezone)
	scheduler.Start()

	// Listing lifecycle events over Pub/Sub, only when a project is configured
	if cfg.GoogleProjectID != "" {
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		eventService, err := portalsync.NewEventService(cfg.GoogleProjectID, topicName, propertyRepository, notificationService, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize listing event service: %v", err)
		} else {
			go eventService.Start(context.Background())
		}
	} else {
		log.Println("[WARN] GoogleProjectID not configured, listing events disabled")
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)

	// File storage for property images
	fileStore, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize file storage:", err)
	}

	// Initialize HTTP handler
	handler := api.NewHandler(
		cfg,
		authUsecaseInstance,
		deviceTokenRepository,
		propertyRepository,
		agentRepository,
		developerRepository,
		projectRepository,
		leadRepository,
		notificationService,
		orchestrator,
		syncQueue,
		fileStore,
	)

	// Lead mailbox poller, only when the inbox is configured
	if cfg.LeadImapServer != "" && cfg.LeadImapUser != "" {
		poller := leadUsecase.NewPoller(handler.LeadUsecase(), cfg.LeadPollMinutes)
		poller.Start()
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
