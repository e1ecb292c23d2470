package api

import (
	"log"
	"net/http"

	agentDelivery "propdesk-backend/internal/agent/delivery"
	agentRepo "propdesk-backend/internal/agent/repository"
	authDelivery "propdesk-backend/internal/auth/delivery"
	authRepo "propdesk-backend/internal/auth/repository"
	authUsecase "propdesk-backend/internal/auth/usecase"
	devDelivery "propdesk-backend/internal/developer/delivery"
	devRepo "propdesk-backend/internal/developer/repository"
	leadDelivery "propdesk-backend/internal/lead/delivery"
	leadRepo "propdesk-backend/internal/lead/repository"
	leadUsecasePkg "propdesk-backend/internal/lead/usecase"
	notifDelivery "propdesk-backend/internal/notification/delivery"
	notifUsecase "propdesk-backend/internal/notification/usecase"
	"propdesk-backend/internal/portalsync"
	projDelivery "propdesk-backend/internal/project/delivery"
	projRepo "propdesk-backend/internal/project/repository"
	propDelivery "propdesk-backend/internal/property/delivery"
	propRepo "propdesk-backend/internal/property/repository"
	propUsecasePkg "propdesk-backend/internal/property/usecase"
	"propdesk-backend/pkg/ai"
	"propdesk-backend/pkg/chroma"
	"propdesk-backend/pkg/config"
	"propdesk-backend/pkg/mailbox"
	"propdesk-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	config      *config.Config
	authUsecase authUsecase.AuthUsecase
	leadUsecase leadUsecasePkg.LeadUsecase
	fileStore   storage.FileStore

	authHandler     *authDelivery.AuthHandler
	propertyHandler *propDelivery.PropertyHandler
	agentHandler    *agentDelivery.AgentHandler
	devHandler      *devDelivery.DeveloperHandler
	projectHandler  *projDelivery.ProjectHandler
	leadHandler     *leadDelivery.LeadHandler
	notifHandler    *notifDelivery.NotificationHandler
}

// NewHandler wires the HTTP layer. Optional integrations (AI, Chroma,
// Redis, the lead mailbox) are initialized here so that a missing one
// degrades the corresponding feature instead of failing startup.
func NewHandler(
	cfg *config.Config,
	authUc authUsecase.AuthUsecase,
	deviceRepo authRepo.DeviceTokenRepository,
	properties propRepo.PropertyRepository,
	agents agentRepo.AgentRepository,
	developers devRepo.DeveloperRepository,
	projects projRepo.ProjectRepository,
	leads leadRepo.LeadRepository,
	notifService *notifUsecase.NotificationService,
	orchestrator *portalsync.Orchestrator,
	queue *portalsync.Queue,
	fileStore storage.FileStore,
) *Handler {
	InitRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	aiCfg := ai.DynamicConfig{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiApiKey,
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	}
	aiService, err := ai.NewDescriptionServiceWithDynamicConfig(aiCfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v", err)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	}

	var chromaClient *chroma.ChromaClient
	if cfg.ChromaAPIKey != "" {
		chromaClient, err = chroma.NewChromaClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Chroma client: %v. Similar-property search will not be available.", err)
			chromaClient = nil
		} else {
			log.Println("Chroma client initialized")
		}
	} else {
		log.Println("Warning: CHROMA_API_KEY not set. Similar-property search will not be available.")
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		log.Printf("Redis search cache enabled at %s", cfg.RedisAddr)
	}

	var inbox *mailbox.Client
	if cfg.LeadImapServer != "" && cfg.LeadImapUser != "" {
		inbox = mailbox.NewClient(cfg.LeadImapServer, cfg.LeadImapPort, cfg.LeadImapUser, cfg.LeadImapPassword)
		log.Printf("Lead mailbox configured: %s@%s", cfg.LeadImapUser, cfg.LeadImapServer)
	}

	propertyUc := propUsecasePkg.NewPropertyUsecase(properties, queue, cache, chromaClient, aiService)
	leadUc := leadUsecasePkg.NewLeadUsecase(leads, properties, aiService, inbox, notifService)

	return &Handler{
		config:          cfg,
		authUsecase:     authUc,
		leadUsecase:     leadUc,
		fileStore:       fileStore,
		authHandler:     authDelivery.NewAuthHandler(authUc, deviceRepo),
		propertyHandler: propDelivery.NewPropertyHandler(propertyUc, orchestrator),
		agentHandler:    agentDelivery.NewAgentHandler(agents),
		devHandler:      devDelivery.NewDeveloperHandler(developers),
		projectHandler:  projDelivery.NewProjectHandler(projects, developers),
		leadHandler:     leadDelivery.NewLeadHandler(leadUc),
		notifHandler:    notifDelivery.NewNotificationHandler(notifService),
	}
}

// LeadUsecase exposes the lead usecase for the mailbox poller.
func (h *Handler) LeadUsecase() leadUsecasePkg.LeadUsecase {
	return h.leadUsecase
}

// Upload stores an image and returns its public URL
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	url, err := h.fileStore.Save(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Static("/uploads", h.config.UploadDir)

	SetupRoutes(r, h)

	return r.Run(addr)
}
