package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"support-chat-be/internal/config"
	"support-chat-be/internal/controller"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/mailer"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/repository/implementation"
	"support-chat-be/internal/repository/memory"
	"support-chat-be/internal/service"
	"support-chat-be/internal/websocket"
	"support-chat-be/pkg/identity"
	pktNats "support-chat-be/pkg/nats"
)

const auditTopicName = "support-audit"

type Container struct {
	// Controllers
	SupportController controller.ISupportController

	// Background services (exposed for main.go to run)
	AuditService service.IAuditService

	// WebSockets
	Hub *websocket.Hub

	// Middleware shared by route groups
	JwtMiddleware fiber.Handler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")

	verifier := identity.NewJWTVerifier(cfg.App.JWTSecret)
	jwtMiddleware := serverutils.NewJwtMiddleware(verifier)

	// 2. Event bus (in-process) + audit sinks
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// Redis is the optional cross-instance fan-out bridge.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 3. Repositories
	roomRepo := implementation.NewChatRoomRepository(db)
	messageRepo := implementation.NewChatMessageRepository(db)
	userDirectory := implementation.NewUserDirectory(db)
	roomCache := memory.NewRoomCache()

	// 4. WebSocket hub
	hub := websocket.NewHub(rdb, wsLogger)
	hub.Run(context.Background())

	// 5. Services
	var emailSvc mailer.IEmailService
	if cfg.Chat.TranscriptEmail && cfg.SMTP.Host != "" {
		emailSvc = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
		)
	}

	publisherService := service.NewPublisherService(auditTopicName, pubSub)
	auditService := service.NewAuditService(pubSub, auditTopicName, natsPub, sysLogger)

	supportService := service.NewSupportService(
		roomRepo,
		messageRepo,
		userDirectory,
		roomCache,
		hub,
		publisherService,
		emailSvc,
		sysLogger,
	)

	// 6. Transport
	rpcTimeout := time.Duration(cfg.Chat.RPCTimeoutSeconds) * time.Second
	dispatcher := websocket.NewDispatcher(supportService, hub, rpcTimeout, wsLogger)
	wsHandler := websocket.NewHandler(hub, dispatcher, verifier, wsLogger)

	return &Container{
		SupportController: controller.NewSupportController(supportService, wsHandler, jwtMiddleware),
		AuditService:      auditService,
		Hub:               hub,
		JwtMiddleware:     jwtMiddleware,
	}
}
