package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/config"
	"messenger-service/internal/conversation"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/media"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/signaling"
	"messenger-service/internal/stream"
	"messenger-service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	emitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.messenger", "messenger-service", cfg.Environment)

	mediaStore, err := media.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("failed to prepare media store: %v", err)
	}

	messageRepo := repositories.NewMessageRepo(database)
	registry := stream.NewRegistry()
	engine := conversation.NewEngine(messageRepo, registry)
	relay := signaling.NewRelay(registry)

	messageHandler := handlers.NewMessageHandler(engine, mediaStore, emitter)
	callHandler := handlers.NewCallHandler(relay)
	sseHandler := stream.NewSSEHandler(registry, cfg.SSEKeepalive, cfg.JWTSecret)
	wsHandler := stream.NewWSHandler(registry, cfg.JWTSecret)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api/message")
	api.GET("/ws", wsHandler.Handle)
	api.GET("/:userId", sseHandler.Handle)
	api.POST("/send", authMiddleware, messageHandler.Send)
	api.POST("/send-voice", authMiddleware, messageHandler.SendVoice)
	api.POST("/get", authMiddleware, messageHandler.GetConversation)
	api.GET("/recent", authMiddleware, messageHandler.Recent)
	api.POST("/react", authMiddleware, messageHandler.React)
	api.POST("/revoke", authMiddleware, messageHandler.Revoke)
	api.POST("/delete-for-me", authMiddleware, messageHandler.DeleteForMe)
	api.POST("/delete-conversation", authMiddleware, messageHandler.DeleteConversationForMe)
	api.POST("/call/offer", authMiddleware, callHandler.Offer)
	api.POST("/call/answer", authMiddleware, callHandler.Answer)
	api.POST("/call/ice", authMiddleware, callHandler.Ice)

	router.Static("/uploads", mediaStore.Dir())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, emitter, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
