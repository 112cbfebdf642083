package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storylion-server/internal/authutils"
	"storylion-server/internal/chatstate"
	"storylion-server/internal/clients/ai"
	"storylion-server/internal/clients/imagegen"
	"storylion-server/internal/clients/stt"
	"storylion-server/internal/clients/voice"
	"storylion-server/internal/config"
	"storylion-server/internal/database"
	"storylion-server/internal/handler"
	"storylion-server/internal/logger"
	"storylion-server/internal/messaging"
	"storylion-server/internal/middleware"
	"storylion-server/internal/service"
	"storylion-server/internal/session"
	"storylion-server/internal/storage"
	"storylion-server/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	log.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- External connections ---
	dbPool, err := database.InitDB(ctx, cfg.GetDSN(), cfg.MigrationsDir, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.CloseDB(dbPool, log)
	log.Info("Connected to PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	mqConn, err := connectRabbitMQ(cfg.RabbitMQURL, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mqConn.Close()
	log.Info("Connected to RabbitMQ")

	objectStore, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	log.Info("Connected to object storage", zap.String("bucket", cfg.MinioBucket))

	// --- Clients ---
	textGen := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TextModel)
	transcriber := stt.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.STTModel)
	imageGen := imagegen.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ImageModel)
	voiceEngine := voice.NewClient(cfg.VoiceEngineURL, log)

	// --- Repositories ---
	storyRepo := database.NewPgStoryRepository(dbPool, log)
	moralRepo := database.NewPgMoralRepository(dbPool, log)
	chatRepo := database.NewPgChatRepository(dbPool, log)
	libraryRepo := database.NewPgLibraryRepository(dbPool, log)
	voiceRepo := database.NewPgVoiceRepository(dbPool, log)
	illustRepo := database.NewPgIllustrationRepository(dbPool, log)
	userRepo := database.NewPgUserRepository(dbPool, log)

	// --- Messaging ---
	publisher, err := messaging.NewRabbitMQPublisher(mqConn, cfg.IllustrationTaskQueue, log)
	if err != nil {
		log.Fatal("Failed to create illustration task publisher", zap.Error(err))
	}

	// --- Services ---
	sessions := session.NewRedisStore(redisClient, log)
	chatStates := chatstate.NewMemoryStore()

	pipelineSvc := service.NewPipelineService(sessions, storyRepo, moralRepo, libraryRepo, textGen, log)
	storySvc := service.NewStoryService(storyRepo, illustRepo, publisher, objectStore, log)
	librarySvc := service.NewLibraryService(libraryRepo, storyRepo, log)
	voiceSvc := service.NewVoiceService(voiceRepo, storySvc, voiceEngine, objectStore, log)
	accountSvc := service.NewAccountService(userRepo, log)
	chatSvc := service.NewChatService(chatRepo, storyRepo, libraryRepo, textGen, chatStates, log)

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, log)
	if err != nil {
		log.Fatal("Failed to create JWT verifier", zap.Error(err))
	}

	rooms := handler.NewRoomManager(log)
	apiHandler := handler.NewHandler(pipelineSvc, storySvc, librarySvc, voiceSvc, accountSvc,
		chatSvc, moralRepo, sessions, transcriber, rooms, verifier.VerifyToken, log)

	// --- Background worker ---
	workerHandler := worker.NewHandler(log, storyRepo, illustRepo, imageGen, objectStore)
	consumer := worker.NewConsumer(mqConn, cfg.IllustrationTaskQueue, workerHandler, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		log.Info("Starting illustration worker")
		if err := consumer.Start(workerCtx); err != nil {
			log.Error("Illustration worker stopped with error", zap.Error(err))
		}
	}()

	// --- HTTP server ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.ZapLoggingMiddleware(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	apiHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}

// connectRabbitMQ dials the broker with retries; brokers in compose setups
// come up slower than this service.
func connectRabbitMQ(url string, log *zap.Logger) (*amqp.Connection, error) {
	const maxRetries = 30
	const retryDelay = 3 * time.Second

	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			go func() {
				notifyClose := make(chan *amqp.Error)
				conn.NotifyClose(notifyClose)
				if closeErr := <-notifyClose; closeErr != nil {
					log.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		log.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}
