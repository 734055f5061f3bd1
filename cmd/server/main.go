package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jcodes2003/quizzersupa-sub000/internal/cache"
	"github.com/jcodes2003/quizzersupa-sub000/internal/config"
	"github.com/jcodes2003/quizzersupa-sub000/internal/events"
	"github.com/jcodes2003/quizzersupa-sub000/internal/handlers"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories/postgres"
	"github.com/jcodes2003/quizzersupa-sub000/internal/services"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
	"github.com/jcodes2003/quizzersupa-sub000/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	questionCache := cache.NewQuestionCache(
		cache.NewRedisCache(redisClient, slogLogger),
		repo.Question(),
		slogLogger,
	)

	var publisher events.EventPublisher
	if cfg.EventsEnabled {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.GetKafkaBrokers(),
			TopicName:    cfg.NotificationTopic,
			Logger:       slogLogger,
		})
		if err != nil {
			logger.Error("Failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	validator := utils.NewValidator()
	serviceManager := services.NewServiceManager(repo, questionCache, publisher, slogLogger, validator)
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
