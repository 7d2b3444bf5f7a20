package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nurturelink/consult-api/pkg/auth"
	"github.com/nurturelink/consult-api/pkg/meeting"
	"github.com/nurturelink/consult-api/pkg/messaging/redis"
	"github.com/nurturelink/consult-api/pkg/metrics"
	"github.com/nurturelink/consult-api/pkg/prediction"
	"github.com/nurturelink/consult-api/pkg/security"
	"github.com/nurturelink/consult-api/pkg/storage"

	"github.com/nurturelink/consult-api/internal/config"
	"github.com/nurturelink/consult-api/internal/email"
	"github.com/nurturelink/consult-api/internal/handler"
	adminHandler "github.com/nurturelink/consult-api/internal/handler/admin"
	appointmentHandler "github.com/nurturelink/consult-api/internal/handler/appointment"
	chatHandler "github.com/nurturelink/consult-api/internal/handler/chat"
	childHandler "github.com/nurturelink/consult-api/internal/handler/child"
	consultationHandler "github.com/nurturelink/consult-api/internal/handler/consultation"
	expertHandler "github.com/nurturelink/consult-api/internal/handler/expert"
	healthHandler "github.com/nurturelink/consult-api/internal/handler/health"
	linkHandler "github.com/nurturelink/consult-api/internal/handler/link"
	questionnaireHandler "github.com/nurturelink/consult-api/internal/handler/questionnaire"
	speechHandler "github.com/nurturelink/consult-api/internal/handler/speech"
	uploadHandler "github.com/nurturelink/consult-api/internal/handler/upload"
	userHandler "github.com/nurturelink/consult-api/internal/handler/user"
	"github.com/nurturelink/consult-api/internal/middleware"
	"github.com/nurturelink/consult-api/internal/repository/postgres"
	"github.com/nurturelink/consult-api/internal/router"
	appointmentService "github.com/nurturelink/consult-api/internal/service/appointment"
	authService "github.com/nurturelink/consult-api/internal/service/auth"
	chatService "github.com/nurturelink/consult-api/internal/service/chat"
	childService "github.com/nurturelink/consult-api/internal/service/child"
	consultationService "github.com/nurturelink/consult-api/internal/service/consultation"
	expertService "github.com/nurturelink/consult-api/internal/service/expert"
	linkService "github.com/nurturelink/consult-api/internal/service/link"
	questionnaireService "github.com/nurturelink/consult-api/internal/service/questionnaire"
	speechService "github.com/nurturelink/consult-api/internal/service/speech"
	uploadService "github.com/nurturelink/consult-api/internal/service/upload"
	userService "github.com/nurturelink/consult-api/internal/service/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	childRepo := postgres.NewChildRepository(base)
	expertRepo := postgres.NewExpertRepository(base)
	consultationRepo := postgres.NewConsultationRepository(base)
	linkRepo := postgres.NewLinkRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	chatRepo := postgres.NewChatRepository(base)
	speechRepo := postgres.NewSpeechRepository(base)
	questionnaireRepo := postgres.NewQuestionnaireRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	jwtSvc := auth.NewJWTService(cfg.JWT)
	hasher := security.NewBcryptHasher(security.DefaultCost)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	appMetrics := metrics.NewMetrics("consult", "api")

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	meetingSvc := meeting.NewZoomService(cfg.Zoom)
	predictor := prediction.NewHTTPClient(cfg.Predictor, appMetrics)

	authSvc := authService.NewService(userRepo, expertRepo, tokenRepo, jwtSvc, hasher, emailSvc, cfg.JWT.RefreshExpiryHours, log.Logger)
	userSvc := userService.NewService(userRepo, expertRepo, tokenRepo)
	expertSvc := expertService.NewService(expertRepo, log.Logger)
	childSvc := childService.NewService(childRepo)
	consultationSvc := consultationService.NewService(consultationRepo, childRepo, expertRepo, linkRepo, outboxRepo, log.Logger)
	linkSvc := linkService.NewService(linkRepo, childRepo, consultationRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, linkRepo, meetingSvc, log.Logger)
	chatSvc := chatService.NewService(chatRepo, linkRepo, broker, log.Logger)
	speechSvc := speechService.NewService(speechRepo, childRepo, store, predictor, outboxRepo, appMetrics, log.Logger)
	questionnaireSvc := questionnaireService.NewService(questionnaireRepo, childRepo)
	uploadSvc := uploadService.NewService(store, appMetrics, log.Logger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, authSvc)

	handler.RegisterValidations()

	r := router.NewRouter(authMiddleware, router.Handlers{
		Health:        healthHandler.NewHandler(db),
		User:          userHandler.NewHandler(authSvc, userSvc),
		Child:         childHandler.NewHandler(childSvc),
		Expert:        expertHandler.NewHandler(expertSvc),
		Admin:         adminHandler.NewHandler(expertSvc),
		Consultation:  consultationHandler.NewHandler(consultationSvc),
		Link:          linkHandler.NewHandler(linkSvc),
		Appointment:   appointmentHandler.NewHandler(appointmentSvc),
		Chat:          chatHandler.NewHandler(chatSvc),
		Questionnaire: questionnaireHandler.NewHandler(questionnaireSvc),
		Speech:        speechHandler.NewHandler(speechSvc),
		Upload:        uploadHandler.NewHandler(uploadSvc),
	}, router.Config{
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		TimeoutSeconds: cfg.Server.TimeoutSeconds,
		CORSConfig:     middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
