package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intervuai/backend/internal/account"
	"intervuai/backend/internal/config"
	"intervuai/backend/internal/email"
	"intervuai/backend/internal/evaluator"
	"intervuai/backend/internal/handlers"
	"intervuai/backend/internal/interview"
	"intervuai/backend/internal/jobs"
	"intervuai/backend/internal/livekit"
	"intervuai/backend/internal/llm"
	_ "intervuai/backend/internal/llm/cerebras"
	_ "intervuai/backend/internal/llm/gemini"
	"intervuai/backend/internal/lock"
	"intervuai/backend/internal/metrics"
	"intervuai/backend/internal/otp"
	"intervuai/backend/internal/payment"
	"intervuai/backend/internal/prompts"
	mongorepo "intervuai/backend/internal/repositories/mongo"
	"intervuai/backend/internal/routers"
	"intervuai/backend/internal/storage"
	"intervuai/backend/internal/transcription"
	"intervuai/backend/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionLockTTL = 2 * time.Minute

type routeHandlers struct {
	auth      *handlers.AuthHandler
	interview *handlers.InterviewHandler
	payment   *handlers.PaymentHandler
	health    *handlers.HealthHandler
}

func registerRoutes(router *chi.Mux, h routeHandlers, tokens *account.TokenManager, agentKey string) {
	routers.HealthRoutes(router, h.health, metrics.Handler())
	routers.AuthRoutes(router, h.auth, tokens)
	routers.InterviewRoutes(router, h.interview, tokens, agentKey)
	routers.PaymentRoutes(router, h.payment, tokens)
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Agent-Api-Key"},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)
	return router
}

func newRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := utils.NewLogger(cfg.IsDevelopment())
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()
	utils.SetLogger(logger)

	logger.Info("Configuration loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Bool("livekit", cfg.LiveKitConfigured()),
		zap.Bool("razorpay", cfg.RazorpayConfigured()),
		zap.Bool("smtp", cfg.SMTPConfigured()))

	ctx := context.Background()

	mongoClient, err := mongorepo.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	users, err := mongorepo.NewUserRepo(ctx, mongoClient)
	if err != nil {
		logger.Fatal("Failed to initialize user repository", zap.Error(err))
	}
	interviews, err := mongorepo.NewInterviewRepo(ctx, mongoClient)
	if err != nil {
		logger.Fatal("Failed to initialize interview repository", zap.Error(err))
	}
	payments, err := mongorepo.NewPaymentRepo(ctx, mongoClient)
	if err != nil {
		logger.Fatal("Failed to initialize payment repository", zap.Error(err))
	}
	otps, err := mongorepo.NewOTPRepo(ctx, mongoClient)
	if err != nil {
		logger.Fatal("Failed to initialize OTP repository", zap.Error(err))
	}

	rdb := newRedis(cfg)
	var locker lock.Locker = lock.NewLocalLocker()
	readiness := map[string]handlers.Pinger{"mongo": mongoClient}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		locker = lock.NewRedisLocker(rdb, sessionLockTTL)
		readiness["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		logger.Info("REDIS_ADDR not set, using in-process session locks")
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}
	aiProvider, err := llm.NewProvider(cfg.AIProvider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}
	ai := evaluator.New(aiProvider, promptManager, logger, evaluator.WithFallback(cfg.AIFallbackEnabled))

	deps := interview.Deps{
		Interviews: interviews,
		Accounts:   users,
		AI:         ai,
		Transcriber: transcription.NewDeepgramClient(transcription.DeepgramConfig{
			APIKey: cfg.DeepgramAPIKey,
			Model:  cfg.DeepgramModel,
		}),
		Rooms:  livekit.NewIssuer(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
		Locker: locker,
		Logger: logger,
	}
	if cfg.AudioBucket != "" {
		deps.Audio = storage.NewAudioArchive(storage.S3Config{
			Bucket:    cfg.AudioBucket,
			Region:    cfg.AWSRegion,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		logger.Info("Answer audio archival enabled", zap.String("bucket", cfg.AudioBucket))
	}
	interviewService := interview.NewService(deps)

	var otpVerifier account.OTPVerifier
	var otpIssuer handlers.OTPIssuer
	if cfg.SMTPConfigured() {
		sender := email.NewSMTPSender(email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		otpService := otp.NewService(otps, sender, rdb, logger)
		otpVerifier, otpIssuer = otpService, otpService
	}

	var google account.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = account.NewIDTokenVerifier(cfg.GoogleClientID)
	}

	tokens := account.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	accountService := account.NewService(users, tokens, google, otpVerifier, cfg.SignupCredits, logger)

	paymentService := payment.NewService(payments, users,
		payment.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)

	cleanup := jobs.NewCleanupJob(otps, payments, jobs.CleanupConfig{
		Schedule:   cfg.CleanupSchedule,
		PendingTTL: cfg.PendingPaymentTTL,
	}, logger)
	if err := cleanup.Start(); err != nil {
		logger.Error("Failed to start cleanup job", zap.Error(err))
	}

	debug := cfg.IsDevelopment()
	router := newRouter(cfg)
	registerRoutes(router, routeHandlers{
		auth:      handlers.NewAuthHandler(accountService, otpIssuer, logger, debug),
		interview: handlers.NewInterviewHandler(interviewService, logger, debug),
		payment:   handlers.NewPaymentHandler(paymentService, logger, debug),
		health:    handlers.NewHealthHandler(readiness),
	}, tokens, cfg.AgentAPIKey)

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// answers are transcribed and scored inline
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("IntervuAI API starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("IntervuAI API shutting down...")
	cleanup.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect failed", zap.Error(err))
	}
	logger.Info("IntervuAI API exited")
}
