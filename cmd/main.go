package main

import (
	"attorneyhub/backend/internal/adminfeed"
	"attorneyhub/backend/internal/api/handler"
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/dashboard"
	"attorneyhub/backend/internal/directory"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/evidence"
	"attorneyhub/backend/internal/localization"
	"attorneyhub/backend/internal/logger"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/notify"
	"attorneyhub/backend/internal/storage"
	"attorneyhub/backend/internal/telegram"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupDependencies opens PostgreSQL and, when reachable, Redis. Without
// Redis the hub runs with an in-process cache and a local-only admin feed.
func setupDependencies(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, *redis.Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		rdb.Close()
		rdb = nil
	}
	return db, rdb, nil
}

func evidenceStore(cfg *config.Config) (evidence.Store, error) {
	switch strings.ToLower(cfg.EvidenceBackend) {
	case "s3":
		return evidence.NewS3Store(evidence.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "", "local":
		return evidence.NewLocalStore(cfg.EvidenceDir)
	default:
		return nil, fmt.Errorf("unknown evidence backend %q", cfg.EvidenceBackend)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("Starting Attorney Hub backend", zap.String("env", cfg.Env))

	// 1. Storage and cache
	db, rdb, err := setupDependencies(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	s := storage.NewStorageService(db, rdb)
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var backend cache.Backend = cache.NewMemoryBackend()
	var relay adminfeed.Relay
	if rdb != nil {
		backend = cache.NewRedisBackend(rdb)
		relay = s
	}
	c := cache.New(backend, zlog)
	bus := events.NewBus(zlog)

	text, err := localization.Default()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	// 2. Membership
	var subs membership.SubscriptionProvider
	if cfg.MembershipProviderEnabled {
		subs = s
	}
	resolver := membership.NewResolver(s, subs, c, zlog)
	if !resolver.IntegrationAvailable() {
		zlog.Warn("Membership provider disabled: every member resolves to the free tier until it is enabled")
	}

	// 3. Notifications
	var admin notify.AdminChannel
	var botAPI telegram.BotAPI
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		api, err := telegram.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return err
		}
		zlog.Info("Telegram admin bot authorized", zap.String("account", api.Self.UserName))
		botAPI = api
		admin = telegram.NewAdminNotifier(api, cfg.TelegramAdminChatID)
	}
	var member notify.MemberChannel
	if cfg.SMTPHost != "" {
		mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.AdminEmail)
		member = mailer
		if admin == nil && cfg.AdminEmail != "" {
			admin = mailer
		}
	}
	notifier := notify.NewRouter(admin, member, zlog)

	// 4. Domain services
	files, err := evidenceStore(cfg)
	if err != nil {
		return fmt.Errorf("evidence store: %w", err)
	}
	complaints := complaint.NewService(s, resolver, evidence.NewAttacher(files, s), bus, c, zlog)
	dir := directory.NewService(s, resolver, bus, c, zlog)
	dash := dashboard.NewService(s, resolver, complaints)
	feed := adminfeed.NewHub(relay, zlog)

	// 5. Event wiring
	(&membership.Lifecycle{
		Resolver:     resolver,
		Notifier:     notifier,
		Text:         text,
		Log:          zlog,
		SiteName:     cfg.SiteName,
		DirectoryURL: cfg.SiteURL,
		DashboardURL: cfg.SiteURL + cfg.DashboardURL,
	}).Register(bus)
	(&notify.ComplaintAlerts{Admin: notifier, Text: text, AdminURL: cfg.SiteURL + cfg.AdminURL}).Register(bus)
	complaint.RegisterCacheInvalidation(bus, c)
	dir.Register(bus)
	feed.Register(bus)

	// 6. Background goroutines
	go feed.Run(ctx)
	feed.StartRelayListener(ctx)
	if botAPI != nil {
		go telegram.NewBotService(botAPI, cfg.TelegramAdminChatID, complaints, c, zlog).Run(ctx)
	}
	go func() {
		n, err := resolver.SyncAllUsers(ctx)
		if err != nil {
			zlog.Warn("initial capability sync incomplete", zap.Int("synced", n), zap.Error(err))
		}
	}()

	// 7. HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.Recovery(zlog),
		middleware.RequestLogger(zlog),
		middleware.CORS(cfg.AllowedOrigins()),
		middleware.NewRateLimiter(cfg.MaxRequestsPerMin).Middleware(zlog),
		middleware.SessionAuth(cfg.SessionSecret, zlog),
	)
	r.GET("/healthz", func(gc *gin.Context) { gc.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	csrf, err := handler.NewCSRF(cfg.CSRFSecret)
	if err != nil {
		return err
	}
	if cfg.SessionSecret == "" {
		zlog.Warn("SESSION_SECRET is empty: every request is treated as anonymous")
	}
	h := &handler.Handler{
		Storage:    s,
		Members:    resolver,
		Complaints: complaints,
		Directory:  dir,
		Dashboard:  dash,
		Feed:       feed,
		Bus:        bus,
		Cache:      c,
		Text:       text,
		CSRF:       csrf,
		Log:        zlog,
		Opts: handler.Options{
			SiteURL:       cfg.SiteURL,
			LoginURL:      cfg.LoginURL,
			DashboardURL:  cfg.DashboardURL,
			PricingURL:    cfg.PricingURL,
			AddListingURL: cfg.AddListingURL,
			LogoutURL:     cfg.LogoutURL,
			WebhookSecret: cfg.WebhookSecret,
		},
	}
	h.Register(r)

	server := &http.Server{
		Addr:           ":" + cfg.AppPort,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
