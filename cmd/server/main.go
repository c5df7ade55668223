package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"announcehub/config"
	"announcehub/internal/api"
	"announcehub/internal/auth"
	"announcehub/internal/cache"
	"announcehub/internal/metrics"
	"announcehub/internal/notify"
	"announcehub/internal/repository"
	"announcehub/internal/service"
	"announcehub/internal/store"
	"announcehub/pkg/async"
	"announcehub/pkg/database"
	"announcehub/pkg/email"
	"announcehub/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 初始化日志
	logger := logger.NewLoggerWithConfig(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	// 初始化数据库连接
	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		logger.Fatal("无法链接到数据库", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("数据库迁移失败", err)
	}

	// 初始化Redis连接，每类数据一个库
	redisClients := make(map[int]*redis.Client)
	redisDB := func(n int) *redis.Client {
		if client, ok := redisClients[n]; ok {
			return client
		}
		client, err := database.NewRedisClient(cfg.Redis, n)
		if err != nil {
			logger.Fatal("无法链接到Redis", "db", n, err)
		}
		redisClients[n] = client
		return client
	}
	defer func() {
		for _, client := range redisClients {
			_ = client.Close()
		}
	}()
	announcementClient := redisDB(cfg.Redis.AnnouncementDB)
	applicationClient := redisDB(cfg.Redis.ApplicationDB)
	cacheClient := redisDB(cfg.Redis.CacheDB)
	authClient := redisDB(cfg.Redis.AuthDB)

	// 创建异步工作器，用于发送通知
	worker := async.NewWorker(cfg.Notify.QueueSize, logger)
	worker.OnResult(func(r async.Result) {
		metrics.RecordAsyncTask(r.Name, r.Error, r.EndTime.Sub(r.StartTime))
	})
	worker.Start(cfg.Notify.Workers)
	defer worker.Stop()

	// 初始化通知渠道，未配置的渠道跳过
	httpClient := &http.Client{Timeout: 10 * time.Second}
	var discord *notify.DiscordSender
	if cfg.Notify.DiscordWebhookURL != "" {
		discord = notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL, httpClient, logger)
	}
	var fcm *notify.FCMSender
	if cfg.Notify.FCMServerToken != "" {
		fcm = notify.NewFCMSender(cfg.Notify.FCMEndpoint, cfg.Notify.FCMServerToken, httpClient, logger)
	}
	emailService := email.NewService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)
	notifier := notify.NewNotifier(worker, discord, fcm, emailService, logger)

	// 初始化存储库
	announcementRepo := repository.NewAnnouncementRepository(
		store.NewRedisStore(announcementClient, ""), cfg.Announcement.MaxTags, logger)
	announcementCache := cache.NewAnnouncementCache(
		store.NewRedisStore(cacheClient, "announcement_cache"), announcementRepo, cfg.Announcement.CacheTTL, logger)
	accountRepo := repository.NewAccountRepository(db)
	roleRepo := repository.NewRoleRepository(authClient)

	// 初始化服务
	announcementService := service.NewAnnouncementService(announcementRepo, announcementCache, cfg.Announcement.LanguageTags, logger)
	applicationRepo := repository.NewApplicationRepository(
		store.NewRedisStore(applicationClient, ""), announcementService,
		cfg.Announcement.MaxTags, cfg.Announcement.ApprovedApplicationTTL, logger)
	reviewService := service.NewReviewService(applicationRepo, notifier, cfg.Announcement.AllowOwnerModify, logger)

	secret, err := auth.LoadOrCreateSecret(context.Background(), authClient, cfg.Auth.SecretKey)
	if err != nil {
		logger.Fatal("加载签名密钥失败", err)
	}
	jwtManager, err := auth.NewJWTManager(secret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("初始化JWT失败", err)
	}

	verifiers := map[string]auth.IdentityVerifier{
		service.ProviderGoogle: auth.NewGoogleVerifier(cfg.Auth.GoogleTokenInfoURL, cfg.Auth.GoogleClientID, httpClient, logger),
	}
	if cfg.Auth.AppleAudience != "" {
		keys := auth.NewJWKSCache(cfg.Auth.AppleKeysURL, httpClient, 0)
		verifiers[service.ProviderApple] = auth.NewAppleVerifier(cfg.Auth.AppleAudience, keys, logger)
	}
	authService := service.NewAuthService(accountRepo, roleRepo, jwtManager, verifiers,
		cfg.Auth.Admins, cfg.Auth.AllowedEmailDomains, logger)

	// 初始化API路由
	router := api.SetupRouter(cfg.LogLevel, logger, api.Services{
		Announcements: announcementService,
		Reviews:       reviewService,
		Auth:          authService,
	})

	// 创建HTTP服务器
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.APIPort),
		Handler: router,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info(fmt.Sprintf("服务器启动于端口: %d", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("启动服务器失败", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("服务器被强制关闭", err)
	}

	logger.Info("服务器已正常退出")
}
