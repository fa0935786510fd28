// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-skin-radar/internal/application"
	"telegram-skin-radar/internal/config"
	"telegram-skin-radar/internal/domain/ports/adapter"
	"telegram-skin-radar/internal/infra/adapters/scmm"
	"telegram-skin-radar/internal/infra/adapters/steam"
	tele "telegram-skin-radar/internal/infra/adapters/telegram"
	pg "telegram-skin-radar/internal/infra/db/postgres"
	"telegram-skin-radar/internal/infra/i18n"
	"telegram-skin-radar/internal/infra/logging"
	"telegram-skin-radar/internal/infra/metrics"
	red "telegram-skin-radar/internal/infra/redis"
	"telegram-skin-radar/internal/infra/sched"
	"telegram-skin-radar/internal/infra/security"
	"telegram-skin-radar/internal/infra/web"
	"telegram-skin-radar/internal/infra/worker"
	"telegram-skin-radar/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop telegram, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	creatorCache := red.NewCreatorCache(redisClient)
	stateRepo := red.NewStateRepo(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		log.Fatalf("encryption: %v", err)
	}

	// ---- Translator ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		log.Fatalf("translator: %v", err)
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	creatorRepo := pg.NewPostgresCreatorRepo(pool)
	oppRepo := pg.NewPostgresOpportunityRepo(pool)
	processedRepo := pg.NewPostgresProcessedItemRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Market adapters ----
	marketIndex, err := scmm.NewClient(cfg.SCMM.BaseURL, cfg.SCMM.Timeout)
	if err != nil {
		log.Fatalf("scmm client: %v", err)
	}
	gateway, err := steam.NewMarketGateway(cfg.Steam.BaseURL, cfg.Steam.AppID, cfg.Steam.Currency, cfg.Steam.Timeout)
	if err != nil {
		log.Fatalf("steam gateway: %v", err)
	}

	// ---- Telegram ----
	// The facade is wired after the usecases below; the adapter only needs
	// the pointer at construction time.
	facade := &application.BotFacade{}
	var bot adapter.TelegramBotAdapter
	var realBot *tele.RealTelegramBotAdapter
	if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(
			&cfg.Bot, facade, stateRepo, rateLimiter, translator, cfg.SCMM.PollInterval, logger)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		bot = realBot
	}

	// ---- Use cases ----
	marketSite := strings.TrimSuffix(strings.TrimRight(cfg.SCMM.BaseURL, "/"), "/api")
	userDefaults := usecase.UserDefaults{
		MaxFinds:       cfg.Radar.MaxFinds,
		MaxPriceCents:  cfg.Radar.MaxPriceCents,
		MaxItemAgeDays: cfg.Radar.MaxItemAgeDays,
	}
	userUC := usecase.NewUserUseCase(userRepo, processedRepo, encSvc, txm, userDefaults, logger)
	oppUC := usecase.NewOpportunityUseCase(
		oppRepo, creatorRepo, userRepo, gateway, encSvc, bot, translator,
		cfg.Steam.BaseURL, cfg.Steam.AppID, marketSite, logger)
	radarUC := usecase.NewRadarUseCase(
		marketIndex, userRepo, processedRepo, creatorRepo, creatorCache, oppUC, bot, translator,
		cfg.SCMM.BatchSize, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, creatorRepo, oppRepo, processedRepo, logger)

	facade.UserUC = userUC
	facade.RadarUC = radarUC
	facade.OppUC = oppUC
	facade.StatsUC = statsUC

	if realBot != nil {
		if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
		}
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Scan workers ----
	pool2 := worker.NewPool(cfg.Bot.Workers, logger)
	pool2.Start(ctx)
	radarWorker := sched.NewRadarWorker(cfg.SCMM.PollInterval, radarUC, pool2, logger)
	go func() { _ = radarWorker.Run(ctx) }()
	retentionWorker := sched.NewRetentionWorker(cfg.Radar.Retention, processedRepo, logger)
	go func() { _ = retentionWorker.Run(ctx) }()

	// ---- DB pool gauge ----
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Admin / metrics HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	adminSrv := web.NewServer(statsUC, userUC, oppUC, auth, cfg.Admin.APIKey, logger)
	httpPort := cfg.Admin.Port
	if httpPort == 0 {
		httpPort = 8080
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpPort),
		Handler:           adminSrv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	if realBot != nil {
		realBot.StopPolling()
	}
	cancel()
	pool2.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
