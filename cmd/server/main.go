package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignatzorin/gig-marketplace/internal/app"
	"github.com/ignatzorin/gig-marketplace/internal/config"
	"github.com/ignatzorin/gig-marketplace/internal/http/middleware"
	httpRouter "github.com/ignatzorin/gig-marketplace/internal/http/router"
	"github.com/ignatzorin/gig-marketplace/internal/infrastructure/stripe"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/quota"
	"github.com/ignatzorin/gig-marketplace/internal/service"
	"github.com/ignatzorin/gig-marketplace/internal/storage"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/auth"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/gig"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/payment"
	"github.com/ignatzorin/gig-marketplace/internal/validation"
	"github.com/ignatzorin/gig-marketplace/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.Env)
	logger.SetLevel(cfg.LogLevel)
	if err := validation.RegisterBindings(); err != nil {
		log.Fatalf("main: %v", err)
	}

	// Хранилище и миграции.
	ledger, err := app.OpenLedger(ctx, cfg, true)
	if err != nil {
		log.Fatalf("main: ошибка подготовки хранилища: %v", err)
	}
	defer ledger.Close()

	// Вспомогательные сервисы.
	clock := common.Clock(time.Now)
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	attachmentStorage, err := storage.NewAttachmentStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	payouts := stripe.NewProvider(cfg.Stripe)
	quotas := quota.NewResolver(ledger.Gigs, ledger.Bids, time.Now)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run(ctx)
	notifier := ws.NewHubNotifier(hub)

	// Use case'ы.
	registerUC := auth.NewRegisterUseCase(ledger.Users, tokenManager, clock)
	loginUC := auth.NewLoginUseCase(ledger.Users, tokenManager)
	refreshUC := auth.NewRefreshUseCase(ledger.Users, tokenManager)
	meUC := auth.NewGetMeUseCase(ledger.Users)
	setPlanUC := auth.NewSetPlanUseCase(ledger.Users, clock)

	getGigUC := gig.NewGetGigUseCase(ledger.Gigs, ledger.Bids, ledger.Users)
	createGigUC := gig.NewCreateGigUseCase(ledger.Gigs, ledger.Users, ledger.Tx, quotas, clock)
	listGigsUC := gig.NewListGigsUseCase(ledger.Gigs)
	listMyGigsUC := gig.NewListMyGigsUseCase(ledger.Gigs)
	historyUC := gig.NewGetHistoryUseCase(getGigUC)
	changeStatusUC := gig.NewChangeStatusUseCase(ledger.Gigs, ledger.Bids, ledger.Users, ledger.Tx, notifier, clock)
	reverseStatusUC := gig.NewReverseChangeStatusUseCase(ledger.Gigs, ledger.Bids, ledger.Users, ledger.Tx, quotas, notifier, clock)
	attachmentUC := gig.NewAddAttachmentUseCase(ledger.Gigs, ledger.Users, ledger.Tx, attachmentStorage, clock)

	placeBidUC := bid.NewPlaceBidUseCase(ledger.Gigs, ledger.Bids, ledger.Users, ledger.Tx, quotas, notifier, clock)
	listBidsUC := bid.NewListBidsUseCase(ledger.Gigs, ledger.Bids, ledger.Users)
	decisionUC := bid.NewUpdateBidStatusUseCase(bid.DecisionVocabulary, ledger.Gigs, ledger.Bids, ledger.Users, ledger.Tx, notifier, clock)
	reviewUC := bid.NewUpdateBidStatusUseCase(bid.ReviewVocabulary, ledger.Gigs, ledger.Bids, ledger.Users, ledger.Tx, notifier, clock)

	currency := cfg.Stripe.SettlementCurrency
	approveUC := payment.NewApprovePaymentUseCase(ledger.Gigs, ledger.Payments, ledger.Transfers, ledger.Users, payouts, notifier, currency, clock)
	paymentHistoryUC := payment.NewPaymentHistoryUseCase(ledger.Payments)
	intentUC := payment.NewCreatePaymentIntentUseCase(ledger.Gigs, ledger.Bids, ledger.Users, payouts, currency)
	accountUC := payment.NewConnectPayoutAccountUseCase(ledger.Users, payouts, clock)
	webhookUC := payment.NewHandleWebhookUseCase(ledger.Payments, ledger.Transfers, ledger.Users, payouts, clock)

	// HTTP хэндлеры.
	var pinger handler.Pinger
	if ledger.DB != nil {
		pinger = ledger.DB
	}

	handlers := httpRouter.Handlers{
		Auth:    handler.NewAuthHandler(registerUC, loginUC, refreshUC, meUC),
		Gig:     handler.NewGigHandler(createGigUC, getGigUC, listGigsUC, listMyGigsUC, historyUC, changeStatusUC, reverseStatusUC, attachmentUC),
		Bid:     handler.NewBidHandler(placeBidUC, listBidsUC, decisionUC, reviewUC),
		Payment: handler.NewPaymentHandler(approveUC, paymentHistoryUC, intentUC, accountUC, webhookUC),
		Admin:   handler.NewAdminHandler(setPlanUC),
		WS:      handler.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:  handler.NewHealthHandler(pinger),
	}

	limiterStore, err := middleware.NewLimiterStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("main: не удалось подготовить хранилище rate limit: %v", err)
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager, limiterStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Get().WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.Get().WithField("port", cfg.HTTPPort).WithField("storage", cfg.StorageDriver).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}
