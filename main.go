package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/credibilitycrm/gateway/internal/client"
	"github.com/credibilitycrm/gateway/internal/config"
	"github.com/credibilitycrm/gateway/internal/handler"
	"github.com/credibilitycrm/gateway/internal/logger"
	"github.com/credibilitycrm/gateway/internal/metrics"
	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/credibilitycrm/gateway/internal/notification"
	"github.com/credibilitycrm/gateway/internal/observability"
	"github.com/credibilitycrm/gateway/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 빌드 시 -ldflags "-X main.version=..."로 주입
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Helpdesk CRM gateway",
		Long:          "Proxies dashboard requests to the helpdesk backend, ingests contact form webhooks and serves in-app notifications.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file (default: ./.env if present)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the gateway version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func serve(parent context.Context, envFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	shutdownTracer, err := observability.InitTracer(ctx, observability.Config{
		ServiceName: cfg.Observability.ServiceName,
		Version:     version,
		Environment: cfg.Server.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("Failed to shut down tracer", zap.Error(err))
		}
	}()

	tokens, err := newTokenSource(cfg, log)
	if err != nil {
		return err
	}
	apiClient := client.NewAPIClient(cfg.Upstream, tokens)
	log.Info("Upstream configured",
		zap.String("base_url", apiClient.BaseURL()),
		zap.Duration("timeout", cfg.Upstream.Timeout),
	)

	store := notification.NewStore(cfg.Notification.Capacity)
	unsubscribe := store.Subscribe(func(list []model.Notification) {
		metrics.Notifications.Set(float64(len(list)))
	})
	defer unsubscribe()

	var idempotency *service.RedisIdempotency
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, contact form deduplication may fail", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		idempotency = service.NewRedisIdempotency(rdb, "contact-form:idem")
	}

	contactForm := newContactFormService(apiClient, store, idempotency, log)
	if slack := client.NewSlackClient(cfg.Slack); slack.IsConfigured() {
		contactForm.WithAlerter(slack)
		log.Info("Slack ticket alerts enabled", zap.String("channel", cfg.Slack.ChannelID))
	}
	dashboard := service.NewDashboardService(apiClient, log)
	go dashboard.Start(ctx, cfg.Dashboard.RefreshInterval)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logger.RequestLogger(log), gin.Recovery())
	router.Use(handler.GatewayMiddlewares(cfg.Server.AllowedOrigins)...)
	handler.RegisterRoutes(router, handler.Handlers{
		Proxy:        handler.NewProxyHandler(apiClient, log),
		ContactForm:  handler.NewContactFormHandler(contactForm, log),
		Notification: handler.NewNotificationHandler(store),
		Stream:       notification.NewHub(store, log, cfg.Server.AllowedOrigins).Stream,
		Dashboard:    handler.NewDashboardHandler(dashboard),
		Metrics:      metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Gateway listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// 우선순위: 서비스 JWT 서명 키 > 고정 API 토큰 > 토큰 없음
func newTokenSource(cfg config.Config, log *zap.Logger) (client.TokenSource, error) {
	switch {
	case cfg.ServiceToken.Secret != "":
		log.Info("Using signed service tokens for upstream calls", zap.String("issuer", cfg.ServiceToken.Issuer))
		src, err := client.NewServiceTokenSource(cfg.ServiceToken.Secret, cfg.ServiceToken.Issuer, cfg.Observability.ServiceName, cfg.ServiceToken.TTL)
		if err != nil {
			return nil, err
		}
		return src, nil
	case cfg.Upstream.Token != "":
		return client.StaticToken(cfg.Upstream.Token), nil
	default:
		log.Warn("No upstream credentials configured, contact form tickets will be sent unauthenticated")
		return client.NoToken{}, nil
	}
}

// typed nil이 인터페이스로 넘어가지 않도록 분기
func newContactFormService(apiClient *client.APIClient, store *notification.Store, idempotency *service.RedisIdempotency, log *zap.Logger) *service.ContactFormService {
	if idempotency == nil {
		return service.NewContactFormService(apiClient, store, nil, log)
	}
	return service.NewContactFormService(apiClient, store, idempotency, log)
}
