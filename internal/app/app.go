// Package app assembles one bot process: store, services, command queue,
// sweeper, web server and Discord gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nuvix-market/nuvix-suite/internal/api/discord"
	httptransport "github.com/nuvix-market/nuvix-suite/internal/api/http"
	"github.com/nuvix-market/nuvix-suite/internal/api/http/handlers"
	"github.com/nuvix-market/nuvix-suite/internal/auth"
	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	"github.com/nuvix-market/nuvix-suite/internal/transcript"
	"github.com/nuvix-market/nuvix-suite/internal/worker"
)

const shutdownTimeout = 5 * time.Second

// Gateway is the Discord connection: REST calls plus the event stream.
type Gateway interface {
	discord.Session
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
}

var _ Gateway = (*discordgo.Session)(nil)

// Options override collaborators, mostly for tests.
type Options struct {
	Gateway Gateway
	Logger  *zap.Logger
}

// App is one running bot.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	audit   *zap.Logger
	metrics *observability.Metrics
	store   repository.Store
	queue   *worker.Queue
	sweeper *service.SweepService
	gateway Gateway
	bot     *discord.Bot
	http    *fiber.App
}

// New wires every component. Nothing is started until Run.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gateway := opts.Gateway
	if gateway == nil {
		if cfg.Discord.Token == "" {
			return nil, errors.New("TOKEN is required")
		}
		session, err := discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			return nil, fmt.Errorf("create discord session: %w", err)
		}
		session.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentsMessageContent
		gateway = session
	}

	audit, err := observability.NewAuditLogger(cfg.Storage.AuditLogPath)
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, cfg, cfg.Redis.KeyPrefix+":"+cfg.App.Name, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	queue := worker.NewQueue(cfg.Queue.Size, logger, metrics)
	platform := discord.NewPlatform(gateway, cfg.Discord)

	stats := service.NewStatsService(store.Stats(), logger)
	tickets := service.NewTicketService(service.TicketDependencies{
		Tickets:    store.Tickets(),
		Blacklist:  store.Blacklist(),
		Stats:      stats,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	blacklist := service.NewBlacklistService(service.BlacklistDependencies{
		Blacklist:  store.Blacklist(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	reviews := service.NewReviewService(service.ReviewDependencies{
		Reviews:    store.Reviews(),
		Window:     cfg.Review.PromptTTL(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	sweeper := service.NewSweepService(service.SweepDependencies{
		Tickets:   tickets,
		History:   platform,
		Warner:    platform,
		Serial:    queue,
		Threshold: cfg.Sweeper.InactivityThreshold(),
		Metrics:   metrics,
		Logger:    logger,
	})
	service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Notifier:   platform,
		Audit:      audit,
		Metrics:    metrics,
		Logger:     logger,
	}).RegisterHandlers()

	bot := discord.New(discord.Dependencies{
		Session:   gateway,
		Config:    cfg.Discord,
		Name:      cfg.App.Name,
		Tiers:     auth.NewTierEvaluator(cfg.Roles),
		Queue:     queue,
		Tickets:   tickets,
		Stats:     stats,
		Blacklist: blacklist,
		Reviews:   reviews,
		Archive:   transcript.NewArchive(cfg.Storage.TranscriptsDir),
		Metrics:   metrics,
		Logger:    logger,
	})

	httpApp := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(httpApp, logger, metrics, cfg.App.RequestTimeout())
	routes := httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, time.Now(), map[string]handlers.Pinger{
			"store": store,
		}),
		Staff:   handlers.NewStaffHandler(stats),
		Tickets: handlers.NewTicketsHandler(tickets, reviews, blacklist),
		Metrics: metrics,
	}
	if cfg.Auth.APIEnabled() {
		authService := service.NewAuthService(cfg.Auth, cfg.App.Name)
		routes.Auth = handlers.NewAuthHandler(authService)
		routes.AuthMiddleware = auth.NewAuthMiddleware(authService.TokenManager())
	}
	httptransport.RegisterRoutes(httpApp, routes)

	return &App{
		cfg:     cfg,
		logger:  logger,
		audit:   audit,
		metrics: metrics,
		store:   store,
		queue:   queue,
		sweeper: sweeper,
		gateway: gateway,
		bot:     bot,
		http:    httpApp,
	}, nil
}

// Run blocks until ctx is canceled or a component fails, then stops the rest.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.App.Addr())
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	a.logger.Info("web server listening", zap.String("addr", ln.Addr().String()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.queue.Run(ctx)
	})
	g.Go(func() error {
		return worker.RunSweepWorker(ctx, a.cfg.Sweeper.Interval(), a.sweeper, a.logger)
	})
	g.Go(func() error {
		if err := a.http.Listener(ln); err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		err := a.http.ShutdownWithTimeout(shutdownTimeout)
		_ = ln.Close()
		return err
	})
	g.Go(func() error {
		for _, h := range a.bot.Handlers(ctx) {
			a.gateway.AddHandler(h)
		}
		if err := a.gateway.Open(); err != nil {
			return fmt.Errorf("open discord gateway: %w", err)
		}
		a.logger.Info("discord gateway connected")
		<-ctx.Done()
		return a.gateway.Close()
	})

	err = g.Wait()
	a.logger.Info("bot stopped", zap.Error(err))
	return err
}

// Close releases the store and flushes the audit log.
func (a *App) Close() error {
	_ = a.audit.Sync()
	return a.store.Close()
}
