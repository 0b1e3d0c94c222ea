package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/config"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/notify"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/round"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/selector"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/sequencer"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/server"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/server/handler"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/server/ws"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/service"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/settle"
)

// trackSetup is the per-track parameter expansion of the engine config.
type trackSetup struct {
	tracks     []round.Track
	cutoffs    map[domain.PeriodKey]int
	thresholds map[domain.GameType]int
	channels   []string
}

// expandTracks flattens the configured (game, durations) pairs into one
// round.Track per duration.
func expandTracks(cfg *config.Config) trackSetup {
	setup := trackSetup{
		cutoffs:    make(map[domain.PeriodKey]int),
		thresholds: make(map[domain.GameType]int),
	}
	for _, tc := range cfg.Engine.Tracks {
		timeline := tc.Timeline
		if timeline == "" {
			timeline = "default"
		}
		setup.thresholds[domain.GameType(tc.Game)] = tc.BettorThreshold
		for _, dur := range tc.Durations {
			key := domain.PeriodKey{
				Game:     domain.GameType(tc.Game),
				Duration: dur,
				Timeline: timeline,
			}
			setup.tracks = append(setup.tracks, round.Track{
				Key:           key,
				CutoffSeconds: tc.CutoffSeconds,
			})
			setup.cutoffs[key] = tc.CutoffSeconds
			setup.channels = append(setup.channels, "rounds:"+key.String())
		}
	}
	return setup
}

// EngineMode runs the round engine: schedulers per track, the event
// sequencer, outcome selection and settlement, and the archiver when
// enabled. No HTTP surface is started.
func (a *App) EngineMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting engine mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startEngine(ctx, g, deps, expandTracks(a.cfg))
	return g.Wait()
}

// ServerMode runs only the HTTP + WebSocket API against shared Postgres and
// Redis; a separate engine deployment drives the rounds.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, expandTracks(a.cfg))
	return g.Wait()
}

// FullMode runs the engine and the API surface in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	setup := expandTracks(a.cfg)
	a.startEngine(ctx, g, deps, setup)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, setup)
	}
	return g.Wait()
}

// startEngine wires selection, settlement, sequencing and scheduling onto
// the errgroup.
func (a *App) startEngine(ctx context.Context, g *errgroup.Group, deps *Dependencies, setup trackSetup) {
	sel := selector.New(deps.ExposureLedger, deps.OverrideCache, nil, setup.thresholds, a.logger)
	processor := settle.New(deps.LockManager, deps.ResultStore, deps.BetStore, sel, deps.OverrideCache, a.logger)

	resolver := &notifyingResolver{
		inner:    processor,
		notifier: deps.Notifier,
		logger:   a.logger,
	}

	seq := sequencer.New(deps.SignalBus, deps.EventDedup, deps.LockManager, a.cfg.Engine.EventTTL.Duration, a.logger)
	g.Go(func() error {
		return seq.Run(ctx)
	})

	resolveTimeout := a.cfg.Engine.ResolveTimeout.Duration
	if resolveTimeout <= 0 {
		resolveTimeout = 30 * time.Second
	}
	sched := round.NewScheduler(setup.tracks, seq, resolver, resolveTimeout, a.logger)
	g.Go(func() error {
		return sched.Run(ctx)
	})

	if deps.Archiver != nil {
		interval := a.cfg.Archive.Interval.Duration
		if interval <= 0 {
			interval = 24 * time.Hour
		}
		g.Go(func() error {
			return deps.Archiver.Run(ctx, interval)
		})
	}
}

// startHTTPServer builds the services and handlers and runs the HTTP server
// plus WebSocket hub on the errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, setup trackSetup) {
	betSvc := service.NewBetService(deps.BetStore, deps.ExposureLedger, setup.cutoffs, a.cfg.Engine.FeeBps, a.logger)
	resultSvc := service.NewResultService(deps.ResultStore, deps.BalanceStore, setup.cutoffs, a.logger)
	adminSvc := service.NewAdminService(deps.OverrideCache, deps.ResultStore, a.logger)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		Tracks:    setup.channels,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(a.logger),
		Rounds:   handler.NewRoundHandler(resultSvc, a.logger),
		Bets:     handler.NewBetHandler(betSvc, a.logger),
		Accounts: handler.NewAccountHandler(resultSvc, a.logger),
		Admin:    handler.NewAdminHandler(adminSvc, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// notifyingResolver decorates the settlement processor with operator alerts
// on failed resolutions. A held claim is another replica doing the same
// work, not a failure, so it never alerts.
type notifyingResolver struct {
	inner    round.Resolver
	notifier interface {
		Notify(ctx context.Context, alert notify.Alert) error
	}
	logger *slog.Logger
}

func (r *notifyingResolver) Resolve(ctx context.Context, period domain.Period) (domain.SettlementReport, error) {
	report, err := r.inner.Resolve(ctx, period)
	if err != nil && !errors.Is(err, domain.ErrLockHeld) {
		if nerr := r.notifier.Notify(ctx, notify.Alert{
			Event:    "settlement_failed",
			Title:    "Settlement failed",
			Detail:   err.Error(),
			Track:    period.Key.String(),
			PeriodID: period.ID,
		}); nerr != nil {
			r.logger.WarnContext(ctx, "settlement failure notification failed",
				slog.String("period", period.ID),
				slog.String("error", nerr.Error()),
			)
		}
	}
	return report, err
}
