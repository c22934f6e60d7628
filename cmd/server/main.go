package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"presence/internal/attendance/events"
	attendancehandler "presence/internal/attendance/handler"
	attendancemetrics "presence/internal/attendance/metrics"
	attendanceservice "presence/internal/attendance/service"
	attendancestore "presence/internal/attendance/store"
	"presence/internal/identity"
	"presence/internal/leave"
	leavecache "presence/internal/leave/cache"
	leavemodels "presence/internal/leave/models"
	leavestore "presence/internal/leave/store"
	"presence/internal/platform/config"
	"presence/internal/platform/httpserver"
	"presence/internal/platform/logger"
	platformmetrics "presence/internal/platform/metrics"
	"presence/internal/platform/postgres"
	platformredis "presence/internal/platform/redis"
	"presence/internal/roster"
	rostercache "presence/internal/roster/cache"
	rostermodels "presence/internal/roster/models"
	rosterstore "presence/internal/roster/store"
	httptransport "presence/internal/transport/http"
)

// main wires dependencies, starts the HTTP server and the leave refresher,
// and shuts both down on SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type sources struct {
	store   attendancestore.Store
	tx      attendanceservice.StoreTx
	roster  roster.Source
	leave   leave.Source
	db      *sql.DB
	cleanup []func()
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	src, err := buildSources(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for i := len(src.cleanup) - 1; i >= 0; i-- {
			src.cleanup[i]()
		}
	}()

	rosterSource := src.roster
	leaveSource := src.leave
	var refresher attendancehandler.LeaveRefresher
	var leaveRefresher *leave.Refresher

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		src.cleanup = append(src.cleanup, func() { _ = redisClient.Close() })
		rosterSource = rostercache.New(rosterSource,
			platformredis.NewJSONCache[rostermodels.Roster](redisClient, "presence:roster:", cfg.Cache.TTL), log)
		cachedLeave := leavecache.New(leaveSource,
			platformredis.NewJSONCache[[]leavemodels.LeaveRecord](redisClient, "presence:leave:", cfg.Cache.TTL), log)
		leaveSource = cachedLeave

		leaveRefresher = leave.NewRefresher(cachedLeave, cfg.Office.Location, log)
		if err := leaveRefresher.Start(cfg.Cache.LeaveRefreshSchedule); err != nil {
			return err
		}
		refresher = leaveRefresher
		log.Info("redis caches enabled", "ttl", cfg.Cache.TTL.String(), "leave_refresh", cfg.Cache.LeaveRefreshSchedule)
	}

	publisher, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc := attendanceservice.New(src.store, rosterSource, leaveSource,
		attendanceservice.WithTx(src.tx),
		attendanceservice.WithPublisher(publisher),
		attendanceservice.WithMetrics(attendancemetrics.New(reg)),
		attendanceservice.WithLogger(log),
		attendanceservice.WithLocation(cfg.Office.Location),
		attendanceservice.WithCutoff(cfg.Office.Cutoff),
	)
	tokens := identity.NewTokenService(cfg.JWTSigningKey, identity.DefaultIssuer, identity.DefaultAudience)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:     log,
		Observer:   platformmetrics.New(reg),
		Gatherer:   reg,
		Tokens:     tokens,
		AdminToken: cfg.AdminToken,
		Modules:    []httptransport.RouteRegistrar{attendancehandler.New(svc, refresher, log)},
		Ready: func(ctx context.Context) error {
			if src.db != nil {
				if err := src.db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router, log)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting presence", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if leaveRefresher != nil {
		select {
		case <-leaveRefresher.Stop().Done():
		case <-shutdownCtx.Done():
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// buildSources uses Postgres when DATABASE_URL is set and seeded in-memory
// stores otherwise.
func buildSources(ctx context.Context, cfg config.Server, log *slog.Logger) (*sources, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores with the demo team")
		team := rosterstore.NewInMemory()
		rosterstore.SeedDemoTeam(team)
		store := attendancestore.NewInMemory()
		return &sources{
			store:  store,
			tx:     attendanceservice.NewShardedTx(store),
			roster: team,
			leave:  leavestore.NewInMemory(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &sources{
		store:   attendancestore.NewPostgres(db),
		tx:      newAttendancePostgresTx(db),
		roster:  rosterstore.NewPostgres(db),
		leave:   leavestore.NewPostgres(db),
		db:      db,
		cleanup: []func(){func() { _ = db.Close() }},
	}, nil
}

// buildPublisher uses Kafka when brokers are configured and the log
// otherwise.
func buildPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (events.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NewLog(log), nil
	}
	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := events.EnsureTopic(topicCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic, 3, 1); err != nil {
		return nil, err
	}
	pub, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID, events.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("publishing attendance events", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	return pub, nil
}
