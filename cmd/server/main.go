package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"tempo/internal/absence"
	absencehandler "tempo/internal/absence/handler"
	"tempo/internal/aggregate"
	aggregatemetrics "tempo/internal/aggregate/metrics"
	"tempo/internal/approval"
	approvalhandler "tempo/internal/approval/handler"
	approvalmetrics "tempo/internal/approval/metrics"
	"tempo/internal/calendar"
	calendarhandler "tempo/internal/calendar/handler"
	"tempo/internal/diagnostics"
	diagnosticshandler "tempo/internal/diagnostics/handler"
	"tempo/internal/eventlog"
	eventlogmetrics "tempo/internal/eventlog/metrics"
	"tempo/internal/eventlog/relay"
	"tempo/internal/platform/config"
	"tempo/internal/platform/httpserver"
	"tempo/internal/platform/logger"
	platformredis "tempo/internal/platform/redis"
	"tempo/internal/projection"
	projectionmetrics "tempo/internal/projection/metrics"
	"tempo/internal/snapshot"
	"tempo/internal/tenant"
	tenanthandler "tempo/internal/tenant/handler"
	httptransport "tempo/internal/transport/http"
	"tempo/internal/worklog"
	workloghandler "tempo/internal/worklog/handler"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Event log: postgres when configured, in-memory otherwise. The memory
	// store is a full implementation, so local runs work without infra.
	var events eventlog.Store
	var db *sql.DB
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		defer db.Close()
		events = eventlog.NewPostgres(db, eventlog.WithMetrics(eventlogmetrics.New()))
	} else {
		log.Printf("TEMPO_POSTGRES_URL not set, using in-memory event log")
		events = eventlog.NewInMemory()
	}

	// Snapshot cache: redis when configured. Snapshots are disposable, so a
	// missing cache only costs replay time.
	var snapshots snapshot.Store = snapshot.NewInMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		snapshots = snapshot.NewRedis(redisClient.Client, cfg.Redis.SnapshotTTL)
	}

	engine := aggregate.NewEngine(events, snapshots,
		aggregate.WithLogger(log),
		aggregate.WithMetrics(aggregatemetrics.New()),
		aggregate.WithSnapshotEvery(int64(cfg.SnapshotEvery)),
		aggregate.WithRetries(cfg.AppendRetries),
	)

	worklogService := worklog.NewService(engine)
	absenceService := absence.NewService(engine)
	tenantService := tenant.NewService(engine)
	calendarService := calendar.NewService(engine)
	workflow := approval.NewWorkflow(engine,
		approval.WithPeriodResolver(calendarService),
		approval.WithLogger(log),
		approval.WithMetrics(approvalmetrics.New()),
		approval.WithRetries(cfg.AppendRetries),
	)

	// Projection pipeline: the month-summary view plus its watermarks.
	var marks projection.WatermarkStore
	if db != nil {
		marks = projection.NewPostgresWatermarks(db, "month_summary")
	} else {
		marks = projection.NewInMemoryWatermarks()
	}
	summaryView := projection.NewSummaryView()
	projector := projection.NewProjector(events, marks, summaryView,
		projection.WithLogger(log),
		projection.WithMetrics(projectionmetrics.New()),
	)
	checker := projection.NewChecker(events, marks)
	diagnosticsService := diagnostics.NewService(events, checker)

	router := httptransport.NewRouter(
		func() error {
			if db != nil {
				return db.Ping()
			}
			return nil
		},
		workloghandler.New(worklogService, log),
		absencehandler.New(absenceService, log),
		approvalhandler.New(workflow, log),
		tenanthandler.New(tenantService, log),
		calendarhandler.New(calendarService, log),
		diagnosticshandler.New(diagnosticsService, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return projector.Run(ctx) })

	// Kafka relay is optional: without brokers the log is still fully
	// queryable over the diagnostics API.
	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
		if err != nil {
			log.Fatalf("connect kafka: %v", err)
		}
		defer kafkaClient.Close()
		if err := relay.EnsureTopics(ctx, kafkaClient); err != nil {
			log.Fatalf("ensure kafka topics: %v", err)
		}

		var cursor relay.CursorStore
		if db != nil {
			cursor = relay.NewPostgresCursor(db, "kafka")
		} else {
			cursor = relay.NewInMemoryCursor()
		}
		eventRelay := relay.New(events, cursor, kafkaClient, relay.WithLogger(log))
		group.Go(func() error { return eventRelay.Run(ctx) })
	}

	log.Printf("starting tempo on %s", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Printf("worker shutdown: %v", err)
	}
}
