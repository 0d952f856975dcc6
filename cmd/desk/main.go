package main

import (
	"clinic-desk/domain"
	"clinic-desk/internal"
	"clinic-desk/observability"
	"clinic-desk/repositories"
	"clinic-desk/runtime"
	"clinic-desk/sink"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Desk terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run opens the registration desk of one department, lets the patients arrive,
// then closes registration and waits until the last one leaves.
// A first SIGINT/SIGTERM stops the arrivals early, the desk still drains.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	roomSpecs, err := config.RoomSpecs()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(strings.ToUpper(config.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Department
	department := domain.NewDepartment(config.Department)
	for _, spec := range roomSpecs {
		room, err := domain.NewRoom(spec.Name, spec.Capacity,
			domain.WithTreatment(domain.RandomTreatment(config.MaxTreatment)))
		if err != nil {
			return exitConfig, err
		}
		if err := department.AddRoom(room); err != nil {
			return exitConfig, err
		}
	}

	monitoring := observability.NewMonitoringManager(logger)
	dispatcher := runtime.NewDispatcher(logger, department, monitoring, runtime.Options{
		PollInterval:    config.PollInterval,
		SinkTimeout:     config.SinkTimeout,
		RestartInterval: config.RestartInterval,
		MetricInterval:  config.MetricInterval,
		BufferSize:      config.BufferSize,
	})

	// 3. Sinks
	board := sink.NewBoard(os.Stdout,
		sink.WithColours(config.BoardColours),
		sink.WithMaxRefreshRate(config.BoardMaxRefresh))
	dispatcher.Add(board)
	if logger.Enabled(ctx, slog.LevelDebug) {
		dispatcher.Add(sink.NewLogSink(logger))
	}

	var visits repositories.IVisitRepository
	if config.BadgerFilepath != "" {
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return exitRuntime, fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		visitRepository := repositories.NewVisitRepository(db, logger)
		snapshotRepository := repositories.NewSnapshotRepository(db, logger)
		visits = visitRepository
		dispatcher.Add(sink.NewJournal(visitRepository, snapshotRepository, logger))

		if logger.Enabled(ctx, slog.LevelDebug) {
			endpoint := "/inspect"
			logger.Info("Debug Badger inspector available",
				"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
			database.StartDebugServer(db, config.DebugPort, endpoint, VisitMapper)
		}
	}

	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return exitRuntime, fmt.Errorf("redis ping error: %w", err)
		}
		dispatcher.Add(sink.NewRedisPublisher(rdb,
			sink.WithPrefix(config.RedisPrefix),
			sink.WithTTL(config.RedisTTL)))
	}

	if config.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(observability.NewDeskCollector(monitoring, dispatcher.Snapshot))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: config.MetricsAddr, Handler: mux}
		go func() {
			logger.Info("Serving metrics", "address", config.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	// 4. Open the desk and let the patients in
	if err := dispatcher.Start(ctx); err != nil {
		return exitRuntime, err
	}
	arrived := arrivals(ctx, logger, dispatcher, config.Patients, config.ArrivalJitter)

	// A second signal kills the process instead of waiting for the drain.
	stop()

	// 5. Drain
	logger.Info("Arrivals over, waiting for the last patients", "arrived", arrived)
	if err := dispatcher.Stop(); err != nil {
		return exitRuntime, err
	}

	stats := dispatcher.Stats()
	logger.Info("Desk closed",
		"registered", stats.Registered,
		"admitted", stats.Admitted,
		"discharged", stats.Discharged,
		"rejected", stats.Rejected,
		"average_treatment", stats.AverageTreatment)

	if visits != nil {
		history, err := visits.GetVisits(department.Name(), 0)
		if err != nil {
			return exitRuntime, fmt.Errorf("visit history: %w", err)
		}
		logger.Info("Visits journaled", "count", len(history))
	}
	return exitOK, nil
}

// arrivals registers patient_1..patient_n with a random gap in [0, jitter) between
// two of them. It returns early when ctx is cancelled.
func arrivals(ctx context.Context, log *slog.Logger, desk *runtime.Dispatcher, n int, jitter time.Duration) int {
	arrived := 0
	for i := 1; i <= n; i++ {
		if ctx.Err() != nil {
			log.Info("Shutdown signal received, no more arrivals")
			return arrived
		}
		patient, err := domain.NewPatient(fmt.Sprintf("patient_%d", i))
		if err != nil {
			log.Error("Invalid patient", "error", err)
			continue
		}
		if desk.Register(patient) {
			arrived++
		}
		if jitter <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(rand.N(jitter)):
		}
	}
	return arrived
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// VisitMapper shows journal entries in the Badger inspector.
func VisitMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	switch {
	case strings.HasPrefix(key, "visit:"):
		row.Type = "VISIT"
	case strings.HasPrefix(key, "status:"):
		row.Type = "STATUS"
	}
	return row
}
