package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/glp-fleet-go/internal/adapters/api"
	"github.com/andrescamacho/glp-fleet-go/internal/adapters/metrics"
	"github.com/andrescamacho/glp-fleet-go/internal/adapters/persistence"
	adapterRouting "github.com/andrescamacho/glp-fleet-go/internal/adapters/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	domainRouting "github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/infrastructure/bootstrap"
	"github.com/andrescamacho/glp-fleet-go/internal/infrastructure/config"
	"github.com/andrescamacho/glp-fleet-go/internal/infrastructure/database"
	"github.com/andrescamacho/glp-fleet-go/internal/infrastructure/pidfile"
)

func main() {
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configFlag := flag.String("config", "", "Path to config file (default: search standard paths)")
	flag.Parse()

	fmt.Println("GLP Fleet Daemon v0.1.0")
	fmt.Println("=======================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	err := pf.Acquire()
	if err != nil {
		if *forceFlag {
			fmt.Println("Force mode enabled - attempting to kill existing daemon...")
			if killErr := pf.KillExisting(); killErr != nil {
				log.Fatalf("Failed to kill existing daemon: %v", killErr)
			}
			fmt.Println("Existing daemon killed")

			if err := pf.Acquire(); err != nil {
				log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
			}
		} else {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	logger := common.NewStdLogger("glpd")

	// 1. Database connection and schema
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	fmt.Println("Database connected")

	// 2. Repositories
	deliveryRepo := persistence.NewDeliveryRecordRepository(db)
	replanRepo := persistence.NewReplanStatRepository(db)

	// 3. World and scenario
	startTime, err := bootstrap.StartTime(&cfg.Simulation)
	if err != nil {
		return err
	}

	var endTime time.Time
	if cfg.Simulation.DurationDays > 0 {
		endTime = startTime.Add(time.Duration(cfg.Simulation.DurationDays) * 24 * time.Hour)
	}

	env, err := bootstrap.BuildEnvironment(&cfg.World, startTime)
	if err != nil {
		return fmt.Errorf("failed to build environment: %w", err)
	}
	fmt.Printf("Environment built: %dx%d grid, %d depots, %d vehicles\n",
		env.GridWidth(), env.GridHeight(), len(env.Depots()), len(env.Vehicles()))

	queue := simulation.NewEventQueue()
	if err := bootstrap.LoadScenario(&cfg.Simulation, env, queue, startTime, endTime, logger); err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	fmt.Printf("Scenario loaded: %d scheduled events\n", queue.Len())

	// 4. Planner
	plannerFactory := func(width, height int, oracle domainRouting.BlockageOracle) domainRouting.PathPlanner {
		return adapterRouting.NewPathfinder(width, height, oracle)
	}
	planner := planning.NewService(bootstrap.PlanningConfig(&cfg.Solver), plannerFactory, logger)

	// 5. Executor and orchestrator
	executor := simulation.NewExecutor(deliveryRepo, logger)
	orch := simulation.NewOrchestrator(env, queue, planner, executor, shared.NewRealClock(), simulation.Options{
		TickStep:       cfg.Simulation.TickStep,
		SpeedMs:        cfg.Simulation.SpeedMs,
		ReplanInterval: cfg.Simulation.ReplanInterval,
		TicksPerReplan: cfg.Simulation.TicksPerReplan,
		EndTime:        endTime,
	}, logger)
	orch.SetReplanSink(replanRepo)

	// 6. Metrics
	registry := prometheus.NewRegistry()
	orch.SetMetricsRecorder(metrics.NewSimulationMetricsCollector(registry))

	// 7. Websocket snapshot feed
	feed := api.NewSnapshotFeed(logger)
	defer feed.Close()
	orch.SetSnapshotPublisher(feed)

	// 8. Mediator and HTTP control surface
	med := common.NewMediator()
	if err := simulation.RegisterHandlers(med, orch); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}

	server := api.NewServer(&cfg.API, api.NewHandlers(med, logger), feed, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	simErr := make(chan error, 1)
	go func() {
		simErr <- orch.Run(ctx)
	}()

	fmt.Printf("\n✓ Daemon is ready on %s\n", cfg.API.Address)
	fmt.Println("Press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
		fmt.Println("\nShutdown signal received")
		if err := <-simErr; err != nil && err != context.Canceled {
			runErr = err
		}
	case err := <-simErr:
		// Simulation reached its end time or failed; keep serving only
		// long enough to drain, then stop.
		if err != nil && err != context.Canceled {
			runErr = err
		}
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("http shutdown error: %w", err)
	}

	fmt.Println("\nDaemon stopped")
	return runErr
}
