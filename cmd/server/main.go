package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lleps/peinbol/pkg/api"
	"github.com/lleps/peinbol/pkg/config"
	"github.com/lleps/peinbol/pkg/game"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/network"
	"github.com/lleps/peinbol/pkg/queue"
	"github.com/lleps/peinbol/pkg/repositories"
	"github.com/lleps/peinbol/pkg/repositories/models"
	"github.com/lleps/peinbol/pkg/state"
	"github.com/lleps/peinbol/pkg/workers"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	bindAddress := flag.String("addr", "", "ip:port to accept players on (overrides the config)")
	logLevel := flag.String("log-level", "", "Log level (overrides the config)")
	seed := flag.Int64("seed", 0, "World seed (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *bindAddress != "" {
		cfg.Server.BindAddress = *bindAddress
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	logger, err := log.New(parsedLogLevel, cfg.Logging.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	log.SetDefaultLogger(logger)
	defer logger.Sync()
	log.Info("Log level set to %s", parsedLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	var repository repositories.Repository
	var killChan chan *models.Kill
	if cfg.Database.URL != "" {
		repository, err = repositories.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			panic(fmt.Sprintf("Failed to create repository: %v", err))
		}
		defer repository.Close(context.Background())

		killChan = make(chan *models.Kill, 256)
		statsWorker := workers.NewKillStatsWorker(workers.NewKillStatsWorkerOptions{
			Repository: repository,
			KillChan:   killChan,
			Interval:   cfg.Database.FlushInterval,
			BatchSize:  cfg.Database.BatchSize,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			statsWorker.Start(ctx)
		}()
	} else {
		log.Info("No database configured, kill stats are disabled")
	}

	connectionEventQueue := queue.NewInMemoryQueue(0)
	server := network.NewServer(network.NewServerOptions{
		Addr:         cfg.Server.BindAddress,
		Events:       connectionEventQueue,
		OutQueueSize: cfg.Server.OutQueueSize,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	if err := server.Listen(); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Serve(ctx); err != nil {
			log.Error("TCP server stopped: %v", err)
		}
	}()

	snapshots := state.NewInMemorySnapshotStore()
	if cfg.API.Enabled {
		apiServer := api.NewAPIServer(api.NewAPIServerOptions{
			Addr:       cfg.API.Address,
			Snapshots:  snapshots,
			Repository: repository,
			StartedAt:  time.Now(),
		})
		go apiServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Stop(shutdownCtx); err != nil {
				log.Error("Failed to stop API server: %v", err)
			}
		}()
	}

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		EventQueue:        connectionEventQueue,
		Sender:            server,
		SnapshotStore:     snapshots,
		KillChan:          killChan,
		Seed:              cfg.Game.Seed,
		TickInterval:      cfg.Game.TickInterval,
		BroadcastInterval: cfg.Game.BroadcastInterval,
		BulletTTL:         cfg.Game.BulletTTL,
		FireCooldown:      cfg.Game.FireCooldown,
	})

	log.Info("Starting game manager")
	if err := gameManager.Start(ctx); err != nil {
		log.Error("Game loop stopped: %v", err)
	}

	log.Info("Shutting down")
	if err := server.Close(); err != nil {
		log.Error("Failed to close TCP server: %v", err)
	}
	wg.Wait()
}
