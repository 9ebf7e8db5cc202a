// kirti-attend is the attendance web service: it matches camera frames
// against reference faces, records check-in/check-out events, and relays
// assistant messages to the kiosk UI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kirtilabs/kirti/cache"
	"github.com/kirtilabs/kirti/camera"
	"github.com/kirtilabs/kirti/config"
	"github.com/kirtilabs/kirti/facematch"
	"github.com/kirtilabs/kirti/health"
	"github.com/kirtilabs/kirti/ledger"
	logger "github.com/kirtilabs/kirti/log"
	"github.com/kirtilabs/kirti/server"
	"github.com/kirtilabs/kirti/sheet"
	"github.com/kirtilabs/kirti/sqlstore"
	"github.com/kirtilabs/kirti/worker"
)

func main() {
	// 1. Load environment and configuration
	_ = godotenv.Load()
	cfg, err := config.LoadAllConfigs()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	// 2. Initialize the cache and route logs through it
	c, err := cache.New(cfg.Redis)
	if err != nil {
		log.Printf("[BOOT] cache unavailable, continuing without it: %v", err)
	}
	var cacheIface cache.Cache
	if c != nil {
		cacheIface = c
		logger.Init(cache.NewLogWriter(c))
		defer c.Close()
	} else {
		logger.Init(nil)
	}

	// 3. Open the attendance store
	store, closeStore, err := openStore(cfg.Server)
	if err != nil {
		logger.Fatal("Failed to open attendance store", err)
	}
	if closeStore != nil {
		defer closeStore()
	}

	// 4. Build the ledger and its worker queue
	l, err := ledger.New(store, nil)
	if err != nil {
		logger.Fatal("Failed to load the attendance ledger", err)
	}
	queue := worker.New(l, 16)
	queue.Start()
	defer queue.Stop()

	// 5. Wire face matching
	ctx := context.Background()
	refs := facematch.NewRefStore(cfg.Server.ImageDir)
	comparer, err := facematch.NewRekognitionComparer(ctx, cfg.Server.AWSRegion, cfg.Server.SimilarityThreshold)
	if err != nil {
		logger.Fatal("Failed to initialize face comparison", err)
	}
	resolver := facematch.NewResolver(refs, comparer)
	frames := camera.New(cfg.Server.CameraDevice)

	// 6. Boot-time health report
	log.Printf("[BOOT] cache: %s", health.GetCacheStatus(cacheIface, cfg.Redis))
	log.Printf("[BOOT] camera: %s", health.GetCameraStatus(cfg.Server.CameraDevice))
	log.Printf("[BOOT] store: %s", health.GetStoreStatus(cfg.Server.AttendancePath))

	// 7. Serve until shutdown
	srv := server.New(cfg.Server, cfg.Redis, queue, l, refs, resolver, frames, cacheIface, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case err := <-errCh:
		logger.Fatal("Server stopped", err)
	case <-sc:
		fmt.Println("\nShutting down.")
	}
}

// openStore picks the attendance store for the configured driver.
func openStore(cfg *config.ServerConfig) (ledger.Store, func() error, error) {
	switch cfg.StorageDriver {
	case "sqlite":
		s, err := sqlstore.Open(cfg.AttendancePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "", "sheet":
		return sheet.NewStore(cfg.AttendancePath), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
