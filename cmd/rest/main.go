package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SpacksD/dulmar1-sub001/internal/bootstrap"
	"github.com/SpacksD/dulmar1-sub001/internal/config"
	"github.com/SpacksD/dulmar1-sub001/internal/server"
	"github.com/SpacksD/dulmar1-sub001/internal/tracer"
	"github.com/SpacksD/dulmar1-sub001/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection,
		database.WithPool(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()
	defer container.Logger.Sync()

	// 5. Start Background Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	if err := container.NotificationService.Start(ctx); err != nil {
		log.Printf("Notification Service Error: %v", err)
	}
	if err := container.Scheduler.Start(); err != nil {
		log.Fatalf("Scheduler Error: %v", err)
	}
	defer container.Scheduler.Stop()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		_ = srv.Shutdown()
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
