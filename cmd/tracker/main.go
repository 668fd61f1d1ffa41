package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracker-makedarun/internal/config"
	"tracker-makedarun/internal/location"
	"tracker-makedarun/internal/server"
	"tracker-makedarun/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig   func() config.Config
	connectRedis func(config.Config) *redis.Client
	notify       func(chan<- os.Signal, ...os.Signal)
	run          func(context.Context, config.Config, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		connectRedis: store.ConnectRedis,
		notify:       signal.Notify,
		run:          Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, rdb, signals, nil); err != nil {
		log.Printf("tracker exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// defaultRoute is the development loop replayed by the virtual GPS when no
// real location source is attached.
var defaultRoute = []location.LatLng{
	{Lat: -6.2000, Lng: 106.8000},
	{Lat: -6.2000, Lng: 106.8050},
	{Lat: -6.2040, Lng: 106.8050},
	{Lat: -6.2040, Lng: 106.8000},
	{Lat: -6.2000, Lng: 106.8000},
}

// Run starts the control API and connectivity poller, then waits for
// termination signals.
func Run(ctx context.Context, cfg config.Config, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	provider := &location.VirtualProvider{
		Route:     defaultRoute,
		SpeedKmh:  9,
		AccuracyM: 5,
	}
	srv := server.NewServer(cfg, rdb, provider)

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	srv.Poller.Start(pollCtx)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	srv.Poller.Stop()
	srv.Engine.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
