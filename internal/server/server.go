package server

import (
	"context"
	"encoding/json"
	"time"

	"tracker-makedarun/internal/api"
	"tracker-makedarun/internal/config"
	"tracker-makedarun/internal/location"
	"tracker-makedarun/internal/queue"
	"tracker-makedarun/internal/store"
	"tracker-makedarun/internal/stream"
	"tracker-makedarun/internal/syncer"
	"tracker-makedarun/internal/track"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	Redis    *redis.Client
	Stream   *stream.Hub
	Recorder *track.Recorder
	Client   *api.Client
	Queue    *queue.Queue
	Engine   *syncer.Engine
	Poller   *syncer.Poller
}

func NewServer(cfg config.Config, rdb *redis.Client, provider location.Provider) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	kv := store.NewRedis(rdb)
	client := api.NewClient(cfg, kv)
	q := queue.New(kv)
	engine := syncer.NewEngine(q, func(ctx context.Context, rec track.RunRecord) error {
		_, err := client.CreateRun(ctx, rec)
		return err
	})
	hub := stream.NewHub(rdb)
	geocoder := location.NewHTTPGeocoder(cfg.GeocoderURL)
	recorder := track.NewRecorder(provider, geocoder, hub)

	pollSeconds := cfg.PollSeconds
	if pollSeconds <= 0 {
		pollSeconds = 15
	}
	pollInterval := time.Duration(pollSeconds) * time.Second
	poller := syncer.NewPoller(client.TestConnection, pollInterval, engine.OnConnectivityChange)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		Redis:    rdb,
		Stream:   hub,
		Recorder: recorder,
		Client:   client,
		Queue:    q,
		Engine:   engine,
		Poller:   poller,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	track.RegisterRoutes(s.App.Group("/session"), s.Recorder, s.Engine.SubmitOrQueue)
	queue.RegisterRoutes(s.App.Group("/queue"), s.Queue)
	syncer.RegisterRoutes(s.App.Group("/sync"), s.Engine)
	api.RegisterRoutes(s.App.Group("/runs"), s.Client)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.statusSnapshot)
}

func (s *Server) statusSnapshot() []byte {
	payload, err := json.Marshal(s.Recorder.Status())
	if err != nil {
		return nil
	}
	return payload
}
