package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-catalog-service/internal/app"
	"quiz-catalog-service/internal/catalog"
	"quiz-catalog-service/internal/config"
	"quiz-catalog-service/internal/identity"
	filegw "quiz-catalog-service/internal/infra/file"
	pggw "quiz-catalog-service/internal/infra/postgres"
	redisgw "quiz-catalog-service/internal/infra/redis"
	transport "quiz-catalog-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the catalog server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	gateway, cleanup, err := buildGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store := catalog.NewStore(identity.NewGenerator())
	service := app.NewCatalogService(store, gateway)

	warning, _ := service.Bootstrap(ctx)
	if warning != "" {
		log.Printf("bootstrap: %s", warning)
	}

	wsHandler := transport.NewWSHandler(service, cfg.Admin.Password)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/catalog", transport.ExportHandler(service))
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting catalog service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildGateway picks the persistence backend: Postgres when configured,
// else the local JSON snapshot; either one is wrapped by the Redis
// snapshot cache when a Redis address is set.
func buildGateway(ctx context.Context, cfg config.Config) (app.Gateway, func(), error) {
	cleanup := func() {}

	var gateway app.Gateway
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = pool.Close
		gateway = pggw.NewGateway(pool)
	case cfg.Catalog.Path != "":
		gateway = filegw.NewGateway(cfg.Catalog.Path)
	default:
		// No backend configured: a missing file path makes every load fail,
		// so the service runs on the bundled snapshot and saves are warnings.
		gateway = filegw.NewGateway("catalog.json")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		gateway = redisgw.NewGateway(client, gateway, ttl)
	}
	return gateway, cleanup, nil
}
