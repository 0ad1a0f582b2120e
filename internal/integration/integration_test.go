package integration

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-catalog-service/internal/app"
	"quiz-catalog-service/internal/catalog"
	"quiz-catalog-service/internal/domain"
	"quiz-catalog-service/internal/identity"
	infrapg "quiz-catalog-service/internal/infra/postgres"
	pgmigrations "quiz-catalog-service/internal/infra/postgres/migrations"
	infraredis "quiz-catalog-service/internal/infra/redis"
)

func TestCatalogPersistenceEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	gateway := infraredis.NewGateway(redisClient, infrapg.NewGateway(pool), 5*time.Minute)

	// Author a catalog through one service instance and save it.
	store := catalog.NewStore(identity.NewGenerator())
	service := app.NewCatalogService(store, gateway)
	if warning, err := service.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	} else if warning != "" {
		t.Fatalf("unexpected bootstrap warning on empty database: %q", warning)
	}

	subject := store.CreateSubject("Geography")
	quiz, err := store.CreateQuiz(subject.ID, "Capitals")
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if _, err := store.AddQuestion(subject.ID, quiz.ID, domain.QuestionDraft{
		Text: "Capital of France?",
		Type: domain.QuestionMCQ,
		Options: []domain.OptionDraft{
			{Text: "Paris", Correct: true},
			{Text: "Lyon"},
		},
	}); err != nil {
		t.Fatalf("add question: %v", err)
	}
	if _, err := store.ToggleStartable(subject.ID, quiz.ID); err != nil {
		t.Fatalf("toggle startable: %v", err)
	}
	if err := service.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := store.Snapshot()

	// A fresh service against the same gateway must see the saved catalog.
	store2 := catalog.NewStore(identity.NewGenerator())
	service2 := app.NewCatalogService(store2, gateway)
	if warning, err := service2.Bootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	} else if warning != "" {
		t.Fatalf("unexpected warning: %q", warning)
	}
	if got := store2.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("catalog did not round-trip:\n got %+v\nwant %+v", got, want)
	}

	// Dropping the cache must not lose data: the next load hits Postgres.
	if err := gateway.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	loaded, err := gateway.Load(ctx)
	if err != nil {
		t.Fatalf("load after invalidate: %v", err)
	}
	if !reflect.DeepEqual(loaded, want) {
		t.Fatalf("postgres copy diverged:\n got %+v\nwant %+v", loaded, want)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "catalogdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/catalogdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
