package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quiz-catalog-service/internal/app"
	"quiz-catalog-service/internal/catalog"
	"quiz-catalog-service/internal/domain"
	"quiz-catalog-service/internal/identity"
	"quiz-catalog-service/internal/infra/memory"
)

func seedSubjects() []domain.Subject {
	return []domain.Subject{
		{
			ID:   "s1",
			Name: "Science",
			Quizzes: []domain.Quiz{
				{ID: "z1", Name: "Physics", Startable: true, Questions: []domain.Question{
					{
						ID:   "q1",
						Text: "Unit of force?",
						Type: domain.QuestionMCQ,
						Options: []domain.Option{
							{ID: "o1", Text: "Newton"},
							{ID: "o2", Text: "Joule"},
						},
						CorrectOptionID: "o1",
					},
				}},
			},
		},
	}
}

func newService(gateway app.Gateway) *app.CatalogService {
	store := catalog.NewStore(identity.NewGenerator())
	return app.NewCatalogService(store, gateway)
}

func TestBootstrapLoadsCatalog(t *testing.T) {
	ctx := context.Background()
	service := newService(memory.NewGateway(seedSubjects()))

	warning, err := service.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning: %q", warning)
	}
	if _, ok := service.Catalog().Quiz("s1", "z1"); !ok {
		t.Fatalf("expected loaded quiz reachable")
	}
	if service.Dirty() {
		t.Fatalf("freshly loaded catalog must not be dirty")
	}
}

func TestBootstrapFallsBackOnLoadFailure(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway(nil)
	gateway.FailLoads(errors.New("connection refused"))
	service := newService(gateway)

	warning, err := service.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("bootstrap must never be fatal, got %v", err)
	}
	if warning == "" {
		t.Fatalf("expected a non-fatal warning")
	}
	// The bundled snapshot is substituted once; the catalog is usable.
	if len(service.Catalog().Snapshot()) == 0 {
		t.Fatalf("expected bundled snapshot substituted")
	}
}

func TestSaveFailureRetainsWorkingState(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway(nil)
	service := newService(gateway)
	if _, err := service.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	subject := service.Catalog().CreateSubject("Drafts")
	gateway.FailSaves(errors.New("disk full"))

	if err := service.Save(ctx); err == nil {
		t.Fatalf("expected save failure")
	}
	// In-memory state is the user's working copy; nothing rolls back.
	if _, ok := service.Catalog().Subject(subject.ID); !ok {
		t.Fatalf("failed save must not drop authored data")
	}
	if !service.Dirty() {
		t.Fatalf("catalog must stay dirty after a failed save")
	}

	gateway.FailSaves(nil)
	if err := service.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if service.Dirty() {
		t.Fatalf("catalog must be clean after a successful save")
	}
	if len(gateway.Subjects()) == 0 {
		t.Fatalf("expected catalog persisted")
	}
}

func TestSaveInFlightGuard(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	gateway := &blockingGateway{
		inner:   memory.NewGateway(nil),
		release: release,
		started: make(chan struct{}),
	}
	service := newService(gateway)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = service.Save(ctx)
	}()

	<-gateway.started
	if !service.Saving() {
		t.Fatalf("expected saving flag while a save is in flight")
	}
	if err := service.Save(ctx); !errors.Is(err, app.ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}

	close(release)
	wg.Wait()
	if service.Saving() {
		t.Fatalf("saving flag must clear when the save finishes")
	}
	if err := service.Save(ctx); err != nil {
		t.Fatalf("second save after completion: %v", err)
	}
}

// blockingGateway parks the first Save until release is closed so the
// in-flight guard can be observed.
type blockingGateway struct {
	inner   *memory.Gateway
	release chan struct{}
	started chan struct{}
	first   sync.Once
}

func (g *blockingGateway) Load(ctx context.Context) ([]domain.Subject, error) {
	return g.inner.Load(ctx)
}

func (g *blockingGateway) Save(ctx context.Context, subjects []domain.Subject) error {
	g.first.Do(func() {
		close(g.started)
		<-g.release
	})
	return g.inner.Save(ctx, subjects)
}
