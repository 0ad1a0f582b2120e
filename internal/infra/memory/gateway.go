package memory

import (
	"context"
	"sync"

	"quiz-catalog-service/internal/domain"
)

// Gateway is an in-memory catalog gateway, useful for tests and demos.
// FailLoads / FailSaves make the next calls return the given error.
type Gateway struct {
	mu       sync.Mutex
	subjects []domain.Subject
	loadErr  error
	saveErr  error
	saves    int
	loads    int
}

// NewGateway seeds the gateway with an initial catalog.
func NewGateway(subjects []domain.Subject) *Gateway {
	return &Gateway{subjects: domain.CloneSubjects(subjects)}
}

func (g *Gateway) Load(_ context.Context) ([]domain.Subject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loads++
	if g.loadErr != nil {
		return nil, g.loadErr
	}
	return domain.CloneSubjects(g.subjects), nil
}

func (g *Gateway) Save(_ context.Context, subjects []domain.Subject) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves++
	if g.saveErr != nil {
		return g.saveErr
	}
	g.subjects = domain.CloneSubjects(subjects)
	return nil
}

// FailLoads makes subsequent Load calls fail with err (nil restores).
func (g *Gateway) FailLoads(err error) {
	g.mu.Lock()
	g.loadErr = err
	g.mu.Unlock()
}

// FailSaves makes subsequent Save calls fail with err (nil restores).
func (g *Gateway) FailSaves(err error) {
	g.mu.Lock()
	g.saveErr = err
	g.mu.Unlock()
}

// Subjects returns a copy of the stored catalog.
func (g *Gateway) Subjects() []domain.Subject {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.CloneSubjects(g.subjects)
}

// Loads reports how many Load calls were made.
func (g *Gateway) Loads() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loads
}

// Saves reports how many Save calls were made.
func (g *Gateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}
