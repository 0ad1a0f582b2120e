package app

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"quiz-catalog-service/internal/catalog"
	"quiz-catalog-service/internal/domain"
)

// Gateway abstracts where the catalog is persisted (file, Postgres,
// Redis-cached, etc). Load returns the ordered subject sequence; Save
// writes the whole catalog.
type Gateway interface {
	Load(ctx context.Context) ([]domain.Subject, error)
	Save(ctx context.Context, subjects []domain.Subject) error
}

// ErrSaveInFlight is returned when a save is requested while another one
// has not finished; the caller should disable its save affordance instead
// of queueing.
var ErrSaveInFlight = errors.New("save already in progress")

//go:embed fallback_catalog.json
var fallbackCatalogJSON []byte

// CatalogService wires the in-memory catalog to its persistence gateway:
// bootstrap with fallback, guarded saves, and session construction.
type CatalogService struct {
	store   *catalog.Store
	gateway Gateway

	mu        sync.Mutex
	saving    bool
	lastSaved []byte
}

func NewCatalogService(store *catalog.Store, gateway Gateway) *CatalogService {
	return &CatalogService{store: store, gateway: gateway}
}

// Catalog exposes the store for transports and read-only collaborators.
func (s *CatalogService) Catalog() *catalog.Store {
	return s.store
}

// NewAdminSession returns a registered authoring cursor.
func (s *CatalogService) NewAdminSession() *catalog.AdminSession {
	return s.store.NewAdminSession()
}

// NewAttempt returns a registered quiz-taking cursor.
func (s *CatalogService) NewAttempt() *catalog.Attempt {
	return s.store.NewAttempt()
}

// Bootstrap loads the catalog through the gateway. A load failure is never
// fatal: the bundled snapshot is substituted once and a non-fatal warning
// is returned for the UI to surface.
func (s *CatalogService) Bootstrap(ctx context.Context) (warning string, err error) {
	subjects, loadErr := s.gateway.Load(ctx)
	if loadErr != nil {
		subjects = fallbackCatalog()
		warning = fmt.Sprintf("could not load catalog, using bundled snapshot: %v", loadErr)
	}
	s.store.Replace(subjects)
	s.recordPersisted(subjects)
	return warning, nil
}

// Save persists the current catalog. Only one save may be in flight at a
// time; a second request gets ErrSaveInFlight. A gateway failure leaves
// the in-memory catalog as the user's working state and is surfaced as a
// warning by the caller, never as data loss.
func (s *CatalogService) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.saving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	snapshot := s.store.Snapshot()
	if err := s.gateway.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	s.recordPersisted(snapshot)
	return nil
}

// Saving reports whether a save is currently in flight.
func (s *CatalogService) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Dirty reports whether the catalog differs from the last persisted
// snapshot.
func (s *CatalogService) Dirty() bool {
	current, err := json.Marshal(s.store.Snapshot())
	if err != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !bytes.Equal(current, s.lastSaved)
}

func (s *CatalogService) recordPersisted(subjects []domain.Subject) {
	data, err := json.Marshal(subjects)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.lastSaved = data
	s.mu.Unlock()
}

func fallbackCatalog() []domain.Subject {
	var subjects []domain.Subject
	if err := json.Unmarshal(fallbackCatalogJSON, &subjects); err != nil {
		panic(fmt.Sprintf("bundled catalog snapshot invalid: %v", err))
	}
	return subjects
}
