// Package file persists the catalog as a single JSON document on disk,
// the local fallback for deployments without a database.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quiz-catalog-service/internal/domain"
)

// Gateway reads and writes the catalog snapshot at a fixed path.
type Gateway struct {
	path string
}

func NewGateway(path string) *Gateway {
	return &Gateway{path: path}
}

func (g *Gateway) Load(_ context.Context) ([]domain.Subject, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var subjects []domain.Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("unmarshal catalog file: %w", err)
	}
	return subjects, nil
}

func (g *Gateway) Save(_ context.Context, subjects []domain.Subject) error {
	data, err := json.MarshalIndent(subjects, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	// Write-then-rename so a crash mid-save never truncates the snapshot.
	dir := filepath.Dir(g.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close catalog file: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}
