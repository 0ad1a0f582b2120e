package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-catalog-service/internal/domain"
)

// Gateway stores each subject as one JSONB row keyed by id, with an
// explicit position column preserving catalog order.
type Gateway struct {
	pool *pgxpool.Pool
}

func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func (g *Gateway) Load(ctx context.Context) ([]domain.Subject, error) {
	rows, err := g.pool.Query(ctx, `SELECT data FROM subjects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	subjects := []domain.Subject{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		var subject domain.Subject
		if err := json.Unmarshal(raw, &subject); err != nil {
			return nil, fmt.Errorf("unmarshal subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return subjects, nil
}

// Save replaces the stored catalog in one transaction so a failed save
// never leaves a partial snapshot behind.
func (g *Gateway) Save(ctx context.Context, subjects []domain.Subject) error {
	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM subjects`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	for position, subject := range subjects {
		data, err := json.Marshal(subject)
		if err != nil {
			return fmt.Errorf("marshal subject %s: %w", subject.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO subjects (id, position, data) VALUES ($1, $2, $3::jsonb)`,
			subject.ID, position, string(data),
		); err != nil {
			return fmt.Errorf("insert subject %s: %w", subject.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
