package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// PostgresBatchRepository - реализация BatchRepositoryPort для PostgreSQL.
type PostgresBatchRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBatchRepository - конструктор.
func NewPostgresBatchRepository(pool *pgxpool.Pool) (*PostgresBatchRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresBatchRepository{pool: pool}, nil
}

// Create вставляет новый батч и возвращает его с заполненными id/created_at.
func (r *PostgresBatchRepository) Create(ctx context.Context, batch domain.Batch) (*domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresBatchRepository",
		"method":     "Create",
		"batch_name": batch.Name,
	})

	repoLogger.Debug("Attempting to insert batch.", nil)
	query := `
		INSERT INTO batches (batch_name, record_type, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	created := batch
	err := r.pool.QueryRow(ctx, query, batch.Name, batch.RecordType, batch.Description).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		// 23505 - unique_violation. Имя батча уникально, гонка между
		// проверкой в use case и вставкой все равно возможна.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			repoLogger.Warn("Batch name already exists.", nil)
			return nil, domain.ErrBatchNameTaken
		}
		repoLogger.Error("Failed to insert batch", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to insert batch: %w", err)
	}

	repoLogger.Debug("Successfully inserted batch.", port.Fields{"batch_id": created.ID})
	return &created, nil
}

// GetByID возвращает батч или domain.ErrBatchNotFound.
func (r *PostgresBatchRepository) GetByID(ctx context.Context, id int64) (*domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresBatchRepository",
		"method":    "GetByID",
		"batch_id":  id,
	})

	query := `
		SELECT id, batch_name, record_type, description, created_at, updated_at
		FROM batches WHERE id = $1`

	var batch domain.Batch
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&batch.ID, &batch.Name, &batch.RecordType, &batch.Description,
		&batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Batch not found.", nil)
			return nil, domain.ErrBatchNotFound
		}
		repoLogger.Error("Failed to query batch", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query batch %d: %w", id, err)
	}

	return &batch, nil
}

// GetByName возвращает батч по имени или nil, если такого имени нет.
// Отсутствие здесь не ошибка: метод используется для проверки уникальности.
func (r *PostgresBatchRepository) GetByName(ctx context.Context, name string) (*domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresBatchRepository",
		"method":     "GetByName",
		"batch_name": name,
	})

	query := `
		SELECT id, batch_name, record_type, description, created_at, updated_at
		FROM batches WHERE batch_name = $1`

	var batch domain.Batch
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&batch.ID, &batch.Name, &batch.RecordType, &batch.Description,
		&batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		repoLogger.Error("Failed to query batch by name", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query batch '%s': %w", name, err)
	}

	return &batch, nil
}

// List возвращает все батчи, новые первыми.
func (r *PostgresBatchRepository) List(ctx context.Context) ([]domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresBatchRepository",
		"method":    "List",
	})

	query := `
		SELECT id, batch_name, record_type, description, created_at, updated_at
		FROM batches ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		repoLogger.Error("Failed to query batches", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	batches := make([]domain.Batch, 0)
	for rows.Next() {
		var batch domain.Batch
		if err := rows.Scan(
			&batch.ID, &batch.Name, &batch.RecordType, &batch.Description,
			&batch.CreatedAt, &batch.UpdatedAt,
		); err != nil {
			repoLogger.Error("Failed to scan batch row", err, nil)
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during batches iteration", err, nil)
		return nil, fmt.Errorf("error during batches iteration: %w", err)
	}

	repoLogger.Debug("Successfully listed batches.", port.Fields{"count": len(batches)})
	return batches, nil
}

// Delete удаляет батч; записи удаляются каскадно (ON DELETE CASCADE).
func (r *PostgresBatchRepository) Delete(ctx context.Context, id int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresBatchRepository",
		"method":    "Delete",
		"batch_id":  id,
	})

	query := `DELETE FROM batches WHERE id = $1`

	cmdTag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		repoLogger.Error("Failed to delete batch", err, port.Fields{"query": query})
		return fmt.Errorf("failed to delete batch %d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Attempted to delete a batch that did not exist.", nil)
		return domain.ErrBatchNotFound
	}

	repoLogger.Debug("Successfully deleted batch.", nil)
	return nil
}
