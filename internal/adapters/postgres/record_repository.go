package postgres_adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// PostgresRecordRepository - реализация RecordRepositoryPort для PostgreSQL.
type PostgresRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordRepository - конструктор.
func NewPostgresRecordRepository(pool *pgxpool.Pool) (*PostgresRecordRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresRecordRepository{pool: pool}, nil
}

// Save вставляет одну запись и возвращает ее с заполненными id/created_at.
func (r *PostgresRecordRepository) Save(ctx context.Context, record domain.Record) (*domain.Record, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRecordRepository",
		"method":    "Save",
		"batch_id":  record.BatchID,
		"record_id": record.RecordID,
	})

	repoLogger.Debug("Attempting to insert record.", nil)
	query := `
		INSERT INTO records (batch_id, record_id, status, record_metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	saved := record
	err := r.pool.QueryRow(ctx, query, record.BatchID, record.RecordID, record.Status, record.Metadata).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		repoLogger.Error("Failed to insert record", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	repoLogger.Debug("Successfully inserted record.", nil)
	return &saved, nil
}

// BatchSave вставляет пачку записей в одной транзакции через pgx.Batch.
// Уже существующая пара (record_id, status) внутри батча пропускается,
// чтобы повторная доставка события из очереди не плодила строки.
func (r *PostgresRecordRepository) BatchSave(ctx context.Context, records []domain.Record) (*domain.BatchSaveStats, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "PostgresRecordRepository",
		"method":       "BatchSave",
		"record_count": len(records),
	})

	stats := &domain.BatchSaveStats{}
	if len(records) == 0 {
		return stats, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO records (batch_id, record_id, status, record_metadata)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM records
			WHERE batch_id = $1 AND record_id = $2 AND status = $3
		)`

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(query, record.BatchID, record.RecordID, record.Status, record.Metadata)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		cmdTag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			repoLogger.Error("Failed to execute batch insert", err, nil)
			return nil, fmt.Errorf("failed to batch insert records: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			stats.Skipped++
		} else {
			stats.Saved++
		}
	}
	if err := results.Close(); err != nil {
		repoLogger.Error("Failed to close batch results", err, nil)
		return nil, fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Debug("Successfully saved batch of records.", port.Fields{
		"saved":   stats.Saved,
		"skipped": stats.Skipped,
	})
	return stats, nil
}

// FindByBatch возвращает все записи батча.
func (r *PostgresRecordRepository) FindByBatch(ctx context.Context, batchID int64) ([]domain.Record, error) {
	query := `
		SELECT id, batch_id, record_id, status, record_metadata, created_at
		FROM records WHERE batch_id = $1
		ORDER BY id`
	return r.queryRecords(ctx, "FindByBatch", query, batchID)
}

// FindByBatchAndStatus возвращает записи батча с заданным статусом.
func (r *PostgresRecordRepository) FindByBatchAndStatus(ctx context.Context, batchID int64, status domain.RecordStatus) ([]domain.Record, error) {
	query := `
		SELECT id, batch_id, record_id, status, record_metadata, created_at
		FROM records WHERE batch_id = $1 AND status = $2
		ORDER BY id`
	return r.queryRecords(ctx, "FindByBatchAndStatus", query, batchID, status)
}

func (r *PostgresRecordRepository) queryRecords(ctx context.Context, method, query string, args ...interface{}) ([]domain.Record, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRecordRepository",
		"method":    method,
	})

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query records", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var record domain.Record
		if err := rows.Scan(
			&record.ID, &record.BatchID, &record.RecordID, &record.Status,
			&record.Metadata, &record.CreatedAt,
		); err != nil {
			repoLogger.Error("Failed to scan record row", err, nil)
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during records iteration", err, nil)
		return nil, fmt.Errorf("error during records iteration: %w", err)
	}

	return records, nil
}

// FetchIDs возвращает доменные идентификаторы записей батча с заданным
// статусом, отсортированные по возрастанию.
func (r *PostgresRecordRepository) FetchIDs(ctx context.Context, batchID int64, status domain.RecordStatus) ([]int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRecordRepository",
		"method":    "FetchIDs",
		"batch_id":  batchID,
		"status":    status,
	})

	query := `SELECT record_id FROM records WHERE batch_id = $1 AND status = $2 ORDER BY record_id`
	rows, err := r.pool.Query(ctx, query, batchID, status)
	if err != nil {
		repoLogger.Error("Failed to query record IDs", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query record IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			repoLogger.Error("Failed to scan record ID row", err, nil)
			return nil, fmt.Errorf("failed to scan record ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during record IDs iteration", err, nil)
		return nil, fmt.Errorf("error during record IDs iteration: %w", err)
	}

	return ids, nil
}

// CountByBatch считает строки батча по статусам одним запросом.
func (r *PostgresRecordRepository) CountByBatch(ctx context.Context, batchID int64) (*domain.RecordCounts, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRecordRepository",
		"method":    "CountByBatch",
		"batch_id":  batchID,
	})

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'expected'),
			COUNT(*) FILTER (WHERE status = 'processed')
		FROM records WHERE batch_id = $1`

	var counts domain.RecordCounts
	err := r.pool.QueryRow(ctx, query, batchID).Scan(&counts.Total, &counts.Expected, &counts.Processed)
	if err != nil {
		repoLogger.Error("Failed to count records", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	return &counts, nil
}

// PurgeByBatch удаляет все записи батча и возвращает количество удаленных строк.
func (r *PostgresRecordRepository) PurgeByBatch(ctx context.Context, batchID int64) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRecordRepository",
		"method":    "PurgeByBatch",
		"batch_id":  batchID,
	})

	query := `DELETE FROM records WHERE batch_id = $1`

	cmdTag, err := r.pool.Exec(ctx, query, batchID)
	if err != nil {
		repoLogger.Error("Failed to purge records", err, port.Fields{"query": query})
		return 0, fmt.Errorf("failed to purge records: %w", err)
	}

	repoLogger.Debug("Successfully purged records.", port.Fields{"deleted_count": cmdTag.RowsAffected()})
	return cmdTag.RowsAffected(), nil
}
