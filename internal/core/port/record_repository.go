package port

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

// RecordRepositoryPort - контракт для адаптера, работающего с записями в БД.
type RecordRepositoryPort interface {
	Save(ctx context.Context, record domain.Record) (*domain.Record, error)
	BatchSave(ctx context.Context, records []domain.Record) (*domain.BatchSaveStats, error)

	FindByBatch(ctx context.Context, batchID int64) ([]domain.Record, error)
	FindByBatchAndStatus(ctx context.Context, batchID int64, status domain.RecordStatus) ([]domain.Record, error)

	// FetchIDs возвращает доменные идентификаторы записей батча с заданным
	// статусом в порядке возрастания. Дубликаты в хранилище не схлопываются,
	// этим занимается движок сверки.
	FetchIDs(ctx context.Context, batchID int64, status domain.RecordStatus) ([]int64, error)

	CountByBatch(ctx context.Context, batchID int64) (*domain.RecordCounts, error)
	// PurgeByBatch удаляет все записи батча и возвращает количество удаленных строк.
	PurgeByBatch(ctx context.Context, batchID int64) (int64, error)
}
