package port

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

// BatchRepositoryPort - контракт для адаптера, работающего с батчами в БД.
type BatchRepositoryPort interface {
	Create(ctx context.Context, batch domain.Batch) (*domain.Batch, error)
	// GetByID возвращает domain.ErrBatchNotFound, если батча нет.
	GetByID(ctx context.Context, id int64) (*domain.Batch, error)
	GetByName(ctx context.Context, name string) (*domain.Batch, error)
	List(ctx context.Context) ([]domain.Batch, error)
	// Delete каскадно удаляет записи батча.
	Delete(ctx context.Context, id int64) error
}
