package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/konomissira/missing-records-api/internal/core/domain"
)

// IngestReporterPort - контракт для публикации отчета о пакетном сохранении
// записей, пришедших из очереди.
type IngestReporterPort interface {
	ReportResults(ctx context.Context, taskID uuid.UUID, stats *domain.BatchSaveStats) error
}
