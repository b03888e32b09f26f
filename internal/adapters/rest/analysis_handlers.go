package rest

import (
	"errors"
	"net/http"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
	"github.com/konomissira/missing-records-api/internal/core/port/usecases_port"
)

type AnalysisHandler struct {
	reconcileBatchUC      usecases_port.ReconcileBatchUseCase
	getProcessingStatusUC usecases_port.GetProcessingStatusUseCase
	getBatchStatisticsUC  usecases_port.GetBatchStatisticsUseCase
}

func NewAnalysisHandler(reconcileBatchUC usecases_port.ReconcileBatchUseCase,
	getProcessingStatusUC usecases_port.GetProcessingStatusUseCase,
	getBatchStatisticsUC usecases_port.GetBatchStatisticsUseCase) *AnalysisHandler {
	return &AnalysisHandler{
		reconcileBatchUC:      reconcileBatchUC,
		getProcessingStatusUC: getProcessingStatusUC,
		getBatchStatisticsUC:  getBatchStatisticsUC,
	}
}

// GetMissingRecords обрабатывает GET /api/v1/analysis/missing/{batchID}
func (h *AnalysisHandler) GetMissingRecords(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "GetMissingRecords",
		"batch_id": batchID,
	})
	handlerLogger.Debug("Processing request to reconcile batch", nil)

	result, err := h.reconcileBatchUC.Execute(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to reconcile batch")
		return
	}

	RespondWithJSON(w, http.StatusOK, toMissingRecordsResponseDTO(result))
}

// GetProcessingStatus обрабатывает GET /api/v1/analysis/status/{batchID}
func (h *AnalysisHandler) GetProcessingStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "GetProcessingStatus",
		"batch_id": batchID,
	})

	result, err := h.getProcessingStatusUC.Execute(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to compute processing status")
		return
	}

	RespondWithJSON(w, http.StatusOK, toProcessingStatusResponseDTO(result))
}

// GetBatchStatistics обрабатывает GET /api/v1/analysis/statistics/{batchID}
func (h *AnalysisHandler) GetBatchStatistics(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "GetBatchStatistics",
		"batch_id": batchID,
	})

	result, err := h.getBatchStatisticsUC.Execute(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to compute batch statistics")
		return
	}

	RespondWithJSON(w, http.StatusOK, toBatchStatisticsResponseDTO(result))
}
