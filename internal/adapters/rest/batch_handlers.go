package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
	"github.com/konomissira/missing-records-api/internal/core/port/usecases_port"
)

type BatchHandler struct {
	createBatchUC usecases_port.CreateBatchUseCase
	getBatchesUC  usecases_port.GetBatchesUseCase
	deleteBatchUC usecases_port.DeleteBatchUseCase
}

func NewBatchHandler(createBatchUC usecases_port.CreateBatchUseCase,
	getBatchesUC usecases_port.GetBatchesUseCase,
	deleteBatchUC usecases_port.DeleteBatchUseCase) *BatchHandler {
	return &BatchHandler{
		createBatchUC: createBatchUC,
		getBatchesUC:  getBatchesUC,
		deleteBatchUC: deleteBatchUC,
	}
}

// CreateBatch обрабатывает POST /api/v1/batches
func (h *BatchHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var req CreateBatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.BatchName) == "" {
		WriteJSONError(w, http.StatusBadRequest, "batch_name is required")
		return
	}

	recordType, err := domain.ParseRecordType(req.RecordType)
	if err != nil {
		logger.Warn("Invalid record type", port.Fields{"record_type": req.RecordType})
		WriteJSONError(w, http.StatusBadRequest, "Invalid record_type: "+req.RecordType)
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":    "CreateBatch",
		"batch_name": req.BatchName,
	})
	handlerLogger.Debug("Processing request to create batch", nil)

	batch, err := h.createBatchUC.Execute(r.Context(), req.BatchName, recordType, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNameTaken) {
			WriteJSONError(w, http.StatusBadRequest, "Batch with this name already exists")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to create batch")
		return
	}

	RespondWithJSON(w, http.StatusCreated, toBatchResponseDTO(batch))
}

// ListBatches обрабатывает GET /api/v1/batches
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	handlerLogger := logger.WithFields(port.Fields{"handler": "ListBatches"})
	handlerLogger.Debug("Processing request to list batches", nil)

	batches, err := h.getBatchesUC.List(r.Context())
	if err != nil {
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve batches")
		return
	}

	RespondWithJSON(w, http.StatusOK, toBatchResponseDTOs(batches))
}

// GetBatch обрабатывает GET /api/v1/batches/{batchID}
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "GetBatch",
		"batch_id": batchID,
	})

	batch, err := h.getBatchesUC.GetByID(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve batch")
		return
	}

	RespondWithJSON(w, http.StatusOK, toBatchResponseDTO(batch))
}

// DeleteBatch обрабатывает DELETE /api/v1/batches/{batchID}
func (h *BatchHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "DeleteBatch",
		"batch_id": batchID,
	})

	if err := h.deleteBatchUC.Execute(r.Context(), batchID); err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to delete batch")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Batch deleted"})
}
