package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
	"github.com/konomissira/missing-records-api/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RecordHandler struct {
	saveRecordUC   usecases_port.SaveRecordUseCase
	getRecordsUC   usecases_port.GetRecordsUseCase
	purgeRecordsUC usecases_port.PurgeRecordsUseCase
}

func NewRecordHandler(saveRecordUC usecases_port.SaveRecordUseCase,
	getRecordsUC usecases_port.GetRecordsUseCase,
	purgeRecordsUC usecases_port.PurgeRecordsUseCase) *RecordHandler {
	return &RecordHandler{
		saveRecordUC:   saveRecordUC,
		getRecordsUC:   getRecordsUC,
		purgeRecordsUC: purgeRecordsUC,
	}
}

// CreateRecord обрабатывает POST /api/v1/records
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var req CreateRecordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	// Идентификатор партии принимается и query-параметром, и полем тела
	if batchIDStr := r.URL.Query().Get("batch_id"); batchIDStr != "" {
		batchID, err := strconv.ParseInt(batchIDStr, 10, 64)
		if err != nil {
			logger.Warn("Invalid batch_id query parameter", port.Fields{"batch_id": batchIDStr})
			WriteJSONError(w, http.StatusBadRequest, "Query parameter batch_id must be an integer")
			return
		}
		req.BatchID = batchID
	}

	status, err := domain.ParseRecordStatus(req.Status)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":   "CreateRecord",
		"batch_id":  req.BatchID,
		"record_id": req.RecordID,
	})
	handlerLogger.Debug("Processing request to save record", nil)

	record := domain.Record{
		BatchID:  req.BatchID,
		RecordID: req.RecordID,
		Status:   status,
		Metadata: req.Metadata,
	}

	saved, err := h.saveRecordUC.Save(r.Context(), req.BatchID, record)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to save record")
		return
	}

	RespondWithJSON(w, http.StatusCreated, toRecordResponseDTO(saved))
}

// BulkCreateRecords обрабатывает POST /api/v1/records/bulk
func (h *RecordHandler) BulkCreateRecords(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var req BulkCreateRecordsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if len(req.Records) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "records must not be empty")
		return
	}

	records := make([]domain.Record, 0, len(req.Records))
	for _, item := range req.Records {
		status, err := domain.ParseRecordStatus(item.Status)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "Invalid status: "+item.Status)
			return
		}
		records = append(records, domain.Record{
			BatchID:  req.BatchID,
			RecordID: item.RecordID,
			Status:   status,
			Metadata: item.Metadata,
		})
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":       "BulkCreateRecords",
		"batch_id":      req.BatchID,
		"records_count": len(records),
	})
	handlerLogger.Debug("Processing request to bulk save records", nil)

	// для синхронной загрузки через REST задача не отслеживается
	stats, err := h.saveRecordUC.BatchSave(r.Context(), req.BatchID, records, uuid.Nil)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to save records")
		return
	}

	RespondWithJSON(w, http.StatusCreated, BulkCreateResponseDTO{
		Saved:   stats.Saved,
		Skipped: stats.Skipped,
		Total:   stats.Saved + stats.Skipped,
	})
}

// GetRecords обрабатывает GET /api/v1/records?batch_id=N
func (h *RecordHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchIDStr := r.URL.Query().Get("batch_id")
	batchID, err := strconv.ParseInt(batchIDStr, 10, 64)
	if err != nil {
		logger.Warn("Invalid batch_id query parameter", port.Fields{"batch_id": batchIDStr})
		WriteJSONError(w, http.StatusBadRequest, "Query parameter batch_id is required and must be an integer")
		return
	}

	h.respondWithBatchRecords(w, r, batchID)
}

// GetRecordsByBatch обрабатывает GET /api/v1/records/batch/{batchID}
func (h *RecordHandler) GetRecordsByBatch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	h.respondWithBatchRecords(w, r, batchID)
}

func (h *RecordHandler) respondWithBatchRecords(w http.ResponseWriter, r *http.Request, batchID int64) {
	logger := contextkeys.LoggerFromContext(r.Context())

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "GetRecords",
		"batch_id": batchID,
	})

	records, err := h.getRecordsUC.FindByBatch(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve records")
		return
	}

	RespondWithJSON(w, http.StatusOK, toRecordResponseDTOs(records))
}

// GetRecordsByBatchAndStatus обрабатывает GET /api/v1/records/batch/{batchID}/status/{status}
func (h *RecordHandler) GetRecordsByBatchAndStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	status, err := domain.ParseRecordStatus(chi.URLParam(r, "status"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid status: must be 'expected' or 'processed'")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "GetRecordsByBatchAndStatus",
		"batch_id": batchID,
		"status":   string(status),
	})

	records, err := h.getRecordsUC.FindByBatchAndStatus(r.Context(), batchID, status)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve records")
		return
	}

	RespondWithJSON(w, http.StatusOK, toRecordResponseDTOs(records))
}

// PurgeRecords обрабатывает DELETE /api/v1/records/batch/{batchID}
func (h *RecordHandler) PurgeRecords(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	batchID, err := BatchIDFromURL(r)
	if err != nil {
		logger.Warn("Invalid batch ID format", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "PurgeRecords",
		"batch_id": batchID,
	})

	deleted, err := h.purgeRecordsUC.Execute(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Batch not found")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to delete records")
		return
	}

	RespondWithJSON(w, http.StatusOK, PurgeResponseDTO{BatchID: batchID, Deleted: deleted})
}
