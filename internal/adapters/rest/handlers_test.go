package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/konomissira/missing-records-api/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- фейковые use case для тестов обработчиков ---

type fakeBatchUseCases struct {
	batch *domain.Batch
	err   error
}

func (f *fakeBatchUseCases) Execute(ctx context.Context, name string, recordType domain.RecordType, description *string) (*domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func (f *fakeBatchUseCases) List(ctx context.Context) ([]domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.batch == nil {
		return []domain.Batch{}, nil
	}
	return []domain.Batch{*f.batch}, nil
}

func (f *fakeBatchUseCases) GetByID(ctx context.Context, batchID int64) (*domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

type fakeDeleteBatch struct {
	err error
}

func (f *fakeDeleteBatch) Execute(ctx context.Context, batchID int64) error {
	return f.err
}

type fakeSaveRecord struct {
	record *domain.Record
	stats  *domain.BatchSaveStats
	err    error

	lastTaskID  uuid.UUID
	lastBatchID int64
}

func (f *fakeSaveRecord) Save(ctx context.Context, batchID int64, record domain.Record) (*domain.Record, error) {
	f.lastBatchID = batchID
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeSaveRecord) BatchSave(ctx context.Context, batchID int64, records []domain.Record, taskID uuid.UUID) (*domain.BatchSaveStats, error) {
	f.lastTaskID = taskID
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakeGetRecords struct {
	records []domain.Record
	err     error
}

func (f *fakeGetRecords) FindByBatch(ctx context.Context, batchID int64) ([]domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeGetRecords) FindByBatchAndStatus(ctx context.Context, batchID int64, status domain.RecordStatus) ([]domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakePurgeRecords struct {
	deleted int64
	err     error
}

func (f *fakePurgeRecords) Execute(ctx context.Context, batchID int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

type fakeReconcileBatch struct {
	result *domain.MissingRecordsResult
	err    error
}

func (f *fakeReconcileBatch) Execute(ctx context.Context, batchID int64) (*domain.MissingRecordsResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeProcessingStatus struct {
	result *domain.ProcessingStatusResult
	err    error
}

func (f *fakeProcessingStatus) Execute(ctx context.Context, batchID int64) (*domain.ProcessingStatusResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeBatchStatistics struct {
	result *domain.BatchStatisticsResult
	err    error
}

func (f *fakeBatchStatistics) Execute(ctx context.Context, batchID int64) (*domain.BatchStatisticsResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testRouter(batchH *BatchHandler, recordH *RecordHandler, analysisH *AnalysisHandler) *chi.Mux {
	r := chi.NewRouter()
	if batchH != nil {
		r.Post("/api/v1/batches", batchH.CreateBatch)
		r.Get("/api/v1/batches", batchH.ListBatches)
		r.Get("/api/v1/batches/{batchID}", batchH.GetBatch)
		r.Delete("/api/v1/batches/{batchID}", batchH.DeleteBatch)
	}
	if recordH != nil {
		r.Post("/api/v1/records", recordH.CreateRecord)
		r.Get("/api/v1/records", recordH.GetRecords)
		r.Post("/api/v1/records/bulk", recordH.BulkCreateRecords)
		r.Get("/api/v1/records/batch/{batchID}", recordH.GetRecordsByBatch)
		r.Get("/api/v1/records/batch/{batchID}/status/{status}", recordH.GetRecordsByBatchAndStatus)
		r.Delete("/api/v1/records/batch/{batchID}", recordH.PurgeRecords)
	}
	if analysisH != nil {
		r.Get("/api/v1/analysis/missing/{batchID}", analysisH.GetMissingRecords)
		r.Get("/api/v1/analysis/status/{batchID}", analysisH.GetProcessingStatus)
		r.Get("/api/v1/analysis/statistics/{batchID}", analysisH.GetBatchStatistics)
	}
	return r
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetBatch(t *testing.T) {
	batch := &domain.Batch{ID: 1, Name: "daily_orders", RecordType: domain.RecordTypeOrder}
	handler := NewBatchHandler(nil, &fakeBatchUseCases{batch: batch}, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/batches/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var dto BatchResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if dto.ID != 1 || dto.BatchName != "daily_orders" || dto.RecordType != "order" {
		t.Errorf("unexpected response: %+v", dto)
	}
}

func TestGetBatchNotFound(t *testing.T) {
	handler := NewBatchHandler(nil, &fakeBatchUseCases{err: domain.ErrBatchNotFound}, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/batches/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetBatchInvalidID(t *testing.T) {
	handler := NewBatchHandler(nil, &fakeBatchUseCases{}, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/batches/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateBatch(t *testing.T) {
	batch := &domain.Batch{ID: 3, Name: "run_42", RecordType: domain.RecordTypeShipment}
	handler := NewBatchHandler(&fakeBatchUseCases{batch: batch}, nil, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/batches",
		`{"batch_name": "run_42", "record_type": "shipment"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBatchInvalidRecordType(t *testing.T) {
	handler := NewBatchHandler(&fakeBatchUseCases{}, nil, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/batches",
		`{"batch_name": "run_42", "record_type": "invoice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateBatchNameTaken(t *testing.T) {
	handler := NewBatchHandler(&fakeBatchUseCases{err: domain.ErrBatchNameTaken}, nil, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/batches",
		`{"batch_name": "run_42", "record_type": "order"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateBatchMissingName(t *testing.T) {
	handler := NewBatchHandler(&fakeBatchUseCases{}, nil, nil)
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/batches",
		`{"record_type": "order"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteBatchNotFound(t *testing.T) {
	handler := NewBatchHandler(nil, nil, &fakeDeleteBatch{err: domain.ErrBatchNotFound})
	router := testRouter(handler, nil, nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/batches/7", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateRecordBatchIDFromQuery(t *testing.T) {
	save := &fakeSaveRecord{record: &domain.Record{ID: 1, BatchID: 7, RecordID: 10001, Status: domain.StatusExpected}}
	handler := NewRecordHandler(save, nil, nil)
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/records?batch_id=7",
		`{"record_id": 10001, "status": "expected"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	if save.lastBatchID != 7 {
		t.Errorf("batch ID passed to use case = %d, want 7 from query parameter", save.lastBatchID)
	}
}

func TestCreateRecordInvalidQueryBatchID(t *testing.T) {
	handler := NewRecordHandler(&fakeSaveRecord{}, nil, nil)
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/records?batch_id=abc",
		`{"record_id": 10001, "status": "expected"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRecordInvalidStatus(t *testing.T) {
	handler := NewRecordHandler(&fakeSaveRecord{}, nil, nil)
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/records",
		`{"batch_id": 1, "record_id": 10001, "status": "done"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBulkCreateRecords(t *testing.T) {
	save := &fakeSaveRecord{stats: &domain.BatchSaveStats{Saved: 2, Skipped: 1}}
	handler := NewRecordHandler(save, nil, nil)
	router := testRouter(nil, handler, nil)

	body := `{"batch_id": 1, "records": [
		{"record_id": 10001, "status": "expected"},
		{"record_id": 10002, "status": "expected"},
		{"record_id": 10001, "status": "expected"}
	]}`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/records/bulk", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var dto BulkCreateResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if dto.Saved != 2 || dto.Skipped != 1 || dto.Total != 3 {
		t.Errorf("unexpected stats: %+v", dto)
	}
	if save.lastTaskID != uuid.Nil {
		t.Errorf("REST bulk save must not carry a task ID, got %s", save.lastTaskID)
	}
}

func TestBulkCreateRecordsEmpty(t *testing.T) {
	handler := NewRecordHandler(&fakeSaveRecord{}, nil, nil)
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/records/bulk",
		`{"batch_id": 1, "records": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetRecordsRequiresBatchID(t *testing.T) {
	handler := NewRecordHandler(nil, &fakeGetRecords{}, nil)
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/records", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetRecordsByBatchAndStatusInvalid(t *testing.T) {
	handler := NewRecordHandler(nil, &fakeGetRecords{}, nil)
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/records/batch/1/status/pending", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPurgeRecords(t *testing.T) {
	handler := NewRecordHandler(nil, nil, &fakePurgeRecords{deleted: 10})
	router := testRouter(nil, handler, nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/records/batch/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var dto PurgeResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if dto.BatchID != 1 || dto.Deleted != 10 {
		t.Errorf("unexpected response: %+v", dto)
	}
}

func TestGetMissingRecords(t *testing.T) {
	result := &domain.MissingRecordsResult{
		BatchID:   1,
		BatchName: "daily_orders",
		ReconciliationSummary: domain.ReconciliationSummary{
			TotalExpected:  10,
			TotalProcessed: 7,
			MissingCount:   3,
			Missing:        []int64{10004, 10006, 10009},
			Unexpected:     []int64{},
			ProcessingRate: 70.0,
		},
	}
	handler := NewAnalysisHandler(&fakeReconcileBatch{result: result}, nil, nil)
	router := testRouter(nil, nil, handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analysis/missing/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var dto MissingRecordsResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if dto.MissingCount != 3 || dto.ProcessingRate != 70.0 {
		t.Errorf("unexpected response: %+v", dto)
	}
	if len(dto.MissingRecords) != 3 || dto.MissingRecords[0] != 10004 {
		t.Errorf("MissingRecords = %v", dto.MissingRecords)
	}
}

func TestGetMissingRecordsBatchNotFound(t *testing.T) {
	handler := NewAnalysisHandler(&fakeReconcileBatch{err: domain.ErrBatchNotFound}, nil, nil)
	router := testRouter(nil, nil, handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analysis/missing/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetProcessingStatus(t *testing.T) {
	result := &domain.ProcessingStatusResult{
		BatchID:        1,
		BatchName:      "daily_orders",
		RecordType:     domain.RecordTypeOrder,
		ExpectedIDs:    []int64{1, 2, 3},
		ProcessedIDs:   []int64{1, 2},
		ExpectedCount:  3,
		ProcessedCount: 2,
	}
	handler := NewAnalysisHandler(nil, &fakeProcessingStatus{result: result}, nil)
	router := testRouter(nil, nil, handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analysis/status/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var dto ProcessingStatusResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if dto.ExpectedCount != 3 || dto.ProcessedCount != 2 {
		t.Errorf("unexpected response: %+v", dto)
	}
}

func TestGetBatchStatistics(t *testing.T) {
	result := &domain.BatchStatisticsResult{
		BatchID:        1,
		BatchName:      "daily_orders",
		TotalRecords:   17,
		ExpectedRows:   10,
		ProcessedRows:  7,
		MissingCount:   3,
		ProcessingRate: 70.0,
	}
	handler := NewAnalysisHandler(nil, nil, &fakeBatchStatistics{result: result})
	router := testRouter(nil, nil, handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analysis/statistics/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var dto BatchStatisticsResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if dto.TotalRecords != 17 || dto.MissingCount != 3 {
		t.Errorf("unexpected response: %+v", dto)
	}
}
