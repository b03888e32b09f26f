package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/konomissira/missing-records-api/internal/core/domain"

	"github.com/google/uuid"
)

// fakeBatchRepo - фейковый репозиторий батчей для тестов use case.
type fakeBatchRepo struct {
	batches map[int64]*domain.Batch
	byName  map[string]*domain.Batch
	err     error
}

func newFakeBatchRepo(batches ...*domain.Batch) *fakeBatchRepo {
	repo := &fakeBatchRepo{
		batches: make(map[int64]*domain.Batch),
		byName:  make(map[string]*domain.Batch),
	}
	for _, b := range batches {
		repo.batches[b.ID] = b
		repo.byName[b.Name] = b
	}
	return repo
}

func (f *fakeBatchRepo) Create(ctx context.Context, batch domain.Batch) (*domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	batch.ID = int64(len(f.batches) + 1)
	f.batches[batch.ID] = &batch
	f.byName[batch.Name] = &batch
	return &batch, nil
}

func (f *fakeBatchRepo) GetByID(ctx context.Context, id int64) (*domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	batch, ok := f.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (f *fakeBatchRepo) GetByName(ctx context.Context, name string) (*domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[name], nil
}

func (f *fakeBatchRepo) List(ctx context.Context) ([]domain.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Batch, 0, len(f.batches))
	for _, b := range f.batches {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBatchRepo) Delete(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.batches[id]; !ok {
		return domain.ErrBatchNotFound
	}
	delete(f.batches, id)
	return nil
}

// fakeRecordRepo - фейковый репозиторий записей.
type fakeRecordRepo struct {
	expectedIDs  []int64
	processedIDs []int64
	counts       domain.RecordCounts
	saved        []domain.Record
	purged       int64
	err          error
}

func (f *fakeRecordRepo) Save(ctx context.Context, record domain.Record) (*domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	record.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, record)
	return &record, nil
}

func (f *fakeRecordRepo) BatchSave(ctx context.Context, records []domain.Record) (*domain.BatchSaveStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, records...)
	return &domain.BatchSaveStats{Saved: len(records)}, nil
}

func (f *fakeRecordRepo) FindByBatch(ctx context.Context, batchID int64) ([]domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.saved, nil
}

func (f *fakeRecordRepo) FindByBatchAndStatus(ctx context.Context, batchID int64, status domain.RecordStatus) ([]domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Record
	for _, r := range f.saved {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) FetchIDs(ctx context.Context, batchID int64, status domain.RecordStatus) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if status == domain.StatusExpected {
		return f.expectedIDs, nil
	}
	return f.processedIDs, nil
}

func (f *fakeRecordRepo) CountByBatch(ctx context.Context, batchID int64) (*domain.RecordCounts, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := f.counts
	return &counts, nil
}

func (f *fakeRecordRepo) PurgeByBatch(ctx context.Context, batchID int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.purged, nil
}

// fakeReporter фиксирует отчеты о пакетном сохранении.
type fakeReporter struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeReporter) ReportResults(ctx context.Context, taskID uuid.UUID, stats *domain.BatchSaveStats) error {
	f.calls = append(f.calls, taskID)
	return f.err
}

func testBatch() *domain.Batch {
	return &domain.Batch{ID: 1, Name: "daily_orders", RecordType: domain.RecordTypeOrder}
}

func TestReconcileBatch(t *testing.T) {
	records := &fakeRecordRepo{
		expectedIDs:  []int64{10001, 10002, 10003, 10004, 10005, 10006, 10007, 10008, 10009, 10010},
		processedIDs: []int64{10001, 10002, 10003, 10005, 10007, 10008, 10010},
	}
	uc := NewReconcileBatchUseCase(newFakeBatchRepo(testBatch()), records)

	result, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if result.BatchName != "daily_orders" {
		t.Errorf("BatchName = %q", result.BatchName)
	}
	if !reflect.DeepEqual(result.Missing, []int64{10004, 10006, 10009}) {
		t.Errorf("Missing = %v", result.Missing)
	}
	if result.ProcessingRate != 70.0 {
		t.Errorf("ProcessingRate = %v, want 70.0", result.ProcessingRate)
	}
}

func TestReconcileBatchNotFound(t *testing.T) {
	uc := NewReconcileBatchUseCase(newFakeBatchRepo(), &fakeRecordRepo{})

	_, err := uc.Execute(context.Background(), 42)
	if !errors.Is(err, domain.ErrBatchNotFound) {
		t.Fatalf("error = %v, want ErrBatchNotFound", err)
	}
}

func TestGetProcessingStatus(t *testing.T) {
	records := &fakeRecordRepo{
		expectedIDs:  []int64{1, 2, 3},
		processedIDs: []int64{2},
	}
	uc := NewGetProcessingStatusUseCase(newFakeBatchRepo(testBatch()), records)

	result, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if !reflect.DeepEqual(result.ExpectedIDs, []int64{1, 2, 3}) {
		t.Errorf("ExpectedIDs = %v, want [1 2 3]", result.ExpectedIDs)
	}
	if !reflect.DeepEqual(result.ProcessedIDs, []int64{2}) {
		t.Errorf("ProcessedIDs = %v, want [2]", result.ProcessedIDs)
	}
	if result.ExpectedCount != 3 || result.ProcessedCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", result.ExpectedCount, result.ProcessedCount)
	}
	if result.RecordType != domain.RecordTypeOrder {
		t.Errorf("RecordType = %q", result.RecordType)
	}
}

func TestGetProcessingStatusKeepsDuplicateRows(t *testing.T) {
	// Представление статуса - проекция строк, повторы не схлопываются
	records := &fakeRecordRepo{
		expectedIDs:  []int64{10, 10, 20},
		processedIDs: []int64{20, 20},
	}
	uc := NewGetProcessingStatusUseCase(newFakeBatchRepo(testBatch()), records)

	result, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if !reflect.DeepEqual(result.ExpectedIDs, []int64{10, 10, 20}) {
		t.Errorf("ExpectedIDs = %v, want raw [10 10 20]", result.ExpectedIDs)
	}
	if result.ExpectedCount != 3 {
		t.Errorf("ExpectedCount = %d, want 3", result.ExpectedCount)
	}
	if !reflect.DeepEqual(result.ProcessedIDs, []int64{20, 20}) {
		t.Errorf("ProcessedIDs = %v, want raw [20 20]", result.ProcessedIDs)
	}
	if result.ProcessedCount != 2 {
		t.Errorf("ProcessedCount = %d, want 2", result.ProcessedCount)
	}
}

func TestGetProcessingStatusEmptyBatch(t *testing.T) {
	uc := NewGetProcessingStatusUseCase(newFakeBatchRepo(testBatch()), &fakeRecordRepo{})

	result, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.ExpectedIDs == nil || result.ProcessedIDs == nil {
		t.Error("id collections must be empty slices, not nil")
	}
	if result.ExpectedCount != 0 || result.ProcessedCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", result.ExpectedCount, result.ProcessedCount)
	}
}

func TestGetBatchStatistics(t *testing.T) {
	records := &fakeRecordRepo{
		expectedIDs:  []int64{1, 2, 3, 4},
		processedIDs: []int64{1, 2, 3},
		counts:       domain.RecordCounts{Total: 7, Expected: 4, Processed: 3},
	}
	uc := NewGetBatchStatisticsUseCase(newFakeBatchRepo(testBatch()), records)

	result, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if result.TotalRecords != 7 || result.ExpectedRows != 4 || result.ProcessedRows != 3 {
		t.Errorf("row counts = %d/%d/%d", result.TotalRecords, result.ExpectedRows, result.ProcessedRows)
	}
	if result.MissingCount != 1 {
		t.Errorf("MissingCount = %d, want 1", result.MissingCount)
	}
	if result.ProcessingRate != 75.0 {
		t.Errorf("ProcessingRate = %v, want 75.0", result.ProcessingRate)
	}
}

func TestCreateBatchNameTaken(t *testing.T) {
	uc := NewCreateBatchUseCase(newFakeBatchRepo(testBatch()))

	_, err := uc.Execute(context.Background(), "daily_orders", domain.RecordTypeOrder, nil)
	if !errors.Is(err, domain.ErrBatchNameTaken) {
		t.Fatalf("error = %v, want ErrBatchNameTaken", err)
	}
}

func TestCreateBatch(t *testing.T) {
	uc := NewCreateBatchUseCase(newFakeBatchRepo())

	desc := "nightly export"
	batch, err := uc.Execute(context.Background(), "nightly_files", domain.RecordTypeFile, &desc)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if batch.ID == 0 {
		t.Error("batch ID was not assigned")
	}
	if batch.Name != "nightly_files" || batch.RecordType != domain.RecordTypeFile {
		t.Errorf("batch = %+v", batch)
	}
}

func TestDeleteBatchNotFound(t *testing.T) {
	uc := NewDeleteBatchUseCase(newFakeBatchRepo())

	if err := uc.Execute(context.Background(), 99); !errors.Is(err, domain.ErrBatchNotFound) {
		t.Fatalf("error = %v, want ErrBatchNotFound", err)
	}
}

func TestSaveRecordBatchNotFound(t *testing.T) {
	uc := NewSaveRecordUseCase(newFakeBatchRepo(), &fakeRecordRepo{}, nil)

	_, err := uc.Save(context.Background(), 5, domain.Record{RecordID: 1, Status: domain.StatusExpected})
	if !errors.Is(err, domain.ErrBatchNotFound) {
		t.Fatalf("error = %v, want ErrBatchNotFound", err)
	}
}

func TestBatchSaveAssignsBatchID(t *testing.T) {
	records := &fakeRecordRepo{}
	uc := NewSaveRecordUseCase(newFakeBatchRepo(testBatch()), records, nil)

	input := []domain.Record{
		{RecordID: 1, Status: domain.StatusExpected},
		{RecordID: 2, Status: domain.StatusProcessed},
	}
	stats, err := uc.BatchSave(context.Background(), 1, input, uuid.Nil)
	if err != nil {
		t.Fatalf("BatchSave returned error: %v", err)
	}
	if stats.Saved != 2 {
		t.Errorf("Saved = %d, want 2", stats.Saved)
	}
	for _, r := range records.saved {
		if r.BatchID != 1 {
			t.Errorf("record %d has BatchID %d, want 1", r.RecordID, r.BatchID)
		}
	}
}

func TestBatchSaveReportsResults(t *testing.T) {
	reporter := &fakeReporter{}
	uc := NewSaveRecordUseCase(newFakeBatchRepo(testBatch()), &fakeRecordRepo{}, reporter)

	taskID := uuid.New()
	input := []domain.Record{{RecordID: 1, Status: domain.StatusProcessed}}
	if _, err := uc.BatchSave(context.Background(), 1, input, taskID); err != nil {
		t.Fatalf("BatchSave returned error: %v", err)
	}

	if len(reporter.calls) != 1 || reporter.calls[0] != taskID {
		t.Errorf("reporter calls = %v, want [%s]", reporter.calls, taskID)
	}
}

func TestBatchSaveSkipsReportWithoutTask(t *testing.T) {
	reporter := &fakeReporter{}
	uc := NewSaveRecordUseCase(newFakeBatchRepo(testBatch()), &fakeRecordRepo{}, reporter)

	input := []domain.Record{{RecordID: 1, Status: domain.StatusProcessed}}
	if _, err := uc.BatchSave(context.Background(), 1, input, uuid.Nil); err != nil {
		t.Fatalf("BatchSave returned error: %v", err)
	}

	// REST-загрузки не отслеживаются задачей, отчет не нужен
	if len(reporter.calls) != 0 {
		t.Errorf("reporter was called %d times, want 0", len(reporter.calls))
	}
}

func TestBatchSaveReporterErrorIsNotFatal(t *testing.T) {
	reporter := &fakeReporter{err: errors.New("broker unavailable")}
	uc := NewSaveRecordUseCase(newFakeBatchRepo(testBatch()), &fakeRecordRepo{}, reporter)

	input := []domain.Record{{RecordID: 1, Status: domain.StatusProcessed}}
	stats, err := uc.BatchSave(context.Background(), 1, input, uuid.New())
	if err != nil {
		t.Fatalf("BatchSave returned error: %v", err)
	}
	if stats.Saved != 1 {
		t.Errorf("Saved = %d, want 1", stats.Saved)
	}
}

func TestPurgeRecords(t *testing.T) {
	uc := NewPurgeRecordsUseCase(newFakeBatchRepo(testBatch()), &fakeRecordRepo{purged: 17})

	count, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if count != 17 {
		t.Errorf("count = %d, want 17", count)
	}
}

func TestPurgeRecordsBatchNotFound(t *testing.T) {
	uc := NewPurgeRecordsUseCase(newFakeBatchRepo(), &fakeRecordRepo{})

	if _, err := uc.Execute(context.Background(), 8); !errors.Is(err, domain.ErrBatchNotFound) {
		t.Fatalf("error = %v, want ErrBatchNotFound", err)
	}
}
