package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	postgres_adapter "github.com/konomissira/missing-records-api/internal/adapters/postgres"
	"github.com/konomissira/missing-records-api/internal/configs"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/pkg/postgres"
)

//go:embed sample_orders.json
var sampleData []byte

type seedRecord struct {
	RecordID int64   `json:"record_id"`
	Status   string  `json:"status"`
	Metadata *string `json:"record_metadata"`
}

type seedFile struct {
	Batch struct {
		BatchName   string  `json:"batch_name"`
		RecordType  string  `json:"record_type"`
		Description *string `json:"description"`
	} `json:"batch"`
	ExpectedRecords  []seedRecord `json:"expected_records"`
	ProcessedRecords []seedRecord `json:"processed_records"`
}

// Загружает демонстрационный набор заказов и печатает сводку по пропущенным записям.
func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: cfg.Database.URL})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pool.Close()

	if err := postgres_adapter.RunMigrations(ctx, pool, cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	var data seedFile
	if err := json.Unmarshal(sampleData, &data); err != nil {
		log.Fatalf("Failed to parse sample data: %v", err)
	}

	// Чистим старые данные, чтобы сидирование было повторяемым
	if _, err := pool.Exec(ctx, "DELETE FROM records"); err != nil {
		log.Fatalf("Failed to clear records: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM batches"); err != nil {
		log.Fatalf("Failed to clear batches: %v", err)
	}

	batchRepo, err := postgres_adapter.NewPostgresBatchRepository(pool)
	if err != nil {
		log.Fatalf("Failed to create batch repository: %v", err)
	}
	recordRepo, err := postgres_adapter.NewPostgresRecordRepository(pool)
	if err != nil {
		log.Fatalf("Failed to create record repository: %v", err)
	}

	recordType, err := domain.ParseRecordType(data.Batch.RecordType)
	if err != nil {
		log.Fatalf("Sample data has invalid record type: %v", err)
	}

	batch, err := batchRepo.Create(ctx, domain.Batch{
		Name:        data.Batch.BatchName,
		RecordType:  recordType,
		Description: data.Batch.Description,
	})
	if err != nil {
		log.Fatalf("Failed to create batch: %v", err)
	}
	fmt.Printf("Created batch: %s (ID: %d)\n", batch.Name, batch.ID)

	insert := func(items []seedRecord) int {
		count := 0
		for _, item := range items {
			status, err := domain.ParseRecordStatus(item.Status)
			if err != nil {
				log.Fatalf("Sample data has invalid record status: %v", err)
			}
			_, err = recordRepo.Save(ctx, domain.Record{
				BatchID:  batch.ID,
				RecordID: item.RecordID,
				Status:   status,
				Metadata: item.Metadata,
			})
			if err != nil {
				log.Fatalf("Failed to save record %d: %v", item.RecordID, err)
			}
			count++
		}
		return count
	}

	expectedCount := insert(data.ExpectedRecords)
	fmt.Printf("Loaded %d expected records\n", expectedCount)

	processedCount := insert(data.ProcessedRecords)
	fmt.Printf("Loaded %d processed records\n", processedCount)

	expectedIDs := make([]int64, 0, len(data.ExpectedRecords))
	for _, r := range data.ExpectedRecords {
		expectedIDs = append(expectedIDs, r.RecordID)
	}
	processedIDs := make([]int64, 0, len(data.ProcessedRecords))
	for _, r := range data.ProcessedRecords {
		processedIDs = append(processedIDs, r.RecordID)
	}

	summary := domain.Reconcile(expectedIDs, processedIDs)

	fmt.Println("\n--- Summary ---")
	fmt.Printf("Batch: %s\n", batch.Name)
	fmt.Printf("Expected orders: %d\n", summary.TotalExpected)
	fmt.Printf("Processed orders: %d\n", summary.TotalProcessed)
	fmt.Printf("Missing (not processed): %d orders\n", summary.MissingCount)
	fmt.Printf("Missing order IDs: %v\n", summary.Missing)
	fmt.Printf("Processing rate: %.1f%%\n", summary.ProcessingRate)

	fmt.Println("\nDatabase seeded successfully!")
	fmt.Printf("Try GET /api/v1/analysis/missing/%d\n", batch.ID)
	fmt.Printf("Try GET /api/v1/analysis/status/%d\n", batch.ID)
}
