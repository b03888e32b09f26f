package domain

import (
	"reflect"
	"testing"
)

func TestReconcileOrdersScenario(t *testing.T) {
	expected := []int64{10001, 10002, 10003, 10004, 10005, 10006, 10007, 10008, 10009, 10010}
	processed := []int64{10001, 10002, 10003, 10005, 10007, 10008, 10010}

	summary := Reconcile(expected, processed)

	if summary.TotalExpected != 10 {
		t.Errorf("TotalExpected = %d, want 10", summary.TotalExpected)
	}
	if summary.TotalProcessed != 7 {
		t.Errorf("TotalProcessed = %d, want 7", summary.TotalProcessed)
	}
	wantMissing := []int64{10004, 10006, 10009}
	if !reflect.DeepEqual(summary.Missing, wantMissing) {
		t.Errorf("Missing = %v, want %v", summary.Missing, wantMissing)
	}
	if summary.MissingCount != 3 {
		t.Errorf("MissingCount = %d, want 3", summary.MissingCount)
	}
	if summary.UnexpectedCount != 0 {
		t.Errorf("UnexpectedCount = %d, want 0", summary.UnexpectedCount)
	}
	if summary.ProcessingRate != 70.0 {
		t.Errorf("ProcessingRate = %v, want 70.0", summary.ProcessingRate)
	}
}

func TestReconcileUnexpectedRecords(t *testing.T) {
	summary := Reconcile([]int64{1, 2, 3}, []int64{2, 3, 4, 5})

	if !reflect.DeepEqual(summary.Missing, []int64{1}) {
		t.Errorf("Missing = %v, want [1]", summary.Missing)
	}
	if !reflect.DeepEqual(summary.Unexpected, []int64{4, 5}) {
		t.Errorf("Unexpected = %v, want [4 5]", summary.Unexpected)
	}
	// 2 из 3 ожидаемых обработаны
	if summary.ProcessingRate != 66.67 {
		t.Errorf("ProcessingRate = %v, want 66.67", summary.ProcessingRate)
	}
}

func TestReconcileEmptyExpected(t *testing.T) {
	summary := Reconcile(nil, []int64{7, 8})

	if summary.TotalExpected != 0 {
		t.Errorf("TotalExpected = %d, want 0", summary.TotalExpected)
	}
	if summary.MissingCount != 0 {
		t.Errorf("MissingCount = %d, want 0", summary.MissingCount)
	}
	if summary.ProcessingRate != 0.0 {
		t.Errorf("ProcessingRate = %v, want 0.0 when nothing was expected", summary.ProcessingRate)
	}
	if !reflect.DeepEqual(summary.Unexpected, []int64{7, 8}) {
		t.Errorf("Unexpected = %v, want [7 8]", summary.Unexpected)
	}
}

func TestReconcileEmptyProcessed(t *testing.T) {
	summary := Reconcile([]int64{1, 2}, nil)

	if !reflect.DeepEqual(summary.Missing, []int64{1, 2}) {
		t.Errorf("Missing = %v, want [1 2]", summary.Missing)
	}
	if summary.ProcessingRate != 0.0 {
		t.Errorf("ProcessingRate = %v, want 0.0", summary.ProcessingRate)
	}
}

func TestReconcileFullOverlap(t *testing.T) {
	summary := Reconcile([]int64{1, 2, 3}, []int64{3, 2, 1})

	if summary.MissingCount != 0 || summary.UnexpectedCount != 0 {
		t.Errorf("expected no missing and no unexpected, got %d/%d", summary.MissingCount, summary.UnexpectedCount)
	}
	if summary.ProcessingRate != 100.0 {
		t.Errorf("ProcessingRate = %v, want 100.0", summary.ProcessingRate)
	}
}

func TestReconcileDeduplicatesInput(t *testing.T) {
	// Дубликаты в хранилище не должны влиять на результат сверки
	summary := Reconcile([]int64{1, 1, 2, 2, 3}, []int64{1, 1, 1, 2})

	if summary.TotalExpected != 3 {
		t.Errorf("TotalExpected = %d, want 3", summary.TotalExpected)
	}
	if summary.TotalProcessed != 2 {
		t.Errorf("TotalProcessed = %d, want 2", summary.TotalProcessed)
	}
	if !reflect.DeepEqual(summary.Missing, []int64{3}) {
		t.Errorf("Missing = %v, want [3]", summary.Missing)
	}
}

func TestReconcileDeterministic(t *testing.T) {
	expected := []int64{5, 3, 9, 1, 7}
	processed := []int64{9, 1}

	first := Reconcile(expected, processed)
	for i := 0; i < 10; i++ {
		again := Reconcile(expected, processed)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different result: %+v != %+v", i, again, first)
		}
	}

	// выход всегда отсортирован по возрастанию
	wantMissing := []int64{3, 5, 7}
	if !reflect.DeepEqual(first.Missing, wantMissing) {
		t.Errorf("Missing = %v, want %v", first.Missing, wantMissing)
	}
}
