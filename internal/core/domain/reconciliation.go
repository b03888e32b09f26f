package domain

import (
	"math"
	"sort"
)

// ReconciliationSummary - результат сверки двух наборов идентификаторов.
// Чистая функция от входных множеств: повторный запуск на тех же данных
// дает идентичный результат.
type ReconciliationSummary struct {
	TotalExpected   int
	TotalProcessed  int
	MissingCount    int
	Missing         []int64
	UnexpectedCount int
	Unexpected      []int64
	ProcessingRate  float64
}

// Reconcile вычисляет пропавшие и неожиданные записи через разность множеств.
// Дубликаты во входных срезах схлопываются, выходные списки отсортированы
// по возрастанию для воспроизводимости.
func Reconcile(expected, processed []int64) ReconciliationSummary {
	expectedSet := toSet(expected)
	processedSet := toSet(processed)

	// missing = expected − processed
	missing := difference(expectedSet, processedSet)
	// unexpected = processed − expected
	unexpected := difference(processedSet, expectedSet)

	// Процент успешности считаем по пересечению: сколько ожидаемых
	// записей реально дошло до обработки.
	rate := 0.0
	if len(expectedSet) > 0 {
		successful := len(expectedSet) - len(missing)
		rate = float64(successful) / float64(len(expectedSet)) * 100
		rate = math.Round(rate*100) / 100
	}

	return ReconciliationSummary{
		TotalExpected:   len(expectedSet),
		TotalProcessed:  len(processedSet),
		MissingCount:    len(missing),
		Missing:         missing,
		UnexpectedCount: len(unexpected),
		Unexpected:      unexpected,
		ProcessingRate:  rate,
	}
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func difference(a, b map[int64]struct{}) []int64 {
	diff := make(map[int64]struct{})
	for id := range a {
		if _, ok := b[id]; !ok {
			diff[id] = struct{}{}
		}
	}
	return sortIDs(diff)
}

func sortIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
