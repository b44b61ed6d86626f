package megasena

import (
	"sort"
	"time"
)

// NormalizeDraws converts raw upstream payloads into canonical draw
// records. The first number-list alias present in a payload wins; a
// record survives only when at least MinNumbersPerDraw valid numbers
// were extracted. Input order is preserved.
func NormalizeDraws(draws []RawDraw) []DrawRecord {
	if len(draws) == 0 {
		return nil
	}

	records := make([]DrawRecord, 0, len(draws))
	for _, draw := range draws {
		numbers := extractNumbers(draw)
		if len(numbers) < MinNumbersPerDraw {
			continue
		}
		records = append(records, DrawRecord{
			Data:           draw.DateString(),
			NumeroConcurso: extractConcurso(draw),
			Numeros:        numbers,
		})
	}
	return records
}

// extractNumbers pulls the drawn numbers out of a raw payload, trying
// the known field aliases in order. Coercion is all-or-nothing: one
// bad entry invalidates the whole list.
func extractNumbers(draw RawDraw) []int {
	for _, key := range []string{"dezenas", "listaDezenas", "numeros"} {
		raw, ok := draw[key].([]any)
		if !ok {
			continue
		}
		numbers := make([]int, 0, len(raw))
		for _, v := range raw {
			n, ok := intValue(v)
			if !ok {
				return nil
			}
			numbers = append(numbers, n)
		}
		return numbers
	}
	return nil
}

// extractConcurso pulls the draw identifier out of a raw payload as a
// string, trying the known field aliases in order.
func extractConcurso(draw RawDraw) string {
	for _, key := range []string{"numero", "numeroConcurso", "concurso"} {
		if v, ok := draw[key]; ok {
			return stringValue(v)
		}
	}
	return ""
}

// FilterRecent keeps only records dated within the recency window,
// relative to call time. Records whose date fails to parse in the
// localized layout are silently excluded.
func FilterRecent(records []DrawRecord) []DrawRecord {
	if len(records) == 0 {
		return records
	}

	cutoff := time.Now().AddDate(0, 0, -RecencyWindowDays)

	filtered := make([]DrawRecord, 0, len(records))
	for _, record := range records {
		if record.Data == "" {
			continue
		}
		date, err := time.Parse(DateFormatBR, record.Data)
		if err != nil {
			continue
		}
		if !date.Before(cutoff) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// CalculateFrequencies counts how often each number 1..60 occurs in
// the given records. Every key is always present; out-of-range values
// are ignored.
func CalculateFrequencies(records []DrawRecord) FrequencyTable {
	frequencies := make(FrequencyTable, NumberMax)
	for n := NumberMin; n <= NumberMax; n++ {
		frequencies[n] = 0
	}

	for _, record := range records {
		for _, n := range record.Numeros {
			if n >= NumberMin && n <= NumberMax {
				frequencies[n]++
			}
		}
	}
	return frequencies
}

// CalculateProbabilities derives the simple historical recurrence
// ratio for each number from a frequency table.
func CalculateProbabilities(frequencies FrequencyTable) map[int]float64 {
	total := 0
	for _, count := range frequencies {
		total += count
	}

	probabilities := make(map[int]float64, NumberMax)
	for n := NumberMin; n <= NumberMax; n++ {
		if total == 0 {
			probabilities[n] = 0.0
			continue
		}
		probabilities[n] = float64(frequencies[n]) / float64(total)
	}
	return probabilities
}

// GenerateEstimates ranks numbers by frequency and slices the top
// 4/5/6 into quadra, quina and sorte. The ranking sort is stable over
// the ascending 1..60 base order, so equal counts keep number order;
// each slice is then sorted ascending for presentation.
func GenerateEstimates(frequencies FrequencyTable) Estimate {
	ranked := make([]int, 0, NumberMax)
	for n := NumberMin; n <= NumberMax; n++ {
		ranked = append(ranked, n)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return frequencies[ranked[i]] > frequencies[ranked[j]]
	})

	return Estimate{
		Quadra: topNumbers(ranked, 4),
		Quina:  topNumbers(ranked, 5),
		Sorte:  topNumbers(ranked, 6),
	}
}

// topNumbers copies the first n ranked numbers and sorts them ascending
func topNumbers(ranked []int, n int) []int {
	if n > len(ranked) {
		n = len(ranked)
	}
	top := make([]int, n)
	copy(top, ranked[:n])
	sort.Ints(top)
	return top
}
