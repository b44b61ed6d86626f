package megasena

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDraws(t *testing.T) {
	t.Run("canonical record from dezenas payload", func(t *testing.T) {
		draws := []RawDraw{{
			"dezenas":      []any{"05", "12", "23", "45", "58", "60"},
			"dataApuracao": "15/01/2024",
			"numero":       float64(2650),
		}}

		records := NormalizeDraws(draws)
		require.Len(t, records, 1)
		assert.Equal(t, "15/01/2024", records[0].Data)
		assert.Equal(t, "2650", records[0].NumeroConcurso)
		assert.Equal(t, []int{5, 12, 23, 45, 58, 60}, records[0].Numeros)
	})

	t.Run("record with too few numbers is dropped", func(t *testing.T) {
		draws := []RawDraw{{
			"dezenas":      []any{"05", "12"},
			"dataApuracao": "15/01/2024",
			"numero":       float64(2650),
		}}
		assert.Empty(t, NormalizeDraws(draws))
	})

	t.Run("listaDezenas alias", func(t *testing.T) {
		draws := []RawDraw{{
			"listaDezenas":   []any{"01", "02", "03", "04", "05", "06"},
			"data":           "10/02/2024",
			"numeroConcurso": "2651",
		}}

		records := NormalizeDraws(draws)
		require.Len(t, records, 1)
		assert.Equal(t, "10/02/2024", records[0].Data)
		assert.Equal(t, "2651", records[0].NumeroConcurso)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, records[0].Numeros)
	})

	t.Run("numeros fallback alias", func(t *testing.T) {
		draws := []RawDraw{{
			"numeros":         []any{float64(7), float64(8), float64(9), float64(10)},
			"dataApuracaoStr": "20/03/2024",
			"concurso":        float64(2652),
		}}

		records := NormalizeDraws(draws)
		require.Len(t, records, 1)
		assert.Equal(t, "20/03/2024", records[0].Data)
		assert.Equal(t, "2652", records[0].NumeroConcurso)
		assert.Equal(t, []int{7, 8, 9, 10}, records[0].Numeros)
	})

	t.Run("one bad entry invalidates the whole record", func(t *testing.T) {
		draws := []RawDraw{{
			"dezenas":      []any{"05", "twelve", "23", "45", "58", "60"},
			"dataApuracao": "15/01/2024",
		}}
		assert.Empty(t, NormalizeDraws(draws))
	})

	t.Run("missing aliases default to empty strings", func(t *testing.T) {
		draws := []RawDraw{{
			"dezenas": []any{"01", "02", "03", "04"},
		}}

		records := NormalizeDraws(draws)
		require.Len(t, records, 1)
		assert.Equal(t, "", records[0].Data)
		assert.Equal(t, "", records[0].NumeroConcurso)
	})

	t.Run("input order is preserved", func(t *testing.T) {
		draws := []RawDraw{
			{"dezenas": []any{"01", "02", "03", "04"}, "numero": float64(2)},
			{"dezenas": []any{"01", "02", "03", "04"}, "numero": float64(1)},
		}

		records := NormalizeDraws(draws)
		require.Len(t, records, 2)
		assert.Equal(t, "2", records[0].NumeroConcurso)
		assert.Equal(t, "1", records[1].NumeroConcurso)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, NormalizeDraws(nil))
	})
}

func TestFilterRecent(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -30).Format(DateFormatBR)
	stale := time.Now().AddDate(0, 0, -800).Format(DateFormatBR)

	records := []DrawRecord{
		{Data: recent, NumeroConcurso: "1", Numeros: []int{1, 2, 3, 4, 5, 6}},
		{Data: stale, NumeroConcurso: "2", Numeros: []int{1, 2, 3, 4, 5, 6}},
		{Data: "not-a-date", NumeroConcurso: "3", Numeros: []int{1, 2, 3, 4, 5, 6}},
		{Data: "", NumeroConcurso: "4", Numeros: []int{1, 2, 3, 4, 5, 6}},
	}

	filtered := FilterRecent(records)
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].NumeroConcurso)
}

func TestCalculateFrequencies(t *testing.T) {
	t.Run("dense table with exact totals", func(t *testing.T) {
		records := []DrawRecord{
			{Numeros: []int{5, 12, 23, 45, 58, 60}},
			{Numeros: []int{5, 12, 23, 1, 2, 3}},
		}

		frequencies := CalculateFrequencies(records)
		assert.Len(t, frequencies, 60)

		total := 0
		for n := NumberMin; n <= NumberMax; n++ {
			count, ok := frequencies[n]
			require.True(t, ok, "missing key %d", n)
			assert.GreaterOrEqual(t, count, 0)
			total += count
		}
		assert.Equal(t, 12, total)
		assert.Equal(t, 2, frequencies[5])
		assert.Equal(t, 1, frequencies[60])
	})

	t.Run("out-of-range values are ignored", func(t *testing.T) {
		frequencies := CalculateFrequencies([]DrawRecord{
			{Numeros: []int{0, 61, -5, 100, 30, 30}},
		})
		assert.Equal(t, 2, frequencies[30])

		total := 0
		for _, count := range frequencies {
			total += count
		}
		assert.Equal(t, 2, total)
	})

	t.Run("no records yields all zeros", func(t *testing.T) {
		frequencies := CalculateFrequencies(nil)
		assert.Len(t, frequencies, 60)
		for _, count := range frequencies {
			assert.Zero(t, count)
		}
	})
}

func TestCalculateProbabilities(t *testing.T) {
	t.Run("ratios sum to one", func(t *testing.T) {
		frequencies := CalculateFrequencies([]DrawRecord{
			{Numeros: []int{1, 2, 3, 4, 5, 6}},
		})

		probabilities := CalculateProbabilities(frequencies)
		sum := 0.0
		for _, p := range probabilities {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.InDelta(t, 1.0/6.0, probabilities[1], 1e-9)
	})

	t.Run("empty table yields zeros", func(t *testing.T) {
		probabilities := CalculateProbabilities(CalculateFrequencies(nil))
		assert.Len(t, probabilities, 60)
		for _, p := range probabilities {
			assert.Zero(t, p)
		}
	})
}

func TestGenerateEstimates(t *testing.T) {
	t.Run("ties keep ascending number order", func(t *testing.T) {
		estimate := GenerateEstimates(CalculateFrequencies(nil))
		assert.Equal(t, []int{1, 2, 3, 4}, estimate.Quadra)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, estimate.Quina)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, estimate.Sorte)
	})

	t.Run("boosted numbers rank into every group", func(t *testing.T) {
		frequencies := CalculateFrequencies(nil)
		frequencies[23] = 10
		frequencies[45] = 9
		frequencies[58] = 8

		estimate := GenerateEstimates(frequencies)
		assert.Subset(t, estimate.Sorte, []int{23, 45, 58})
		assert.Subset(t, estimate.Quina, []int{23, 45, 58})
		assert.Subset(t, estimate.Quadra, []int{23, 45, 58})
		assert.Equal(t, []int{1, 23, 45, 58}, estimate.Quadra)
	})

	t.Run("groups are ascending and sized 4 5 6", func(t *testing.T) {
		records := []DrawRecord{
			{Numeros: []int{60, 59, 58, 57, 56, 55}},
			{Numeros: []int{60, 59, 58, 57, 1, 2}},
			{Numeros: []int{60, 59, 3, 4, 5, 6}},
		}
		estimate := GenerateEstimates(CalculateFrequencies(records))

		for name, group := range map[string][]int{
			"quadra": estimate.Quadra, "quina": estimate.Quina, "sorte": estimate.Sorte,
		} {
			for i := 1; i < len(group); i++ {
				assert.Less(t, group[i-1], group[i], "%s not ascending", name)
			}
		}
		assert.Len(t, estimate.Quadra, 4)
		assert.Len(t, estimate.Quina, 5)
		assert.Len(t, estimate.Sorte, 6)
		assert.Equal(t, []int{57, 58, 59, 60}, estimate.Quadra)
	})
}

func TestParseDrawDate(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want string
	}{
		{"15/01/2024", true, "2024-01-15"},
		{"2024-01-15", true, "2024-01-15"},
		{"01-15-2024", false, ""},
		{"", false, ""},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			parsed, err := ParseDrawDate(tc.in)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsed.Format(DateFormatISO))
		})
	}
}
