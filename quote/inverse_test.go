package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage/types"
)

func TestInverse(t *testing.T) {
	t.Parallel()

	t.Run("VES target via P2P", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:  4000,
			types.FieldUSDTVESSell: 690,
		})

		q, err := Inverse(30000, TargetVES, rates, noAdjustments, PercentageFee(0.10))
		require.NoError(t, err)

		assert.InDelta(t, 43.478, q.NetUSDT, 1e-3)
		assert.InDelta(t, 48.309, q.BaseUSDT, 1e-3)
		assert.InDelta(t, 193237, q.InputCOP, 1)
		assert.InDelta(t, q.BaseUSDT, q.RequiredUSD, 1e-12)
		assert.Equal(t, MethodP2P, q.Method)
		assert.Equal(t, TargetVES, q.Target)

		require.NotNil(t, q.DeliveredVES)
		assert.Equal(t, 30000.0, *q.DeliveredVES)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:     3987.5,
			types.FieldUSDTVESSell:    702.3,
			types.FieldEURVESOfficial: 191.2,
			types.FieldEURUSD:         1.0812,
		})

		for _, fee := range []Fee{PercentageFee(0.1), PercentageFee(0), FixedFee(2.5)} {
			for _, input := range []float64{20000, 200000, 1_000_000} {
				forward, err := Forward(input, rates, types.DefaultAdjustments(), fee)
				require.NoError(t, err)
				require.NotNil(t, forward.DeliveredVES)

				inverse, err := Inverse(*forward.DeliveredVES, TargetVES, rates, types.DefaultAdjustments(), fee)
				require.NoError(t, err)

				assert.InEpsilon(t, input, inverse.InputCOP, 1e-6)
				assert.Equal(t, forward.Method, inverse.Method)
			}
		}
	})

	t.Run("full fee unsolvable", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:  4000,
			types.FieldUSDTVESSell: 690,
		})

		for _, fraction := range []float64{1, 1.5} {
			_, err := Inverse(30000, TargetVES, rates, noAdjustments, PercentageFee(fraction))

			assert.ErrorIs(t, err, ErrUnsolvableInverse)
		}
	})

	t.Run("overflowing fixed fee", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:  4000,
			types.FieldUSDTVESSell: 690,
		})

		_, err := Inverse(30000, TargetVES, rates, noAdjustments, FixedFee(1e306))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("fixed fee", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:  4000,
			types.FieldUSDTVESSell: 500,
		})

		q, err := Inverse(5000, TargetVES, rates, noAdjustments, FixedFee(2))
		require.NoError(t, err)

		assert.InDelta(t, 10, q.NetUSDT, 1e-9)
		assert.InDelta(t, 12, q.BaseUSDT, 1e-9)
		assert.InDelta(t, 48000, q.InputCOP, 1e-6)
	})

	t.Run("per target preference", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:     4000,
			types.FieldUSDTVESSell:    60,
			types.FieldUSDVESOfficial: 36,
			types.FieldUSDVESParallel: 55,
			types.FieldEURVESOfficial: 40,
			types.FieldEURUSD:         1.0,
		})

		testTable := []struct {
			target    Target
			method    Method
			targetVES float64
		}{
			{TargetVES, MethodEURDerived, 100},
			{TargetUSDOfficial, MethodEURDerived, 100 * 36},
			{TargetUSDParallel, MethodP2P, 100 * 55},
			{TargetUSDEUR, MethodEURDerived, 100 * 40},
			{TargetEUR, MethodEURDerived, 100 * 40},
		}

		for _, testCase := range testTable {
			t.Run(string(testCase.target), func(t *testing.T) {
				t.Parallel()

				q, err := Inverse(100, testCase.target, rates, noAdjustments, PercentageFee(0))
				require.NoError(t, err)

				assert.Equal(t, testCase.method, q.Method)
				assert.InDelta(t, testCase.targetVES, *q.DeliveredVES, 1e-9)
			})
		}
	})

	t.Run("USD_EUR requires EUR rates", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:  4000,
			types.FieldUSDTVESSell: 690,
		})

		_, err := Inverse(50, TargetUSDEUR, rates, noAdjustments, PercentageFee(0.1))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("USD_PARALLEL falls back to EUR-derived", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTCOPBuy:     4000,
			types.FieldUSDVESParallel: 55,
			types.FieldEURVESOfficial: 40,
			types.FieldEURUSD:         1.0,
		})

		q, err := Inverse(10, TargetUSDParallel, rates, noAdjustments, PercentageFee(0))
		require.NoError(t, err)

		assert.Equal(t, MethodEURDerived, q.Method)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		t.Parallel()

		rates := newRates(map[types.Field]float64{
			types.FieldUSDTVESSell: 690,
		})

		_, err := Inverse(0, TargetVES, rates, noAdjustments, PercentageFee(0.1))
		assert.ErrorIs(t, err, ErrInsufficientData)

		_, err = Inverse(100, Target("GBP"), rates, noAdjustments, PercentageFee(0.1))
		assert.ErrorIs(t, err, ErrInsufficientData)

		_, err = Inverse(100, TargetVES, rates, noAdjustments, PercentageFee(0.1))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestTable_SelectActive(t *testing.T) {
	t.Parallel()

	rates := newRates(map[types.Field]float64{
		types.FieldUSDTCOPBuy:     4000,
		types.FieldUSDTVESSell:    690,
		types.FieldUSDVESParallel: 650,
	})

	amounts := map[Target]float64{
		TargetUSDEUR:      50, // no EUR rates, fails
		TargetUSDParallel: 20,
		TargetVES:         30000,
	}

	rows := Table(amounts, rates, noAdjustments, PercentageFee(0.1))
	require.Len(t, rows, 3)

	// Canonical order
	assert.Equal(t, TargetVES, rows[0].Target)
	assert.Equal(t, TargetUSDParallel, rows[1].Target)
	assert.Equal(t, TargetUSDEUR, rows[2].Target)
	assert.False(t, rows[2].OK())

	t.Run("last touched wins", func(t *testing.T) {
		t.Parallel()

		row, ok := SelectActive(rows, TargetUSDParallel)
		require.True(t, ok)
		assert.Equal(t, TargetUSDParallel, row.Target)
	})

	t.Run("failed last touched falls back", func(t *testing.T) {
		t.Parallel()

		row, ok := SelectActive(rows, TargetUSDEUR)
		require.True(t, ok)
		assert.Equal(t, TargetVES, row.Target)
	})

	t.Run("nothing touched", func(t *testing.T) {
		t.Parallel()

		row, ok := SelectActive(rows, "")
		require.True(t, ok)
		assert.Equal(t, TargetVES, row.Target)
	})

	t.Run("no successful rows", func(t *testing.T) {
		t.Parallel()

		_, ok := SelectActive(rows[2:], TargetUSDEUR)
		assert.False(t, ok)
	})
}

func TestSheet(t *testing.T) {
	t.Parallel()

	rates := newRates(map[types.Field]float64{
		types.FieldUSDTCOPBuy:  4000,
		types.FieldUSDTVESSell: 690,
	})

	rows := Sheet(nil, rates, noAdjustments, PercentageFee(0.1))
	require.Len(t, rows, len(DefaultSheetAmounts))

	for i, row := range rows {
		assert.Equal(t, DefaultSheetAmounts[i], row.COP)
		require.NotNil(t, row.Quote)
		assert.InDelta(t, row.COP/4000*0.9*690, *row.Quote.DeliveredVES, 1e-6)
	}

	// Without a USDT/COP rate, rows carry no quote
	for _, row := range Sheet([]float64{1000}, newRates(nil), noAdjustments, PercentageFee(0.1)) {
		assert.Nil(t, row.Quote)
	}
}
