package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSeries(value float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func risingSeries(start, step float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = start + step*float64(i)
	}
	return s
}

func TestMovingAverage(t *testing.T) {
	t.Run("constant series equals the constant", func(t *testing.T) {
		ma, ok := MovingAverage(constantSeries(42.5, 100), 50)
		require.True(t, ok)
		assert.InDelta(t, 42.5, ma, 1e-9)
	})

	t.Run("undefined before window observations exist", func(t *testing.T) {
		_, ok := MovingAverage(constantSeries(10, 49), 50)
		assert.False(t, ok)
	})

	t.Run("trailing window only", func(t *testing.T) {
		closes := []float64{1, 1, 1, 10, 20}
		ma, ok := MovingAverage(closes, 2)
		require.True(t, ok)
		assert.InDelta(t, 15.0, ma, 1e-9)
	})
}

func TestRSI(t *testing.T) {
	t.Run("bounded in [0,100]", func(t *testing.T) {
		series := [][]float64{
			risingSeries(100, 1, 60),
			risingSeries(100, -0.5, 60),
			{100, 102, 99, 103, 97, 105, 96, 104, 98, 101, 100, 99, 102, 98, 103, 97},
		}
		for _, s := range series {
			rsi, ok := RSI(s, 14)
			require.True(t, ok)
			assert.GreaterOrEqual(t, rsi, 0.0)
			assert.LessOrEqual(t, rsi, 100.0)
		}
	})

	t.Run("all gains saturates at 100", func(t *testing.T) {
		rsi, ok := RSI(risingSeries(100, 1, 30), 14)
		require.True(t, ok)
		assert.Equal(t, 100.0, rsi)
	})

	t.Run("flat series reads neutral 50", func(t *testing.T) {
		rsi, ok := RSI(constantSeries(100, 30), 14)
		require.True(t, ok)
		assert.Equal(t, 50.0, rsi)
	})

	t.Run("all losses reads 0", func(t *testing.T) {
		rsi, ok := RSI(risingSeries(100, -1, 30), 14)
		require.True(t, ok)
		assert.InDelta(t, 0.0, rsi, 1e-9)
	})

	t.Run("equal gains and losses reads 50", func(t *testing.T) {
		closes := make([]float64, 0, 29)
		v := 100.0
		closes = append(closes, v)
		for i := 0; i < 28; i++ {
			if i%2 == 0 {
				v += 1
			} else {
				v -= 1
			}
			closes = append(closes, v)
		}
		rsi, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.InDelta(t, 50.0, rsi, 1e-9)
	})

	t.Run("needs period+1 observations", func(t *testing.T) {
		_, ok := RSI(constantSeries(100, 14), 14)
		assert.False(t, ok)
	})
}

func TestRollingVolatility(t *testing.T) {
	t.Run("constant series has zero volatility", func(t *testing.T) {
		vol, ok := RollingVolatility(constantSeries(75, 50), 20)
		require.True(t, ok)
		assert.InDelta(t, 0.0, vol, 1e-9)
	})

	t.Run("expressed in percent", func(t *testing.T) {
		// Alternating +1%/-1% daily moves: returns are near ±0.01, so the
		// percent volatility must land near 1, not 0.01.
		closes := make([]float64, 0, 41)
		v := 100.0
		closes = append(closes, v)
		for i := 0; i < 40; i++ {
			if i%2 == 0 {
				v *= 1.01
			} else {
				v *= 0.99
			}
			closes = append(closes, v)
		}
		vol, ok := RollingVolatility(closes, 20)
		require.True(t, ok)
		assert.Greater(t, vol, 0.5)
		assert.Less(t, vol, 2.0)
	})

	t.Run("needs window+1 observations", func(t *testing.T) {
		_, ok := RollingVolatility(constantSeries(10, 20), 20)
		assert.False(t, ok)
	})
}

func TestDrawdownFromPeak(t *testing.T) {
	t.Run("monotonically rising series has zero drawdown", func(t *testing.T) {
		dd, ok := DrawdownFromPeak(risingSeries(50, 0.5, 100), 63)
		require.True(t, ok)
		assert.InDelta(t, 0.0, dd, 1e-9)
	})

	t.Run("reports fraction below trailing peak", func(t *testing.T) {
		closes := constantSeries(100, 70)
		closes[len(closes)-1] = 80
		dd, ok := DrawdownFromPeak(closes, 63)
		require.True(t, ok)
		assert.InDelta(t, -0.20, dd, 1e-9)
	})

	t.Run("never positive", func(t *testing.T) {
		dd, ok := DrawdownFromPeak(risingSeries(10, 1, 80), 63)
		require.True(t, ok)
		assert.LessOrEqual(t, dd, 0.0)
	})
}

func TestCalculator_Snapshot(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	t.Run("refuses series with 219 observations", func(t *testing.T) {
		snap, ok := calc.Snapshot(risingSeries(100, 0.1, 219))
		assert.False(t, ok)
		assert.Nil(t, snap)
	})

	t.Run("produces snapshot at exactly 220 observations", func(t *testing.T) {
		closes := risingSeries(100, 0.1, 220)
		snap, ok := calc.Snapshot(closes)
		require.True(t, ok)
		require.NotNil(t, snap)

		assert.Greater(t, snap.MAShort, snap.MALong, "rising series trends up")
		assert.Equal(t, closes[len(closes)-1], snap.LastClose)
		assert.InDelta(t, 0.0, snap.Drawdown, 1e-9)
		assert.False(t, math.IsNaN(snap.RSIPrior), "220 observations leave room for the prior RSI reading")
		assert.GreaterOrEqual(t, snap.RSI, 0.0)
		assert.LessOrEqual(t, snap.RSI, 100.0)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		closes := make([]float64, 260)
		v := 100.0
		for i := range closes {
			// Fixed pseudo-random walk, no seed dependence.
			if i%3 == 0 {
				v *= 1.004
			} else if i%7 == 0 {
				v *= 0.991
			} else {
				v *= 1.001
			}
			closes[i] = v
		}

		a, okA := calc.Snapshot(closes)
		b, okB := calc.Snapshot(closes)
		require.True(t, okA)
		require.True(t, okB)
		assert.Equal(t, a, b)
	})
}
