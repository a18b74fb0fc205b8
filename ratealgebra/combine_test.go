package ratealgebra

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineScenarios(t *testing.T) {
	tests := []struct {
		name                   string
		sats0, rate0           int64
		sats1, rate1           int64
		wantSats, wantRate     int64
		wantErr                bool
	}{
		{"add_01", 100, 1000, 50, 1500, 150, 1125, false},
		{"add_02", 100, 1000, 50, 1000, 150, 1000, false},
		{"add_03", 0, 1000, 50, 2000, 50, 2000, false},
		{"add_04", 100, 3000, 100, 1000, 200, 1500, false},
		{"sub_01", 300, 3000, -300, 4000, 0, 0, false},
		{"sub_02", 100, 3000, -99, 3000, 1, 3000, false},
		{"sub_03", 300, 3000, -50, 1000, 250, 5000, false},
		{"sub_05", 2_000_000_000_000, 4000, -1_999_999_999_999, 4001, 1, 0, false},
		{"sub_06", 2_000_000_000_000, 1, -999_999_999_999, 2, 1_000_000_000_001, 0, false},
		{"overflow_01", 2, 20_000_000_000_000, -1, 10_000_000_000_001, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Combine(Exposure{Sats: tt.sats0, Rate: tt.rate0}, tt.sats1, tt.rate1)
			if tt.wantErr {
				require.Error(t, err)
				var overflowErr *RateOverflowError
				assert.ErrorAs(t, err, &overflowErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSats, got.Sats)
			assert.Equal(t, tt.wantRate, got.Rate)
		})
	}
}

func TestCombineInsufficientSats(t *testing.T) {
	_, err := Combine(Exposure{Sats: 100, Rate: 3000}, -200, 1000)
	var satsErr *InsufficientSatsBalanceError
	assert.ErrorAs(t, err, &satsErr)
}

func TestCombineZeroZero(t *testing.T) {
	got, err := Combine(Exposure{Sats: 0, Rate: 0}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Exposure{Sats: 0, Rate: 0}, got)
}

// TestCombineSameRateMerge pins the "same-rate merge" property from
// SPEC_FULL.md §8: combining two exposures at an identical rate returns
// their summed sats at that same rate, whenever the sum is positive (a zero
// sum has no exposure left to carry a rate; see sub_01 and TestCombineZeroZero).
func TestCombineSameRateMerge(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		rate := int64(rnd.Intn(1_000_000) + 1)
		s1 := int64(rnd.Intn(1_000_000))
		s2 := int64(rnd.Intn(2_000_001) - 1_000_000)
		if s1+s2 <= 0 {
			continue
		}
		got, err := Combine(Exposure{Sats: s1, Rate: rate}, s2, rate)
		require.NoError(t, err)
		assert.Equal(t, s1+s2, got.Sats)
		assert.Equal(t, rate, got.Rate)
	}
}

// TestCombineZeroInjection pins the "zero-sats injection" property: folding
// a (0, anyRate) exposure into h returns h unchanged.
func TestCombineZeroInjection(t *testing.T) {
	h := Exposure{Sats: 50, Rate: 2000}
	got, err := Combine(h, 0, 999999)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

// TestCombineSatsConservation pins the "sats conservation" property: on
// success, result sats always equals the sum of the inputs' sats.
func TestCombineSatsConservation(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		s0 := int64(rnd.Intn(1_000_000))
		r0 := int64(rnd.Intn(1_000_000) + 1)
		s1 := int64(rnd.Intn(2_000_001) - 1_000_000)
		r1 := int64(rnd.Intn(1_000_000) + 1)

		got, err := Combine(Exposure{Sats: s0, Rate: r0}, s1, r1)
		if err != nil {
			continue
		}
		assert.Equal(t, s0+s1, got.Sats)
	}
}

func TestCombineInsufficientSatsIffNegative(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		s0 := int64(rnd.Intn(1_000_000))
		r0 := int64(rnd.Intn(1_000_000) + 1)
		s1 := int64(rnd.Intn(2_000_001) - 1_000_000)
		r1 := int64(rnd.Intn(1_000_000) + 1)

		_, err := Combine(Exposure{Sats: s0, Rate: r0}, s1, r1)
		_, isSatsErr := err.(*InsufficientSatsBalanceError)
		assert.Equal(t, s0+s1 < 0, isSatsErr)
	}
}
