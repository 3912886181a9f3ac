package baseline

import (
	"reflect"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	ten := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	tests := []struct {
		name   string
		sorted []int64
		p      int
		want   int64
	}{
		{"empty", nil, 50, 0},
		{"single", []int64{7}, 99, 7},
		{"p50 of ten", ten, 50, 50},
		{"p90 of ten", ten, 90, 90},
		{"p95 of ten", ten, 95, 100},
		{"p99 of ten", ten, 99, 100},
		{"p0 clamps to first", ten, 0, 10},
		{"p50 of two", []int64{80, 120}, 50, 80},
		{"p50 of three", []int64{1, 2, 3}, 50, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.sorted, tt.p))
		})
	}
}

func TestComputeStats(t *testing.T) {
	in := []int64{300, 100, 200, 101}
	s := ComputeStats(in)

	assert.Equal(t, Stats{
		TotalQueries: 4,
		AvgMs:        175,
		P50Ms:        101,
		P90Ms:        300,
		P95Ms:        300,
		P99Ms:        300,
		MinMs:        100,
		MaxMs:        300,
	}, s)
	assert.Equal(t, []int64{300, 100, 200, 101}, in, "input must not be reordered")
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestComputeStats_Monotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("min <= p50 <= p90 <= p95 <= p99 <= max", prop.ForAll(
		func(latencies []int64) bool {
			s := ComputeStats(latencies)
			if len(latencies) == 0 {
				return s == Stats{}
			}
			return s.MinMs <= s.P50Ms &&
				s.P50Ms <= s.P90Ms &&
				s.P90Ms <= s.P95Ms &&
				s.P95Ms <= s.P99Ms &&
				s.P99Ms <= s.MaxMs &&
				s.MinMs <= s.AvgMs && s.AvgMs <= s.MaxMs &&
				s.MinMs == slices.Min(latencies) &&
				s.MaxMs == slices.Max(latencies)
		},
		gen.SliceOf(gen.Int64Range(0, 60000), reflect.TypeOf(int64(0))),
	))

	properties.TestingRun(t)
}
