package baseline

import (
	"math"
	"slices"
)

// ComputeStats returns count, rounded mean, nearest-rank percentiles and
// extremes of latencies. The input is not modified.
func ComputeStats(latencies []int64) Stats {
	n := len(latencies)
	if n == 0 {
		return Stats{}
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	return Stats{
		TotalQueries: n,
		AvgMs:        int64(math.Round(float64(sum) / float64(n))),
		P50Ms:        Percentile(sorted, 50),
		P90Ms:        Percentile(sorted, 90),
		P95Ms:        Percentile(sorted, 95),
		P99Ms:        Percentile(sorted, 99),
		MinMs:        sorted[0],
		MaxMs:        sorted[n-1],
	}
}

// Percentile selects the p-th percentile of an ascending slice by nearest
// rank: index ceil(p/100 * n) - 1, clamped to the slice bounds.
func Percentile(sorted []int64, p int) int64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := (p*n+99)/100 - 1
	idx = max(0, min(idx, n-1))
	return sorted[idx]
}
