package route

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/branchnm/cutplan/core/drivetime"
)

// OfflineOptimizer orders stops with a greedy nearest-neighbor walk over
// a drive-time matrix built from the street heuristic. It is fully
// deterministic: equal distances resolve to the lowest stop index.
type OfflineOptimizer struct {
	heur drivetime.Heuristic
}

// NewOfflineOptimizer creates an OfflineOptimizer.
func NewOfflineOptimizer(heur drivetime.Heuristic) *OfflineOptimizer {
	return &OfflineOptimizer{heur: heur}
}

// OptimizeRoute implements Optimizer without any network dependency.
func (o *OfflineOptimizer) OptimizeRoute(ctx context.Context, origin string, stops []Stop) (*Result, error) {
	if origin == "" {
		return nil, fmt.Errorf("offline optimize: origin is required")
	}
	if len(stops) == 0 {
		return &Result{}, nil
	}

	// Row/column 0 is the origin; stop i maps to index i+1.
	addrs := make([]string, len(stops)+1)
	addrs[0] = origin
	for i, s := range stops {
		addrs[i+1] = s.Address
	}
	n := len(addrs)
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d.Set(i, j, float64(o.heur.Estimate(addrs[i], addrs[j]).DurationMinutes))
		}
	}

	visited := make([]bool, n)
	visited[0] = true
	cur := 0
	res := &Result{Stops: make([]Stop, 0, len(stops))}
	for len(res.Stops) < len(stops) {
		next := -1
		best := 0.0
		for j := 1; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || d.At(cur, j) < best {
				next = j
				best = d.At(cur, j)
			}
		}
		minutes := int(best)
		res.Legs = append(res.Legs, Leg{
			FromAddress:     addrs[cur],
			ToAddress:       addrs[next],
			DurationMinutes: minutes,
			DurationText:    fmt.Sprintf("%d min", minutes),
		})
		res.TotalMinutes += minutes
		res.Stops = append(res.Stops, stops[next-1])
		visited[next] = true
		cur = next
	}
	return res, nil
}
