// Package route orders each day's jobs into an efficient visiting
// sequence. The external multi-stop optimizer is authoritative; a
// deterministic offline fallback can order a day when the service is
// unreachable. Global optimality is not guaranteed.
package route

import "context"

// Stop is one job's address in an optimization request.
type Stop struct {
	ID      string
	Address string
	Order   int
}

// Leg is the drive between two consecutive stops of an optimized route.
type Leg struct {
	FromAddress     string
	ToAddress       string
	DurationMinutes int
	DurationText    string
}

// Result is the optimizer's response: stops in visiting order plus the
// connecting legs.
type Result struct {
	Stops        []Stop
	Legs         []Leg
	TotalMinutes int
}

// Optimizer is the external multi-stop routing collaborator. A failure
// for one day aborts only that day's optimization.
type Optimizer interface {
	OptimizeRoute(ctx context.Context, origin string, stops []Stop) (*Result, error)
}
