package weather

import (
	"context"

	"github.com/branchnm/cutplan/core/model"
)

// Provider fetches forecast data from an external weather service.
// Failures are non-fatal to callers: an empty forecast simply yields an
// empty suggestion set.
type Provider interface {
	// Forecast returns upcoming days for the given location, today first.
	Forecast(ctx context.Context, coords model.Coordinates) ([]model.WeatherDay, error)
	// Geocode resolves a free-form address. A nil result with nil error
	// means the address could not be resolved.
	Geocode(ctx context.Context, query string) (*model.Coordinates, error)
}
