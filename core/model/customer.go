package model

import (
	"fmt"
	"time"
)

// Frequency is the recurrence of a customer's service cycle.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// NextDate advances a completion date by one service cycle.
func (f Frequency) NextDate(last time.Time) (time.Time, error) {
	switch f {
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7), nil
	case FrequencyBiweekly:
		return last.AddDate(0, 0, 14), nil
	case FrequencyMonthly:
		return last.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", f)
	}
}

// Customer holds the service profile for a property.
type Customer struct {
	ID            string
	Name          string
	Address       string
	Price         float64
	SquareFootage int
	Frequency     Frequency
	// NextCutDate and LastCutDate are "YYYY-MM-DD" calendar days,
	// empty when unknown.
	NextCutDate string
	LastCutDate string
	IsHilly     bool
	HasFencing  bool
	HasObstacles bool
}

// Validate checks the fields a store would reject.
func (c Customer) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("customer requires an id")
	}
	if c.Address == "" {
		return fmt.Errorf("customer %s requires an address", c.ID)
	}
	switch c.Frequency {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
	default:
		return fmt.Errorf("customer %s has unknown frequency %q", c.ID, c.Frequency)
	}
	return nil
}
