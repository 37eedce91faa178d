// Package weather classifies forecast days for scheduling decisions.
// Classification is always derived from provider data and never persisted.
package weather

import (
	"strings"

	"github.com/branchnm/cutplan/core/model"
)

// DayClass is the coarse outcome of classifying one forecast day.
type DayClass string

const (
	ClassBad     DayClass = "bad"
	ClassGood    DayClass = "good"
	ClassPartial DayClass = "partial"
	// ClassUnclassified marks days without hourly data. They are treated
	// as neither bad nor good and generate no suggestions.
	ClassUnclassified DayClass = "unclassified"
)

// Config carries the classification thresholds. The fractions and
// millimetre cutoffs are tuned heuristics, not derived values.
type Config struct {
	// BadFraction is the share of hourly samples that must match the
	// bad (or good) predicate for a day to classify as bad (or good).
	BadFraction float64 `json:"bad_fraction"`
	// RainThresholdMm separates a wet sample from a dry one.
	RainThresholdMm float64 `json:"rain_threshold_mm"`
	// HeavyRainMm marks a day severity "heavy" when any sample exceeds it.
	HeavyRainMm float64 `json:"heavy_rain_mm"`
	// NightRainMm is the per-sample cutoff for the previous-night check.
	NightRainMm float64 `json:"night_rain_mm"`
	// NightStartHour is the first hour counted as "night" on the prior day.
	NightStartHour int `json:"night_start_hour"`
	// WetGrassStartHour is the fixed safe start after overnight rain.
	WetGrassStartHour int `json:"wet_grass_start_hour"`
	// LatestSafeStartHour caps how late a delay suggestion may start.
	LatestSafeStartHour int `json:"latest_safe_start_hour"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		BadFraction:         0.75,
		RainThresholdMm:     1,
		HeavyRainMm:         5,
		NightRainMm:         3,
		NightStartHour:      17,
		WetGrassStartHour:   10,
		LatestSafeStartHour: 17,
	}
}

// Classification is the full result for one day.
type Classification struct {
	Date  string
	Class DayClass
	// Adjust is set for partial days: delay or start-early.
	Adjust model.AdjustType
	// SafeStartHour is the earliest workable hour for delay days.
	SafeStartHour int
	// LastGoodHour is the last workable hour for start-early days.
	LastGoodHour int
	// PreviousNightRain marks a wet-grass delay caused by the prior evening.
	PreviousNightRain bool
	Severity          model.Severity
}

// Classifier applies the threshold rules. The zero value is unusable;
// construct with New.
type Classifier struct {
	cfg Config
}

// New creates a Classifier, falling back to defaults for zeroed thresholds.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.BadFraction <= 0 || cfg.BadFraction > 1 {
		cfg.BadFraction = def.BadFraction
	}
	if cfg.RainThresholdMm <= 0 {
		cfg.RainThresholdMm = def.RainThresholdMm
	}
	if cfg.HeavyRainMm <= 0 {
		cfg.HeavyRainMm = def.HeavyRainMm
	}
	if cfg.NightRainMm <= 0 {
		cfg.NightRainMm = def.NightRainMm
	}
	if cfg.NightStartHour <= 0 {
		cfg.NightStartHour = def.NightStartHour
	}
	if cfg.WetGrassStartHour <= 0 {
		cfg.WetGrassStartHour = def.WetGrassStartHour
	}
	if cfg.LatestSafeStartHour <= 0 {
		cfg.LatestSafeStartHour = def.LatestSafeStartHour
	}
	return &Classifier{cfg: cfg}
}

var severeTokens = []string{"thunder", "heavy", "storm"}

func severeDescription(desc string) bool {
	d := strings.ToLower(desc)
	for _, tok := range severeTokens {
		if strings.Contains(d, tok) {
			return true
		}
	}
	return false
}

func (c *Classifier) badSample(h model.HourlyForecast) bool {
	return h.RainAmountMm > c.cfg.RainThresholdMm || severeDescription(h.Description)
}

// Classify evaluates one day. prev is the prior calendar day's forecast and
// may be nil; it only feeds the previous-night wet-grass check. Classify
// never fails: days without hourly samples come back ClassUnclassified.
func (c *Classifier) Classify(day model.WeatherDay, prev *model.WeatherDay) Classification {
	out := Classification{Date: day.Date, Class: ClassUnclassified, Severity: model.SeverityModerate}
	if len(day.Hourly) == 0 {
		return out
	}

	bad := 0
	for _, h := range day.Hourly {
		if c.badSample(h) {
			bad++
		}
		if h.RainAmountMm > c.cfg.HeavyRainMm || strings.Contains(strings.ToLower(h.Description), "thunder") {
			out.Severity = model.SeverityHeavy
		}
	}
	frac := float64(bad) / float64(len(day.Hourly))

	switch {
	case frac >= c.cfg.BadFraction:
		out.Class = ClassBad
		return out
	case 1-frac >= c.cfg.BadFraction:
		out.Class = ClassGood
	default:
		out.Class = ClassPartial
	}

	// Overnight rain leaves the ground unworkable until mid-morning even
	// when the day itself looks fine.
	if prev != nil && c.previousNightRain(*prev) {
		out.Class = ClassPartial
		out.Adjust = model.AdjustDelay
		out.SafeStartHour = c.cfg.WetGrassStartHour
		out.PreviousNightRain = true
		return out
	}
	if out.Class == ClassGood {
		return out
	}

	if clear, ok := c.morningRainClears(day.Hourly); ok {
		out.Adjust = model.AdjustDelay
		out.SafeStartHour = min(clear+1, c.cfg.LatestSafeStartHour)
		return out
	}
	if last, ok := c.eveningRainArrives(day.Hourly); ok {
		out.Adjust = model.AdjustStartEarly
		out.LastGoodHour = last
		return out
	}
	// Scattered showers with no clean pattern: partial but unactionable.
	return out
}

// morningRainClears matches a wet start followed by a clear rest of day.
// It returns the hour at which the weather clears for good.
func (c *Classifier) morningRainClears(hourly []model.HourlyForecast) (int, bool) {
	if len(hourly) == 0 || !c.badSample(hourly[0]) {
		return 0, false
	}
	lastBad := -1
	for i, h := range hourly {
		if c.badSample(h) {
			lastBad = i
		}
	}
	if lastBad < 0 || lastBad == len(hourly)-1 {
		return 0, false
	}
	return hourly[lastBad+1].Hour24, true
}

// eveningRainArrives matches a clear start with rain moving in later.
// It returns the last clear hour before the rain.
func (c *Classifier) eveningRainArrives(hourly []model.HourlyForecast) (int, bool) {
	if len(hourly) == 0 || c.badSample(hourly[0]) {
		return 0, false
	}
	firstBad := -1
	for i, h := range hourly {
		if c.badSample(h) {
			firstBad = i
			break
		}
	}
	if firstBad <= 0 {
		return 0, false
	}
	return hourly[firstBad-1].Hour24, true
}

func (c *Classifier) previousNightRain(prev model.WeatherDay) bool {
	for _, h := range prev.Hourly {
		if h.Hour24 < c.cfg.NightStartHour {
			continue
		}
		if h.RainAmountMm > c.cfg.NightRainMm || severeDescription(h.Description) {
			return true
		}
	}
	return false
}
