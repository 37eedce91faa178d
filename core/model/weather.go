package model

// HourlyForecast is one sampled hour of a day's forecast.
type HourlyForecast struct {
	Hour24       int
	Description  string
	RainAmountMm float64
}

// WeatherDay is the forecast for one calendar day.
type WeatherDay struct {
	// Date is a "YYYY-MM-DD" calendar day.
	Date                string
	PrecipitationChance int // 0-100
	Hourly              []HourlyForecast
}

// Coordinates is a geocoded location.
type Coordinates struct {
	Lat  float64
	Lon  float64
	Name string
}
