package model

// TechnicalData holds the aggregate environmental data for the resolved
// location. It is fetched once, when data collection completes, and is
// immutable for the rest of the session.
type TechnicalData struct {
	SolarResource SolarResource `json:"solar_resource"`
	Wind          WindData      `json:"wind"`
	Climate       ClimateData   `json:"climate"`
}

type SolarResource struct {
	YearlyKwhPerKwp float64 `json:"yearly_kwh_per_kwp"`
	OptimalAngle    float64 `json:"optimal_angle"`
}

type WindData struct {
	AverageSpeed float64 `json:"average_speed"`
}

type ClimateData struct {
	YearAverageTemp float64 `json:"year_average_temp"`
}
