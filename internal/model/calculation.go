package model

// SystemCalculation is the sizing and economics of one proposed system.
// PaybackYears and ROIPercent are nil when yearly savings are zero or
// negative; the economics are then reported as not applicable instead of
// surfacing an infinite or NaN value.
type SystemCalculation struct {
	Technology       string            `json:"technology"`
	SystemSize       string            `json:"system_size"`
	NumberOfPanels   int               `json:"number_of_panels,omitempty"`
	YearlyProduction string            `json:"yearly_production"`
	InstallationCost float64           `json:"installation_cost"`
	YearlySavings    float64           `json:"yearly_savings"`
	PaybackYears     *float64          `json:"payback_years,omitempty"`
	ROIPercent       *float64          `json:"roi_percent,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

// CalculationResult holds per-technology economics plus the optional
// combined system. Only recommended technologies are present; the combined
// system exists only when solar or heat pump economics were computed.
type CalculationResult struct {
	Solar    *SystemCalculation `json:"solar,omitempty"`
	Wind     *SystemCalculation `json:"wind,omitempty"`
	HeatPump *SystemCalculation `json:"heat_pump,omitempty"`
	Combined *SystemCalculation `json:"combined,omitempty"`
}

// SingleSystems returns the per-technology calculations in first-computed
// order (solar, wind, heat pump), skipping absent ones.
func (c *CalculationResult) SingleSystems() []*SystemCalculation {
	var out []*SystemCalculation
	for _, s := range []*SystemCalculation{c.Solar, c.Wind, c.HeatPump} {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
