package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"energy-advisor/internal/model"
)

// Economic constants (approximate market prices, EUR).
const (
	solarCostPerKwp      = 1500.0
	solarSelfUseShare    = 0.7
	solarSelfUseRate     = 0.20 // €/kWh avoided grid purchase
	solarExportRate      = 0.05 // €/kWh feed-in
	solarLifetimeYears   = 25
	panelKwp             = 0.4 // 400 Wp panels, 2 m² each
	panelAreaM2          = 2.0
	roofUsableShare      = 0.7
	windTurbineKw        = 5.0
	windTurbineCost      = 15000.0
	windSavingsRate      = 0.18
	windLifetimeYears    = 20
	hoursPerYear         = 8760
	heatPumpCostPerKw    = 2500.0
	heatingHoursPerYear  = 2000.0
	electricityRate      = 0.18
	hpLifetimeYears      = 15
	combinedSolarFactor  = 0.9  // bundling discount
	combinedHPFactor     = 0.95 // bundling discount
	combinedSynergy      = 1.1  // PV powering the heat pump
	combinedLifetimeYears = 20
)

// Defaults applied when optional profile values are missing at calculation
// time (possible for non-family-house roofs).
const (
	defaultRoofAreaM2  = 50.0
	defaultConsumption = 3500.0
	defaultHeatedArea  = 150.0
)

// CalculationStage computes sizing, cost, savings, payback and ROI for each
// recommended technology plus the combined system.
type CalculationStage struct {
	log *zap.SugaredLogger
}

// NewCalculationStage creates the calculation stage.
func NewCalculationStage(log *zap.SugaredLogger) *CalculationStage {
	return &CalculationStage{log: log}
}

// Process computes economics for the session's recommended technologies.
func (s *CalculationStage) Process(ctx context.Context, session *model.Session) *model.AgentResponse {
	profile := &session.Profile
	tech := session.Technical
	analysis := session.Analysis

	calc := &model.CalculationResult{}
	if analysis.Recommends(model.TechSolar) {
		calc.Solar = calculateSolar(profile, tech)
	}
	if analysis.Recommends(model.TechWind) {
		calc.Wind = calculateWind(tech)
	}
	if analysis.Recommends(model.TechHeatPump) {
		calc.HeatPump = calculateHeatPump(profile, tech)
	}
	if calc.Solar != nil || calc.HeatPump != nil {
		calc.Combined = calculateCombined(calc)
	}

	session.Calculations = calc

	return &model.AgentResponse{
		Message:    formatCalculationMessage(calc),
		IsComplete: true,
		Progress:   75,
	}
}

func calculateSolar(p *model.UserProfile, t *model.TechnicalData) *model.SystemCalculation {
	roofArea := defaultRoofAreaM2
	if p.Roof.AreaM2 != nil {
		roofArea = *p.Roof.AreaM2
	}
	consumption := defaultConsumption
	if p.Consumption.ElectricityKwhYear != nil {
		consumption = *p.Consumption.ElectricityKwhYear
	}

	roofLimitKwp := roofArea * roofUsableShare / panelAreaM2 * panelKwp
	optimalKwp := consumption / 1000
	if roofLimitKwp < optimalKwp {
		optimalKwp = roofLimitKwp
	}

	production := optimalKwp * t.SolarResource.YearlyKwhPerKwp
	cost := optimalKwp * solarCostPerKwp

	selfConsumption := production * solarSelfUseShare
	if selfConsumption > consumption {
		selfConsumption = consumption
	}
	gridExport := production - selfConsumption
	savings := selfConsumption*solarSelfUseRate + gridExport*solarExportRate

	calc := &model.SystemCalculation{
		Technology:       "Solar PV",
		SystemSize:       fmt.Sprintf("%.1f kWp", optimalKwp),
		NumberOfPanels:   int(optimalKwp / panelKwp),
		YearlyProduction: fmt.Sprintf("%.0f kWh", production),
		InstallationCost: cost,
		YearlySavings:    savings,
		Details: map[string]string{
			"self_consumption": fmt.Sprintf("%.0f kWh/year", selfConsumption),
			"grid_export":      fmt.Sprintf("%.0f kWh/year", gridExport),
			"coverage":         fmt.Sprintf("%.0f%%", selfConsumption/consumption*100),
		},
	}
	applyEconomics(calc, solarLifetimeYears)
	return calc
}

func calculateWind(t *model.TechnicalData) *model.SystemCalculation {
	speed := t.Wind.AverageSpeed

	var capacityFactor float64
	switch {
	case speed > 6:
		capacityFactor = 0.30
	case speed > 5:
		capacityFactor = 0.20
	case speed > 4:
		capacityFactor = 0.15
	default:
		capacityFactor = 0.10
	}

	production := windTurbineKw * hoursPerYear * capacityFactor

	calc := &model.SystemCalculation{
		Technology:       "Wind turbine",
		SystemSize:       fmt.Sprintf("%.0f kW", windTurbineKw),
		YearlyProduction: fmt.Sprintf("%.0f kWh", production),
		InstallationCost: windTurbineCost,
		YearlySavings:    production * windSavingsRate,
		Details: map[string]string{
			"average_wind":    fmt.Sprintf("%.1f m/s", speed),
			"capacity_factor": fmt.Sprintf("%.0f%%", capacityFactor*100),
		},
	}
	applyEconomics(calc, windLifetimeYears)
	return calc
}

func calculateHeatPump(p *model.UserProfile, t *model.TechnicalData) *model.SystemCalculation {
	heatedArea := defaultHeatedArea
	if p.Building.HeatedAreaM2 != nil {
		heatedArea = *p.Building.HeatedAreaM2
	}

	demand := heatedArea * heatingSpecificDemand(p.Building.InsulationLevel)
	sizeKw := demand / heatingHoursPerYear

	cop := 3.0
	if t.Climate.YearAverageTemp > 8 {
		cop = 3.5
	}

	currentCost := demand * heatingFuelRate(p.Consumption.HeatingFuel)
	heatPumpCost := demand / cop * electricityRate
	savings := currentCost - heatPumpCost

	calc := &model.SystemCalculation{
		Technology:       "Heat pump",
		SystemSize:       fmt.Sprintf("%.0f kW", sizeKw),
		YearlyProduction: fmt.Sprintf("COP %.1f", cop),
		InstallationCost: sizeKw * heatPumpCostPerKw,
		YearlySavings:    savings,
		Details: map[string]string{
			"heating_demand": fmt.Sprintf("%.0f kWh/year", demand),
			"current_cost":   fmt.Sprintf("%.0f €/year", currentCost),
			"new_cost":       fmt.Sprintf("%.0f €/year", heatPumpCost),
		},
	}
	applyEconomics(calc, hpLifetimeYears)
	return calc
}

func heatingSpecificDemand(insulation *string) float64 {
	if insulation == nil {
		return 100
	}
	switch *insulation {
	case model.InsulationGood:
		return 50
	case model.InsulationAverage:
		return 100
	case model.InsulationPoor:
		return 150
	default:
		return 100
	}
}

func heatingFuelRate(fuel *string) float64 {
	if fuel == nil {
		return 0.10
	}
	switch *fuel {
	case "gas":
		return 0.08
	case "electricity":
		return 0.18
	case "wood":
		return 0.05
	default:
		return 0.10
	}
}

func calculateCombined(result *model.CalculationResult) *model.SystemCalculation {
	var cost, savings float64
	var components []string

	if result.Solar != nil {
		cost += result.Solar.InstallationCost * combinedSolarFactor
		savings += result.Solar.YearlySavings
		components = append(components, "PV "+result.Solar.SystemSize)
	}
	if result.HeatPump != nil {
		cost += result.HeatPump.InstallationCost * combinedHPFactor
		savings += result.HeatPump.YearlySavings
		components = append(components, "HP "+result.HeatPump.SystemSize)
	}

	calc := &model.SystemCalculation{
		Technology:       "Combined system",
		SystemSize:       strings.Join(components, " + "),
		InstallationCost: cost,
		YearlySavings:    savings * combinedSynergy,
		Details: map[string]string{
			"synergy": "PV powers the heat pump = cheaper heating",
		},
	}
	applyEconomics(calc, combinedLifetimeYears)
	return calc
}

// applyEconomics fills in payback and ROI. With zero or negative savings the
// economics are undefined and stay nil.
func applyEconomics(calc *model.SystemCalculation, lifetimeYears float64) {
	if calc.YearlySavings <= 0 || calc.InstallationCost <= 0 {
		return
	}
	payback := calc.InstallationCost / calc.YearlySavings
	roi := (calc.YearlySavings*lifetimeYears - calc.InstallationCost) / calc.InstallationCost * 100
	calc.PaybackYears = &payback
	calc.ROIPercent = &roi
}

func formatCalculationMessage(result *model.CalculationResult) string {
	var b strings.Builder
	b.WriteString("💰 **Economic calculation:**\n\n")

	for _, system := range result.SingleSystems() {
		b.WriteString(formatSystem(system))
	}
	if result.Combined != nil {
		b.WriteString("\n🎯 **RECOMMENDED COMBINATION:**\n")
		b.WriteString(formatSystem(result.Combined))
	}

	b.WriteString("\nPreparing the final report with detailed recommendations...")
	return b.String()
}

func formatSystem(calc *model.SystemCalculation) string {
	return fmt.Sprintf(`
**%s** (%s)
• Investment: %.0f €
• Yearly savings: %.0f €
• Payback: %s
• ROI: %s

`,
		calc.Technology, calc.SystemSize,
		calc.InstallationCost, calc.YearlySavings,
		formatPayback(calc.PaybackYears), formatROI(calc.ROIPercent))
}

func formatPayback(payback *float64) string {
	if payback == nil {
		return "not applicable"
	}
	return fmt.Sprintf("%.1f years", *payback)
}

func formatROI(roi *float64) string {
	if roi == nil {
		return "not applicable"
	}
	return fmt.Sprintf("%.0f%%", *roi)
}
