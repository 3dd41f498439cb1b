package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energy-advisor/internal/model"
)

func TestCalculateSolar_ConsumptionLimited(t *testing.T) {
	profile := model.UserProfile{
		Building:    model.Building{BuildingType: strPtr(model.BuildingFamilyHouse)},
		Consumption: model.Consumption{ElectricityKwhYear: f64Ptr(3500)},
		Roof:        model.Roof{AreaM2: f64Ptr(50)},
	}
	tech := defaultTechnicalData()
	tech.SolarResource.YearlyKwhPerKwp = 1100

	calc := calculateSolar(&profile, tech)

	// 50 m² roof allows 7.0 kWp, consumption caps sizing at 3.5 kWp.
	assert.Equal(t, "3.5 kWp", calc.SystemSize)
	assert.Equal(t, 8, calc.NumberOfPanels)
	assert.Equal(t, "3850 kWh", calc.YearlyProduction)
	assert.InDelta(t, 5250, calc.InstallationCost, 0.01)
	assert.InDelta(t, 596.75, calc.YearlySavings, 0.01)
	require.NotNil(t, calc.PaybackYears)
	assert.InDelta(t, 8.80, *calc.PaybackYears, 0.01)
	require.NotNil(t, calc.ROIPercent)
	assert.Equal(t, "2695 kWh/year", calc.Details["self_consumption"])
	assert.Equal(t, "1155 kWh/year", calc.Details["grid_export"])
}

func TestCalculateSolar_RoofLimited(t *testing.T) {
	profile := completeProfile()
	profile.Roof.AreaM2 = f64Ptr(20)
	tech := defaultTechnicalData()

	calc := calculateSolar(&profile, tech)

	// 20 m² roof: 20 * 0.7 / 2 * 0.4 = 2.8 kWp despite 4500 kWh consumption.
	assert.Equal(t, "2.8 kWp", calc.SystemSize)
}

func TestCalculateSolar_MissingValuesUseDefaults(t *testing.T) {
	calc := calculateSolar(&model.UserProfile{}, defaultTechnicalData())

	// Defaults: 50 m² roof, 3500 kWh consumption.
	assert.Equal(t, "3.5 kWp", calc.SystemSize)
	assert.NotNil(t, calc.PaybackYears)
}

func TestCalculateWind_CapacityFactorBands(t *testing.T) {
	tests := []struct {
		speed    float64
		cfDetail string
		savings  float64
	}{
		{7, "30%", 5 * 8760 * 0.30 * 0.18},
		{5.5, "20%", 5 * 8760 * 0.20 * 0.18},
		{4.5, "15%", 5 * 8760 * 0.15 * 0.18},
		{3, "10%", 5 * 8760 * 0.10 * 0.18},
	}

	for _, tt := range tests {
		tech := defaultTechnicalData()
		tech.Wind.AverageSpeed = tt.speed

		calc := calculateWind(tech)

		assert.Equal(t, tt.cfDetail, calc.Details["capacity_factor"], "speed %.1f", tt.speed)
		assert.InDelta(t, tt.savings, calc.YearlySavings, 0.01, "speed %.1f", tt.speed)
		assert.InDelta(t, 15000, calc.InstallationCost, 0.01)
	}
}

func TestCalculateHeatPump(t *testing.T) {
	profile := completeProfile() // 120 m², good insulation, gas heating
	tech := defaultTechnicalData()

	calc := calculateHeatPump(&profile, tech)

	// Demand 120*50 = 6000 kWh, COP 3.5 at 12 °C, 3 kW unit.
	assert.Equal(t, "3 kW", calc.SystemSize)
	assert.Equal(t, "COP 3.5", calc.YearlyProduction)
	assert.InDelta(t, 7500, calc.InstallationCost, 0.01)
	assert.InDelta(t, 171.43, calc.YearlySavings, 0.01)
	assert.Equal(t, "6000 kWh/year", calc.Details["heating_demand"])
	require.NotNil(t, calc.PaybackYears)
	assert.InDelta(t, 43.75, *calc.PaybackYears, 0.01)
}

func TestCalculateHeatPump_ColdClimateLowersCOP(t *testing.T) {
	profile := completeProfile()
	tech := defaultTechnicalData()
	tech.Climate.YearAverageTemp = 5

	calc := calculateHeatPump(&profile, tech)

	assert.Equal(t, "COP 3.0", calc.YearlyProduction)
}

func TestCalculateHeatPump_CheapFuelYieldsNoPayback(t *testing.T) {
	profile := completeProfile()
	profile.Consumption.HeatingFuel = strPtr("wood")
	tech := defaultTechnicalData()

	calc := calculateHeatPump(&profile, tech)

	// Wood at 0.05 €/kWh is cheaper than heat pump electricity: negative
	// savings, so payback and ROI are undefined.
	assert.Less(t, calc.YearlySavings, 0.0)
	assert.Nil(t, calc.PaybackYears)
	assert.Nil(t, calc.ROIPercent)
	assert.Contains(t, formatSystem(calc), "not applicable")
}

func TestCalculateCombined(t *testing.T) {
	solar := &model.SystemCalculation{Technology: "Solar PV", SystemSize: "4.5 kWp", InstallationCost: 6750, YearlySavings: 837}
	hp := &model.SystemCalculation{Technology: "Heat pump", SystemSize: "3 kW", InstallationCost: 7500, YearlySavings: 171.43}

	calc := calculateCombined(&model.CalculationResult{Solar: solar, HeatPump: hp})

	assert.Equal(t, "PV 4.5 kWp + HP 3 kW", calc.SystemSize)
	assert.InDelta(t, 6750*0.9+7500*0.95, calc.InstallationCost, 0.01)
	assert.InDelta(t, (837+171.43)*1.1, calc.YearlySavings, 0.01)
	require.NotNil(t, calc.PaybackYears)
}

func TestCalculationStage_OnlyRecommendedTechnologies(t *testing.T) {
	stage := NewCalculationStage(zap.NewNop().Sugar())
	session := scoredSession()
	session.Analysis = &model.AnalysisResult{
		RecommendedTechnologies: []string{model.TechSolar, model.TechHeatPump},
	}

	resp := stage.Process(context.Background(), session)

	assert.True(t, resp.IsComplete)
	assert.Equal(t, 75, resp.Progress)
	require.NotNil(t, session.Calculations)
	assert.NotNil(t, session.Calculations.Solar)
	assert.Nil(t, session.Calculations.Wind)
	assert.NotNil(t, session.Calculations.HeatPump)
	assert.NotNil(t, session.Calculations.Combined)
	assert.Contains(t, resp.Message, "RECOMMENDED COMBINATION")
}

func TestCalculationStage_WindOnlyHasNoCombined(t *testing.T) {
	stage := NewCalculationStage(zap.NewNop().Sugar())
	session := scoredSession()
	session.Analysis = &model.AnalysisResult{
		RecommendedTechnologies: []string{model.TechWind},
	}

	resp := stage.Process(context.Background(), session)

	require.NotNil(t, session.Calculations)
	assert.Nil(t, session.Calculations.Solar)
	assert.NotNil(t, session.Calculations.Wind)
	assert.Nil(t, session.Calculations.Combined)
	assert.NotContains(t, resp.Message, "RECOMMENDED COMBINATION")
}
