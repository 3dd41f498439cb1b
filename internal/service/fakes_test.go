package service

import (
	"context"

	"energy-advisor/internal/model"
)

// scriptedAI is a TextGenerator whose output is driven by the test.
type scriptedAI struct {
	respond func(prompt string) string
}

func (s *scriptedAI) Complete(ctx context.Context, prompt string) string {
	if s.respond == nil {
		return "AI network error: not scripted"
	}
	return s.respond(prompt)
}

func (s *scriptedAI) Respond(ctx context.Context, systemMessage, userPrompt, modelName string) string {
	return s.Complete(ctx, userPrompt)
}

// failingAI always reports an upstream failure.
func failingAI() *scriptedAI {
	return &scriptedAI{respond: func(string) string { return "AI network error: connection refused" }}
}

// constantAI always returns the same output.
func constantAI(output string) *scriptedAI {
	return &scriptedAI{respond: func(string) string { return output }}
}

type fakeGeocoder struct {
	point *GeoPoint
	err   error
	calls int
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*GeoPoint, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.point != nil {
		return f.point, nil
	}
	return &GeoPoint{DisplayAddress: address, Lat: 48.7, Lon: 21.3}, nil
}

type fakeTechSource struct {
	data  *model.TechnicalData
	err   error
	calls int
}

func (f *fakeTechSource) Summary(ctx context.Context, lat, lon float64) (*model.TechnicalData, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.data != nil {
		return f.data, nil
	}
	return defaultTechnicalData(), nil
}

func defaultTechnicalData() *model.TechnicalData {
	return &model.TechnicalData{
		SolarResource: model.SolarResource{YearlyKwhPerKwp: 1200, OptimalAngle: 35},
		Wind:          model.WindData{AverageSpeed: 7},
		Climate:       model.ClimateData{YearAverageTemp: 12},
	}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

// completeProfile returns a profile with every required field filled for a
// family house.
func completeProfile() model.UserProfile {
	return model.UserProfile{
		Location:    model.Location{Address: strPtr("Košice")},
		Building:    model.Building{BuildingType: strPtr(model.BuildingFamilyHouse), HeatedAreaM2: f64Ptr(120), InsulationLevel: strPtr(model.InsulationGood)},
		Consumption: model.Consumption{ElectricityKwhYear: f64Ptr(4500), HeatingFuel: strPtr("gas")},
		Roof:        model.Roof{AreaM2: f64Ptr(60)},
		Electrical:  model.Electrical{Phase: strPtr("3f")},
	}
}
