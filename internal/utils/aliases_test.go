package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalProfileField(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"address", FieldAddress, true},
		{"city", FieldAddress, true},
		{"Town", FieldAddress, true},
		{"property_type", FieldBuildingType, true},
		{"building-type", FieldBuildingType, true},
		{"Heated Area M2", FieldHeatedAreaM2, true},
		{"floor_area", FieldHeatedAreaM2, true},
		{"insulation", FieldInsulationLevel, true},
		{"yearly_consumption", FieldElectricityKwhYear, true},
		{"electricity_consumption_kwh_per_year", FieldElectricityKwhYear, true},
		{"fuel", FieldHeatingFuel, true},
		{"heating_system", FieldHeatingFuel, true},
		{"roof_area_m2", FieldRoofAreaM2, true},
		{"roof_size", FieldRoofAreaM2, true},
		{"phase", FieldPhase, true},
		{"connection_phase", FieldPhase, true},
		{"irrelevant", FieldIrrelevant, true},
		{"off_topic", FieldIrrelevant, true},
		{"", "", false},
		{"   ", "", false},
		{"favourite_color", "", false},
		{"price", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := CanonicalProfileField(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalProfileField_Deterministic(t *testing.T) {
	// Keys matching by containment must always resolve to the same field.
	first, ok := CanonicalProfileField("my_roof_area_estimate")
	assert.True(t, ok)
	for i := 0; i < 50; i++ {
		got, ok := CanonicalProfileField("my_roof_area_estimate")
		assert.True(t, ok)
		assert.Equal(t, first, got)
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "heated_area_m2", normalizeKey("  Heated-Area.M2 "))
	assert.Equal(t, "roof_area", normalizeKey("roof__area"))
	assert.Equal(t, "phase", normalizeKey("_phase_"))
}
