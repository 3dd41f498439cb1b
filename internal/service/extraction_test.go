package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-advisor/internal/model"
)

func TestParseExtraction_CanonicalKeys(t *testing.T) {
	raw := `{"address": "Bratislava", "building_type": "family_house", "heated_area_m2": 120,
		"insulation_level": "good", "electricity_kwh_year": 4500, "heating_fuel": "gas",
		"roof_area_m2": 60, "phase": "3f"}`

	extracted, err := parseExtraction(raw)
	require.NoError(t, err)

	require.NotNil(t, extracted.Address)
	assert.Equal(t, "Bratislava", *extracted.Address)
	require.NotNil(t, extracted.BuildingType)
	assert.Equal(t, model.BuildingFamilyHouse, *extracted.BuildingType)
	require.NotNil(t, extracted.HeatedAreaM2)
	assert.Equal(t, 120.0, *extracted.HeatedAreaM2)
	require.NotNil(t, extracted.Phase)
	assert.Equal(t, "3f", *extracted.Phase)
	assert.False(t, extracted.Irrelevant)
}

func TestParseExtraction_AliasKeys(t *testing.T) {
	raw := `{"city": "Vienna", "property_type": "house", "floor_area": "95 m²",
		"yearly_consumption": "3 200 kWh", "fuel": "wood"}`

	extracted, err := parseExtraction(raw)
	require.NoError(t, err)

	require.NotNil(t, extracted.Address)
	assert.Equal(t, "Vienna", *extracted.Address)
	require.NotNil(t, extracted.BuildingType)
	assert.Equal(t, model.BuildingFamilyHouse, *extracted.BuildingType)
	require.NotNil(t, extracted.HeatedAreaM2)
	assert.Equal(t, 95.0, *extracted.HeatedAreaM2)
	require.NotNil(t, extracted.ElectricityKwhYear)
	assert.Equal(t, 3200.0, *extracted.ElectricityKwhYear)
	require.NotNil(t, extracted.HeatingFuel)
	assert.Equal(t, "wood", *extracted.HeatingFuel)
}

func TestParseExtraction_IrrelevantFlag(t *testing.T) {
	extracted, err := parseExtraction(`{"irrelevant": true}`)
	require.NoError(t, err)
	assert.True(t, extracted.Irrelevant)
}

func TestParseExtraction_InvalidValuesIgnored(t *testing.T) {
	raw := `{"heated_area_m2": "a lot", "electricity_kwh_year": -200,
		"insulation_level": "fantastic", "phase": "7f", "building_type": "castle"}`

	extracted, err := parseExtraction(raw)
	require.NoError(t, err)

	assert.Nil(t, extracted.HeatedAreaM2)
	assert.Nil(t, extracted.ElectricityKwhYear)
	assert.Nil(t, extracted.InsulationLevel)
	assert.Nil(t, extracted.Phase)
	assert.Nil(t, extracted.BuildingType)
}

func TestParseExtraction_Garbage(t *testing.T) {
	_, err := parseExtraction("I have no idea what you mean")
	assert.Error(t, err)
}

func TestMerge_OmittedFieldsNeverClear(t *testing.T) {
	profile := completeProfile()
	original := profile

	// Extraction mentions only a new heated area.
	extracted := &extractedProfile{HeatedAreaM2: f64Ptr(140)}
	extracted.merge(&profile)

	assert.Equal(t, 140.0, *profile.Building.HeatedAreaM2)
	assert.Equal(t, *original.Location.Address, *profile.Location.Address)
	assert.Equal(t, *original.Building.BuildingType, *profile.Building.BuildingType)
	assert.Equal(t, *original.Consumption.ElectricityKwhYear, *profile.Consumption.ElectricityKwhYear)
	assert.Equal(t, *original.Roof.AreaM2, *profile.Roof.AreaM2)
	assert.Equal(t, *original.Electrical.Phase, *profile.Electrical.Phase)
}

func TestMerge_EmptyExtractionIsIdempotent(t *testing.T) {
	profile := completeProfile()
	before := profile

	(&extractedProfile{}).merge(&profile)

	assert.Equal(t, before, profile)
}

func TestMerge_NonNilValueOverwrites(t *testing.T) {
	profile := model.UserProfile{}
	(&extractedProfile{Address: strPtr("Brno")}).merge(&profile)
	(&extractedProfile{Address: strPtr("Praha")}).merge(&profile)

	require.NotNil(t, profile.Location.Address)
	assert.Equal(t, "Praha", *profile.Location.Address)
}
