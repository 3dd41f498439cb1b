package utils

import "strings"

// Canonical profile field names produced by the extraction prompt. Models
// frequently substitute synonyms ("city", "town", "consumption"); the alias
// tables below map those back onto the canonical names before merging.
const (
	FieldAddress            = "address"
	FieldBuildingType       = "building_type"
	FieldHeatedAreaM2       = "heated_area_m2"
	FieldInsulationLevel    = "insulation_level"
	FieldElectricityKwhYear = "electricity_kwh_year"
	FieldHeatingFuel        = "heating_fuel"
	FieldRoofAreaM2         = "roof_area_m2"
	FieldPhase              = "phase"
	FieldIrrelevant         = "irrelevant"
)

// canonicalOrder keeps alias resolution deterministic.
var canonicalOrder = []string{
	FieldAddress,
	FieldBuildingType,
	FieldHeatedAreaM2,
	FieldInsulationLevel,
	FieldElectricityKwhYear,
	FieldHeatingFuel,
	FieldRoofAreaM2,
	FieldPhase,
	FieldIrrelevant,
}

var fieldAliases = map[string][]string{
	FieldAddress:            {"address", "location", "city", "town", "village", "municipality", "place"},
	FieldBuildingType:       {"building_type", "building", "property_type", "house_type", "type_of_building"},
	FieldHeatedAreaM2:       {"heated_area_m2", "heated_area", "floor_area", "living_area", "area_m2"},
	FieldInsulationLevel:    {"insulation_level", "insulation", "insulation_quality"},
	FieldElectricityKwhYear: {"electricity_kwh_year", "electricity_consumption", "electricity_kwh", "yearly_consumption", "consumption_kwh"},
	FieldHeatingFuel:        {"heating_fuel", "heating", "fuel", "heating_source", "heating_type"},
	FieldRoofAreaM2:         {"roof_area_m2", "roof_area", "roof"},
	FieldPhase:              {"phase", "electrical_phase", "connection_phase", "phases"},
	FieldIrrelevant:         {"irrelevant", "off_topic", "unrelated"},
}

// CanonicalProfileField maps an arbitrary extraction key onto a canonical
// field name. Keys are normalized (lower case, separators collapsed to
// underscores) and matched against the alias tables, exact first, then by
// containment.
func CanonicalProfileField(key string) (string, bool) {
	k := normalizeKey(key)
	if k == "" {
		return "", false
	}

	for _, canonical := range canonicalOrder {
		for _, alias := range fieldAliases[canonical] {
			if k == alias {
				return canonical, true
			}
		}
	}

	for _, canonical := range canonicalOrder {
		for _, alias := range fieldAliases[canonical] {
			if len(alias) >= 4 && strings.Contains(k, alias) {
				return canonical, true
			}
		}
	}

	return "", false
}

func normalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(k)
	for strings.Contains(k, "__") {
		k = strings.ReplaceAll(k, "__", "_")
	}
	return strings.Trim(k, "_")
}
