package service

import (
	"fmt"
	"strconv"
	"strings"

	"energy-advisor/internal/model"
	"energy-advisor/internal/utils"
)

// extractedProfile is the typed result of one extraction turn. Fields are
// nil when the message carried no information about them. Irrelevant is set
// when the model flagged the whole message as off-topic.
type extractedProfile struct {
	Address            *string
	BuildingType       *string
	HeatedAreaM2       *float64
	InsulationLevel    *string
	ElectricityKwhYear *float64
	HeatingFuel        *string
	RoofAreaM2         *float64
	Phase              *string
	Irrelevant         bool
}

// parseExtraction turns raw model output into a typed extraction. Arbitrary
// alias keys are normalized onto canonical fields and values are coerced
// tolerantly (numbers arriving as strings, enums in mixed case). Returns an
// error only when no JSON object can be recovered at all.
func parseExtraction(raw string) (*extractedProfile, error) {
	var fields map[string]interface{}
	if err := utils.ParseAIJSON(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}

	out := &extractedProfile{}
	for key, value := range fields {
		canonical, ok := utils.CanonicalProfileField(key)
		if !ok || value == nil {
			continue
		}

		switch canonical {
		case utils.FieldAddress:
			out.Address = asString(value)
		case utils.FieldBuildingType:
			out.BuildingType = asBuildingType(value)
		case utils.FieldHeatedAreaM2:
			out.HeatedAreaM2 = asPositiveNumber(value)
		case utils.FieldInsulationLevel:
			out.InsulationLevel = asEnum(value, model.InsulationPoor, model.InsulationAverage, model.InsulationGood, model.InsulationExcellent)
		case utils.FieldElectricityKwhYear:
			out.ElectricityKwhYear = asPositiveNumber(value)
		case utils.FieldHeatingFuel:
			out.HeatingFuel = asString(value)
		case utils.FieldRoofAreaM2:
			out.RoofAreaM2 = asPositiveNumber(value)
		case utils.FieldPhase:
			out.Phase = asPhase(value)
		case utils.FieldIrrelevant:
			out.Irrelevant = asBool(value)
		}
	}
	return out, nil
}

// merge writes extracted non-nil fields into the profile. Omitted fields
// never clear existing values.
func (e *extractedProfile) merge(p *model.UserProfile) {
	if e.Address != nil {
		p.Location.Address = e.Address
	}
	if e.BuildingType != nil {
		p.Building.BuildingType = e.BuildingType
	}
	if e.HeatedAreaM2 != nil {
		p.Building.HeatedAreaM2 = e.HeatedAreaM2
	}
	if e.InsulationLevel != nil {
		p.Building.InsulationLevel = e.InsulationLevel
	}
	if e.ElectricityKwhYear != nil {
		p.Consumption.ElectricityKwhYear = e.ElectricityKwhYear
	}
	if e.HeatingFuel != nil {
		p.Consumption.HeatingFuel = e.HeatingFuel
	}
	if e.RoofAreaM2 != nil {
		p.Roof.AreaM2 = e.RoofAreaM2
	}
	if e.Phase != nil {
		p.Electrical.Phase = e.Phase
	}
}

func asString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") {
		return nil
	}
	return &s
}

func asPositiveNumber(v interface{}) *float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		cleaned := strings.TrimSpace(strings.NewReplacer(" ", "", ",", ".").Replace(t))
		cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "kwh")
		cleaned = strings.TrimSuffix(cleaned, "m2")
		cleaned = strings.TrimSuffix(cleaned, "m²")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

func asEnum(v interface{}, allowed ...string) *string {
	s := asString(v)
	if s == nil {
		return nil
	}
	lowered := strings.ToLower(*s)
	for _, a := range allowed {
		if lowered == a {
			return &a
		}
	}
	return nil
}

var buildingTypeAliases = map[string]string{
	"family_house": model.BuildingFamilyHouse,
	"house":        model.BuildingFamilyHouse,
	"family house": model.BuildingFamilyHouse,
	"detached":     model.BuildingFamilyHouse,
	"apartment":    model.BuildingApartment,
	"flat":         model.BuildingApartment,
	"company":      model.BuildingCompany,
	"commercial":   model.BuildingCompany,
	"office":       model.BuildingCompany,
}

func asBuildingType(v interface{}) *string {
	s := asString(v)
	if s == nil {
		return nil
	}
	if canonical, ok := buildingTypeAliases[strings.ToLower(*s)]; ok {
		return &canonical
	}
	return nil
}

func asPhase(v interface{}) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.ToLower(strings.TrimSpace(t))
	case float64:
		s = strconv.Itoa(int(t))
	default:
		return nil
	}
	switch s {
	case "1f", "1", "single", "single-phase", "single_phase":
		phase := "1f"
		return &phase
	case "3f", "3", "three", "three-phase", "three_phase":
		phase := "3f"
		return &phase
	}
	return nil
}
