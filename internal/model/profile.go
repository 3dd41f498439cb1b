package model

// Building types recognized by the advisor.
const (
	BuildingFamilyHouse = "family_house"
	BuildingApartment   = "apartment"
	BuildingCompany     = "company"
)

// Insulation levels recognized by the advisor.
const (
	InsulationPoor      = "poor"
	InsulationAverage   = "average"
	InsulationGood      = "good"
	InsulationExcellent = "excellent"
)

// UserProfile is the structured picture of the property collected from the
// conversation. Every field is optional until extraction fills it; a set
// field is only ever replaced by a newly extracted non-nil value.
type UserProfile struct {
	Location    Location    `json:"location"`
	Building    Building    `json:"building"`
	Consumption Consumption `json:"consumption"`
	Roof        Roof        `json:"roof"`
	Electrical  Electrical  `json:"electrical"`
}

type Location struct {
	Address *string `json:"address,omitempty"`
}

type Building struct {
	BuildingType    *string  `json:"building_type,omitempty"`
	HeatedAreaM2    *float64 `json:"heated_area_m2,omitempty"`
	InsulationLevel *string  `json:"insulation_level,omitempty"`
}

type Consumption struct {
	ElectricityKwhYear *float64 `json:"electricity_kwh_year,omitempty"`
	HeatingFuel        *string  `json:"heating_fuel,omitempty"`
}

type Roof struct {
	AreaM2 *float64 `json:"roof_area_m2,omitempty"`
}

type Electrical struct {
	// Phase is "1f" or "3f".
	Phase *string `json:"phase,omitempty"`
}

// IsFamilyHouse reports whether the profile describes a family house.
func (p *UserProfile) IsFamilyHouse() bool {
	return p.Building.BuildingType != nil && *p.Building.BuildingType == BuildingFamilyHouse
}
