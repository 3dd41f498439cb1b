package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"energy-advisor/internal/model"
	"energy-advisor/internal/utils"
)

// Fallback coordinates (Košice) used when geocoding fails; the technical
// summary still degrades to defaults for an unresolvable site.
const (
	fallbackLat = 48.7164
	fallbackLon = 21.2611
)

const greetingMessage = "Hello! I am your energy advisor. I will help you find the ideal solution for saving energy. 🌱\n\n" +
	"Let's start with the basics. In which town or city is your property located?"

const clarificationMessage = "I could not find anything about your property in that. Let's stay on topic: " +
	"could you tell me more about your home and its energy use?"

const collectionCompleteMessage = "Excellent, I have all the information I need! 📊\n" +
	"I am now analyzing the climate conditions of your location and the technical options..."

// requiredFieldQuestions maps each canonical required field to its fixed
// clarifying question, in the order fields are asked.
var requiredFieldOrder = []string{
	utils.FieldAddress,
	utils.FieldBuildingType,
	utils.FieldHeatedAreaM2,
	utils.FieldInsulationLevel,
	utils.FieldElectricityKwhYear,
	utils.FieldHeatingFuel,
	utils.FieldRoofAreaM2,
	utils.FieldPhase,
}

var requiredFieldQuestions = map[string]string{
	utils.FieldAddress:            "In which town or city is your property located?",
	utils.FieldBuildingType:       "Is it a family house, an apartment or a company building?",
	utils.FieldHeatedAreaM2:       "What is the heated floor area of your property in m²?",
	utils.FieldInsulationLevel:    "How well is the building insulated? (poor, average, good or excellent)",
	utils.FieldElectricityKwhYear: "How many kWh of electricity do you use per year? (you can find this on your bill)",
	utils.FieldHeatingFuel:        "What do you heat with? (gas, electricity, wood, heat pump...)",
	utils.FieldRoofAreaM2:         "What is the approximate usable area of your roof in m²?",
	utils.FieldPhase:              "Does your property have a single-phase (1f) or three-phase (3f) connection?",
}

// CollectorStage runs the data-collection phase: it extracts profile fields
// from free-form chat turns, asks for what is still missing and, once the
// profile is complete, fetches the technical data for the location.
type CollectorStage struct {
	ai   TextGenerator
	geo  Geocoder
	tech TechnicalSource
	log  *zap.SugaredLogger
}

// NewCollectorStage creates the data-collection stage.
func NewCollectorStage(ai TextGenerator, geo Geocoder, tech TechnicalSource, log *zap.SugaredLogger) *CollectorStage {
	return &CollectorStage{ai: ai, geo: geo, tech: tech, log: log}
}

// Process handles one data-collection turn. It is total: every failure
// degrades into a retry or clarification response.
func (s *CollectorStage) Process(ctx context.Context, session *model.Session, message string) *model.AgentResponse {
	if strings.TrimSpace(message) == "" {
		return &model.AgentResponse{
			Message:    greetingMessage,
			IsComplete: false,
			Progress:   10,
		}
	}

	extracted := s.extract(ctx, message, &session.Profile)
	if extracted.Irrelevant {
		return &model.AgentResponse{
			Message:    clarificationMessage,
			IsComplete: false,
			Progress:   CollectionProgress(&session.Profile),
		}
	}
	extracted.merge(&session.Profile)

	missing := MissingRequiredFields(&session.Profile)
	if len(missing) > 0 {
		return &model.AgentResponse{
			Message:    requiredFieldQuestions[missing[0]],
			IsComplete: false,
			Progress:   CollectionProgress(&session.Profile),
		}
	}

	s.fetchTechnicalData(ctx, session)

	return &model.AgentResponse{
		Message:    collectionCompleteMessage,
		IsComplete: true,
		Progress:   25,
	}
}

// extract asks the AI collaborator for a JSON extraction of the message and
// normalizes the result. Any failure along the way yields an empty
// extraction; the stage will simply re-ask for the first missing field.
func (s *CollectorStage) extract(ctx context.Context, message string, profile *model.UserProfile) *extractedProfile {
	raw := s.ai.Complete(ctx, buildExtractionPrompt(message, profile))
	if IsAIFailure(raw) {
		s.log.Warnw("extraction call failed", "result", truncate(raw, 120))
		return &extractedProfile{}
	}

	extracted, err := parseExtraction(raw)
	if err != nil {
		s.log.Warnw("extraction output unparseable", "error", err)
		return &extractedProfile{}
	}
	return extracted
}

func buildExtractionPrompt(message string, profile *model.UserProfile) string {
	known, _ := json.Marshal(profile)

	return fmt.Sprintf(`Extract property information from this message: %q

Currently known data: %s

Look for:
- address (town/city)
- building_type (family house='family_house', apartment='apartment', company='company')
- heated_area_m2 (heated floor area in m²)
- insulation_level ('poor', 'average', 'good', 'excellent')
- electricity_kwh_year (yearly electricity consumption in kWh)
- heating_fuel (gas='gas', electricity='electricity', wood='wood')
- roof_area_m2 (usable roof area in m²)
- phase ('1f' or '3f')

If the message is unrelated to the property or its energy use, respond with {"irrelevant": true}.
Otherwise respond with a single valid JSON object only (no extra text, no code fences),
using exactly the keys above and omitting anything the message does not mention.`, message, known)
}

// MissingRequiredFields returns the canonical required fields not yet set,
// in asking order. Roof area is required only for a family house.
func MissingRequiredFields(p *model.UserProfile) []string {
	var missing []string
	for _, field := range requiredFieldOrder {
		if field == utils.FieldRoofAreaM2 && !p.IsFamilyHouse() {
			continue
		}
		if !fieldSet(p, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// CollectionProgress maps profile completeness onto the 0–25% band of the
// overall pipeline progress.
func CollectionProgress(p *model.UserProfile) int {
	total := 0
	filled := 0
	for _, field := range requiredFieldOrder {
		if field == utils.FieldRoofAreaM2 && !p.IsFamilyHouse() {
			continue
		}
		total++
		if fieldSet(p, field) {
			filled++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(25 * float64(filled) / float64(total)))
}

func fieldSet(p *model.UserProfile, field string) bool {
	switch field {
	case utils.FieldAddress:
		return p.Location.Address != nil
	case utils.FieldBuildingType:
		return p.Building.BuildingType != nil
	case utils.FieldHeatedAreaM2:
		return p.Building.HeatedAreaM2 != nil
	case utils.FieldInsulationLevel:
		return p.Building.InsulationLevel != nil
	case utils.FieldElectricityKwhYear:
		return p.Consumption.ElectricityKwhYear != nil
	case utils.FieldHeatingFuel:
		return p.Consumption.HeatingFuel != nil
	case utils.FieldRoofAreaM2:
		return p.Roof.AreaM2 != nil
	case utils.FieldPhase:
		return p.Electrical.Phase != nil
	}
	return false
}

// fetchTechnicalData resolves the address and stores the technical summary
// on the session. Runs at most once; geocoding failures fall back to default
// coordinates so the pipeline can still proceed.
func (s *CollectorStage) fetchTechnicalData(ctx context.Context, session *model.Session) {
	if session.Technical != nil {
		return
	}

	lat, lon := fallbackLat, fallbackLon
	if session.Profile.Location.Address != nil {
		point, err := s.geo.Geocode(ctx, *session.Profile.Location.Address)
		if err != nil {
			s.log.Warnw("geocoding failed, using fallback coordinates", "error", err)
		} else {
			lat, lon = point.Lat, point.Lon
		}
	}

	data, err := s.tech.Summary(ctx, lat, lon)
	if err != nil || data == nil {
		s.log.Warnw("technical summary failed, using defaults", "error", err)
		data = &model.TechnicalData{
			SolarResource: model.SolarResource{YearlyKwhPerKwp: fallbackYearlyKwhPerKwp, OptimalAngle: fallbackOptimalAngle},
			Wind:          model.WindData{AverageSpeed: fallbackWindSpeed},
			Climate:       model.ClimateData{YearAverageTemp: fallbackYearAvgTemp},
		}
	}
	session.Technical = data
}
