package service

import (
	"context"
	"fmt"
	"strings"

	"energy-advisor/internal/model"
	"energy-advisor/internal/utils"
)

// ScoringStrategy produces the three technology scores for a completed
// profile. Recommendation thresholds are applied by the analysis stage, not
// the strategy.
type ScoringStrategy interface {
	Score(ctx context.Context, profile *model.UserProfile, tech *model.TechnicalData) (*model.AnalysisResult, error)
}

// DeterministicScoring is the reference scoring algorithm.
type DeterministicScoring struct{}

var _ ScoringStrategy = (*DeterministicScoring)(nil)

func (DeterministicScoring) Score(ctx context.Context, profile *model.UserProfile, tech *model.TechnicalData) (*model.AnalysisResult, error) {
	return &model.AnalysisResult{
		Solar:    scoreSolar(profile, tech),
		Wind:     scoreWind(profile, tech),
		HeatPump: scoreHeatPump(profile, tech),
	}, nil
}

func scoreSolar(p *model.UserProfile, t *model.TechnicalData) model.TechnologyScore {
	score := 0
	var factors []string

	// Solar radiation, 0-40 points.
	radiation := t.SolarResource.YearlyKwhPerKwp
	switch {
	case radiation > 1100:
		score += 40
		factors = append(factors, fmt.Sprintf("excellent solar radiation (%.0f kWh/kWp per year)", radiation))
	case radiation > 950:
		score += 30
		factors = append(factors, fmt.Sprintf("good solar radiation (%.0f kWh/kWp per year)", radiation))
	case radiation > 850:
		score += 20
		factors = append(factors, fmt.Sprintf("average solar radiation (%.0f kWh/kWp per year)", radiation))
	default:
		score += 10
		factors = append(factors, fmt.Sprintf("low solar radiation (%.0f kWh/kWp per year)", radiation))
	}

	// Roof, 0-30 points. Only a family house with known roof area scores.
	roofArea := 0.0
	if p.Roof.AreaM2 != nil {
		roofArea = *p.Roof.AreaM2
	}
	if p.IsFamilyHouse() && roofArea > 0 {
		switch {
		case roofArea >= 50:
			score += 30
			factors = append(factors, fmt.Sprintf("large usable roof area (%.0f m²)", roofArea))
		case roofArea >= 30:
			score += 20
			factors = append(factors, fmt.Sprintf("sufficient roof area (%.0f m²)", roofArea))
		default:
			score += 10
			factors = append(factors, fmt.Sprintf("small roof area (%.0f m²)", roofArea))
		}
	} else if p.Building.BuildingType != nil && *p.Building.BuildingType == model.BuildingApartment {
		factors = append(factors, "apartment - limited installation options")
	}

	// Consumption, 0-30 points.
	consumption := 0.0
	if p.Consumption.ElectricityKwhYear != nil {
		consumption = *p.Consumption.ElectricityKwhYear
	}
	switch {
	case consumption > 4000:
		score += 30
		factors = append(factors, "high consumption - PV pays back quickly")
	case consumption > 2500:
		score += 20
		factors = append(factors, "medium consumption")
	default:
		score += 10
		factors = append(factors, "low consumption")
	}

	return model.TechnologyScore{
		Technology: model.TechSolar,
		Score:      clampScore(score),
		Reasoning:  strings.Join(factors, ", "),
	}
}

func scoreWind(p *model.UserProfile, t *model.TechnicalData) model.TechnologyScore {
	score := 0
	var factors []string

	// Average wind speed, 0-50 points.
	speed := t.Wind.AverageSpeed
	switch {
	case speed > 6:
		score += 50
		factors = append(factors, fmt.Sprintf("excellent wind (%.1f m/s)", speed))
	case speed > 4.5:
		score += 30
		factors = append(factors, fmt.Sprintf("good wind (%.1f m/s)", speed))
	case speed > 3.5:
		score += 15
		factors = append(factors, fmt.Sprintf("weak wind (%.1f m/s)", speed))
	default:
		factors = append(factors, fmt.Sprintf("insufficient wind (%.1f m/s)", speed))
	}

	// Building type, 0-30 points.
	if p.IsFamilyHouse() {
		score += 30
		factors = append(factors, "family house - installation possible")
	} else {
		factors = append(factors, "apartment/building - turbine installation difficult")
	}

	// Locality, 0-20 points, estimated from the wind speed itself.
	if speed > 5 {
		score += 20
		factors = append(factors, "open locality")
	}

	return model.TechnologyScore{
		Technology: model.TechWind,
		Score:      clampScore(score),
		Reasoning:  strings.Join(factors, ", "),
	}
}

func scoreHeatPump(p *model.UserProfile, t *model.TechnicalData) model.TechnologyScore {
	// Heat pumps start from a solid base score.
	score := 60
	var factors []string

	// Temperature, 0-20 points.
	avgTemp := t.Climate.YearAverageTemp
	switch {
	case avgTemp > 10:
		score += 20
		factors = append(factors, fmt.Sprintf("mild climate (%.1f°C average)", avgTemp))
	case avgTemp > 7:
		score += 15
		factors = append(factors, fmt.Sprintf("cooler climate (%.1f°C average)", avgTemp))
	default:
		score += 10
		factors = append(factors, fmt.Sprintf("cold climate (%.1f°C average) - lower efficiency", avgTemp))
	}

	// Insulation, 0-20 points.
	insulation := ""
	if p.Building.InsulationLevel != nil {
		insulation = *p.Building.InsulationLevel
	}
	switch insulation {
	case model.InsulationGood:
		score += 20
		factors = append(factors, "good insulation - ideal for a heat pump")
	case model.InsulationAverage:
		score += 10
		factors = append(factors, "average insulation")
	default:
		factors = append(factors, "poor insulation - insulate first")
	}

	if p.Consumption.HeatingFuel != nil {
		if fuel := *p.Consumption.HeatingFuel; fuel == "electricity" || fuel == "gas" {
			factors = append(factors, "easy replacement of the current system")
		}
	}

	return model.TechnologyScore{
		Technology: model.TechHeatPump,
		Score:      clampScore(score),
		Reasoning:  strings.Join(factors, ", "),
	}
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// recommendTechnologies applies the threshold rules: solar ≥70, wind ≥60,
// heat pump ≥70. When nothing passes, at most one fallback is added: solar
// at ≥50, otherwise heat pump at ≥50. Wind is never a fallback pick.
func recommendTechnologies(r *model.AnalysisResult) []string {
	var recommended []string
	if r.Solar.Score >= 70 {
		recommended = append(recommended, model.TechSolar)
	}
	if r.Wind.Score >= 60 {
		recommended = append(recommended, model.TechWind)
	}
	if r.HeatPump.Score >= 70 {
		recommended = append(recommended, model.TechHeatPump)
	}

	if len(recommended) == 0 {
		if r.Solar.Score >= 50 {
			recommended = append(recommended, model.TechSolar)
		} else if r.HeatPump.Score >= 50 {
			recommended = append(recommended, model.TechHeatPump)
		}
	}
	return recommended
}

// AIDelegatedScoring asks the text-generation collaborator to apply the same
// scoring bands and return three {score, reasoning} objects. Malformed
// output fails with an error; the analysis stage turns that into a retry
// response instead of propagating it.
type AIDelegatedScoring struct {
	ai TextGenerator
}

// NewAIDelegatedScoring creates the AI-backed scoring variant.
func NewAIDelegatedScoring(ai TextGenerator) *AIDelegatedScoring {
	return &AIDelegatedScoring{ai: ai}
}

var _ ScoringStrategy = (*AIDelegatedScoring)(nil)

type aiScore struct {
	Score     *int   `json:"score"`
	Reasoning string `json:"reasoning"`
}

type aiScoringResponse struct {
	Solar    *aiScore `json:"solar"`
	Wind     *aiScore `json:"wind"`
	HeatPump *aiScore `json:"heatpump"`
}

func (s *AIDelegatedScoring) Score(ctx context.Context, profile *model.UserProfile, tech *model.TechnicalData) (*model.AnalysisResult, error) {
	raw := s.ai.Complete(ctx, buildScoringPrompt(profile, tech))
	if IsAIFailure(raw) {
		return nil, fmt.Errorf("scoring call failed: %s", truncate(raw, 120))
	}

	var parsed aiScoringResponse
	if err := utils.ParseAIJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("scoring output unparseable: %w", err)
	}
	if parsed.Solar == nil || parsed.Wind == nil || parsed.HeatPump == nil ||
		parsed.Solar.Score == nil || parsed.Wind.Score == nil || parsed.HeatPump.Score == nil {
		return nil, fmt.Errorf("scoring output missing required fields")
	}

	return &model.AnalysisResult{
		Solar:    model.TechnologyScore{Technology: model.TechSolar, Score: clampScore(*parsed.Solar.Score), Reasoning: parsed.Solar.Reasoning},
		Wind:     model.TechnologyScore{Technology: model.TechWind, Score: clampScore(*parsed.Wind.Score), Reasoning: parsed.Wind.Reasoning},
		HeatPump: model.TechnologyScore{Technology: model.TechHeatPump, Score: clampScore(*parsed.HeatPump.Score), Reasoning: parsed.HeatPump.Reasoning},
	}, nil
}

func buildScoringPrompt(p *model.UserProfile, t *model.TechnicalData) string {
	return fmt.Sprintf(`Score the suitability of three renewable technologies for this property.

Property: building_type=%s, heated_area_m2=%s, insulation=%s, electricity_kwh_year=%s, roof_area_m2=%s
Site: yearly_kwh_per_kwp=%.0f, average_wind_speed=%.1f m/s, year_average_temp=%.1f °C

Apply these bands:
- solar: radiation >1100→40, >950→30, >850→20, else 10; plus roof for a family house: ≥50m²→30, ≥30m²→20, >0→10 (apartments 0); plus consumption >4000→30, >2500→20, else 10.
- wind: speed >6→50, >4.5→30, >3.5→15, else 0; family house +30; speed >5 → +20 for open locality. Cap at 100.
- heatpump: base 60; temp >10→+20, >7→+15, else +10; insulation good→+20, average→+10, else 0. Cap at 100.

Respond with a single valid JSON object only:
{"solar": {"score": <0-100>, "reasoning": "..."}, "wind": {"score": <0-100>, "reasoning": "..."}, "heatpump": {"score": <0-100>, "reasoning": "..."}}`,
		strPtrOr(p.Building.BuildingType, "unknown"),
		floatPtrOr(p.Building.HeatedAreaM2),
		strPtrOr(p.Building.InsulationLevel, "unknown"),
		floatPtrOr(p.Consumption.ElectricityKwhYear),
		floatPtrOr(p.Roof.AreaM2),
		t.SolarResource.YearlyKwhPerKwp, t.Wind.AverageSpeed, t.Climate.YearAverageTemp)
}

func strPtrOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func floatPtrOr(f *float64) string {
	if f == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.0f", *f)
}
