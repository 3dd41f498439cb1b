package model

// Technology identifiers used in recommendations and calculations.
const (
	TechSolar    = "solar"
	TechWind     = "wind"
	TechHeatPump = "heatpump"
)

// TechnologyScore is the suitability verdict for one technology.
type TechnologyScore struct {
	Technology string `json:"technology"`
	Score      int    `json:"score"`
	Reasoning  string `json:"reasoning"`
}

// AnalysisResult holds the three suitability scores and the subset of
// technologies worth calculating economics for.
type AnalysisResult struct {
	Solar                   TechnologyScore `json:"solar"`
	Wind                    TechnologyScore `json:"wind"`
	HeatPump                TechnologyScore `json:"heat_pump"`
	RecommendedTechnologies []string        `json:"recommended_technologies"`
}

// Recommends reports whether tech made it into the recommended subset.
func (r *AnalysisResult) Recommends(tech string) bool {
	for _, t := range r.RecommendedTechnologies {
		if t == tech {
			return true
		}
	}
	return false
}
