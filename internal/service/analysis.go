package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"energy-advisor/internal/model"
)

const analysisRetryMessage = "I could not finish the suitability analysis just now. 🙏\n" +
	"Please send any message and I will try again."

// AnalysisStage scores the three technologies and selects the recommended
// subset. The scoring itself is pluggable (deterministic or AI-delegated).
type AnalysisStage struct {
	strategy ScoringStrategy
	log      *zap.SugaredLogger
}

// NewAnalysisStage creates the analysis stage with the given strategy.
func NewAnalysisStage(strategy ScoringStrategy, log *zap.SugaredLogger) *AnalysisStage {
	return &AnalysisStage{strategy: strategy, log: log}
}

// Process scores the session's profile. A strategy failure (possible only
// in the AI-delegated mode) produces an incomplete retry response; the
// session stays in the analysis stage for the next turn.
func (s *AnalysisStage) Process(ctx context.Context, session *model.Session) *model.AgentResponse {
	result, err := s.strategy.Score(ctx, &session.Profile, session.Technical)
	if err != nil {
		s.log.Warnw("scoring failed", "session", session.ID, "error", err)
		return &model.AgentResponse{
			Message:    analysisRetryMessage,
			IsComplete: false,
			Progress:   50,
		}
	}

	result.RecommendedTechnologies = recommendTechnologies(result)
	session.Analysis = result

	return &model.AgentResponse{
		Message:    formatAnalysisMessage(session, result),
		IsComplete: true,
		Progress:   50,
	}
}

func formatAnalysisMessage(session *model.Session, r *model.AnalysisResult) string {
	address := "your location"
	if session.Profile.Location.Address != nil {
		address = *session.Profile.Location.Address
	}

	return fmt.Sprintf(`📊 **Analysis complete!**

Based on your location (%s) and the technical data:

☀️ **Solar potential: %d/100**
%s

💨 **Wind potential: %d/100**
%s

🔥 **Heat pump: %d/100**
%s

I will now calculate the optimal setup for your property...`,
		address,
		r.Solar.Score, r.Solar.Reasoning,
		r.Wind.Score, r.Wind.Reasoning,
		r.HeatPump.Score, r.HeatPump.Reasoning)
}
