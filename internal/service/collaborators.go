package service

import (
	"context"
	"strings"

	"energy-advisor/internal/model"
)

// TextGenerator is the AI text-generation collaborator. Both methods are
// total: they never fail with an error. When the upstream call fails the
// returned string carries one of the sentinel prefixes below, and callers
// must treat it as a failure, not as content.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) string
	Respond(ctx context.Context, systemMessage, userPrompt, modelName string) string
}

// Sentinel prefixes marking a failed text-generation call.
const (
	aiNetworkErrorPrefix = "AI network error"
	aiAPIErrorPrefix     = "AI API error"
	aiParsingErrorPrefix = "AI parsing error"
)

// IsAIFailure reports whether a TextGenerator result is a failure sentinel
// rather than generated content.
func IsAIFailure(s string) bool {
	return strings.HasPrefix(s, aiNetworkErrorPrefix) ||
		strings.HasPrefix(s, aiAPIErrorPrefix) ||
		strings.HasPrefix(s, aiParsingErrorPrefix)
}

// GeoPoint is a resolved address.
type GeoPoint struct {
	DisplayAddress string
	Lat            float64
	Lon            float64
}

// Geocoder resolves a free-form address to coordinates. An unresolvable
// address fails with model.ErrAddressNotFound.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeoPoint, error)
}

// TechnicalSource fetches aggregate environmental data for a coordinate.
// Each sub-result is independently optional upstream; implementations fill
// gaps with conservative defaults so the pipeline never stalls on missing
// climate data.
type TechnicalSource interface {
	Summary(ctx context.Context, lat, lon float64) (*model.TechnicalData, error)
}
