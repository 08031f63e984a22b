// internal/models/plan.go
package models

// PlanRequest is the inbound body of the plan-generation endpoint.
type PlanRequest struct {
	UserPrompt string `json:"userPrompt"`
}

// Recommendation is a single place suggested by the model.
type Recommendation struct {
	PlaceName string  `json:"placeName"`
	Category  string  `json:"category"`
	Reason    string  `json:"reason"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlanResult is the structured plan returned to the client and carried to the results view.
// Recommendations keep model output order; that order is also the card and marker order.
type PlanResult struct {
	PlanTitle       string           `json:"planTitle"`
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// HasRecommendations reports whether the map view should be rendered at all.
func (p *PlanResult) HasRecommendations() bool {
	return p != nil && len(p.Recommendations) > 0
}

// Center returns the coordinates of the first recommendation.
func (p *PlanResult) Center() (lat, lng float64, ok bool) {
	if !p.HasRecommendations() {
		return 0, 0, false
	}
	first := p.Recommendations[0]
	return first.Latitude, first.Longitude, true
}

// EnsureRecommendations replaces a nil list with an empty one so it encodes as [].
func (p *PlanResult) EnsureRecommendations() {
	if p != nil && p.Recommendations == nil {
		p.Recommendations = []Recommendation{}
	}
}
