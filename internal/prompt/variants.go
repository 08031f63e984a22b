package prompt

import "trip-planner/pkg/registry"

const (
	VariantCompact  = "compact"
	VariantExtended = "extended"
)

const defaultPersona = "You are a helpful trip planning assistant."

// BuiltinVariants are always available. A registry file may override them by id.
var BuiltinVariants = []registry.PromptVariant{
	{
		ID:                 VariantCompact,
		Description:        "Short plan with a handful of places",
		Persona:            defaultPersona,
		MinRecommendations: 3,
		MaxRecommendations: 5,
	},
	{
		ID:                 VariantExtended,
		Description:        "Full-day plan with more places",
		Persona:            defaultPersona,
		Instructions:       "Order the recommendations as a route that can be followed in one day.",
		MinRecommendations: 6,
		MaxRecommendations: 8,
	},
}
