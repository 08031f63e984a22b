// Package prompt builds the instruction text sent to the generative model.
package prompt

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/pkg/registry"
)

// outputContract is fixed. Variants change the wording around it, never the shape.
const outputContract = `JSON Structure:
{
  "planTitle": "A concise and catchy title for the trip plan.",
  "summary": "A brief, engaging summary of the trip plan, written as if you are talking to a friend.",
  "recommendations": [
    {
      "placeName": "Name of the recommended place.",
      "category": "e.g., 'Restaurant', 'Cafe', 'Activity', 'Sightseeing'",
      "reason": "A short sentence explaining why this place fits the user's request.",
      "address": "The physical address of the place.",
      "latitude": "The latitude of the place as a number. Crucial for map display.",
      "longitude": "The longitude of the place as a number. Crucial for map display."
    }
  ]
}`

// Builder renders prompts for the selected variant. It is safe for concurrent use;
// the variant set can be replaced at runtime by ApplyRegistry.
type Builder struct {
	mu       sync.RWMutex
	variants map[string]registry.PromptVariant
	selected string
}

// NewBuilder returns a builder using the named variant. An empty name selects compact.
func NewBuilder(variant string) (*Builder, error) {
	if variant == "" {
		variant = VariantCompact
	}
	b := &Builder{
		variants: make(map[string]registry.PromptVariant, len(BuiltinVariants)),
		selected: variant,
	}
	for _, v := range BuiltinVariants {
		b.variants[v.ID] = v
	}
	if _, ok := b.variants[variant]; !ok {
		return nil, fmt.Errorf("unknown prompt variant %q", variant)
	}
	return b, nil
}

// ApplyRegistry merges registry variants over the built-ins. The selected variant must still exist afterwards.
func (b *Builder) ApplyRegistry(reg *registry.PromptRegistry) error {
	if reg == nil {
		return nil
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	merged := make(map[string]registry.PromptVariant, len(BuiltinVariants)+len(reg.Variants))
	for _, v := range BuiltinVariants {
		merged[v.ID] = v
	}
	for _, v := range reg.Variants {
		merged[v.ID] = v
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := merged[b.selected]; !ok {
		return fmt.Errorf("prompt variant %q not present in registry", b.selected)
	}
	b.variants = merged
	return nil
}

// Variant returns the variant currently used by Build.
func (b *Builder) Variant() registry.PromptVariant {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.variants[b.selected]
}

// WithVariant returns a builder selecting id over a copy of the current variant set.
// Later ApplyRegistry calls on either builder do not affect the other.
func (b *Builder) WithVariant(id string) (*Builder, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.variants[id]; !ok {
		return nil, fmt.Errorf("unknown prompt variant %q", id)
	}
	variants := make(map[string]registry.PromptVariant, len(b.variants))
	for k, v := range b.variants {
		variants[k] = v
	}
	return &Builder{variants: variants, selected: id}, nil
}

// Variants lists the known variant ids in sorted order.
func (b *Builder) Variants() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.variants))
	for id := range b.variants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build returns the full instruction for userPrompt. The request is interpolated verbatim.
func (b *Builder) Build(userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", apperrors.NewMissingPromptError("user prompt is empty")
	}
	return Render(b.Variant(), userPrompt), nil
}

// Render composes the instruction text for a variant.
func Render(v registry.PromptVariant, userPrompt string) string {
	var parts []string

	parts = append(parts, v.Persona)
	parts = append(parts, "Based on the user's request below, generate a travel plan.")
	parts = append(parts, "The output MUST be a JSON object with the exact following structure. Do not add any extra text or markdown formatting like ```json.")
	parts = append(parts, "\n"+outputContract)
	if v.Instructions != "" {
		parts = append(parts, "\n"+v.Instructions)
	}
	parts = append(parts, fmt.Sprintf("\nUser's Request: \"%s\"", userPrompt))
	parts = append(parts, "\n"+countDirective(v.MinRecommendations, v.MaxRecommendations))

	return strings.Join(parts, "\n")
}

func countDirective(lo, hi int) string {
	if lo == hi {
		return fmt.Sprintf("Provide %d recommendations based on the user's request.", lo)
	}
	return fmt.Sprintf("Provide %d-%d recommendations based on the user's request.", lo, hi)
}
