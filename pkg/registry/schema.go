// pkg/registry/schema.go
package registry

import "fmt"

// PromptRegistry is the on-disk set of prompt variants.
type PromptRegistry struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Variants    []PromptVariant `json:"variants"`
}

// PromptVariant is the swappable wording of the plan instruction.
// The output contract is not part of a variant and cannot be changed here.
type PromptVariant struct {
	ID                 string   `json:"id"`
	Description        string   `json:"description"`
	Persona            string   `json:"persona"`
	Instructions       string   `json:"instructions,omitempty"`
	MinRecommendations int      `json:"minRecommendations"`
	MaxRecommendations int      `json:"maxRecommendations"`
	Tags               []string `json:"tags,omitempty"`
}

// MaxRecommendationsLimit caps the count directive of any variant.
const MaxRecommendationsLimit = 8

// Validate checks a single variant.
func (v PromptVariant) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("variant missing required field: id")
	}
	if v.Persona == "" {
		return fmt.Errorf("variant %s missing required field: persona", v.ID)
	}
	if v.MinRecommendations < 1 {
		return fmt.Errorf("variant %s: minRecommendations must be at least 1", v.ID)
	}
	if v.MaxRecommendations < v.MinRecommendations {
		return fmt.Errorf("variant %s: maxRecommendations must be >= minRecommendations", v.ID)
	}
	if v.MaxRecommendations > MaxRecommendationsLimit {
		return fmt.Errorf("variant %s: maxRecommendations must be <= %d", v.ID, MaxRecommendationsLimit)
	}
	return nil
}

// Validate checks every variant and rejects duplicate ids.
func (r *PromptRegistry) Validate() error {
	if len(r.Variants) == 0 {
		return fmt.Errorf("registry contains no variants")
	}
	ids := make(map[string]bool, len(r.Variants))
	for _, v := range r.Variants {
		if ids[v.ID] {
			return fmt.Errorf("duplicate variant ID: %s", v.ID)
		}
		ids[v.ID] = true
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the variant with the given id.
func (r *PromptRegistry) Find(id string) (PromptVariant, bool) {
	for _, v := range r.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return PromptVariant{}, false
}
