package prompt

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/pkg/registry"
)

func TestBuild_ContainsInputVerbatim(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)

	inputs := []string{
		"서울 홍대 데이트 코스",
		"rainy day in Lisbon with kids",
		`quotes "inside" and {braces}`,
		"  leading and trailing spaces  ",
		"multi\nline\nrequest",
		"100% fun & <cheap>",
	}

	for _, in := range inputs {
		out, err := b.Build(in)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
		assert.Contains(t, out, in)
	}
}

func TestBuild_OutputContract(t *testing.T) {
	b, err := NewBuilder("")
	require.NoError(t, err)

	out, err := b.Build("Busan seafood")
	require.NoError(t, err)

	for _, field := range []string{"planTitle", "summary", "recommendations", "placeName", "category", "reason", "address", "latitude", "longitude"} {
		assert.Contains(t, out, `"`+field+`"`)
	}
	assert.Contains(t, out, "as a number")
	assert.Contains(t, out, "You are a helpful trip planning assistant.")
	assert.Contains(t, out, "Provide 3-5 recommendations")
	assert.Contains(t, out, "Do not add any extra text or markdown formatting")
}

func TestBuild_ExtendedVariant(t *testing.T) {
	b, err := NewBuilder(VariantExtended)
	require.NoError(t, err)

	out, err := b.Build("Jeju road trip")
	require.NoError(t, err)
	assert.Contains(t, out, "Provide 6-8 recommendations")
	assert.Contains(t, out, "one day")
}

func TestBuild_RejectsEmpty(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)

	for _, in := range []string{"", "   ", "\n\t"} {
		out, err := b.Build(in)
		assert.Empty(t, out)
		assert.True(t, errors.Is(err, apperrors.ErrMissingPrompt))
	}
}

func TestNewBuilder_UnknownVariant(t *testing.T) {
	_, err := NewBuilder("haiku")
	assert.Error(t, err)
}

func TestApplyRegistry(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)

	reg := &registry.PromptRegistry{Variants: []registry.PromptVariant{
		{ID: VariantCompact, Persona: "You are a local guide.", MinRecommendations: 4, MaxRecommendations: 4},
		{ID: "nightlife", Persona: "You love nightlife.", MinRecommendations: 3, MaxRecommendations: 6},
	}}
	require.NoError(t, b.ApplyRegistry(reg))

	out, err := b.Build("Itaewon")
	require.NoError(t, err)
	assert.Contains(t, out, "You are a local guide.")
	assert.Contains(t, out, "Provide 4 recommendations")
	assert.Equal(t, []string{"compact", "extended", "nightlife"}, b.Variants())
}

func TestApplyRegistry_InvalidKeepsPrevious(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)

	bad := &registry.PromptRegistry{Variants: []registry.PromptVariant{{ID: "x"}}}
	assert.Error(t, b.ApplyRegistry(bad))
	assert.Equal(t, 3, b.Variant().MinRecommendations)
}

func TestBuild_ConcurrentWithReload(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)

	reg := &registry.PromptRegistry{Variants: []registry.PromptVariant{
		{ID: VariantCompact, Persona: "p", MinRecommendations: 3, MaxRecommendations: 5},
	}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := b.Build("Gyeongju")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, b.ApplyRegistry(reg))
		}()
	}
	wg.Wait()
}

func TestWithVariant(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)

	ext, err := b.WithVariant(VariantExtended)
	require.NoError(t, err)
	assert.Equal(t, VariantExtended, ext.Variant().ID)
	assert.Equal(t, VariantCompact, b.Variant().ID)

	_, err = b.WithVariant("missing")
	assert.Error(t, err)
}

func TestWithVariant_IndependentOfLaterRegistry(t *testing.T) {
	b, err := NewBuilder(VariantCompact)
	require.NoError(t, err)
	ext, err := b.WithVariant(VariantExtended)
	require.NoError(t, err)

	reg := &registry.PromptRegistry{Variants: []registry.PromptVariant{
		{ID: "nightlife", Persona: "You love nightlife.", MinRecommendations: 3, MaxRecommendations: 6},
	}}
	require.NoError(t, b.ApplyRegistry(reg))

	assert.Contains(t, b.Variants(), "nightlife")
	assert.NotContains(t, ext.Variants(), "nightlife")
}
