// Package normalize turns raw model text into a PlanResult.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/validation"
	"trip-planner/internal/models"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*")
	trailingFence = regexp.MustCompile("[ \t]*```$")
)

// StripFences removes a leading ``` or ```json marker and a trailing ``` marker, then trims whitespace.
// Text without fences is only trimmed. StripFences(StripFences(s)) == StripFences(s).
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := leadingFence.ReplaceAllString(s, "")
		next = strings.TrimSpace(trailingFence.ReplaceAllString(strings.TrimSpace(next), ""))
		if next == s {
			return s
		}
		s = next
	}
}

// Normalize strips fences from raw model text, checks it against the plan schema and decodes it.
// Every failure is a MALFORMED_MODEL_OUTPUT error and no partial result is returned.
func Normalize(raw string) (*models.PlanResult, error) {
	body := StripFences(raw)
	if body == "" {
		return nil, apperrors.NewMalformedModelOutputError(fmt.Errorf("empty model output"))
	}

	if err := validation.ValidatePlanResult([]byte(body)); err != nil {
		return nil, apperrors.NewMalformedModelOutputError(err)
	}

	var result models.PlanResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, apperrors.NewMalformedModelOutputError(fmt.Errorf("decode plan: %w", err))
	}
	result.EnsureRecommendations()

	return &result, nil
}
