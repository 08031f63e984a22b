// Package transport carries a PlanResult from the plan endpoint to the results view.
package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/validation"
	"trip-planner/internal/models"
)

// Query parameter names understood by the results view.
const (
	DataParam  = "data"
	TokenParam = "token"
)

// Codec serializes a PlanResult into a single percent-encoded URL value and back.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// Encode returns the percent-encoded JSON form of result. A nil recommendation list is encoded as [].
func (c *Codec) Encode(result *models.PlanResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("transport: nil plan result")
	}
	payload := *result
	payload.EnsureRecommendations()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("transport: marshal plan: %w", err)
	}
	return url.QueryEscape(string(data)), nil
}

// Decode reverses Encode. An empty value is a NO_PAYLOAD error; anything present but
// unreadable is a PAYLOAD_DECODE_FAILED error.
func (c *Codec) Decode(encoded string) (*models.PlanResult, error) {
	if encoded == "" {
		return nil, apperrors.NewNoPayloadError("data parameter is empty")
	}

	raw, err := url.QueryUnescape(encoded)
	if err != nil {
		return nil, apperrors.NewPayloadDecodeError(fmt.Errorf("unescape: %w", err))
	}
	return decodeJSON([]byte(raw))
}

// ResultsURL builds the results view location for result, e.g. /results?data=...
func (c *Codec) ResultsURL(basePath string, result *models.PlanResult) (string, error) {
	encoded, err := c.Encode(result)
	if err != nil {
		return "", err
	}
	return basePath + "?" + DataParam + "=" + encoded, nil
}

// RawQueryValue returns the first value of key from rawQuery without unescaping it.
// url.ParseQuery drops pairs with bad escapes, which would turn a corrupt payload into a missing one.
func RawQueryValue(rawQuery, key string) (string, bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}

func decodeJSON(data []byte) (*models.PlanResult, error) {
	if err := validation.ValidatePlanResult(data); err != nil {
		return nil, apperrors.NewPayloadDecodeError(err)
	}

	var result models.PlanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, apperrors.NewPayloadDecodeError(fmt.Errorf("decode plan: %w", err))
	}
	result.EnsureRecommendations()
	return &result, nil
}
