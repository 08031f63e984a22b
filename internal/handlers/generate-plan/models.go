// internal/handlers/generate-plan/models.go
package generateplan

import "trip-planner/internal/models"

type Input = models.PlanRequest

type Output = models.PlanResult

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}
