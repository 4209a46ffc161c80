// Package validation checks request payloads before they reach the XP engine.
package validation

import (
	"fmt"

	"lingoclash/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateAttemptResult checks an attempt result before it is considered for
// an XP award.
func ValidateAttemptResult(r models.AttemptResult) error {
	if r.AttemptID == "" {
		return ValidationError{Field: "attemptId", Message: "attempt ID is required"}
	}
	if r.NumCorrect < 0 {
		return ValidationError{Field: "numCorrect", Message: "must not be negative"}
	}
	if r.NumTotal < 0 {
		return ValidationError{Field: "numTotal", Message: "must not be negative"}
	}
	if r.NumCorrect > r.NumTotal {
		return ValidationError{Field: "numCorrect", Message: "must not exceed numTotal"}
	}
	if r.ScorePercent < 0 || r.ScorePercent > 100 {
		return ValidationError{Field: "scorePercent", Message: "must be between 0 and 100"}
	}
	return nil
}
