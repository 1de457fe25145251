package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRiskTolerance is returned by DecisionValues when the risk
// tolerance falls outside [0, 1].
var ErrInvalidRiskTolerance = errors.New("risk tolerance must be in [0, 1]")

// APIError reports a non-200 response from the maproom API.
type APIError struct {
	Endpoint   string // "export" or "regions"
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("maproom %s API error: status %d", e.Endpoint, e.StatusCode)
}
