package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound = errors.New("map session not found")
	ErrSupplyNotFound  = errors.New("supply location not found")
	// ErrSuperseded marks a pipeline run whose result arrived after a newer
	// request for the same session had started.
	ErrSuperseded = errors.New("route request superseded by a newer request")
)

// ValidationError reports input that was rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NoFeasibleSupplyError lists demands without a capacity-sufficient location
// of the requested material.
type NoFeasibleSupplyError struct {
	Unmet []Demand
}

func (e *NoFeasibleSupplyError) Materials() []string {
	out := make([]string, 0, len(e.Unmet))
	for _, d := range e.Unmet {
		out = append(out, d.Material)
	}
	return out
}

func (e *NoFeasibleSupplyError) Error() string {
	return fmt.Sprintf("no feasible supply for: %s", strings.Join(e.Materials(), ", "))
}

// ProviderError wraps any failure of the trip-optimization provider.
type ProviderError struct {
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trip provider: %s: %v", e.Reason, e.Err)
	}
	return "trip provider: " + e.Reason
}

func (e *ProviderError) Unwrap() error { return e.Err }

// OverlayError reports a failure to create or update a map source or layer.
type OverlayError struct {
	Op        string
	OverlayID string
	Err       error
}

func (e *OverlayError) Error() string {
	return fmt.Sprintf("overlay %s %q: %v", e.Op, e.OverlayID, e.Err)
}

func (e *OverlayError) Unwrap() error { return e.Err }
