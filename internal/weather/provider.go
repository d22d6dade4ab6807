package weather

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTransport covers unreachable providers, non-success statuses and open circuits.
	ErrTransport = errors.New("provider transport failure")
	// ErrDataShape is returned when a response lacks the expected payload.
	ErrDataShape = errors.New("provider response missing expected data")

	errProviderNotConfigured = errors.New("provider not configured")
)

// ProviderError identifies the provider that failed and why.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError tags cause with one of ErrTransport or ErrDataShape.
func NewProviderError(provider string, kind, cause error) error {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	return &ProviderError{Provider: provider, Err: err}
}

// Provider abstracts a forecast source (KMA, OpenWeatherMap).
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location) (Forecast, error)
}
