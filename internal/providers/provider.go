package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/nugrahasurya/greenflights/internal/models"
)

// Provider is one flight-data upstream. Implementations translate their
// native response shape into the canonical models.Offer before returning,
// so nothing downstream branches on provider identity.
type Provider interface {
	Name() string
	SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, error)
	SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error)
}

// ErrAllProvidersFailed means the whole fallback chain was exhausted. This is
// distinct from an empty result set: callers must surface it as an error.
var ErrAllProvidersFailed = errors.New("all flight providers failed")

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

func displayName(name, iata, city, country string) string {
	s := fmt.Sprintf("%s (%s)", name, iata)
	if city != "" {
		s += ", " + city
	}
	if country != "" {
		s += ", " + country
	}
	return s
}
