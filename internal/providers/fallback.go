package providers

import (
	"context"
	"log"
	"strings"

	"github.com/nugrahasurya/greenflights/internal/models"
)

// minAirportKeywordLen is the shortest keyword forwarded upstream. Shorter
// queries are rejected by both providers and would waste quota.
const minAirportKeywordLen = 2

// Chain tries the primary provider and falls back to the secondary on any
// failure. There is no retry within a provider; a failed search is only
// re-attempted by the user resubmitting.
type Chain struct {
	primary   Provider
	secondary Provider
}

func NewChain(primary, secondary Provider) *Chain {
	return &Chain{
		primary:   primary,
		secondary: secondary,
	}
}

// SearchOffers returns the offers and the name of the provider that answered.
// Both providers failing yields ErrAllProvidersFailed, never an empty success.
func (c *Chain) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, string, error) {
	offers, err := c.primary.SearchOffers(ctx, req)
	if err == nil {
		return offers, c.primary.Name(), nil
	}
	log.Printf("Primary provider %s unavailable: %v", c.primary.Name(), err)

	offers, err = c.secondary.SearchOffers(ctx, req)
	if err == nil {
		return offers, c.secondary.Name(), nil
	}
	log.Printf("Secondary provider %s unavailable: %v", c.secondary.Name(), err)

	return nil, "", ErrAllProvidersFailed
}

func (c *Chain) SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error) {
	keyword = strings.TrimSpace(keyword)
	if len(keyword) < minAirportKeywordLen {
		return []models.AirportSuggestion{}, nil
	}

	suggestions, err := c.primary.SearchAirports(ctx, keyword)
	if err == nil {
		return suggestions, nil
	}
	log.Printf("Primary provider %s airport search failed: %v", c.primary.Name(), err)

	suggestions, err = c.secondary.SearchAirports(ctx, keyword)
	if err == nil {
		return suggestions, nil
	}
	log.Printf("Secondary provider %s airport search failed: %v", c.secondary.Name(), err)

	return nil, ErrAllProvidersFailed
}
