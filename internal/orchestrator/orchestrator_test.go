package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nugrahasurya/greenflights/internal/cache"
	"github.com/nugrahasurya/greenflights/internal/grouping"
	"github.com/nugrahasurya/greenflights/internal/models"
	"github.com/nugrahasurya/greenflights/internal/providers"
)

type stubSearcher struct {
	mu      sync.Mutex
	calls   int
	offers  []models.Offer
	err     error
	started chan struct{}
	block   chan struct{}
}

func (s *stubSearcher) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, "", s.err
	}
	return s.offers, "amadeus", nil
}

func (s *stubSearcher) SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error) {
	return nil, nil
}

func (s *stubSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubEnricher struct {
	typical models.TypicalEmissions
}

func (e *stubEnricher) Enrich(ctx context.Context, groups []*grouping.Group) {}

func (e *stubEnricher) TypicalForRoute(ctx context.Context, origin, destination string) models.TypicalEmissions {
	return e.typical
}

func searchRequest() models.SearchRequest {
	return models.SearchRequest{
		LocationDeparture: "CDG",
		LocationArrival:   "JFK",
		Departure:         "2026-09-01",
		Adults:            1,
		CabinClass:        models.CabinEconomy,
	}
}

func sampleOffers() []models.Offer {
	return []models.Offer{{
		ID: "offer-1",
		Itineraries: []models.Itinerary{{
			Segments: []models.Segment{{
				CarrierCode:   "AF",
				FlightNumber:  "276",
				Origin:        "CDG",
				Destination:   "JFK",
				DepartureTime: "2026-09-01T10:00:00",
			}},
			DurationMinutes: 480,
		}},
		Price: models.Price{Total: 320, Currency: "EUR"},
	}}
}

func TestSearch_RejectsConcurrentSecondSearch(t *testing.T) {
	searcher := &stubSearcher{
		offers:  sampleOffers(),
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	started := searcher.started

	orch := New(searcher, &stubEnricher{}, cache.NewNoOpCache())

	firstDone := make(chan error, 1)
	go func() {
		_, err := orch.Search(context.Background(), searchRequest())
		firstDone <- err
	}()

	<-started

	_, err := orch.Search(context.Background(), searchRequest())
	assert.ErrorIs(t, err, ErrSearchInProgress)
	assert.Equal(t, 1, searcher.callCount())

	close(searcher.block)
	require.NoError(t, <-firstDone)
}

func TestSearch_GateReleasedAfterCompletion(t *testing.T) {
	searcher := &stubSearcher{offers: sampleOffers()}
	orch := New(searcher, &stubEnricher{}, cache.NewNoOpCache())

	_, err := orch.Search(context.Background(), searchRequest())
	require.NoError(t, err)

	_, err = orch.Search(context.Background(), searchRequest())
	assert.NoError(t, err)
}

func TestSearch_GateReleasedAfterFailure(t *testing.T) {
	searcher := &stubSearcher{err: providers.ErrAllProvidersFailed}
	orch := New(searcher, &stubEnricher{}, cache.NewNoOpCache())

	_, err := orch.Search(context.Background(), searchRequest())
	assert.ErrorIs(t, err, providers.ErrAllProvidersFailed)

	_, err = orch.Search(context.Background(), searchRequest())
	assert.ErrorIs(t, err, providers.ErrAllProvidersFailed)
	assert.Equal(t, 2, searcher.callCount())
}

func TestSearch_TotalProviderFailurePropagatesNotEmptyResult(t *testing.T) {
	searcher := &stubSearcher{err: providers.ErrAllProvidersFailed}
	orch := New(searcher, &stubEnricher{}, cache.NewNoOpCache())

	resp, err := orch.Search(context.Background(), searchRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, providers.ErrAllProvidersFailed)
}

func TestSearch_CacheHitSkipsProviders(t *testing.T) {
	searcher := &stubSearcher{offers: sampleOffers()}
	orch := New(searcher, &stubEnricher{}, cache.NewMemoryCache(time.Minute))

	first, err := orch.Search(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.False(t, first.Metadata.CacheHit)

	second, err := orch.Search(context.Background(), searchRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.callCount())
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Offers, second.Offers)
	assert.Equal(t, first.TypicalEmissions, second.TypicalEmissions)
}

func TestSearch_DifferentParamsMissCache(t *testing.T) {
	searcher := &stubSearcher{offers: sampleOffers()}
	orch := New(searcher, &stubEnricher{}, cache.NewMemoryCache(time.Minute))

	_, err := orch.Search(context.Background(), searchRequest())
	require.NoError(t, err)

	other := searchRequest()
	other.LocationArrival = "LAX"
	_, err = orch.Search(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, 2, searcher.callCount())
}

func TestSearch_AttachesTypicalEmissionsAndBookingLinks(t *testing.T) {
	typical := models.TypicalEmissions{models.CabinKeyEconomy: 310000}
	searcher := &stubSearcher{offers: sampleOffers()}
	orch := New(searcher, &stubEnricher{typical: typical}, cache.NewNoOpCache())

	resp, err := orch.Search(context.Background(), searchRequest())
	require.NoError(t, err)

	assert.Equal(t, typical, resp.TypicalEmissions)
	assert.Equal(t, "amadeus", resp.Metadata.Provider)
	require.Len(t, resp.Offers, 1)
	require.Len(t, resp.Offers[0].BookingLinks, 2)
	assert.Equal(t, "skyscanner", resp.Offers[0].BookingLinks[0].Site)
}
