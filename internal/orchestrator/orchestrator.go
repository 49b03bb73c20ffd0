package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nugrahasurya/greenflights/internal/booking"
	"github.com/nugrahasurya/greenflights/internal/cache"
	"github.com/nugrahasurya/greenflights/internal/grouping"
	"github.com/nugrahasurya/greenflights/internal/models"
)

// ErrSearchInProgress is the admission-control rejection: a second search
// submitted while one is running is turned away immediately, never queued.
var ErrSearchInProgress = errors.New("flight search already in progress")

type OfferSearcher interface {
	SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, string, error)
	SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error)
}

type Enricher interface {
	Enrich(ctx context.Context, groups []*grouping.Group)
	TypicalForRoute(ctx context.Context, origin, destination string) models.TypicalEmissions
}

// Orchestrator owns the search lifecycle: admission gate, cache, provider
// fallback, grouping and emissions enrichment. The gate and cache are its
// private state; there are no package-level globals.
type Orchestrator struct {
	searcher OfferSearcher
	enricher Enricher
	cache    cache.Cache

	mu        sync.Mutex
	searching bool
}

func New(searcher OfferSearcher, enricher Enricher, c cache.Cache) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		enricher: enricher,
		cache:    c,
	}
}

func (o *Orchestrator) tryAcquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.searching {
		return false
	}
	o.searching = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.searching = false
	o.mu.Unlock()
}

// Search runs one full search. The admission gate is released via defer so a
// panic or error on any path cannot wedge it.
func (o *Orchestrator) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if !o.tryAcquire() {
		return nil, ErrSearchInProgress
	}
	defer o.release()

	start := time.Now()

	if resp, ok := o.cache.Get(ctx, req); ok {
		resp.Metadata.CacheHit = true
		resp.Metadata.SearchTimeMs = time.Since(start).Milliseconds()
		return resp, nil
	}

	offers, providerName, err := o.searcher.SearchOffers(ctx, req)
	if err != nil {
		return nil, err
	}

	groups := grouping.GroupOffers(offers)

	// The typical-route baseline is one request per search, issued alongside
	// the per-group computations. Best-effort: a nil result is fine.
	typicalCh := make(chan models.TypicalEmissions, 1)
	go func() {
		typicalCh <- o.enricher.TypicalForRoute(ctx, req.LocationDeparture, req.LocationArrival)
	}()

	o.enricher.Enrich(ctx, groups)
	typical := <-typicalCh

	links := booking.Links(req)
	for i := range offers {
		offers[i].BookingLinks = links
	}

	resp := &models.SearchResponse{
		Offers:           offers,
		TypicalEmissions: typical,
		Metadata: models.SearchMetadata{
			Provider:       providerName,
			TotalOffers:    len(offers),
			ItineraryCount: len(groups),
			SearchTimeMs:   time.Since(start).Milliseconds(),
		},
	}

	if err := o.cache.Set(ctx, req, resp); err != nil {
		log.Printf("Cache write failed: %v", err)
	}

	return resp, nil
}

func (o *Orchestrator) AirportSearch(ctx context.Context, keyword string) ([]models.AirportSuggestion, error) {
	return o.searcher.SearchAirports(ctx, keyword)
}
