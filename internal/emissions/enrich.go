package emissions

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/nugrahasurya/greenflights/internal/grouping"
	"github.com/nugrahasurya/greenflights/internal/models"
)

// Enricher attaches per-cabin emissions totals to offer groups, one upstream
// request per group. Requests across groups run concurrently; one group's
// failure leaves its offers without emissions fields and does not touch the
// others.
type Enricher struct {
	client *Client
}

func NewEnricher(client *Client) *Enricher {
	return &Enricher{client: client}
}

type groupResult struct {
	group    *grouping.Group
	grams    map[string]int64
	cabins   []string
	complete bool
	err      error
}

// Enrich computes emissions for every group and writes the result onto every
// member offer. The per-group result map is shared by construction across the
// group's members.
func (e *Enricher) Enrich(ctx context.Context, groups []*grouping.Group) {
	resultCh := make(chan groupResult, len(groups))
	var wg sync.WaitGroup

	for _, g := range groups {
		wg.Add(1)
		go func(g *grouping.Group) {
			defer wg.Done()
			grams, cabins, complete, err := e.computeGroup(ctx, g)
			resultCh <- groupResult{
				group:    g,
				grams:    grams,
				cabins:   cabins,
				complete: complete,
				err:      err,
			}
		}(g)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		if r.err != nil {
			log.Printf("Emissions computation failed for itinerary %s: %v", r.group.Key, r.err)
			continue
		}
		for _, offer := range r.group.Members {
			offer.EmissionsGramsPerPax = r.grams
			offer.AvailableCabinClasses = r.cabins
			offer.EmissionsComplete = r.complete
		}
	}
}

func (e *Enricher) computeGroup(ctx context.Context, g *grouping.Group) (map[string]int64, []string, bool, error) {
	descriptors, totalSegments := buildDescriptors(g.Representative)
	if len(descriptors) == 0 {
		return nil, nil, false, nil
	}

	results, err := e.client.ComputeFlightEmissions(ctx, descriptors)
	if err != nil {
		return nil, nil, false, err
	}

	var totals GramsPerPax
	usable := 0
	for _, fe := range results {
		if fe.EmissionsGramsPerPax == nil {
			continue
		}
		gp := fe.EmissionsGramsPerPax
		if gp.Economy == 0 && gp.PremiumEconomy == 0 && gp.Business == 0 && gp.First == 0 {
			continue
		}
		usable++
		totals.Economy += gp.Economy
		totals.PremiumEconomy += gp.PremiumEconomy
		totals.Business += gp.Business
		totals.First += gp.First
	}

	grams, cabins := gramsMap(totals)
	complete := usable == totalSegments
	return grams, cabins, complete, nil
}

// buildDescriptors converts the representative offer's segments into flight
// descriptors. Segments with non-numeric flight numbers cannot be submitted;
// they count toward the total so the group ends up marked incomplete.
func buildDescriptors(offer *models.Offer) ([]FlightDescriptor, int) {
	var descriptors []FlightDescriptor
	total := 0

	for _, it := range offer.Itineraries {
		for _, s := range it.Segments {
			total++

			number, err := strconv.Atoi(s.FlightNumber)
			if err != nil {
				continue
			}
			departed, err := parseDepartureDate(s.DepartureTime)
			if err != nil {
				continue
			}

			descriptors = append(descriptors, FlightDescriptor{
				Origin:               s.Origin,
				Destination:          s.Destination,
				OperatingCarrierCode: s.CarrierCode,
				FlightNumber:         number,
				DepartureDate:        departed,
			})
		}
	}

	return descriptors, total
}

func parseDepartureDate(ts string) (DepartureDate, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", ts)
		if err != nil {
			return DepartureDate{}, err
		}
	}
	return DepartureDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// gramsMap keeps only cabin classes with a strictly positive total; those are
// the classes recorded as available.
func gramsMap(totals GramsPerPax) (map[string]int64, []string) {
	grams := make(map[string]int64)
	var cabins []string

	for _, entry := range []struct {
		key   string
		value int64
	}{
		{models.CabinKeyEconomy, totals.Economy},
		{models.CabinKeyPremiumEconomy, totals.PremiumEconomy},
		{models.CabinKeyBusiness, totals.Business},
		{models.CabinKeyFirst, totals.First},
	} {
		if entry.value > 0 {
			grams[entry.key] = entry.value
			cabins = append(cabins, entry.key)
		}
	}

	if len(grams) == 0 {
		return nil, nil
	}
	return grams, cabins
}

// TypicalForRoute fetches the route-level baseline, best-effort: any failure
// is logged and reported as an absent baseline, never as a search failure.
func (e *Enricher) TypicalForRoute(ctx context.Context, origin, destination string) models.TypicalEmissions {
	grams, err := e.client.ComputeTypicalEmissions(ctx, origin, destination)
	if err != nil {
		log.Printf("Typical emissions unavailable for %s-%s: %v", origin, destination, err)
		return nil
	}

	typical, _ := gramsMap(*grams)
	if typical == nil {
		return nil
	}
	return models.TypicalEmissions(typical)
}
