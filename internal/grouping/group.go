package grouping

import (
	"strings"

	"github.com/nugrahasurya/greenflights/internal/models"
)

const (
	segmentSeparator   = "|"
	itinerarySeparator = "||"
)

// Group collects every offer that represents the same physical itinerary.
// The representative is the first-seen member in provider order; it alone is
// submitted for emissions computation, and the result is attached to every
// member so duplicate fare buckets stay visible without duplicate upstream
// calls.
type Group struct {
	Key            string
	Representative *models.Offer
	Members        []*models.Offer
}

// IdentityKey derives the grouping key from the ordered
// carrier+number@departure tuples of every segment. Price and fare details
// are deliberately excluded: two offers with the same key are the same
// physical flights.
func IdentityKey(offer models.Offer) string {
	itinKeys := make([]string, 0, len(offer.Itineraries))
	for _, it := range offer.Itineraries {
		segKeys := make([]string, 0, len(it.Segments))
		for _, s := range it.Segments {
			segKeys = append(segKeys, s.CarrierCode+s.FlightNumber+"@"+s.DepartureTime)
		}
		itinKeys = append(itinKeys, strings.Join(segKeys, segmentSeparator))
	}
	return strings.Join(itinKeys, itinerarySeparator)
}

// GroupOffers partitions offers by identity key, preserving first-seen order
// of both groups and members. The offers slice is indexed, not copied, so
// enrichment writes through to the caller's offers.
func GroupOffers(offers []models.Offer) []*Group {
	byKey := make(map[string]*Group)
	groups := make([]*Group, 0, len(offers))

	for i := range offers {
		key := IdentityKey(offers[i])
		if g, ok := byKey[key]; ok {
			g.Members = append(g.Members, &offers[i])
			continue
		}
		g := &Group{
			Key:            key,
			Representative: &offers[i],
			Members:        []*models.Offer{&offers[i]},
		}
		byKey[key] = g
		groups = append(groups, g)
	}

	return groups
}
