package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nugrahasurya/greenflights/internal/models"
)

func offer(id string, price float64, durationMinutes int, co2Grams int64, stops int) models.Offer {
	segments := make([]models.Segment, stops+1)
	for i := range segments {
		segments[i] = models.Segment{CarrierCode: "AF", FlightNumber: "276"}
	}

	o := models.Offer{
		ID: id,
		Itineraries: []models.Itinerary{{
			Segments:        segments,
			DurationMinutes: durationMinutes,
		}},
		Price: models.Price{Total: price, Currency: "EUR"},
	}
	if co2Grams > 0 {
		o.EmissionsGramsPerPax = map[string]int64{models.CabinKeyEconomy: co2Grams}
		o.AvailableCabinClasses = []string{models.CabinKeyEconomy}
		o.EmissionsComplete = true
	}
	return o
}

func ids(offers []models.Offer) []string {
	result := make([]string, len(offers))
	for i, o := range offers {
		result[i] = o.ID
	}
	return result
}

func TestDerive_ExcludesOffersWithoutCabinEmissions(t *testing.T) {
	offers := []models.Offer{
		offer("with", 100, 120, 150000, 0),
		offer("without", 90, 100, 0, 0),
	}

	view := Derive(offers, Options{CabinClass: models.CabinEconomy})

	assert.Equal(t, []string{"with"}, ids(view.Offers))
	assert.Equal(t, 1, view.ExcludedCount)
}

func TestDerive_CabinAbsentFromMapIsExcluded(t *testing.T) {
	o := offer("business-only", 100, 120, 0, 0)
	o.EmissionsGramsPerPax = map[string]int64{models.CabinKeyBusiness: 400000}

	view := Derive([]models.Offer{o}, Options{CabinClass: models.CabinEconomy})

	assert.Empty(t, view.Offers)
	assert.Equal(t, 1, view.ExcludedCount)
}

func TestDerive_BoundsFallBackToDefaultsOnEmptySet(t *testing.T) {
	view := Derive(nil, Options{CabinClass: models.CabinEconomy})

	assert.Equal(t, Range{Min: 0, Max: DefaultPriceMax}, view.Bounds.Price)
	assert.Equal(t, Range{Min: 0, Max: DefaultDurationMax}, view.Bounds.DurationMinutes)
	assert.Equal(t, Range{Min: 0, Max: DefaultCO2KgMax}, view.Bounds.CO2Kg)
}

func TestDerive_BoundsComputedFromOffers(t *testing.T) {
	offers := []models.Offer{
		offer("a", 100, 120, 150000, 0),
		offer("b", 300, 400, 450000, 1),
	}

	view := Derive(offers, Options{CabinClass: models.CabinEconomy})

	assert.Equal(t, Range{Min: 100, Max: 300}, view.Bounds.Price)
	assert.Equal(t, Range{Min: 120, Max: 400}, view.Bounds.DurationMinutes)
	assert.Equal(t, Range{Min: 150, Max: 450}, view.Bounds.CO2Kg)
}

func TestDerive_SortByPriceLowest(t *testing.T) {
	offers := []models.Offer{
		offer("expensive", 120, 120, 300000, 0),
		offer("cheap", 90, 120, 150000, 0),
	}

	view := Derive(offers, Options{CabinClass: models.CabinEconomy, SortBy: SortPriceLowest})

	assert.Equal(t, []string{"cheap", "expensive"}, ids(view.Offers))
}

func TestDerive_CO2SortsAreExactReverses(t *testing.T) {
	offers := []models.Offer{
		offer("mid", 100, 120, 300000, 0),
		offer("low", 100, 120, 150000, 0),
		offer("high", 100, 120, 450000, 0),
	}

	lowest := Derive(offers, Options{CabinClass: models.CabinEconomy, SortBy: SortCO2Lowest})
	highest := Derive(offers, Options{CabinClass: models.CabinEconomy, SortBy: SortCO2Highest})

	assert.Equal(t, []string{"low", "mid", "high"}, ids(lowest.Offers))
	assert.Equal(t, []string{"high", "mid", "low"}, ids(highest.Offers))
}

func TestDerive_StableSortKeepsRelativeOrderOnTies(t *testing.T) {
	offers := []models.Offer{
		offer("first", 100, 120, 150000, 0),
		offer("second", 100, 130, 150000, 0),
		offer("third", 100, 140, 150000, 0),
	}

	view := Derive(offers, Options{CabinClass: models.CabinEconomy, SortBy: SortPriceLowest})

	assert.Equal(t, []string{"first", "second", "third"}, ids(view.Offers))
}

func TestDerive_DurationRangeExcludesLongOffer(t *testing.T) {
	offers := []models.Offer{
		offer("short", 100, 200, 150000, 0),
		offer("long", 100, 400, 150000, 0),
	}

	view := Derive(offers, Options{
		CabinClass:      models.CabinEconomy,
		DurationMinutes: &Range{Min: 60, Max: 300},
	})

	assert.Equal(t, []string{"short"}, ids(view.Offers))
}

func TestDerive_RangeBoundsAreInclusive(t *testing.T) {
	offers := []models.Offer{
		offer("edge", 300, 120, 150000, 0),
	}

	view := Derive(offers, Options{
		CabinClass: models.CabinEconomy,
		Price:      &Range{Min: 300, Max: 300},
	})

	assert.Equal(t, []string{"edge"}, ids(view.Offers))
}

func TestDerive_StopsFilter(t *testing.T) {
	offers := []models.Offer{
		offer("direct", 100, 120, 150000, 0),
		offer("one-stop", 100, 240, 180000, 1),
		offer("two-stop", 100, 360, 210000, 2),
	}

	direct := Derive(offers, Options{CabinClass: models.CabinEconomy, Stops: "0"})
	oneStop := Derive(offers, Options{CabinClass: models.CabinEconomy, Stops: "1"})
	multi := Derive(offers, Options{CabinClass: models.CabinEconomy, Stops: "2+"})
	any := Derive(offers, Options{CabinClass: models.CabinEconomy, Stops: "any"})

	assert.Equal(t, []string{"direct"}, ids(direct.Offers))
	assert.Equal(t, []string{"one-stop"}, ids(oneStop.Offers))
	assert.Equal(t, []string{"two-stop"}, ids(multi.Offers))
	assert.Len(t, any.Offers, 3)
}

func TestDerive_FiltersAndedTogether(t *testing.T) {
	offers := []models.Offer{
		offer("match", 100, 120, 150000, 0),
		offer("price-out", 500, 120, 150000, 0),
		offer("stops-out", 100, 120, 150000, 1),
	}

	view := Derive(offers, Options{
		CabinClass: models.CabinEconomy,
		Price:      &Range{Min: 0, Max: 200},
		Stops:      "0",
	})

	assert.Equal(t, []string{"match"}, ids(view.Offers))
}
