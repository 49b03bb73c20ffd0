package derive

import (
	"math"
	"sort"

	"github.com/nugrahasurya/greenflights/internal/models"
)

// Sort keys for derived views.
const (
	SortCO2Lowest       = "co2_lowest"
	SortCO2Highest      = "co2_highest"
	SortPriceLowest     = "price_lowest"
	SortPriceHighest    = "price_highest"
	SortDurationLowest  = "duration_lowest"
	SortDurationHighest = "duration_highest"
)

// Fallback bounds used when the comparable set is empty or a dimension has
// no positive values.
const (
	DefaultPriceMax    = 10000
	DefaultDurationMax = 1440
	DefaultCO2KgMax    = 1000
)

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Bounds struct {
	Price           Range `json:"price"`
	DurationMinutes Range `json:"duration_minutes"`
	CO2Kg           Range `json:"co2_kg"`
}

type Options struct {
	CabinClass      string
	SortBy          string
	Price           *Range
	DurationMinutes *Range
	CO2Kg           *Range
	Stops           string
}

// View is a chart-ready projection of the offer set: only offers comparable
// on CO2 for the searched cabin, sorted and filtered, with the filter bounds
// the set supports and the count of offers excluded for missing emissions.
type View struct {
	Offers        []models.Offer `json:"offers"`
	Bounds        Bounds         `json:"bounds"`
	ExcludedCount int            `json:"excluded_count"`
}

// Derive recomputes the whole view from scratch. No incremental patching:
// inputs change, the view is re-derived.
func Derive(offers []models.Offer, opts Options) View {
	cabinKey := models.CabinKey(opts.CabinClass)

	comparable := filterComparable(offers, cabinKey)
	excluded := len(offers) - len(comparable)

	bounds := computeBounds(comparable, cabinKey)

	// Unset ranges default to the full computed bounds.
	priceRange := opts.Price
	if priceRange == nil {
		priceRange = &bounds.Price
	}
	durationRange := opts.DurationMinutes
	if durationRange == nil {
		durationRange = &bounds.DurationMinutes
	}
	co2Range := opts.CO2Kg
	if co2Range == nil {
		co2Range = &bounds.CO2Kg
	}

	sorted := applySort(comparable, opts.SortBy, cabinKey)
	filtered := applyFilters(sorted, *priceRange, *durationRange, *co2Range, opts.Stops, cabinKey)

	return View{
		Offers:        filtered,
		Bounds:        bounds,
		ExcludedCount: excluded,
	}
}

// filterComparable keeps offers that carry an emissions value for the
// searched cabin class. Offers lacking it are excluded from charts and
// CO2-dependent filtering, but their count is retained for display.
func filterComparable(offers []models.Offer, cabinKey string) []models.Offer {
	result := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if _, ok := o.EmissionsGramsPerPax[cabinKey]; ok {
			result = append(result, o)
		}
	}
	return result
}

func co2Kg(o models.Offer, cabinKey string) float64 {
	return float64(o.EmissionsGramsPerPax[cabinKey]) / 1000
}

func computeBounds(offers []models.Offer, cabinKey string) Bounds {
	bounds := Bounds{
		Price:           Range{Min: 0, Max: DefaultPriceMax},
		DurationMinutes: Range{Min: 0, Max: DefaultDurationMax},
		CO2Kg:           Range{Min: 0, Max: DefaultCO2KgMax},
	}
	if len(offers) == 0 {
		return bounds
	}

	price, priceOK := minMax(offers, func(o models.Offer) float64 { return o.Price.Total })
	duration, durationOK := minMax(offers, func(o models.Offer) float64 { return float64(o.TotalDurationMinutes()) })
	co2, co2OK := minMax(offers, func(o models.Offer) float64 { return co2Kg(o, cabinKey) })

	if priceOK {
		bounds.Price = price
	}
	if durationOK {
		bounds.DurationMinutes = duration
	}
	if co2OK {
		bounds.CO2Kg = co2
	}
	return bounds
}

// minMax scans one dimension. A dimension with no positive values falls back
// to its default range.
func minMax(offers []models.Offer, value func(models.Offer) float64) (Range, bool) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	anyPositive := false

	for _, o := range offers {
		v := value(o)
		if v > 0 {
			anyPositive = true
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if !anyPositive {
		return Range{}, false
	}
	return Range{Min: lo, Max: hi}, true
}

// applySort orders a copy of the offers by the selected key. Sorting is
// stable so equal-key offers keep their prior relative order across
// re-derivations.
func applySort(offers []models.Offer, sortBy, cabinKey string) []models.Offer {
	sorted := make([]models.Offer, len(offers))
	copy(sorted, offers)

	value := sortValue(sortBy, cabinKey)
	descending := sortBy == SortCO2Highest || sortBy == SortPriceHighest || sortBy == SortDurationHighest

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := value(sorted[i]), value(sorted[j])
		if descending {
			return a > b
		}
		return a < b
	})

	return sorted
}

// sortValue picks the numeric comparator for a sort key; missing or NaN
// values are treated as 0.
func sortValue(sortBy, cabinKey string) func(models.Offer) float64 {
	var raw func(models.Offer) float64

	switch sortBy {
	case SortPriceLowest, SortPriceHighest:
		raw = func(o models.Offer) float64 { return o.Price.Total }
	case SortDurationLowest, SortDurationHighest:
		raw = func(o models.Offer) float64 { return float64(o.TotalDurationMinutes()) }
	default:
		raw = func(o models.Offer) float64 { return co2Kg(o, cabinKey) }
	}

	return func(o models.Offer) float64 {
		v := raw(o)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
}

// applyFilters ANDs the three inclusive range predicates with the stops
// category.
func applyFilters(offers []models.Offer, price, duration, co2 Range, stops, cabinKey string) []models.Offer {
	result := make([]models.Offer, 0, len(offers))

	for _, o := range offers {
		if !inRange(o.Price.Total, price) {
			continue
		}
		if !inRange(float64(o.TotalDurationMinutes()), duration) {
			continue
		}
		if !inRange(co2Kg(o, cabinKey), co2) {
			continue
		}
		if !matchesStops(o.Stops(), stops) {
			continue
		}
		result = append(result, o)
	}

	return result
}

func inRange(v float64, r Range) bool {
	return v >= r.Min && v <= r.Max
}

func matchesStops(stops int, filter string) bool {
	switch filter {
	case "0":
		return stops == 0
	case "1":
		return stops == 1
	case "2+":
		return stops >= 2
	default:
		return true
	}
}
