package models

type Segment struct {
	CarrierCode     string `json:"carrierCode"`
	FlightNumber    string `json:"flightNumber"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DepartureTime   string `json:"departureTime"`
	ArrivalTime     string `json:"arrivalTime"`
	AircraftCode    string `json:"aircraftCode,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
}

type Itinerary struct {
	Segments        []Segment `json:"segments"`
	DurationMinutes int       `json:"durationMinutes"`
}

type Price struct {
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

type BookingLink struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

// Offer is the canonical flight offer shape. Both providers are translated
// into it at the adapter boundary; nothing downstream knows which provider
// produced an offer.
type Offer struct {
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Price       Price       `json:"price"`

	// EmissionsGramsPerPax holds per-passenger grams keyed by cabin class
	// (economy, premiumEconomy, business, first). Only cabin classes with a
	// strictly positive computed total appear. Absent entirely when the
	// emissions computation failed for the offer's itinerary group.
	EmissionsGramsPerPax  map[string]int64 `json:"emissionsGramsPerPax,omitempty"`
	AvailableCabinClasses []string         `json:"availableCabinClasses,omitempty"`
	EmissionsComplete     bool             `json:"emissionsComplete"`

	BookingLinks []BookingLink `json:"bookingLinks,omitempty"`
}

// TypicalEmissions is the route-level historical average, grams per
// passenger keyed by cabin class. Independent of any specific offer.
type TypicalEmissions map[string]int64

type AirportSuggestion struct {
	IataCode    string `json:"iataCode"`
	Name        string `json:"name"`
	CityName    string `json:"cityName"`
	CountryName string `json:"countryName"`
	DisplayName string `json:"displayName"`
}

// TotalDurationMinutes sums the durations of all itineraries.
func (o Offer) TotalDurationMinutes() int {
	total := 0
	for _, it := range o.Itineraries {
		total += it.DurationMinutes
	}
	return total
}

// Stops returns the stop count of the first itinerary (segments minus one).
func (o Offer) Stops() int {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return 0
	}
	return len(o.Itineraries[0].Segments) - 1
}
