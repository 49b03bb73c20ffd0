package models

import "strings"

// Cabin classes accepted in search requests.
const (
	CabinEconomy        = "ECONOMY"
	CabinPremiumEconomy = "PREMIUM_ECONOMY"
	CabinBusiness       = "BUSINESS"
	CabinFirst          = "FIRST"
)

// Cabin-class keys used in emissions maps.
const (
	CabinKeyEconomy        = "economy"
	CabinKeyPremiumEconomy = "premiumEconomy"
	CabinKeyBusiness       = "business"
	CabinKeyFirst          = "first"
)

// CabinKey maps a request cabin class to its emissions-map key.
// Returns empty string for unknown classes.
func CabinKey(cabinClass string) string {
	switch strings.ToUpper(cabinClass) {
	case CabinEconomy:
		return CabinKeyEconomy
	case CabinPremiumEconomy:
		return CabinKeyPremiumEconomy
	case CabinBusiness:
		return CabinKeyBusiness
	case CabinFirst:
		return CabinKeyFirst
	}
	return ""
}

type RangeFilter struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ViewFilters struct {
	Price           *RangeFilter `json:"price,omitempty"`
	DurationMinutes *RangeFilter `json:"duration_minutes,omitempty"`
	CO2Kg           *RangeFilter `json:"co2_kg,omitempty"`
	Stops           string       `json:"stops,omitempty"`
}

type SearchRequest struct {
	LocationDeparture string `json:"locationDeparture"`
	LocationArrival   string `json:"locationArrival"`
	Departure         string `json:"departure"`
	Arrival           string `json:"arrival,omitempty"`
	Adults            int    `json:"adults"`
	CabinClass        string `json:"cabinClass"`

	// Optional server-side view shaping; when absent, offers are returned in
	// provider order and the caller derives its own views.
	SortBy  string       `json:"sort_by,omitempty"`
	Filters *ViewFilters `json:"filters,omitempty"`
}

func (r *SearchRequest) Validate() error {
	r.LocationDeparture = strings.ToUpper(strings.TrimSpace(r.LocationDeparture))
	r.LocationArrival = strings.ToUpper(strings.TrimSpace(r.LocationArrival))

	if r.LocationDeparture == "" {
		return ErrMissingOrigin
	}
	if r.LocationArrival == "" {
		return ErrMissingDestination
	}
	if r.Departure == "" {
		return ErrMissingDepartureDate
	}
	if r.Adults <= 0 {
		r.Adults = 1
	}
	if r.Adults > 4 {
		return ErrTooManyPassengers
	}
	if r.CabinClass == "" {
		r.CabinClass = CabinEconomy
	}
	r.CabinClass = strings.ToUpper(r.CabinClass)
	if CabinKey(r.CabinClass) == "" {
		return ErrInvalidCabinClass
	}
	return nil
}

// OneWay reports whether the request has no return date.
func (r *SearchRequest) OneWay() bool {
	return r.Arrival == ""
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "locationDeparture is required"
	ErrMissingDestination   ValidationError = "locationArrival is required"
	ErrMissingDepartureDate ValidationError = "departure is required"
	ErrTooManyPassengers    ValidationError = "adults must be between 1 and 4"
	ErrInvalidCabinClass    ValidationError = "cabinClass must be one of ECONOMY, PREMIUM_ECONOMY, BUSINESS, FIRST"
)
