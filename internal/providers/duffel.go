package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nugrahasurya/greenflights/internal/models"
	"github.com/nugrahasurya/greenflights/internal/ratelimit"
	"github.com/nugrahasurya/greenflights/pkg/currency"
	"github.com/nugrahasurya/greenflights/pkg/duration"
)

type duffelOfferRequest struct {
	Data duffelOfferRequestData `json:"data"`
}

type duffelOfferRequestData struct {
	Slices     []duffelSliceRequest `json:"slices"`
	Passengers []duffelPassenger    `json:"passengers"`
	CabinClass string               `json:"cabin_class"`
}

type duffelSliceRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type duffelPassenger struct {
	Type string `json:"type"`
}

type duffelOfferResponse struct {
	Data duffelOfferResponseData `json:"data"`
}

type duffelOfferResponseData struct {
	Offers []duffelOffer `json:"offers"`
}

type duffelOffer struct {
	ID            string        `json:"id"`
	TotalAmount   string        `json:"total_amount"`
	TotalCurrency string        `json:"total_currency"`
	Slices        []duffelSlice `json:"slices"`
}

type duffelSlice struct {
	Duration string          `json:"duration"`
	Segments []duffelSegment `json:"segments"`
}

type duffelSegment struct {
	Origin                       duffelPlace    `json:"origin"`
	Destination                  duffelPlace    `json:"destination"`
	DepartingAt                  string         `json:"departing_at"`
	ArrivingAt                   string         `json:"arriving_at"`
	MarketingCarrier             duffelCarrier  `json:"marketing_carrier"`
	MarketingCarrierFlightNumber string         `json:"marketing_carrier_flight_number"`
	Aircraft                     duffelAircraft `json:"aircraft"`
	Duration                     string         `json:"duration"`
}

type duffelPlace struct {
	IataCode string `json:"iata_code"`
}

type duffelCarrier struct {
	IataCode string `json:"iata_code"`
}

type duffelAircraft struct {
	IataCode string `json:"iata_code"`
}

type duffelPlacesResponse struct {
	Data []duffelPlaceSuggestion `json:"data"`
}

type duffelPlaceSuggestion struct {
	IataCode        string `json:"iata_code"`
	Name            string `json:"name"`
	CityName        string `json:"city_name"`
	IataCountryCode string `json:"iata_country_code"`
	Type            string `json:"type"`
}

type DuffelConfig struct {
	BaseURL  string
	APIToken string
}

// DuffelProvider is the secondary flight-offer upstream, tried only after the
// primary fails. Its nested slices/segments shape and unit conventions are
// translated here so downstream code sees only canonical offers.
type DuffelProvider struct {
	config     DuffelConfig
	httpClient *http.Client
	limiter    *ratelimit.UpstreamLimiter
}

func NewDuffelProvider(cfg DuffelConfig, limiter *ratelimit.UpstreamLimiter) *DuffelProvider {
	return &DuffelProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
	}
}

func (p *DuffelProvider) Name() string {
	return "duffel"
}

func duffelCabinClass(cabinClass string) string {
	switch cabinClass {
	case models.CabinPremiumEconomy:
		return "premium_economy"
	case models.CabinBusiness:
		return "business"
	case models.CabinFirst:
		return "first"
	default:
		return "economy"
	}
}

func (p *DuffelProvider) do(ctx context.Context, req *http.Request, out interface{}) error {
	if err := p.limiter.Wait(ctx, p.Name()); err != nil {
		return NewProviderError(p.Name(), err)
	}

	req.Header.Set("Authorization", "Bearer "+p.config.APIToken)
	req.Header.Set("Duffel-Version", "v2")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewProviderError(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewProviderError(p.Name(), fmt.Errorf("status %d from %s", resp.StatusCode, req.URL.Path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(p.Name(), err)
	}
	return nil
}

func (p *DuffelProvider) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, error) {
	slices := []duffelSliceRequest{{
		Origin:        req.LocationDeparture,
		Destination:   req.LocationArrival,
		DepartureDate: req.Departure,
	}}
	if !req.OneWay() {
		slices = append(slices, duffelSliceRequest{
			Origin:        req.LocationArrival,
			Destination:   req.LocationDeparture,
			DepartureDate: req.Arrival,
		})
	}

	passengers := make([]duffelPassenger, req.Adults)
	for i := range passengers {
		passengers[i] = duffelPassenger{Type: "adult"}
	}

	body, err := json.Marshal(duffelOfferRequest{
		Data: duffelOfferRequestData{
			Slices:     slices,
			Passengers: passengers,
			CabinClass: duffelCabinClass(req.CabinClass),
		},
	})
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/air/offer_requests?return_offers=true", bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp duffelOfferResponse
	if err := p.do(ctx, httpReq, &resp); err != nil {
		return nil, err
	}

	offers := make([]models.Offer, 0, len(resp.Data.Offers))
	for _, o := range resp.Data.Offers {
		offer, err := p.translate(o)
		if err != nil {
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// translate performs the field-level mapping from Duffel's shape to the
// canonical one: slices become itineraries, the marketing-carrier object
// collapses to a code, ISO durations become minutes, total_currency becomes
// the price currency.
func (p *DuffelProvider) translate(o duffelOffer) (models.Offer, error) {
	itineraries := make([]models.Itinerary, 0, len(o.Slices))
	for _, slice := range o.Slices {
		segments := make([]models.Segment, 0, len(slice.Segments))
		sliceMinutes := 0
		for _, s := range slice.Segments {
			segMinutes, err := duration.ParseISO8601Minutes(s.Duration)
			if err != nil {
				return models.Offer{}, err
			}
			sliceMinutes += segMinutes
			segments = append(segments, models.Segment{
				CarrierCode:     s.MarketingCarrier.IataCode,
				FlightNumber:    s.MarketingCarrierFlightNumber,
				Origin:          s.Origin.IataCode,
				Destination:     s.Destination.IataCode,
				DepartureTime:   s.DepartingAt,
				ArrivalTime:     s.ArrivingAt,
				AircraftCode:    s.Aircraft.IataCode,
				DurationMinutes: segMinutes,
			})
		}

		itinMinutes := sliceMinutes
		if slice.Duration != "" {
			if parsed, err := duration.ParseISO8601Minutes(slice.Duration); err == nil {
				itinMinutes = parsed
			}
		}

		itineraries = append(itineraries, models.Itinerary{
			Segments:        segments,
			DurationMinutes: itinMinutes,
		})
	}

	total, err := strconv.ParseFloat(o.TotalAmount, 64)
	if err != nil {
		return models.Offer{}, err
	}

	return models.Offer{
		ID:          o.ID,
		Itineraries: itineraries,
		Price: models.Price{
			Total:     total,
			Currency:  o.TotalCurrency,
			Formatted: currency.Format(total, o.TotalCurrency),
		},
	}, nil
}

func (p *DuffelProvider) SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error) {
	query := url.Values{"query": {keyword}}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.config.BaseURL+"/places/suggestions?"+query.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	var resp duffelPlacesResponse
	if err := p.do(ctx, httpReq, &resp); err != nil {
		return nil, err
	}

	suggestions := make([]models.AirportSuggestion, 0, len(resp.Data))
	for _, place := range resp.Data {
		if !strings.EqualFold(place.Type, "airport") || place.IataCode == "" {
			continue
		}
		suggestions = append(suggestions, models.AirportSuggestion{
			IataCode:    place.IataCode,
			Name:        place.Name,
			CityName:    place.CityName,
			CountryName: place.IataCountryCode,
			DisplayName: displayName(place.Name, place.IataCode, place.CityName, place.IataCountryCode),
		})
	}
	return suggestions, nil
}
