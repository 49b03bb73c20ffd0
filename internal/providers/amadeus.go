package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nugrahasurya/greenflights/internal/models"
	"github.com/nugrahasurya/greenflights/internal/ratelimit"
	"github.com/nugrahasurya/greenflights/pkg/currency"
	"github.com/nugrahasurya/greenflights/pkg/duration"
)

type amadeusTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type amadeusOffersResponse struct {
	Data []amadeusOffer `json:"data"`
}

type amadeusOffer struct {
	ID          string             `json:"id"`
	Itineraries []amadeusItinerary `json:"itineraries"`
	Price       amadeusPrice       `json:"price"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusSegment struct {
	Departure   amadeusEndpoint `json:"departure"`
	Arrival     amadeusEndpoint `json:"arrival"`
	CarrierCode string          `json:"carrierCode"`
	Number      string          `json:"number"`
	Aircraft    amadeusAircraft `json:"aircraft"`
	Duration    string          `json:"duration"`
}

type amadeusEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

type amadeusAircraft struct {
	Code string `json:"code"`
}

type amadeusPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type amadeusLocationsResponse struct {
	Data []amadeusLocation `json:"data"`
}

type amadeusLocation struct {
	IataCode string         `json:"iataCode"`
	Name     string         `json:"name"`
	Address  amadeusAddress `json:"address"`
}

type amadeusAddress struct {
	CityName    string `json:"cityName"`
	CountryName string `json:"countryName"`
}

type AmadeusConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
}

// AmadeusProvider is the primary flight-offer upstream. Auth is an OAuth2
// client-credentials token cached until shortly before expiry.
type AmadeusProvider struct {
	config     AmadeusConfig
	httpClient *http.Client
	limiter    *ratelimit.UpstreamLimiter

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeusProvider(cfg AmadeusConfig, limiter *ratelimit.UpstreamLimiter) *AmadeusProvider {
	return &AmadeusProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
	}
}

func (p *AmadeusProvider) Name() string {
	return "amadeus"
}

func (p *AmadeusProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.config.APIKey},
		"client_secret": {p.config.APISecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tr amadeusTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}

	p.accessToken = tr.AccessToken
	// Refresh one minute early so in-flight requests never race expiry.
	p.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn-60) * time.Second)

	return p.accessToken, nil
}

func (p *AmadeusProvider) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := p.limiter.Wait(ctx, p.Name()); err != nil {
		return NewProviderError(p.Name(), err)
	}

	token, err := p.token(ctx)
	if err != nil {
		return NewProviderError(p.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.config.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return NewProviderError(p.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewProviderError(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewProviderError(p.Name(), fmt.Errorf("status %d from %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(p.Name(), err)
	}
	return nil
}

func (p *AmadeusProvider) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, error) {
	query := url.Values{
		"originLocationCode":      {req.LocationDeparture},
		"destinationLocationCode": {req.LocationArrival},
		"departureDate":           {req.Departure},
		"adults":                  {strconv.Itoa(req.Adults)},
		"travelClass":             {req.CabinClass},
		"currencyCode":            {"EUR"},
		"max":                     {"50"},
	}
	if !req.OneWay() {
		query.Set("returnDate", req.Arrival)
	}

	var resp amadeusOffersResponse
	if err := p.get(ctx, "/v2/shopping/flight-offers", query, &resp); err != nil {
		return nil, err
	}

	offers := make([]models.Offer, 0, len(resp.Data))
	for _, o := range resp.Data {
		offer, err := p.normalize(o)
		if err != nil {
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func (p *AmadeusProvider) normalize(o amadeusOffer) (models.Offer, error) {
	itineraries := make([]models.Itinerary, 0, len(o.Itineraries))
	for _, it := range o.Itineraries {
		itinMinutes, err := duration.ParseISO8601Minutes(it.Duration)
		if err != nil {
			return models.Offer{}, err
		}

		segments := make([]models.Segment, 0, len(it.Segments))
		for _, s := range it.Segments {
			segMinutes, err := duration.ParseISO8601Minutes(s.Duration)
			if err != nil {
				return models.Offer{}, err
			}
			segments = append(segments, models.Segment{
				CarrierCode:     s.CarrierCode,
				FlightNumber:    s.Number,
				Origin:          s.Departure.IataCode,
				Destination:     s.Arrival.IataCode,
				DepartureTime:   s.Departure.At,
				ArrivalTime:     s.Arrival.At,
				AircraftCode:    s.Aircraft.Code,
				DurationMinutes: segMinutes,
			})
		}

		itineraries = append(itineraries, models.Itinerary{
			Segments:        segments,
			DurationMinutes: itinMinutes,
		})
	}

	total, err := strconv.ParseFloat(o.Price.Total, 64)
	if err != nil {
		return models.Offer{}, err
	}

	return models.Offer{
		ID:          o.ID,
		Itineraries: itineraries,
		Price: models.Price{
			Total:     total,
			Currency:  o.Price.Currency,
			Formatted: currency.Format(total, o.Price.Currency),
		},
	}, nil
}

func (p *AmadeusProvider) SearchAirports(ctx context.Context, keyword string) ([]models.AirportSuggestion, error) {
	query := url.Values{
		"subType":     {"AIRPORT"},
		"keyword":     {keyword},
		"page[limit]": {"10"},
	}

	var resp amadeusLocationsResponse
	if err := p.get(ctx, "/v1/reference-data/locations", query, &resp); err != nil {
		return nil, err
	}

	suggestions := make([]models.AirportSuggestion, 0, len(resp.Data))
	for _, loc := range resp.Data {
		if loc.IataCode == "" {
			continue
		}
		suggestions = append(suggestions, models.AirportSuggestion{
			IataCode:    loc.IataCode,
			Name:        loc.Name,
			CityName:    loc.Address.CityName,
			CountryName: loc.Address.CountryName,
			DisplayName: displayName(loc.Name, loc.IataCode, loc.Address.CityName, loc.Address.CountryName),
		})
	}
	return suggestions, nil
}
