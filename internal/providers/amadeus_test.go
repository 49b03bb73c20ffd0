package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nugrahasurya/greenflights/internal/models"
	"github.com/nugrahasurya/greenflights/internal/ratelimit"
)

const amadeusOffersPayload = `{
  "data": [
    {
      "id": "1",
      "itineraries": [
        {
          "duration": "PT8H30M",
          "segments": [
            {
              "departure": {"iataCode": "CDG", "at": "2026-09-01T10:00:00"},
              "arrival": {"iataCode": "JFK", "at": "2026-09-01T12:30:00"},
              "carrierCode": "AF",
              "number": "276",
              "aircraft": {"code": "77W"},
              "duration": "PT8H30M"
            }
          ]
        }
      ],
      "price": {"total": "412.30", "currency": "EUR"}
    }
  ]
}`

func amadeusTestProvider(t *testing.T, handler http.HandlerFunc) *AmadeusProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		w.Write([]byte(`{"access_token": "token-abc", "expires_in": 1799}`))
	})
	mux.HandleFunc("/", handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewAmadeusProvider(AmadeusConfig{
		BaseURL:   server.URL,
		APIKey:    "key",
		APISecret: "secret",
	}, ratelimit.NewUpstreamLimiterWithDefaults())
}

func TestAmadeusSearchOffers_NormalizesResponse(t *testing.T) {
	provider := amadeusTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "CDG", r.URL.Query().Get("originLocationCode"))
		assert.Equal(t, "ECONOMY", r.URL.Query().Get("travelClass"))
		w.Write([]byte(amadeusOffersPayload))
	})

	offers, err := provider.SearchOffers(context.Background(), models.SearchRequest{
		LocationDeparture: "CDG",
		LocationArrival:   "JFK",
		Departure:         "2026-09-01",
		Adults:            1,
		CabinClass:        models.CabinEconomy,
	})
	require.NoError(t, err)
	require.Len(t, offers, 1)

	offer := offers[0]
	assert.Equal(t, 412.30, offer.Price.Total)
	assert.Equal(t, "EUR 412.30", offer.Price.Formatted)

	require.Len(t, offer.Itineraries, 1)
	assert.Equal(t, 510, offer.Itineraries[0].DurationMinutes)

	seg := offer.Itineraries[0].Segments[0]
	assert.Equal(t, "AF", seg.CarrierCode)
	assert.Equal(t, "276", seg.FlightNumber)
	assert.Equal(t, "77W", seg.AircraftCode)
}

func TestAmadeusSearchOffers_TokenReused(t *testing.T) {
	tokenCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		w.Write([]byte(`{"access_token": "token-abc", "expires_in": 1799}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(amadeusOffersPayload))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider := NewAmadeusProvider(AmadeusConfig{
		BaseURL:   server.URL,
		APIKey:    "key",
		APISecret: "secret",
	}, ratelimit.NewUpstreamLimiterWithDefaults())

	req := models.SearchRequest{
		LocationDeparture: "CDG",
		LocationArrival:   "JFK",
		Departure:         "2026-09-01",
		Adults:            1,
		CabinClass:        models.CabinEconomy,
	}

	_, err := provider.SearchOffers(context.Background(), req)
	require.NoError(t, err)
	_, err = provider.SearchOffers(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls)
}

func TestAmadeusSearchOffers_NonSuccessStatusIsProviderError(t *testing.T) {
	provider := amadeusTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := provider.SearchOffers(context.Background(), models.SearchRequest{
		LocationDeparture: "CDG",
		LocationArrival:   "JFK",
		Departure:         "2026-09-01",
		Adults:            1,
		CabinClass:        models.CabinEconomy,
	})

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "amadeus", providerErr.Provider)
}

func TestAmadeusSearchAirports(t *testing.T) {
	provider := amadeusTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AIRPORT", r.URL.Query().Get("subType"))
		assert.Equal(t, "paris", r.URL.Query().Get("keyword"))
		w.Write([]byte(`{
  "data": [
    {"iataCode": "CDG", "name": "Charles de Gaulle", "address": {"cityName": "Paris", "countryName": "France"}}
  ]
}`))
	})

	suggestions, err := provider.SearchAirports(context.Background(), "paris")
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "CDG", suggestions[0].IataCode)
	assert.Equal(t, "Paris", suggestions[0].CityName)
	assert.Equal(t, "Charles de Gaulle (CDG), Paris, France", suggestions[0].DisplayName)
}
