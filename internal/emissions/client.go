package emissions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nugrahasurya/greenflights/internal/ratelimit"
)

type DepartureDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type FlightDescriptor struct {
	Origin               string        `json:"origin"`
	Destination          string        `json:"destination"`
	OperatingCarrierCode string        `json:"operatingCarrierCode"`
	FlightNumber         int           `json:"flightNumber"`
	DepartureDate        DepartureDate `json:"departureDate"`
}

type GramsPerPax struct {
	First          int64 `json:"first"`
	Business       int64 `json:"business"`
	PremiumEconomy int64 `json:"premiumEconomy"`
	Economy        int64 `json:"economy"`
}

type FlightEmissions struct {
	Flight               FlightDescriptor `json:"flight"`
	EmissionsGramsPerPax *GramsPerPax     `json:"emissionsGramsPerPax,omitempty"`
}

type computeFlightsRequest struct {
	Flights []FlightDescriptor `json:"flights"`
}

type computeFlightsResponse struct {
	FlightEmissions []FlightEmissions `json:"flightEmissions"`
}

type market struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type computeTypicalRequest struct {
	Markets []market `json:"markets"`
}

type typicalFlightEmissions struct {
	Market               market       `json:"market"`
	EmissionsGramsPerPax *GramsPerPax `json:"emissionsGramsPerPax,omitempty"`
}

type computeTypicalResponse struct {
	TypicalFlightEmissions []typicalFlightEmissions `json:"typicalFlightEmissions"`
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
}

// Client talks to the emissions-estimation provider: one endpoint for
// per-itinerary computation, one for route-level typical emissions.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *ratelimit.UpstreamLimiter
}

func NewClient(cfg ClientConfig, limiter *ratelimit.UpstreamLimiter) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx, "emissions"); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+endpoint+"?key="+c.config.APIKey, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emissions provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ComputeFlightEmissions returns per-segment emissions for the given flight
// descriptors. The response is aligned with the request order; segments the
// provider could not compute come back without an emissionsGramsPerPax value.
func (c *Client) ComputeFlightEmissions(ctx context.Context, flights []FlightDescriptor) ([]FlightEmissions, error) {
	var resp computeFlightsResponse
	err := c.post(ctx, "/flights:computeFlightEmissions", computeFlightsRequest{Flights: flights}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.FlightEmissions, nil
}

// ComputeTypicalEmissions returns the route's historical average emissions
// per cabin class, independent of any specific offer.
func (c *Client) ComputeTypicalEmissions(ctx context.Context, origin, destination string) (*GramsPerPax, error) {
	req := computeTypicalRequest{
		Markets: []market{{Origin: origin, Destination: destination}},
	}

	var resp computeTypicalResponse
	if err := c.post(ctx, "/flights:computeTypicalFlightEmissions", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.TypicalFlightEmissions) == 0 || resp.TypicalFlightEmissions[0].EmissionsGramsPerPax == nil {
		return nil, fmt.Errorf("no typical emissions for %s-%s", origin, destination)
	}
	return resp.TypicalFlightEmissions[0].EmissionsGramsPerPax, nil
}
