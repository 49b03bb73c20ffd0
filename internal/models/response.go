package models

type SearchMetadata struct {
	Provider       string `json:"provider"`
	TotalOffers    int    `json:"total_offers"`
	ItineraryCount int    `json:"itinerary_count"`
	CacheHit       bool   `json:"cache_hit"`
	SearchTimeMs   int64  `json:"search_time_ms"`
}

type SearchResponse struct {
	Offers           []Offer          `json:"offers"`
	TypicalEmissions TypicalEmissions `json:"typicalEmissions"`
	Metadata         SearchMetadata   `json:"metadata"`
}

type AirportSearchResponse struct {
	Data []AirportSuggestion `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
