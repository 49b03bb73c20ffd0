package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nugrahasurya/greenflights/internal/derive"
	"github.com/nugrahasurya/greenflights/internal/models"
	"github.com/nugrahasurya/greenflights/internal/orchestrator"
)

type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	AirportSearch(ctx context.Context, keyword string) ([]models.AirportSuggestion, error)
}

type SearchHandler struct {
	orchestrator Searcher
}

func NewSearchHandler(o Searcher) *SearchHandler {
	return &SearchHandler{orchestrator: o}
}

// dateResponse extends the search response with derived-view data when the
// request asked for server-side shaping.
type dateResponse struct {
	models.SearchResponse
	Bounds        *derive.Bounds `json:"bounds,omitempty"`
	ExcludedCount *int           `json:"excluded_count,omitempty"`
}

// Search handles POST /date.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "failed to parse request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
		})
	}

	resp, err := h.orchestrator.Search(ctx, req)
	if errors.Is(err, orchestrator.ErrSearchInProgress) {
		// Deliberately not fatal for clients: distinct status, stable body.
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: "Flight search already in progress",
		})
	}
	if err != nil {
		log.Printf("Flight search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "flight search failed",
		})
	}

	if req.SortBy == "" && req.Filters == nil {
		return c.JSON(http.StatusOK, dateResponse{SearchResponse: *resp})
	}

	view := derive.Derive(resp.Offers, deriveOptions(req))

	shaped := *resp
	shaped.Offers = view.Offers
	shaped.Metadata.TotalOffers = len(view.Offers)

	return c.JSON(http.StatusOK, dateResponse{
		SearchResponse: shaped,
		Bounds:         &view.Bounds,
		ExcludedCount:  &view.ExcludedCount,
	})
}

func deriveOptions(req models.SearchRequest) derive.Options {
	opts := derive.Options{
		CabinClass: req.CabinClass,
		SortBy:     req.SortBy,
	}
	if req.Filters == nil {
		return opts
	}

	opts.Stops = req.Filters.Stops
	if r := req.Filters.Price; r != nil {
		opts.Price = &derive.Range{Min: r.Min, Max: r.Max}
	}
	if r := req.Filters.DurationMinutes; r != nil {
		opts.DurationMinutes = &derive.Range{Min: r.Min, Max: r.Max}
	}
	if r := req.Filters.CO2Kg; r != nil {
		opts.CO2Kg = &derive.Range{Min: r.Min, Max: r.Max}
	}
	return opts
}

// AirportSearch handles GET /airport-search. Short keywords come back as an
// empty data array without touching any provider.
func (h *SearchHandler) AirportSearch(c echo.Context) error {
	ctx := c.Request().Context()
	keyword := c.QueryParam("keyword")

	suggestions, err := h.orchestrator.AirportSearch(ctx, keyword)
	if err != nil {
		log.Printf("Airport search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AirportSearchResponse{
			Data: []models.AirportSuggestion{},
		})
	}

	if suggestions == nil {
		suggestions = []models.AirportSuggestion{}
	}
	return c.JSON(http.StatusOK, models.AirportSearchResponse{Data: suggestions})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
