package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nugrahasurya/greenflights/internal/models"
)

// Links builds deep-link URLs to third-party booking sites for the searched
// route. URL construction only; no booking API is ever called.
func Links(req models.SearchRequest) []models.BookingLink {
	return []models.BookingLink{
		{Site: "skyscanner", URL: skyscannerURL(req)},
		{Site: "kayak", URL: kayakURL(req)},
	}
}

func skyscannerURL(req models.SearchRequest) string {
	path := fmt.Sprintf("/transport/flights/%s/%s/%s/",
		strings.ToLower(req.LocationDeparture),
		strings.ToLower(req.LocationArrival),
		compactDate(req.Departure))
	if !req.OneWay() {
		path += compactDate(req.Arrival) + "/"
	}

	query := url.Values{
		"adults":     {strconv.Itoa(req.Adults)},
		"cabinclass": {skyscannerCabin(req.CabinClass)},
	}
	return "https://www.skyscanner.net" + path + "?" + query.Encode()
}

func kayakURL(req models.SearchRequest) string {
	path := fmt.Sprintf("/flights/%s-%s/%s",
		req.LocationDeparture, req.LocationArrival, req.Departure)
	if !req.OneWay() {
		path += "/" + req.Arrival
	}

	query := url.Values{
		"sort":   {"bestflight_a"},
		"adults": {strconv.Itoa(req.Adults)},
	}
	return "https://www.kayak.com" + path + "?" + query.Encode()
}

func skyscannerCabin(cabinClass string) string {
	switch cabinClass {
	case models.CabinPremiumEconomy:
		return "premiumeconomy"
	case models.CabinBusiness:
		return "business"
	case models.CabinFirst:
		return "first"
	default:
		return "economy"
	}
}

// compactDate turns "2026-09-01" into Skyscanner's "260901" form. Unparsable
// dates pass through unchanged; the target site shows its own error.
func compactDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("060102")
}
