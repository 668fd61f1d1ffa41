package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const geocodeTimeout = 3 * time.Second

// HTTPGeocoder resolves coordinates against a Nominatim-style reverse
// geocoding endpoint.
type HTTPGeocoder struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	return &HTTPGeocoder{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: geocodeTimeout},
	}
}

type reverseResponse struct {
	Address struct {
		Road     string `json:"road"`
		Suburb   string `json:"suburb"`
		District string `json:"city_district"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
	} `json:"address"`
}

func (g *HTTPGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	endpoint := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s",
		g.BaseURL,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lng)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	addr := parsed.Address
	district := addr.District
	if district == "" {
		district = addr.Suburb
	}
	city := addr.City
	if city == "" {
		city = addr.Town
	}
	if city == "" {
		city = addr.Village
	}

	var parts []string
	for _, part := range []string{addr.Road, district, city} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("geocoder returned no address parts")
	}
	return strings.Join(parts, ", "), nil
}

// CoordinateLabel is the fallback label when reverse geocoding fails.
func CoordinateLabel(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}
