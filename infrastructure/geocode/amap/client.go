// Package amap implements the reverse-geocoding collaborator against
// the AMap regeo API.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

// Config holds the AMap client settings
type Config struct {
	Endpoint string
	APIKey   string
	// RadiusM bounds both the regeo search and the POI selection.
	RadiusM int
}

// Client resolves coordinates through AMap, preferring a nearby point
// of interest annotated with an approximate distance phrase and
// falling back to the formatted administrative address.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an AMap geocoding client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.RadiusM <= 0 {
		config.RadiusM = 1000
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "amap-regeo",
			Timeout: 30 * time.Second,
		}),
		logger: logger,
	}
}

type regeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode *struct {
		FormattedAddress string `json:"formatted_address"`
		POIs             []poi  `json:"pois"`
	} `json:"regeocode"`
}

type poi struct {
	Name     string `json:"name"`
	Distance string `json:"distance"`
}

// Resolve turns coordinates into a display address
func (c *Client) Resolve(ctx context.Context, lat, lng float64) (ports.ResolvedAddress, error) {
	if c.config.APIKey == "" {
		return ports.ResolvedAddress{}, apperrors.NewUnavailableError("geocoder")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, lat, lng)
	})
	if err != nil {
		return ports.ResolvedAddress{}, err
	}

	response := result.(*regeoResponse)
	if response.Status != "1" || response.Regeocode == nil {
		message := response.Info
		if message == "" {
			message = "no usable address"
		}
		return ports.ResolvedAddress{}, apperrors.NewExternalError("geocoder", fmt.Errorf("%s", message))
	}

	formatted := response.Regeocode.FormattedAddress
	address := c.selectAddress(response.Regeocode.POIs, formatted)
	if address == "" {
		return ports.ResolvedAddress{}, apperrors.NewExternalError("geocoder", fmt.Errorf("empty address for %.5f,%.5f", lat, lng))
	}

	return ports.ResolvedAddress{Address: address, FormattedAddress: formatted}, nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (*regeoResponse, error) {
	params := url.Values{}
	params.Set("key", c.config.APIKey)
	params.Set("location", fmt.Sprintf("%f,%f", lng, lat))
	params.Set("extensions", "all")
	params.Set("radius", strconv.Itoa(c.config.RadiusM))
	params.Set("batch", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build geocode request").WithCause(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("geocode request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError("geocoder", fmt.Errorf("status %d", resp.StatusCode))
	}

	var decoded regeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.NewExternalError("geocoder", err)
	}
	return &decoded, nil
}

// selectAddress picks the nearest POI within the configured radius,
// annotated with an approximate distance phrase. When no POI
// qualifies the formatted administrative address is used as-is.
func (c *Client) selectAddress(pois []poi, formatted string) string {
	bestName := ""
	bestDistance := 0.0
	for _, p := range pois {
		if p.Name == "" {
			continue
		}
		distance, err := strconv.ParseFloat(p.Distance, 64)
		if err != nil || distance > float64(c.config.RadiusM) {
			continue
		}
		if bestName == "" || distance < bestDistance {
			bestName = p.Name
			bestDistance = distance
		}
	}

	if bestName != "" {
		return fmt.Sprintf("%s (approx. %.0fm)", bestName, bestDistance)
	}
	return formatted
}
