package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"carebridge/internal/integrations/config"
	"carebridge/internal/shared/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Address is one reverse geocoding candidate for a coordinate.
type Address struct {
	DisplayName string `json:"displayName"`
	Road        string `json:"road,omitempty"`
	Suburb      string `json:"suburb,omitempty"`
	City        string `json:"city,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Client resolves coordinates to addresses through a Nominatim instance.
// Nominatim rate-limits aggressively, so lookups retry with exponential
// backoff inside the caller's deadline.
type Client struct {
	baseURL   string
	userAgent string
	retryMax  time.Duration
	http      *http.Client
	log       logger.Logger
}

// NewClient creates a reverse geocoding client.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	return &Client{
		baseURL:   cfg.NominatimBaseURL,
		userAgent: cfg.GeocodeUserAgent,
		retryMax:  cfg.GeocodeRetryMax,
		http:      &http.Client{Timeout: cfg.GeocodeTimeout},
		log:       log,
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road     string `json:"road"`
		Suburb   string `json:"suburb"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
}

// Reverse looks up the addresses for a coordinate.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) ([]Address, error) {
	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, url.Values{
		"lat":    {fmt.Sprintf("%f", lat)},
		"lon":    {fmt.Sprintf("%f", lng)},
		"format": {"json"},
	}.Encode())

	var payload nominatimResponse

	backOff := backoff.NewExponentialBackOff()
	backOff.MaxElapsedTime = c.retryMax

	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return fmt.Errorf("geocode upstream returned %d", res.StatusCode)
		}
		if res.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("geocode upstream returned %d", res.StatusCode))
		}
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(backOff, ctx))

	if err != nil {
		c.log.Warn("Reverse geocode failed",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Error(err))
		return nil, err
	}

	city := payload.Address.City
	if city == "" {
		city = payload.Address.Town
	}
	if city == "" {
		city = payload.Address.Village
	}

	return []Address{{
		DisplayName: payload.DisplayName,
		Road:        payload.Address.Road,
		Suburb:      payload.Address.Suburb,
		City:        city,
		Postcode:    payload.Address.Postcode,
		Country:     payload.Address.Country,
	}}, nil
}
