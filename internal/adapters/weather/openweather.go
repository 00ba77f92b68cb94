// Package weather implements the WeatherProvider port against the
// OpenWeatherMap current-conditions API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider queries OpenWeatherMap in metric units.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewOpenWeatherProvider creates the provider. baseURL may be empty for the
// public endpoint; tests point it at a local server.
func NewOpenWeatherProvider(apiKey, baseURL string, logger *zap.Logger) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current conditions for a city.
func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (*core.WeatherReport, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", p.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather for %s: %w", city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d for %s", resp.StatusCode, city)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report := &core.WeatherReport{
		City:      body.Name,
		TempC:     body.Main.Temp,
		Humidity:  body.Main.Humidity,
		WindSpeed: body.Wind.Speed * 3.6,
	}
	if report.City == "" {
		report.City = city
	}
	if len(body.Weather) > 0 {
		report.Description = body.Weather[0].Description
	}
	return report, nil
}
