package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/adapters/weather"
	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
)

// WeatherFactory creates weather providers
type WeatherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewWeatherFactory creates a new weather factory
func NewWeatherFactory(cfg *config.Config, logger *zap.Logger) *WeatherFactory {
	return &WeatherFactory{cfg: cfg, logger: logger}
}

// CreateWeatherProvider creates the OpenWeatherMap provider
func (f *WeatherFactory) CreateWeatherProvider() core.WeatherProvider {
	return weather.NewOpenWeatherProvider(
		f.cfg.GetString("weather.api_key"),
		f.cfg.GetString("weather.base_url"),
		f.logger,
	)
}
