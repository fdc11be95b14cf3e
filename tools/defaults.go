package tools

import (
	"net/http"
	"time"

	"agentrepl/config"

	"go.uber.org/zap"
)

// NewDefaultRegistry registers calculator, get_current_weather and search_web
// in that order. The tools share one HTTP client whose timeout comes from
// [tools].timeout_seconds.
func NewDefaultRegistry(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
	}

	weather := NewWeatherClient(httpClient, cfg.Tools.WeatherBaseURL, logger)
	search := NewSearchClient(httpClient, cfg.Tools.SearchURL, cfg.SearchAPIKey(), logger)

	registry := NewRegistry(logger)
	if err := registry.Register(calculatorTool(), handleCalculator); err != nil {
		return nil, err
	}
	if err := registry.Register(weatherTool(), weather.Handle); err != nil {
		return nil, err
	}
	if err := registry.Register(searchTool(), search.Handle); err != nil {
		return nil, err
	}
	return registry, nil
}
