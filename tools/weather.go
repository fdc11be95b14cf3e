package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a tool HTTP reply is read and handed to
// the model.
const maxResponseBytes = 64 << 10

func weatherTool() mcptypes.Tool {
	return mcptypes.NewTool("get_current_weather",
		mcptypes.WithDescription("Get the current weather in a given location"),
		mcptypes.WithString("location",
			mcptypes.Required(),
			mcptypes.Description("The city and state, e.g. San Francisco, CA"),
		),
	)
}

// WeatherClient looks up current conditions from the China Meteorological
// Administration web API.
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewWeatherClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *WeatherClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func (w *WeatherClient) Handle(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	location, err := request.RequireString("location")
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}
	location = strings.TrimSpace(location)

	code, err := w.lookupStation(ctx, location)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return mcptypes.NewToolResultText(fmt.Sprintf("no weather information found for %s", location)), nil
	}

	body, err := w.get(ctx, "/api/now/"+url.PathEscape(code))
	if err != nil {
		return nil, err
	}
	return mcptypes.NewToolResultText(body), nil
}

// lookupStation resolves a location name to a station code. Autocomplete
// entries look like "54511|北京|Beijing|中国"; the name must match the
// second or third field. Returns "" when nothing matches.
func (w *WeatherClient) lookupStation(ctx context.Context, location string) (string, error) {
	body, err := w.get(ctx, "/api/autocomplete?q="+url.QueryEscape(location))
	if err != nil {
		return "", err
	}
	if !gjson.Valid(body) {
		return "", fmt.Errorf("weather autocomplete returned invalid JSON")
	}

	reply := gjson.Parse(body)
	if reply.Get("code").Int() != 0 {
		w.logger.Debug("weather autocomplete rejected location",
			zap.String("location", location),
			zap.String("msg", reply.Get("msg").String()),
		)
		return "", nil
	}

	var code string
	reply.Get("data").ForEach(func(_, item gjson.Result) bool {
		fields := strings.Split(item.String(), "|")
		if len(fields) < 3 {
			return true
		}
		if fields[1] == location || strings.EqualFold(fields[2], location) {
			code = fields[0]
			return false
		}
		return true
	})
	return code, nil
}

func (w *WeatherClient) get(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}
	return string(body), nil
}
