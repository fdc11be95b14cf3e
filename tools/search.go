package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func searchTool() mcptypes.Tool {
	return mcptypes.NewTool("search_web",
		mcptypes.WithDescription("retrieve the up to date information"),
		mcptypes.WithString("keyword",
			mcptypes.Required(),
			mcptypes.Description("the keyword to search"),
		),
	)
}

// SearchClient queries the Tavily search API.
type SearchClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *zap.Logger
}

func NewSearchClient(httpClient *http.Client, endpoint, apiKey string, logger *zap.Logger) *SearchClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type searchRequest struct {
	APIKey string `json:"api_key"`
	Query  string `json:"query"`
}

func (s *SearchClient) Handle(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	keyword, err := request.RequireString("keyword")
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}
	if s.apiKey == "" {
		return mcptypes.NewToolResultError("search is not configured: TAVILY_API_KEY is not set"), nil
	}

	payload, err := json.Marshal(searchRequest{APIKey: s.apiKey, Query: keyword})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(body, "detail.error").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("search service returned status %d: %s", resp.StatusCode, detail)
	}

	s.logger.Debug("search completed",
		zap.String("keyword", keyword),
		zap.Int64("results", gjson.GetBytes(body, "results.#").Int()),
	)
	return mcptypes.NewToolResultText(condenseSearch(body)), nil
}

type searchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchDigest struct {
	Answer  string      `json:"answer,omitempty"`
	Results []searchHit `json:"results"`
}

// condenseSearch keeps the answer and the title, url and content of each
// result, dropping scores and raw page content. Bodies without a results
// array are passed through unchanged.
func condenseSearch(body []byte) string {
	if !gjson.ValidBytes(body) {
		return string(body)
	}
	reply := gjson.ParseBytes(body)
	results := reply.Get("results")
	if !results.IsArray() {
		return string(body)
	}

	digest := searchDigest{
		Answer:  reply.Get("answer").String(),
		Results: []searchHit{},
	}
	results.ForEach(func(_, hit gjson.Result) bool {
		digest.Results = append(digest.Results, searchHit{
			Title:   hit.Get("title").String(),
			URL:     hit.Get("url").String(),
			Content: hit.Get("content").String(),
		})
		return true
	})

	condensed, err := json.Marshal(digest)
	if err != nil {
		return string(body)
	}
	return string(condensed)
}
