package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentrepl/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newWeatherServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "Beijing", "北京":
			fmt.Fprint(w, `{"msg":"success","code":0,"data":["54511|北京|Beijing|中国","54433|北京朝阳|Chaoyang|中国"]}`)
		case "Nowhere":
			fmt.Fprint(w, `{"msg":"success","code":0,"data":["58367|上海|Shanghai|中国"]}`)
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			fmt.Fprint(w, `{"msg":"not found","code":1,"data":[]}`)
		}
	})
	mux.HandleFunc("/api/now/54511", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"msg":"success","code":0,"data":{"now":{"temperature":21.5,"humidity":40}}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testToolsConfig(weatherURL, searchURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tools.WeatherBaseURL = weatherURL
	cfg.Tools.SearchURL = searchURL
	cfg.Credentials = config.NewCredentialStore()
	return cfg
}

func TestWeatherLookup(t *testing.T) {
	server := newWeatherServer(t)
	r, err := NewDefaultRegistry(testToolsConfig(server.URL, ""), nil)
	require.NoError(t, err)
	ctx := context.Background()

	english := r.Invoke(ctx, "get_current_weather", `{"location":"Beijing"}`)
	assert.Equal(t, 21.5, gjson.Get(english, "data.now.temperature").Float())

	chinese := r.Invoke(ctx, "get_current_weather", `{"location":"北京"}`)
	assert.Equal(t, english, chinese)

	assert.Equal(t, "no weather information found for Nowhere",
		r.Invoke(ctx, "get_current_weather", `{"location":"Nowhere"}`))
	assert.Equal(t, "no weather information found for Atlantis",
		r.Invoke(ctx, "get_current_weather", `{"location":"Atlantis"}`))

	failed := r.Invoke(ctx, "get_current_weather", `{"location":"broken"}`)
	assert.Equal(t, "error: weather service returned status 502", failed)
}

func TestWeatherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewWeatherClient(&http.Client{Timeout: 50 * time.Millisecond}, server.URL, nil)
	registry := NewRegistry(nil)
	require.NoError(t, registry.Register(weatherTool(), client.Handle))

	got := registry.Invoke(context.Background(), "get_current_weather", `{"location":"Beijing"}`)
	assert.True(t, strings.HasPrefix(got, "error: weather request failed"), got)
}

func TestSearch(t *testing.T) {
	var received searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		if received.APIKey != "tvly-test" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":{"error":"Unauthorized: missing or invalid API key."}}`)
			return
		}
		fmt.Fprint(w, `{"query":"golang","answer":"Go is a language.","results":[
			{"title":"The Go Programming Language","url":"https://go.dev","content":"Build simple, secure, scalable systems with Go.","score":0.98,"raw_content":null}
		],"response_time":1.2}`)
	}))
	defer server.Close()

	ctx := context.Background()
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	r, err := NewDefaultRegistry(testToolsConfig("", server.URL), nil)
	require.NoError(t, err)

	got := r.Invoke(ctx, "search_web", `{"keyword":"golang"}`)
	assert.Equal(t, "golang", received.Query)
	assert.Equal(t, "Go is a language.", gjson.Get(got, "answer").String())
	assert.Equal(t, "https://go.dev", gjson.Get(got, "results.0.url").String())
	assert.False(t, gjson.Get(got, "results.0.score").Exists())
	assert.False(t, gjson.Get(got, "response_time").Exists())

	t.Setenv("TAVILY_API_KEY", "wrong")
	r, err = NewDefaultRegistry(testToolsConfig("", server.URL), nil)
	require.NoError(t, err)
	assert.Equal(t, "error: search service returned status 401: Unauthorized: missing or invalid API key.",
		r.Invoke(ctx, "search_web", `{"keyword":"golang"}`))
}

func TestSearchWithoutKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	r, err := NewDefaultRegistry(testToolsConfig("", "http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	got := r.Invoke(context.Background(), "search_web", `{"keyword":"golang"}`)
	assert.Contains(t, got, "TAVILY_API_KEY")
	assert.True(t, strings.HasPrefix(got, "error: "))
}

func TestCondenseSearchPassesThroughUnknownBodies(t *testing.T) {
	assert.Equal(t, "plain text", condenseSearch([]byte("plain text")))
	assert.Equal(t, `{"status":"ok"}`, condenseSearch([]byte(`{"status":"ok"}`)))
}
