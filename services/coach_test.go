package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kalougata/klgt-portal/models"
)

type stubGenerator struct {
	tips *Tips
	err  error
	got  TipsRequest
}

func (s *stubGenerator) GenerateTips(_ context.Context, req TipsRequest) (*Tips, error) {
	s.got = req
	return s.tips, s.err
}

var coachMember = &models.Member{ID: "KLGT-ANDI", Name: "ANDI", Position: models.PositionForward, Points: 12}

func TestCoach_PassesThroughValidTips(t *testing.T) {
	gen := &stubGenerator{tips: &Tips{Tips: []string{"a", " b ", "c", "d"}, Motivation: "Ayo!"}}
	got := NewCoach(gen, nil).TipsFor(context.Background(), coachMember)

	assert.Equal(t, []string{"a", "b", "c"}, got.Tips)
	assert.Equal(t, "Ayo!", got.Motivation)
	assert.False(t, got.Fallback)
	assert.Equal(t, TipsRequest{Name: "ANDI", Position: "Forward", Points: 12}, gen.got)
}

func TestCoach_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  TipsGenerator
	}{
		{"no generator", nil},
		{"error", &stubGenerator{err: errors.New("boom")}},
		{"nil payload", &stubGenerator{}},
		{"too few tips", &stubGenerator{tips: &Tips{Tips: []string{"a", "", "c"}, Motivation: "m"}}},
		{"no motivation", &stubGenerator{tips: &Tips{Tips: []string{"a", "b", "c"}, Motivation: " "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCoach(tt.gen, nil).TipsFor(context.Background(), coachMember)
			assert.Equal(t, FallbackTips(), got)
		})
	}
}

type geminiCall struct {
	path   string
	query  url.Values
	apiKey string
	body   map[string]any
}

func geminiServer(t *testing.T, status int, body string) (*httptest.Server, *geminiCall) {
	t.Helper()
	var seen geminiCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path = r.URL.Path
		seen.query = r.URL.Query()
		seen.apiKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &seen.body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestGemini(t *testing.T, key, baseURL string, hc *http.Client) *GeminiClient {
	t.Helper()
	g, err := NewGeminiClient(context.Background(), GeminiOptions{APIKey: key, Model: "gemini-test", BaseURL: baseURL, HTTPClient: hc})
	require.NoError(t, err)
	return g
}

func TestGeminiClient_GenerateTips(t *testing.T) {
	payload := `{"tips":["Latihan sprint","Jaga stamina","Komunikasi"],"motivation":"Gas terus!"}`
	resp, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": payload}}},
		}},
	})
	require.NoError(t, err)
	srv, seen := geminiServer(t, http.StatusOK, string(resp))

	g := newTestGemini(t, "test-key", srv.URL, nil)
	tips, err := g.GenerateTips(context.Background(), TipsRequest{Name: "ANDI", Position: "Forward", Points: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Latihan sprint", "Jaga stamina", "Komunikasi"}, tips.Tips)
	assert.Equal(t, "Gas terus!", tips.Motivation)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", seen.path)
	assert.Equal(t, "test-key", seen.apiKey)
	assert.Empty(t, seen.query.Get("key"), "api key must not travel in the url")

	genCfg, ok := seen.body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.NotNil(t, genCfg["responseSchema"])
}

func TestGeminiClient_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		srv, _ := geminiServer(t, http.StatusBadRequest, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`)
		_, err := newTestGemini(t, "k", srv.URL, nil).GenerateTips(context.Background(), TipsRequest{})
		assert.ErrorIs(t, err, ErrExternalService)
	})
	t.Run("empty candidates", func(t *testing.T) {
		srv, _ := geminiServer(t, http.StatusOK, `{"candidates":[]}`)
		_, err := newTestGemini(t, "k", srv.URL, nil).GenerateTips(context.Background(), TipsRequest{})
		assert.ErrorIs(t, err, ErrExternalService)
	})
	t.Run("no api key", func(t *testing.T) {
		_, err := NewGeminiClient(context.Background(), GeminiOptions{})
		assert.ErrorIs(t, err, ErrExternalService)
	})
}

func TestCoach_FallsBackOnServerError(t *testing.T) {
	srv, _ := geminiServer(t, http.StatusBadRequest, `{"error":{"code":400,"message":"bad"}}`)
	got := NewCoach(newTestGemini(t, "k", srv.URL, nil), nil).TipsFor(context.Background(), coachMember)
	assert.True(t, got.Fallback)
	assert.Len(t, got.Tips, TipCount)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestCoach_NetworkFailureDoesNotLogAPIKey(t *testing.T) {
	const key = "SECRET-API-KEY-123"
	core, logs := observer.New(zap.DebugLevel)
	g := newTestGemini(t, key, "http://127.0.0.1:1", &http.Client{Transport: failingTransport{}})

	got := NewCoach(g, zap.New(core)).TipsFor(context.Background(), coachMember)
	assert.True(t, got.Fallback)

	require.Equal(t, 1, logs.Len())
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, key)
		assert.NotContains(t, fmt.Sprint(e.ContextMap()), key)
	}
}

func TestTipsPrompt(t *testing.T) {
	p := tipsPrompt(TipsRequest{Name: "ANDI", Position: "Goalkeeper", Points: 7})
	assert.True(t, strings.Contains(p, "posisi Goalkeeper"))
	assert.True(t, strings.Contains(p, "memiliki 7 poin"))
}

func TestParseTips(t *testing.T) {
	_, err := parseTips(" ")
	assert.Error(t, err)
	_, err = parseTips("not json")
	assert.Error(t, err)

	tips, err := parseTips(`{"tips":["a"],"motivation":"m"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tips.Tips)
}

func TestDefaultsForGeminiClient(t *testing.T) {
	g, err := NewGeminiClient(context.Background(), GeminiOptions{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-3-flash-preview", g.Model)
}
