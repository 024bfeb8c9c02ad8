package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marquee/internal/config"
	"marquee/internal/curator"
	"marquee/internal/services"
	"marquee/internal/services/tmdb"
)

type stubRecommender struct {
	resp *curator.Response
	err  error
	got  curator.SessionInput
}

func (s *stubRecommender) Run(_ context.Context, input curator.SessionInput) (*curator.Response, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubMetadata struct {
	search    *tmdb.SearchResponse
	trending  *tmdb.SearchResponse
	providers *tmdb.WatchProvidersResponse
	lastQuery string
	lastYear  int
}

func (s *stubMetadata) SearchMovie(_ context.Context, query string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	s.lastQuery, s.lastYear = query, opts.Year
	return s.search, nil
}

func (s *stubMetadata) Trending(_ context.Context, _ string) (*tmdb.SearchResponse, error) {
	return s.trending, nil
}

func (s *stubMetadata) WatchProviders(_ context.Context, _ int64) (*tmdb.WatchProvidersResponse, error) {
	return s.providers, nil
}

func (s *stubMetadata) Region() string { return "US" }

type stubHistory struct {
	recent   []string
	recorded []string
}

func (s *stubHistory) RecentTitles(_ context.Context, _ string, _ int) ([]string, error) {
	return s.recent, nil
}

func (s *stubHistory) RecordLineup(_ context.Context, _, _, _ string, titles []string) error {
	s.recorded = titles
	return nil
}

func testServer(rec recommender, metadata metadataClient, store historyStore) *apiServer {
	cfg := config.Default()
	cfg.LLM.APIKey = "test-key"
	return newAPIServer("127.0.0.1:0", rec, metadata, store, &cfg, nil)
}

func doRequest(t *testing.T, srv *apiServer, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(&stubRecommender{}, &stubMetadata{}, nil)
	recorder := doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	var payload healthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" || !payload.LLMConfigured || !payload.TMDBConfigured {
		t.Fatalf("unexpected health payload %+v", payload)
	}
	if payload.HistoryEnabled {
		t.Fatal("history should be reported disabled")
	}
	if payload.Curators == 0 {
		t.Fatal("expected registered curators")
	}
}

func TestCuratorsEndpoint(t *testing.T) {
	srv := testServer(&stubRecommender{}, nil, nil)
	recorder := doRequest(t, srv, http.MethodGet, "/api/curators", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	var payload curatorsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Curators) == 0 || len(payload.MoodKeys) == 0 {
		t.Fatalf("unexpected curators payload %+v", payload)
	}
	found := false
	for _, info := range payload.Curators {
		if info.ID == "blockbuster-betty" && info.TasteBand == "popcorn" {
			found = true
		}
	}
	if !found {
		t.Fatalf("registry entry missing from %+v", payload.Curators)
	}
}

func TestRecommendSeedsHistoryAndRecords(t *testing.T) {
	primary := curator.Candidate{Title: "Heat", Year: 1995}
	rec := &stubRecommender{resp: &curator.Response{
		SessionID: "abc",
		Curator:   curator.CuratorSummary{ID: "velvet", Name: "Velvet", Emoji: "🎭"},
		Lineup: curator.Lineup{
			Primary:      &primary,
			Alternatives: []curator.Candidate{{Title: "Ronin", Year: 1998}},
		},
	}}
	store := &stubHistory{recent: []string{"Collateral"}}
	srv := testServer(rec, nil, store)

	body := `{"selected": [{"label": "cozy", "category": "mood"}], "previous_titles": ["Thief"], "session_key": "client-a"}`
	recorder := doRequest(t, srv, http.MethodPost, "/api/curators/velvet/recommend", body, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
	}
	if rec.got.CuratorID != "velvet" {
		t.Fatalf("curator id not forwarded: %+v", rec.got)
	}
	joined := strings.Join(rec.got.PreviousTitles, ",")
	if !strings.Contains(joined, "Thief") || !strings.Contains(joined, "Collateral") {
		t.Fatalf("previous titles not merged with history: %v", rec.got.PreviousTitles)
	}
	if len(store.recorded) != 2 || store.recorded[0] != "Heat" {
		t.Fatalf("lineup not recorded: %v", store.recorded)
	}

	var payload curator.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Primary == nil || payload.Primary.Title != "Heat" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestRecommendErrorMapping(t *testing.T) {
	cases := []struct {
		marker error
		want   int
	}{
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrRateLimited, http.StatusTooManyRequests},
		{services.ErrConfiguration, http.StatusInternalServerError},
		{services.ErrUpstream, http.StatusBadGateway},
	}
	for _, tc := range cases {
		rec := &stubRecommender{err: services.Wrap(tc.marker, "curator", "run", "boom", nil)}
		srv := testServer(rec, nil, nil)
		recorder := doRequest(t, srv, http.MethodPost, "/api/curators/velvet/recommend", "{}", nil)
		if recorder.Code != tc.want {
			t.Fatalf("marker %v: expected %d, got %d", tc.marker, tc.want, recorder.Code)
		}
	}
}

func TestRecommendPathAndMethod(t *testing.T) {
	srv := testServer(&stubRecommender{}, nil, nil)
	if code := doRequest(t, srv, http.MethodGet, "/api/curators/velvet/recommend", "", nil).Code; code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", code)
	}
	if code := doRequest(t, srv, http.MethodPost, "/api/curators/recommend", "{}", nil).Code; code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing id, got %d", code)
	}
	if code := doRequest(t, srv, http.MethodPost, "/api/curators/velvet/other", "{}", nil).Code; code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", code)
	}
	if code := doRequest(t, srv, http.MethodPost, "/api/curators/velvet/recommend", "not json", nil).Code; code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", code)
	}
}

func TestRecommendSessionKeyHeader(t *testing.T) {
	primary := curator.Candidate{Title: "Heat", Year: 1995}
	rec := &stubRecommender{resp: &curator.Response{
		Lineup: curator.Lineup{Primary: &primary, Alternatives: []curator.Candidate{}},
	}}
	store := &stubHistory{recent: []string{"Collateral"}}
	srv := testServer(rec, nil, store)

	recorder := doRequest(t, srv, http.MethodPost, "/api/curators/velvet/recommend", "{}",
		map[string]string{"X-Session-Key": "client-b"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	if len(rec.got.PreviousTitles) != 1 || rec.got.PreviousTitles[0] != "Collateral" {
		t.Fatalf("header session key not used: %v", rec.got.PreviousTitles)
	}
}

func TestSearchEndpoint(t *testing.T) {
	metadata := &stubMetadata{search: &tmdb.SearchResponse{Results: []tmdb.Movie{{ID: 949, Title: "Heat"}}}}
	srv := testServer(&stubRecommender{}, metadata, nil)

	recorder := doRequest(t, srv, http.MethodGet, "/api/search?query=heat&year=1995", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	if metadata.lastQuery != "heat" || metadata.lastYear != 1995 {
		t.Fatalf("query not forwarded: %q %d", metadata.lastQuery, metadata.lastYear)
	}

	if code := doRequest(t, srv, http.MethodGet, "/api/search", "", nil).Code; code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing query, got %d", code)
	}

	unconfigured := testServer(&stubRecommender{}, nil, nil)
	if code := doRequest(t, unconfigured, http.MethodGet, "/api/search?query=heat", "", nil).Code; code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without metadata provider, got %d", code)
	}
}

func TestTrendingEndpoint(t *testing.T) {
	metadata := &stubMetadata{trending: &tmdb.SearchResponse{Results: []tmdb.Movie{{ID: 1}}}}
	srv := testServer(&stubRecommender{}, metadata, nil)
	recorder := doRequest(t, srv, http.MethodGet, "/api/trending?window=day", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
}

func TestWatchProvidersEndpoint(t *testing.T) {
	metadata := &stubMetadata{providers: &tmdb.WatchProvidersResponse{ID: 949}}
	srv := testServer(&stubRecommender{}, metadata, nil)

	if code := doRequest(t, srv, http.MethodGet, "/api/movies/949/watch-providers", "", nil).Code; code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := doRequest(t, srv, http.MethodGet, "/api/movies/abc/watch-providers", "", nil).Code; code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", code)
	}
	if code := doRequest(t, srv, http.MethodGet, "/api/movies/949/other", "", nil).Code; code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", code)
	}
}
