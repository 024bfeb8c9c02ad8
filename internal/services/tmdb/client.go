package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Movie represents a single TMDB movie payload, shared by search results,
// detail lookups, and trending entries.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// Year returns the release year, or 0 when the release date is absent or
// unparseable.
func (m Movie) Year() int {
	date := strings.TrimSpace(m.ReleaseDate)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// SearchResponse models the TMDB paginated movie listing response.
type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// SearchOptions contains optional parameters for movie search.
type SearchOptions struct {
	// Year restricts the search to a primary release year when positive.
	Year int
}

// Provider identifies one watch-provider entry (a streaming service,
// rental storefront, or purchase storefront).
type Provider struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

// RegionProviders groups the watch options available in one region.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// WatchProvidersResponse models the TMDB watch-provider payload keyed by
// region code.
type WatchProvidersResponse struct {
	ID      int64                      `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// Searcher defines the TMDB operations used by candidate enrichment.
type Searcher interface {
	SearchMovie(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language, region string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		region:     strings.TrimSpace(region),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovie performs a TMDB movie search. The candidate's stated release
// year, when known, is passed as a disambiguating hint.
func (c *Client) SearchMovie(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.baseParams()
	params.Set("query", query)
	if opts.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(opts.Year))
	}

	var payload SearchResponse
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieDetails fetches movie details by TMDB ID.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*Movie, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}

	// The details endpoint returns expanded genre objects instead of the
	// flat id list, so decode into a shadow struct and flatten.
	var payload struct {
		Movie
		Genres []struct {
			ID int `json:"id"`
		} `json:"genres"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), c.baseParams(), &payload); err != nil {
		return nil, err
	}
	movie := payload.Movie
	if len(movie.GenreIDs) == 0 && len(payload.Genres) > 0 {
		movie.GenreIDs = make([]int, 0, len(payload.Genres))
		for _, genre := range payload.Genres {
			movie.GenreIDs = append(movie.GenreIDs, genre.ID)
		}
	}
	return &movie, nil
}

// Trending fetches the trending movie list. Window is "day" or "week".
func (c *Client) Trending(ctx context.Context, window string) (*SearchResponse, error) {
	window = strings.ToLower(strings.TrimSpace(window))
	switch window {
	case "":
		window = "week"
	case "day", "week":
	default:
		return nil, fmt.Errorf("unsupported trending window %q", window)
	}

	var payload SearchResponse
	if err := c.get(ctx, "/trending/movie/"+window, c.baseParams(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// WatchProviders fetches the watch options for a movie across regions.
func (c *Client) WatchProviders(ctx context.Context, movieID int64) (*WatchProvidersResponse, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload WatchProvidersResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", movieID), url.Values{"api_key": {c.apiKey}}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Region returns the configured default region code.
func (c *Client) Region() string {
	if c == nil || c.region == "" {
		return "US"
	}
	return c.region
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.region != "" {
		params.Set("region", c.region)
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
