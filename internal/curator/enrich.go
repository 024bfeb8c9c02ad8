package curator

import (
	"context"
	"log/slog"
	"sync"

	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/services/tmdb"
)

// Enricher confirms candidates against the metadata provider and overlays
// provider fields onto them. A nil searcher puts the enricher in
// pass-through mode: candidates are returned unchanged.
type Enricher struct {
	searcher tmdb.Searcher
	logger   *slog.Logger
}

// NewEnricher builds an enricher. searcher may be nil when no provider
// credential is configured.
func NewEnricher(searcher tmdb.Searcher, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{searcher: searcher, logger: logger}
}

// Configured reports whether a metadata provider is wired in.
func (e *Enricher) Configured() bool {
	return e.searcher != nil
}

// Enrich looks the candidate up by title, using its stated year as a
// disambiguating hint. A candidate the provider cannot confirm is
// unresolvable and is dropped (ok=false): a proposed title the provider has
// never heard of is treated as hallucinated. Already-enriched candidates are
// returned as-is.
func (e *Enricher) Enrich(ctx context.Context, candidate Candidate) (Candidate, bool) {
	if e.searcher == nil || candidate.Enriched {
		return candidate, true
	}

	logger := e.logger
	if sessionID, ok := services.SessionIDFromContext(ctx); ok {
		logger = logger.With(logging.String(logging.FieldSessionID, sessionID))
	}

	resp, err := e.searcher.SearchMovie(ctx, candidate.Title, tmdb.SearchOptions{Year: candidate.Year})
	if err != nil {
		logging.WarnWithContext(logger, "candidate lookup failed, dropping", "enrichment_error",
			logging.String("title", candidate.Title),
			logging.String(logging.FieldImpact, "candidate dropped from lineup"),
			logging.Error(err),
		)
		return Candidate{}, false
	}
	if len(resp.Results) == 0 {
		logger.Debug("candidate unresolvable, dropping", logging.String("title", candidate.Title))
		return Candidate{}, false
	}

	match := pickMatch(resp.Results, candidate.Year)
	return overlay(candidate, match), true
}

// EnrichAll enriches every candidate concurrently and returns the survivors
// in their original order. Lookups are independent, so the fan-out joins on
// all of them before filtering.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []Candidate) []Candidate {
	if e.searcher == nil || len(candidates) == 0 {
		return candidates
	}

	type slot struct {
		candidate Candidate
		ok        bool
	}
	slots := make([]slot, len(candidates))

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate Candidate) {
			defer wg.Done()
			enriched, ok := e.Enrich(ctx, candidate)
			slots[i] = slot{candidate: enriched, ok: ok}
		}(i, candidate)
	}
	wg.Wait()

	survivors := make([]Candidate, 0, len(candidates))
	for _, s := range slots {
		if s.ok {
			survivors = append(survivors, s.candidate)
		}
	}
	return survivors
}

// pickMatch prefers a result whose release year exactly matches the
// candidate's stated year, falling back to the first (highest-relevance)
// result.
func pickMatch(results []tmdb.Movie, year int) tmdb.Movie {
	if year > 0 {
		for _, result := range results {
			if result.Year() == year {
				return result
			}
		}
	}
	return results[0]
}

// overlay applies provider-confirmed fields onto the candidate. Provider
// values win where present; the candidate's own values survive only where
// the provider field is absent. Fields are only ever added, never removed.
func overlay(candidate Candidate, match tmdb.Movie) Candidate {
	candidate.ProviderID = match.ID
	if year := match.Year(); year > 0 {
		candidate.Year = year
	}
	if match.PosterPath != "" {
		candidate.PosterPath = match.PosterPath
	}
	if match.Overview != "" {
		candidate.Overview = match.Overview
	}
	if match.VoteAverage > 0 {
		candidate.Rating = match.VoteAverage
	}
	if len(match.GenreIDs) > 0 {
		candidate.GenreIDs = match.GenreIDs
	}
	if match.Popularity > 0 {
		candidate.Popularity = match.Popularity
	}
	candidate.Enriched = true
	return candidate
}
