package curator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"marquee/internal/services"
	"marquee/internal/services/tmdb"
)

// scriptedCompleter plays back canned responses in order. Calls beyond the
// script return an empty JSON array.
type scriptedCompleter struct {
	responses    []string
	errs         []error
	calls        int
	prompts      []string
	unconfigured bool
}

func (c *scriptedCompleter) Configured() bool { return !c.unconfigured }

func (c *scriptedCompleter) Complete(_ context.Context, _, user string) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, user)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "[]", nil
}

func lineupJSON(primary string, primaryYear int, alternatives ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"primary": {"title": %q, "year": %d}, "alternatives": [`, primary, primaryYear)
	for i := 0; i < len(alternatives); i += 2 {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"title": %q, "year": %s}`, alternatives[i], alternatives[i+1])
	}
	b.WriteString(`], "curator_note": "Enjoy the show."`)
	b.WriteString("}")
	return b.String()
}

func arrayJSON(pairs ...string) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"title": %q, "year": %s}`, pairs[i], pairs[i+1])
	}
	b.WriteString("]")
	return b.String()
}

func indieMovie(id int64, title, date string, genreIDs ...int) tmdb.Movie {
	return tmdb.Movie{ID: id, Title: title, ReleaseDate: date, GenreIDs: genreIDs, VoteAverage: 7.2, Popularity: 40}
}

func newTestOrchestrator(completer Completer, searcher tmdb.Searcher) *Orchestrator {
	return NewOrchestrator(completer, NewEnricher(searcher, nil), Settings{LineupSize: 5}, nil)
}

func TestRunPreflightErrors(t *testing.T) {
	o := newTestOrchestrator(&scriptedCompleter{unconfigured: true}, nil)
	if _, err := o.Run(context.Background(), SessionInput{CuratorID: "velvet"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	o = newTestOrchestrator(&scriptedCompleter{}, nil)
	if _, err := o.Run(context.Background(), SessionInput{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing curator id, got %v", err)
	}
	if _, err := o.Run(context.Background(), SessionInput{CuratorID: "nobody"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRunHappyPathWithShortfallRepair(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Frances Ha", 2012,
			"Paterson", "2016",
			"Columbus", "2017",
			"Too Old", "1950",
			"Paterson", "2016",
		),
		arrayJSON("First Cow", "2019", "The Farewell", "2019"),
	}}
	searcher := newStubSearcher(
		indieMovie(1, "Frances Ha", "2012-05-25", 35, 18),
		indieMovie(2, "Paterson", "2016-12-28", 18),
		indieMovie(3, "Columbus", "2017-08-04", 18),
		indieMovie(4, "First Cow", "2019-08-28", 18),
		indieMovie(5, "The Farewell", "2019-07-12", 35, 18),
	)
	o := newTestOrchestrator(completer, searcher)

	resp, err := o.Run(context.Background(), SessionInput{CuratorID: "basement-tapes"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if resp.Primary == nil || resp.Primary.Title != "Frances Ha" {
		t.Fatalf("unexpected primary %+v", resp.Primary)
	}
	if resp.Size() != 5 {
		t.Fatalf("expected full lineup of 5, got %d", resp.Size())
	}
	if completer.calls != 2 {
		t.Fatalf("expected initial call plus one shortfall repair, got %d calls", completer.calls)
	}
	if !strings.Contains(completer.prompts[1], "exactly 2 replacement") {
		t.Fatalf("repair prompt should request the exact deficit:\n%s", completer.prompts[1])
	}
	if resp.CuratorNote != "Enjoy the show." {
		t.Fatalf("curator note lost: %q", resp.CuratorNote)
	}
	if resp.Curator.ID != "basement-tapes" || resp.Curator.Emoji == "" {
		t.Fatalf("curator summary incomplete: %+v", resp.Curator)
	}

	seen := map[string]bool{}
	for _, c := range append([]Candidate{*resp.Primary}, resp.Alternatives...) {
		if c.Year < 1975 {
			t.Fatalf("year invariant violated by %q (%d)", c.Title, c.Year)
		}
		if !c.Enriched || c.ProviderID == 0 {
			t.Fatalf("candidate %q not enriched", c.Title)
		}
		key := c.NormalizedTitle()
		if seen[key] {
			t.Fatalf("duplicate title %q in lineup", c.Title)
		}
		seen[key] = true
	}
	if seen["too old"] {
		t.Fatal("out-of-window candidate survived")
	}
}

func TestRunRespectsBanList(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Frances Ha", 2012, "Paterson", "2016", "Columbus", "2017"),
	}}
	searcher := newStubSearcher(
		indieMovie(1, "Frances Ha", "2012-05-25", 35),
		indieMovie(2, "Paterson", "2016-12-28", 18),
		indieMovie(3, "Columbus", "2017-08-04", 18),
	)
	o := newTestOrchestrator(completer, searcher)

	resp, err := o.Run(context.Background(), SessionInput{
		CuratorID:      "basement-tapes",
		PreviousTitles: []string{"  FRANCES HA  "},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, title := range resp.Titles() {
		if strings.EqualFold(strings.TrimSpace(title), "frances ha") {
			t.Fatal("previously seen title reappeared in lineup")
		}
	}
	if !strings.Contains(completer.prompts[0], "frances ha") {
		t.Fatalf("prompt should carry the ban list:\n%s", completer.prompts[0])
	}
}

func TestRunQuotaSurfacedDistinctlyWithoutProviderCalls(t *testing.T) {
	rateLimited := services.Wrap(services.ErrRateLimited, "llm", "complete", "rate limited by upstream", nil)
	completer := &scriptedCompleter{errs: []error{rateLimited}}
	searcher := newStubSearcher(indieMovie(1, "Frances Ha", "2012-05-25", 35))
	o := newTestOrchestrator(completer, searcher)

	_, err := o.Run(context.Background(), SessionInput{CuratorID: "basement-tapes"})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate-limit condition, got %v", err)
	}
	if errors.Is(err, services.ErrUpstream) {
		t.Fatalf("quota must not be conflated with generic upstream failure: %v", err)
	}
	if searcher.calls.Load() != 0 {
		t.Fatalf("no provider calls expected after initial-call failure, got %d", searcher.calls.Load())
	}
}

func TestRunUnresolvableCandidatesYieldEmptyLineup(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Invented One", 2012, "Invented Two", "2016", "Invented Three", "2017"),
	}}
	o := newTestOrchestrator(completer, newStubSearcher())

	resp, err := o.Run(context.Background(), SessionInput{CuratorID: "basement-tapes"})
	if err != nil {
		t.Fatalf("unresolvable candidates must not error: %v", err)
	}
	if resp.Primary != nil || len(resp.Alternatives) != 0 {
		t.Fatalf("expected empty lineup, got %+v", resp.Lineup)
	}
}

func TestRunStrictJSONRetry(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"I would love to help but here is prose instead.",
		lineupJSON("Frances Ha", 2012, "Paterson", "2016", "Columbus", "2017", "First Cow", "2019", "The Farewell", "2019"),
	}}
	searcher := newStubSearcher(
		indieMovie(1, "Frances Ha", "2012-05-25", 35),
		indieMovie(2, "Paterson", "2016-12-28", 18),
		indieMovie(3, "Columbus", "2017-08-04", 18),
		indieMovie(4, "First Cow", "2019-08-28", 18),
		indieMovie(5, "The Farewell", "2019-07-12", 35),
	)
	o := newTestOrchestrator(completer, searcher)

	resp, err := o.Run(context.Background(), SessionInput{CuratorID: "basement-tapes"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if resp.Size() != 5 {
		t.Fatalf("expected full lineup after retry, got %d", resp.Size())
	}
	if !strings.Contains(completer.prompts[1], "ONLY the JSON object") {
		t.Fatalf("retry prompt missing strict directive:\n%s", completer.prompts[1])
	}
}

func TestRunTerminatesWhenCompleterAlwaysUnderDelivers(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		arrayJSON("Frances Ha", "2012"),
		arrayJSON("Paterson", "2016"),
		arrayJSON("Columbus", "2017"),
		arrayJSON("First Cow", "2019"),
		arrayJSON("The Farewell", "2019"),
	}}
	// Pass-through enrichment keeps the focus on the repair bound.
	o := newTestOrchestrator(completer, nil)

	resp, err := o.Run(context.Background(), SessionInput{CuratorID: "basement-tapes"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if completer.calls != 3 {
		t.Fatalf("expected initial call plus two bounded shortfall rounds, got %d", completer.calls)
	}
	if resp.Size() != 3 {
		t.Fatalf("expected lineup of everything produced, got %d", resp.Size())
	}
}

func TestRunMoodConvergenceExcludesThrillers(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Game Night", 2018,
			"The Nice Guys", "2016",
			"Se7en", "1995",
			"Prisoners", "2013",
			"Gone Girl", "2014",
		),
		arrayJSON("Palm Springs", "2020", "Free Guy", "2021", "The Lost City", "2022"),
	}}
	searcher := newStubSearcher(
		tmdb.Movie{ID: 1, Title: "Game Night", ReleaseDate: "2018-02-22", GenreIDs: []int{35}, VoteAverage: 7.0, Popularity: 45},
		tmdb.Movie{ID: 2, Title: "The Nice Guys", ReleaseDate: "2016-05-20", GenreIDs: []int{35}, VoteAverage: 7.1, Popularity: 44},
		tmdb.Movie{ID: 3, Title: "Se7en", ReleaseDate: "1995-09-22", GenreIDs: []int{53}, VoteAverage: 8.4, Popularity: 90},
		tmdb.Movie{ID: 4, Title: "Prisoners", ReleaseDate: "2013-09-19", GenreIDs: []int{53}, VoteAverage: 8.1, Popularity: 70},
		tmdb.Movie{ID: 5, Title: "Gone Girl", ReleaseDate: "2014-10-01", GenreIDs: []int{53}, VoteAverage: 8.0, Popularity: 80},
		tmdb.Movie{ID: 6, Title: "Palm Springs", ReleaseDate: "2020-07-10", GenreIDs: []int{35}, VoteAverage: 7.4, Popularity: 50},
		tmdb.Movie{ID: 7, Title: "Free Guy", ReleaseDate: "2021-08-13", GenreIDs: []int{35, 28}, VoteAverage: 7.5, Popularity: 60},
		tmdb.Movie{ID: 8, Title: "The Lost City", ReleaseDate: "2022-03-25", GenreIDs: []int{35, 12}, VoteAverage: 6.8, Popularity: 55},
	)
	o := newTestOrchestrator(completer, searcher)

	resp, err := o.Run(context.Background(), SessionInput{
		CuratorID: "blockbuster-betty",
		Selected:  []ContextSelection{{Label: "cozy night in", Category: "mood"}},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if resp.Size() == 0 {
		t.Fatal("expected a non-empty lineup")
	}
	for _, c := range append([]Candidate{*resp.Primary}, resp.Alternatives...) {
		for _, id := range c.GenreIDs {
			if id == 53 {
				t.Fatalf("thriller %q survived the pipeline", c.Title)
			}
		}
	}
}

func TestRunMoodPassReplacesFailures(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Frances Ha", 2012,
			"The Farewell", "2019",
			"Chef", "2014",
			"Se7en", "1995",
			"Prisoners", "2013",
		),
		arrayJSON("Paddington 2", "2017", "Little Miss Sunshine", "2006"),
	}}
	searcher := newStubSearcher(
		indieMovie(1, "Frances Ha", "2012-05-25", 35),
		indieMovie(2, "The Farewell", "2019-07-12", 35),
		indieMovie(3, "Chef", "2014-05-09", 35),
		indieMovie(4, "Se7en", "1995-09-22", 53),
		indieMovie(5, "Prisoners", "2013-09-19", 53),
		indieMovie(6, "Paddington 2", "2017-11-10", 35, 10751),
		indieMovie(7, "Little Miss Sunshine", "2006-07-26", 35, 18),
	)
	o := newTestOrchestrator(completer, searcher)

	resp, err := o.Run(context.Background(), SessionInput{
		CuratorID: "basement-tapes",
		Selected:  []ContextSelection{{Label: "something cozy", Category: "mood"}},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if completer.calls != 2 {
		t.Fatalf("expected initial call plus one mood repair, got %d", completer.calls)
	}
	if !strings.Contains(completer.prompts[1], "Absolutely no Horror, Thriller, War") {
		t.Fatalf("mood repair prompt missing exclusions:\n%s", completer.prompts[1])
	}
	if resp.Size() != 5 {
		t.Fatalf("expected full lineup after mood repair, got %d", resp.Size())
	}
	for _, c := range append([]Candidate{*resp.Primary}, resp.Alternatives...) {
		for _, id := range c.GenreIDs {
			if id == 53 {
				t.Fatalf("mood-excluded candidate %q survived", c.Title)
			}
		}
	}
}

func TestRunPopularityRepairForPopcornBand(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Obscure A", 2010,
			"Obscure B", "2011",
			"Obscure C", "2012",
			"Obscure D", "2013",
			"Obscure E", "2014",
		),
		arrayJSON("Top Gun: Maverick", "2022", "Jurassic Park", "1993", "The Rock", "1996", "Speed", "1994"),
	}}
	obscure := func(id int64, title, date string) tmdb.Movie {
		return tmdb.Movie{ID: id, Title: title, ReleaseDate: date, GenreIDs: []int{28}, VoteAverage: 5.0, Popularity: 3}
	}
	hit := func(id int64, title, date string) tmdb.Movie {
		return tmdb.Movie{ID: id, Title: title, ReleaseDate: date, GenreIDs: []int{28, 12}, VoteAverage: 7.8, Popularity: 120}
	}
	searcher := newStubSearcher(
		obscure(1, "Obscure A", "2010-01-01"),
		obscure(2, "Obscure B", "2011-01-01"),
		obscure(3, "Obscure C", "2012-01-01"),
		obscure(4, "Obscure D", "2013-01-01"),
		obscure(5, "Obscure E", "2014-01-01"),
		hit(6, "Top Gun: Maverick", "2022-05-27"),
		hit(7, "Jurassic Park", "1993-06-11"),
		hit(8, "The Rock", "1996-06-07"),
		hit(9, "Speed", "1994-06-10"),
	)
	o := newTestOrchestrator(completer, searcher)

	resp, err := o.Run(context.Background(), SessionInput{CuratorID: "blockbuster-betty"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if completer.calls != 2 {
		t.Fatalf("expected initial call plus one popularity repair, got %d", completer.calls)
	}
	if !strings.Contains(completer.prompts[1], "too obscure") {
		t.Fatalf("popularity repair prompt missing directive:\n%s", completer.prompts[1])
	}
	passing := 0
	for _, c := range append([]Candidate{*resp.Primary}, resp.Alternatives...) {
		if MainstreamEnough(c, Thresholds{}) {
			passing++
		}
	}
	if passing < 4 {
		t.Fatalf("lineup still lacks mainstream momentum: %d passing", passing)
	}
}

func TestRunCapsAlternatives(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		lineupJSON("Frances Ha", 2012,
			"Paterson", "2016",
			"Columbus", "2017",
			"First Cow", "2019",
			"The Farewell", "2019",
			"Chef", "2014",
			"Paddington 2", "2017",
		),
	}}
	o := NewOrchestrator(completer, NewEnricher(nil, nil), Settings{LineupSize: 5, AlternativesMax: 3}, nil)

	resp, err := o.Run(context.Background(), SessionInput{CuratorID: "basement-tapes"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(resp.Alternatives) > 3 {
		t.Fatalf("alternatives not capped: %d", len(resp.Alternatives))
	}
	if resp.Size() > 4 {
		t.Fatalf("bounded-size invariant violated: %d", resp.Size())
	}
}
