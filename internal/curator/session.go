package curator

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"marquee/internal/logging"
	"marquee/internal/mood"
	"marquee/internal/persona"
	"marquee/internal/services"
)

// Completer is the completion-service dependency of the orchestrator. The
// llm package's client satisfies it; tests substitute stubs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
}

// Settings are the orchestrator's tunables. Zero values fall back to the
// shipped defaults.
type Settings struct {
	LineupSize        int
	AlternativesMin   int
	AlternativesMax   int
	BanListPromptCap  int
	PreviousTitlesCap int
	Thresholds        Thresholds
}

func (s Settings) normalized() Settings {
	if s.LineupSize <= 0 {
		s.LineupSize = 7
	}
	if s.AlternativesMin <= 0 {
		s.AlternativesMin = 3
	}
	if s.AlternativesMax <= 0 {
		s.AlternativesMax = 6
	}
	if s.AlternativesMax >= s.LineupSize {
		s.AlternativesMax = s.LineupSize - 1
	}
	if s.BanListPromptCap <= 0 {
		s.BanListPromptCap = 30
	}
	if s.PreviousTitlesCap <= 0 {
		s.PreviousTitlesCap = 50
	}
	s.Thresholds = s.Thresholds.normalized()
	return s
}

// Orchestrator drives one recommendation session through its stages. It is
// safe for concurrent use: every Run owns its session state exclusively.
type Orchestrator struct {
	completer Completer
	enricher  *Enricher
	settings  Settings
	logger    *slog.Logger
}

// NewOrchestrator wires the pipeline's collaborators together.
func NewOrchestrator(completer Completer, enricher *Enricher, settings Settings, logger *slog.Logger) *Orchestrator {
	if enricher == nil {
		enricher = NewEnricher(nil, logger)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		completer: completer,
		enricher:  enricher,
		settings:  settings.normalized(),
		logger:    logger,
	}
}

// SessionInput is the caller's request for one curator session.
type SessionInput struct {
	CuratorID      string             `json:"curator_id"`
	Selected       []ContextSelection `json:"selected"`
	PreviousTitles []string           `json:"previous_titles"`
	RefinePreset   string             `json:"refine_preset"`
	// MinYear optionally tightens the persona's window for this session.
	MinYear int `json:"min_year"`
}

// CuratorSummary identifies the persona a response came from.
type CuratorSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Response is the sole externally observable result of a session. An empty
// lineup (nil primary, no alternatives) is a valid response, not an error.
type Response struct {
	SessionID string         `json:"session_id"`
	Curator   CuratorSummary `json:"curator"`
	Lineup
}

// session is the per-run state. It is never shared across runs.
type session struct {
	o           *Orchestrator
	persona     persona.Persona
	rules       []mood.Rule
	selections  []ContextSelection
	refine      RefinePreset
	minOverride int
	minYear     int
	maxYear     int
	ban         *BanList
	seen        map[string]bool
	logger      *slog.Logger
}

// Run executes the full convergence pipeline for one session.
//
// Stages, each allowed to shrink but never corrupt the candidate set:
// initial generation (with one strict-JSON retry), year filter and dedupe,
// shortfall fill, enrichment (with one bounded extra repair round), the
// popcorn bias passes, the mood-fit pass, finalize. Every repair round
// requests a bounded shrinking number of replacements and each stage runs at
// most once, so the pipeline terminates in a fixed number of upstream calls.
func (o *Orchestrator) Run(ctx context.Context, input SessionInput) (*Response, error) {
	if o.completer == nil || !o.completer.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "curator", "run",
			"completion service api key not configured", nil)
	}
	curatorID := strings.TrimSpace(input.CuratorID)
	if curatorID == "" {
		return nil, services.Wrap(services.ErrValidation, "curator", "run",
			"curator id required", nil)
	}
	p, ok := persona.Lookup(curatorID)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "curator", "run",
			"unknown curator "+curatorID, nil)
	}

	selections := filterSelections(input.Selected)
	previous := capTitles(input.PreviousTitles, o.settings.PreviousTitlesCap)
	refine, _ := ParseRefinePreset(input.RefinePreset)

	sessionID := uuid.NewString()
	logger := o.logger.With(
		logging.String(logging.FieldSessionID, sessionID),
		logging.String(logging.FieldCurator, p.ID),
	)

	s := &session{
		o:           o,
		persona:     p,
		rules:       mood.RulesFor(selectionLabels(selections)),
		selections:  selections,
		refine:      refine,
		minOverride: input.MinYear,
		ban:         NewBanList(previous),
		seen:        map[string]bool{},
		logger:      logger,
	}
	s.minYear, s.maxYear = yearWindow(p, input.MinYear)

	ctx = services.WithSessionID(ctx, sessionID)
	ctx = services.WithCurator(ctx, p.ID)
	lineup, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{
		SessionID: sessionID,
		Curator:   CuratorSummary{ID: p.ID, Name: p.Name, Emoji: p.Emoji},
		Lineup:    lineup,
	}, nil
}

func (s *session) run(ctx context.Context) (Lineup, error) {
	target := s.o.settings.LineupSize

	// Stage 1: initial generation, with one strict-JSON retry when the
	// response parses to nothing. A transport failure here is the only
	// upstream error surfaced to the caller.
	parsed, err := s.initialGeneration(ctx, target)
	if err != nil {
		return Lineup{}, err
	}
	note := parsed.CuratorNote

	// Stage 2: year filter, dedupe by normalized title, truncate.
	candidates := s.filterAndDedupe(parsed.Candidates(), target)
	s.logger.Debug("initial candidates validated",
		logging.String(logging.FieldStage, "filter"),
		logging.Int("surviving", len(candidates)),
	)

	// Stage 3: shortfall fill.
	if deficit := target - len(candidates); deficit > 0 {
		candidates = append(candidates, s.requestReplacements(ctx, shortfallStrategy, deficit, nil)...)
	}

	// Stage 4: enrichment, with one bounded extra repair round when
	// provider drops reopen the shortfall.
	candidates = s.enrichAndRecheck(ctx, candidates)
	if deficit := target - len(candidates); deficit > 0 {
		candidates = append(candidates, s.requestReplacements(ctx, shortfallStrategy, deficit, nil)...)
	}

	// Stage 5: popcorn bias passes.
	if s.persona.Band == persona.TastePopcorn && len(candidates) > 0 {
		candidates = s.popcornPasses(ctx, candidates)
	}

	// Stage 6: mood-fit pass.
	if len(s.rules) > 0 && NeedsMoodRepair(candidates, s.rules) {
		candidates = s.moodPass(ctx, candidates)
	}

	return s.finalize(candidates, note), nil
}

func (s *session) initialGeneration(ctx context.Context, target int) (ParseResult, error) {
	in := PromptInput{
		Persona:         s.persona,
		MinYearOverride: s.minOverride,
		Rules:           s.rules,
		Selections:      s.selections,
		Refine:          s.refine,
		BannedTitles:    s.ban.PromptPrefix(s.o.settings.BanListPromptCap),
		PickCount:       target,
		AlternativesMin: s.o.settings.AlternativesMin,
		AlternativesMax: s.o.settings.AlternativesMax,
	}
	prompt := ComposePrompt(in)

	raw, err := s.o.completer.Complete(ctx, SystemPreamble(s.persona), prompt)
	if err != nil {
		return ParseResult{}, err
	}
	parsed := ParseResponse(raw, s.o.settings.AlternativesMax)
	if !parsed.Empty() {
		return parsed, nil
	}

	s.logger.Warn("initial response parsed to nothing, retrying with strict directive",
		logging.String(logging.FieldStage, "generate"),
	)
	raw, err = s.o.completer.Complete(ctx, SystemPreamble(s.persona), prompt+"\n"+strictJSONDirective)
	if err != nil {
		return ParseResult{}, err
	}
	return ParseResponse(raw, s.o.settings.AlternativesMax), nil
}

// filterAndDedupe applies the year window and ban list, deduplicates by
// normalized title keeping the first occurrence, and truncates to target.
// Every rejected title joins the ban list.
func (s *session) filterAndDedupe(candidates []Candidate, target int) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range dedupeCandidates(candidates) {
		if len(kept) >= target {
			break
		}
		if !InYearWindow(c, s.minYear, s.maxYear) || s.ban.Contains(c.Title) {
			s.ban.Add(c.Title)
			continue
		}
		s.seen[c.NormalizedTitle()] = true
		kept = append(kept, c)
	}
	return kept
}

// enrichAndRecheck enriches the whole set concurrently, then re-applies the
// year window since provider data can correct a stated year.
func (s *session) enrichAndRecheck(ctx context.Context, candidates []Candidate) []Candidate {
	enriched := s.o.enricher.EnrichAll(ctx, candidates)
	kept := make([]Candidate, 0, len(enriched))
	for _, c := range enriched {
		if !InYearWindow(c, s.minYear, s.maxYear) {
			s.ban.Add(c.Title)
			continue
		}
		kept = append(kept, c)
	}
	if dropped := len(candidates) - len(kept); dropped > 0 {
		s.logger.Debug("enrichment dropped candidates",
			logging.String(logging.FieldStage, "enrich"),
			logging.Int("dropped", dropped),
		)
	}
	return kept
}

// popcornPasses runs the two independent taste-band repairs: mainstream
// momentum first, then popcorn bias. Each replaces a bounded 2..4 slice of
// the weakest candidates and appends replacements at the end.
func (s *session) popcornPasses(ctx context.Context, candidates []Candidate) []Candidate {
	t := s.o.settings.Thresholds
	if !HasMomentum(candidates, t) {
		weakest := weakestByPopularity(candidates, replacementCount(candidates, func(c Candidate) bool {
			return !MainstreamEnough(c, t)
		}))
		candidates = s.replaceSlots(ctx, candidates, weakest, popularityStrategy)
	}
	if !PopcornLineupOK(candidates, t) {
		offBrand := firstFailing(candidates, PopcornEnough, replacementCount(candidates, func(c Candidate) bool {
			return !PopcornEnough(c)
		}))
		candidates = s.replaceSlots(ctx, candidates, offBrand, popcornBiasStrategy)
	}
	return candidates
}

// moodPass replaces every candidate failing the active rules. When nothing
// explicitly failed but the lineup still needs a mood repair, the trailing
// slice is refreshed instead.
func (s *session) moodPass(ctx context.Context, candidates []Candidate) []Candidate {
	failing := moodFailures(candidates, s.rules)
	if len(failing) == 0 {
		n := 2
		if n > len(candidates) {
			n = len(candidates)
		}
		for i := len(candidates) - n; i < len(candidates); i++ {
			failing = append(failing, i)
		}
	}
	return s.replaceSlots(ctx, candidates, failing, moodFitStrategy)
}

// replaceSlots removes the candidates at the given indexes and appends
// whatever valid replacements the repair round produced. Replaced slots are
// appended at the end, never re-inserted at their original position.
func (s *session) replaceSlots(ctx context.Context, candidates []Candidate, indexes []int, strat repairStrategy) []Candidate {
	if len(indexes) == 0 {
		return candidates
	}
	removing := map[int]bool{}
	replacing := make([]string, 0, len(indexes))
	for _, i := range indexes {
		removing[i] = true
		replacing = append(replacing, candidates[i].Title)
	}

	kept := make([]Candidate, 0, len(candidates))
	for i, c := range candidates {
		if !removing[i] {
			kept = append(kept, c)
		}
	}
	replacements := s.requestReplacements(ctx, strat, len(indexes), replacing)
	return append(kept, replacements...)
}

// finalize promotes the first survivor to primary, caps the alternatives,
// and records every served title in the ban list.
func (s *session) finalize(candidates []Candidate, note string) Lineup {
	lineup := Lineup{Alternatives: []Candidate{}, CuratorNote: note}
	if len(candidates) == 0 {
		return lineup
	}
	primary := candidates[0]
	lineup.Primary = &primary
	rest := candidates[1:]
	if len(rest) > s.o.settings.AlternativesMax {
		rest = rest[:s.o.settings.AlternativesMax]
	}
	lineup.Alternatives = append(lineup.Alternatives, rest...)
	for _, title := range lineup.Titles() {
		s.ban.Add(title)
	}
	return lineup
}

// replacementCount bounds a repair round to replacing 2..4 slots, scaled by
// how many candidates fail the given check and capped by the lineup size.
func replacementCount(candidates []Candidate, failing func(Candidate) bool) int {
	count := 0
	for _, c := range candidates {
		if failing(c) {
			count++
		}
	}
	if count < 2 {
		count = 2
	}
	if count > 4 {
		count = 4
	}
	if count > len(candidates) {
		count = len(candidates)
	}
	return count
}

// weakestByPopularity returns the indexes of the n least popular (then
// least rated) candidates.
func weakestByPopularity(candidates []Candidate, n int) []int {
	indexes := make([]int, len(candidates))
	for i := range candidates {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		ca, cb := candidates[indexes[a]], candidates[indexes[b]]
		if ca.Popularity != cb.Popularity {
			return ca.Popularity < cb.Popularity
		}
		return ca.Rating < cb.Rating
	})
	if n > len(indexes) {
		n = len(indexes)
	}
	picked := append([]int(nil), indexes[:n]...)
	sort.Ints(picked)
	return picked
}

// firstFailing returns the indexes of up to n candidates failing the check,
// in lineup order.
func firstFailing(candidates []Candidate, passes func(Candidate) bool, n int) []int {
	var indexes []int
	for i, c := range candidates {
		if len(indexes) >= n {
			break
		}
		if !passes(c) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func filterSelections(selections []ContextSelection) []ContextSelection {
	kept := make([]ContextSelection, 0, len(selections))
	for _, sel := range selections {
		if strings.TrimSpace(sel.Label) == "" {
			continue
		}
		kept = append(kept, sel)
	}
	return kept
}

func selectionLabels(selections []ContextSelection) []string {
	labels := make([]string, 0, len(selections))
	for _, sel := range selections {
		labels = append(labels, sel.Label)
	}
	return labels
}

func capTitles(titles []string, max int) []string {
	if len(titles) <= max {
		return titles
	}
	return titles[:max]
}
