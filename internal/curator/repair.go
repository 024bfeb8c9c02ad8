package curator

import (
	"context"
	"fmt"
	"strings"

	"marquee/internal/logging"
)

// repairStrategy parameterizes one repair scenario. Every scenario shares
// the same request/parse/filter/enrich shape; only the prompt wording and an
// optional post-enrichment acceptance check differ.
type repairStrategy struct {
	name      string
	directive func(s *session) string
	// accept, when set, runs after enrichment so provider-resolved fields
	// (genres in particular) are available to it.
	accept func(s *session, c Candidate) bool
}

var shortfallStrategy = repairStrategy{
	name: "shortfall",
	directive: func(s *session) string {
		return "The previous picks fell short. Suggest additional movies that fit the same brief."
	},
}

var popularityStrategy = repairStrategy{
	name: "popularity",
	directive: func(s *session) string {
		return "The previous picks were too obscure. Suggest well-known, widely loved movies with broad appeal."
	},
}

var popcornBiasStrategy = repairStrategy{
	name: "popcorn-bias",
	directive: func(s *session) string {
		return "The previous picks were too heavy. Suggest pure crowd-pleasers: fun, energetic, rewatchable movies."
	},
}

var moodFitStrategy = repairStrategy{
	name: "mood-fit",
	directive: func(s *session) string {
		var b strings.Builder
		b.WriteString("The previous picks did not fit the viewer's mood.")
		for _, rule := range s.rules {
			fmt.Fprintf(&b, " The tone must be %s.", rule.Tone)
			if len(rule.ExcludeGenres) > 0 {
				fmt.Fprintf(&b, " Absolutely no %s.", strings.Join(rule.ExcludeGenres, ", "))
			}
		}
		return b.String()
	},
	accept: func(s *session, c Candidate) bool {
		return PassesAllRules(c, s.rules)
	},
}

// composeRepairPrompt builds the narrower replacement prompt: exact count,
// the same persona and window constraints, the titles being replaced, and
// the accumulated ban list.
func (s *session) composeRepairPrompt(strat repairStrategy, need int, replacing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest exactly %d replacement movies as a JSON array of {\"title\", \"year\", \"reason\"} objects.\n", need)
	b.WriteString(strat.directive(s))
	b.WriteString("\n")
	if len(replacing) > 0 {
		fmt.Fprintf(&b, "These picks are being replaced, do not repeat them: %s.\n", strings.Join(replacing, "; "))
	}
	writeYearWindow(&b, s.persona, s.minOverride)
	writePersonaGuidance(&b, s.persona)
	writeBanList(&b, s.ban.PromptPrefix(s.o.settings.BanListPromptCap))
	b.WriteString(strictJSONDirective)
	return b.String()
}

// requestReplacements runs one bounded repair round: request exactly need
// replacements, parse defensively, filter through the year window and the
// seen/ban sets, enrich survivors, and re-filter the enriched output.
// Partial fulfillment, including zero replacements, is expected; upstream
// failures are absorbed here, never propagated.
func (s *session) requestReplacements(ctx context.Context, strat repairStrategy, need int, replacing []string) []Candidate {
	if need <= 0 {
		return nil
	}
	for _, title := range replacing {
		s.ban.Add(title)
	}

	raw, err := s.o.completer.Complete(ctx, SystemPreamble(s.persona), s.composeRepairPrompt(strat, need, replacing))
	if err != nil {
		s.logger.Warn("repair round failed, continuing with survivors",
			logging.String("repair", strat.name),
			logging.Error(err),
		)
		return nil
	}

	parsed := ParseResponse(raw, need)
	accepted := make([]Candidate, 0, need)
	for _, c := range parsed.Candidates() {
		if len(accepted) >= need {
			break
		}
		if !InYearWindow(c, s.minYear, s.maxYear) {
			s.ban.Add(c.Title)
			continue
		}
		key := c.NormalizedTitle()
		if s.seen[key] || s.ban.Contains(c.Title) {
			continue
		}
		s.seen[key] = true
		accepted = append(accepted, c)
	}

	enriched := s.o.enricher.EnrichAll(ctx, accepted)

	// Enrichment can rewrite the release year, so the window check runs
	// again on provider-confirmed data.
	final := make([]Candidate, 0, len(enriched))
	for _, c := range enriched {
		if !InYearWindow(c, s.minYear, s.maxYear) {
			s.ban.Add(c.Title)
			continue
		}
		if strat.accept != nil && !strat.accept(s, c) {
			s.ban.Add(c.Title)
			continue
		}
		final = append(final, c)
	}
	if len(final) < need {
		s.logger.Debug("repair round under-delivered",
			logging.String("repair", strat.name),
			logging.Int("requested", need),
			logging.Int("delivered", len(final)),
		)
	}
	return final
}
