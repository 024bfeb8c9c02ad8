package curator

import (
	"fmt"
	"strings"

	"marquee/internal/mood"
	"marquee/internal/persona"
)

// ContextSelection is one user-chosen context chip: a free-text label plus
// the category of the chip it came from (mood, time, modifier).
type ContextSelection struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// RefinePreset adjusts a follow-up session's direction. Unknown values are
// ignored rather than rejected.
type RefinePreset string

const (
	RefineNone           RefinePreset = ""
	RefineMoreFun        RefinePreset = "more-fun"
	RefineDarker         RefinePreset = "darker"
	RefineMoreMainstream RefinePreset = "more-mainstream"
	RefineMoreIndie      RefinePreset = "more-indie"
	RefineOnlyNewer      RefinePreset = "only-newer"
	RefineSurprise       RefinePreset = "surprise"
)

var refineDirectives = map[RefinePreset]string{
	RefineMoreFun:        "Lean noticeably more fun and energetic than a typical pick for this curator.",
	RefineDarker:         "Lean darker and more intense in tone.",
	RefineMoreMainstream: "Favor widely known, broadly appealing titles.",
	RefineMoreIndie:      "Favor smaller independent productions over studio releases.",
	RefineOnlyNewer:      "Only suggest titles from the most recent years of the allowed window.",
	RefineSurprise:       "Prioritize unexpected picks the viewer is unlikely to have considered.",
}

// ParseRefinePreset maps a raw string onto a known preset. Unknown values
// return RefineNone with ok=false.
func ParseRefinePreset(raw string) (RefinePreset, bool) {
	preset := RefinePreset(strings.ToLower(strings.TrimSpace(raw)))
	if preset == RefineNone {
		return RefineNone, false
	}
	if _, ok := refineDirectives[preset]; !ok {
		return RefineNone, false
	}
	return preset, true
}

// PromptInput carries everything the composer folds into one instruction
// string. Identical inputs always produce identical prompts.
type PromptInput struct {
	Persona         persona.Persona
	MinYearOverride int
	Rules           []mood.Rule
	Selections      []ContextSelection
	Refine          RefinePreset
	BannedTitles    []string
	PickCount       int
	AlternativesMin int
	AlternativesMax int
}

// strictJSONDirective is appended on the one retry allowed after an initial
// response yields no parseable candidates.
const strictJSONDirective = "Respond with ONLY the JSON object. No prose, no code fences, no commentary before or after."

// SystemPreamble renders the completion system message for a persona.
func SystemPreamble(p persona.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a movie curator. %s\n", p.Name, p.Bias)
	b.WriteString("You respond with strict JSON only, never prose.")
	return b.String()
}

// ComposePrompt builds the instruction string for an initial generation
// call. The response contract it requests is the object shape the parser
// expects: {primary, alternatives, curator_note}.
func ComposePrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Recommend exactly %d movies: 1 primary pick and between %d and %d alternatives.\n",
		in.PickCount, in.AlternativesMin, in.AlternativesMax)
	b.WriteString("Respond with a JSON object shaped as ")
	b.WriteString(`{"primary": {"title", "year", "reason"}, "alternatives": [{"title", "year", "reason"}], "curator_note": "one or two sentences"}.`)
	b.WriteString("\n")

	writeYearWindow(&b, in.Persona, in.MinYearOverride)
	writePersonaGuidance(&b, in.Persona)
	writeMoodGuidance(&b, in.Rules)
	writeSelections(&b, in.Selections)

	if directive, ok := refineDirectives[in.Refine]; ok {
		b.WriteString("Refinement: ")
		b.WriteString(directive)
		b.WriteString("\n")
	}

	writeBanList(&b, in.BannedTitles)
	return b.String()
}

func writeYearWindow(b *strings.Builder, p persona.Persona, minOverride int) {
	minYear := p.MinYear
	if minOverride > minYear {
		minYear = minOverride
	}
	if p.MaxYear > 0 {
		fmt.Fprintf(b, "Every movie must have been released between %d and %d inclusive.\n", minYear, p.MaxYear)
	} else {
		fmt.Fprintf(b, "Every movie must have been released in %d or later.\n", minYear)
	}
	if p.PreferredFrom > minYear {
		fmt.Fprintf(b, "Prefer titles from %d onward when quality allows.\n", p.PreferredFrom)
	}
}

func writePersonaGuidance(b *strings.Builder, p persona.Persona) {
	if len(p.AllowGenres) > 0 {
		fmt.Fprintf(b, "Favor these genres: %s.\n", strings.Join(p.AllowGenres, ", "))
	}
	if len(p.AvoidGenres) > 0 {
		fmt.Fprintf(b, "Avoid these genres: %s.\n", strings.Join(p.AvoidGenres, ", "))
	}
	if len(p.ExampleGood) > 0 {
		fmt.Fprintf(b, "Taste reference, do not repeat these exact titles: %s.\n", strings.Join(p.ExampleGood, "; "))
	}
	if len(p.ExampleAvoid) > 0 {
		fmt.Fprintf(b, "Anti-reference, never suggest anything resembling: %s.\n", strings.Join(p.ExampleAvoid, "; "))
	}
}

func writeMoodGuidance(b *strings.Builder, rules []mood.Rule) {
	for _, rule := range rules {
		fmt.Fprintf(b, "Mood %q: the tone should be %s.", rule.Key, rule.Tone)
		if len(rule.IncludeGenres) > 0 {
			fmt.Fprintf(b, " Each pick should touch at least one of: %s.", strings.Join(rule.IncludeGenres, ", "))
		}
		if len(rule.ExcludeGenres) > 0 {
			fmt.Fprintf(b, " Exclude: %s.", strings.Join(rule.ExcludeGenres, ", "))
		}
		if len(rule.ExcludeKeywords) > 0 {
			fmt.Fprintf(b, " Avoid themes of: %s.", strings.Join(rule.ExcludeKeywords, ", "))
		}
		b.WriteString("\n")
	}
}

func writeSelections(b *strings.Builder, selections []ContextSelection) {
	if len(selections) == 0 {
		return
	}
	parts := make([]string, 0, len(selections))
	for _, sel := range selections {
		label := strings.TrimSpace(sel.Label)
		if label == "" {
			continue
		}
		if category := strings.TrimSpace(sel.Category); category != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", label, category))
		} else {
			parts = append(parts, label)
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, "The viewer chose: %s.\n", strings.Join(parts, ", "))
	}
}

func writeBanList(b *strings.Builder, banned []string) {
	if len(banned) == 0 {
		return
	}
	fmt.Fprintf(b, "Never suggest any of these titles: %s.\n", strings.Join(banned, "; "))
}
