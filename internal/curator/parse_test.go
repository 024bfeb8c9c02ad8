package curator

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseResponseObjectShape(t *testing.T) {
	raw := "```json\n" + `{
		"primary": {"title": "Heat", "year": "1995", "rating": 7.9, "reason": "the heist"},
		"alternatives": [
			{"title": "Ronin", "year": 1998},
			{"title": "  ", "year": 2000},
			{"title": "Collateral", "year": 2004, "popularity": "31.5"}
		],
		"curator_note": "Crime at its most elegant. Ride along. There is more to say but nobody reads it."
	}` + "\n```"

	result := ParseResponse(raw, 6)
	if result.Primary == nil || result.Primary.Title != "Heat" {
		t.Fatalf("unexpected primary %+v", result.Primary)
	}
	if result.Primary.Year != 1995 {
		t.Fatalf("numeric-string year not coerced: %d", result.Primary.Year)
	}
	if len(result.Alternatives) != 2 {
		t.Fatalf("expected the blank-title entry dropped, got %+v", result.Alternatives)
	}
	if result.Alternatives[1].Popularity != 31.5 {
		t.Fatalf("numeric-string popularity not coerced: %v", result.Alternatives[1].Popularity)
	}
	if strings.Contains(result.CuratorNote, "nobody reads it") {
		t.Fatalf("note not clipped to two sentences: %q", result.CuratorNote)
	}
}

func TestParseResponseSuggestionsAlias(t *testing.T) {
	raw := `{"primary": {"title": "Heat"}, "suggestions": [{"title": "Thief"}]}`
	result := ParseResponse(raw, 6)
	if len(result.Alternatives) != 1 || result.Alternatives[0].Title != "Thief" {
		t.Fatalf("suggestions alias not honored: %+v", result.Alternatives)
	}
}

func TestParseResponseArrayShape(t *testing.T) {
	raw := `[{"title": "Heat"}, {"title": "Ronin"}, {"title": "Thief"}]`
	result := ParseResponse(raw, 1)
	if result.Primary == nil || result.Primary.Title != "Heat" {
		t.Fatalf("expected first element as primary, got %+v", result.Primary)
	}
	if len(result.Alternatives) != 1 {
		t.Fatalf("alternatives not capped: %+v", result.Alternatives)
	}
}

func TestParseResponseIdempotent(t *testing.T) {
	raw := `Here you go! {"primary": {"title": "Heat", "year": 1995}, "alternatives": [{"title": "Ronin"}]}`
	first := ParseResponse(raw, 6)
	second := ParseResponse(raw, 6)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestParseResponseGracefulDegradation(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json in sight",
		"```json\nnot actually json\n```",
		`"just a string"`,
		`42`,
	} {
		result := ParseResponse(raw, 6)
		if !result.Empty() {
			t.Fatalf("input %q should degrade to empty, got %+v", raw, result)
		}
		if result.Primary != nil {
			t.Fatalf("input %q should yield nil primary", raw)
		}
	}
}

func TestParseResponseDropsTitlelessEntries(t *testing.T) {
	raw := `[{"year": 1999}, {"reason": "great"}, {"title": "Heat"}]`
	result := ParseResponse(raw, 6)
	if result.Primary == nil || result.Primary.Title != "Heat" {
		t.Fatalf("expected only the titled entry, got %+v", result)
	}
	if len(result.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %+v", result.Alternatives)
	}
}

func TestParseResponseGenreIDs(t *testing.T) {
	raw := `{"primary": {"title": "Heat", "genre_ids": [80, "18", 0]}}`
	result := ParseResponse(raw, 6)
	if result.Primary == nil {
		t.Fatal("expected primary")
	}
	if got := result.Primary.GenreIDs; len(got) != 2 || got[0] != 80 || got[1] != 18 {
		t.Fatalf("unexpected genre ids %v", got)
	}
}
