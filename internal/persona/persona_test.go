package persona

import "testing"

func TestRegistryInvariants(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range All() {
		if p.ID == "" || p.Name == "" {
			t.Fatalf("persona missing id or name: %+v", p)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate persona id %q", p.ID)
		}
		seen[p.ID] = true
		if !p.Band.Valid() {
			t.Fatalf("persona %q has unknown taste band %q", p.ID, p.Band)
		}
		if p.MinYear <= 0 {
			t.Fatalf("persona %q needs a minimum year", p.ID)
		}
		if p.MaxYear != 0 && p.MaxYear < p.MinYear {
			t.Fatalf("persona %q year window inverted: %d..%d", p.ID, p.MinYear, p.MaxYear)
		}
		if p.PreferredFrom != 0 && p.PreferredFrom < p.MinYear {
			t.Fatalf("persona %q preferred start predates window: %d < %d", p.ID, p.PreferredFrom, p.MinYear)
		}
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("  Velvet ")
	if !ok {
		t.Fatal("expected lookup to tolerate case and whitespace")
	}
	if p.Band != TasteAuteur {
		t.Fatalf("unexpected band %q", p.Band)
	}
	if _, ok := Lookup("nobody"); ok {
		t.Fatal("expected unknown id to miss")
	}
}

func TestTasteBandValid(t *testing.T) {
	if !TastePopcorn.Valid() {
		t.Fatal("popcorn should be valid")
	}
	if TasteBand("mainstream").Valid() {
		t.Fatal("unknown band should be invalid")
	}
}
