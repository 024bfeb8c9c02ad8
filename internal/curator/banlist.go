package curator

import "marquee/internal/textutil"

// BanList is an append-only set of normalized titles that must not reappear
// within one session. It is seeded from the caller's prior titles and grows
// with every title placed into a lineup or rejected by a validator. It never
// shrinks.
type BanList struct {
	entries map[string]bool
	order   []string
}

// NewBanList builds a ban list seeded with the given titles. Blank titles
// are ignored.
func NewBanList(titles []string) *BanList {
	b := &BanList{entries: map[string]bool{}}
	for _, title := range titles {
		b.Add(title)
	}
	return b
}

// Add records a title. Adding an already-present or blank title is a no-op.
func (b *BanList) Add(title string) {
	key := textutil.NormalizeTitle(title)
	if key == "" || b.entries[key] {
		return
	}
	b.entries[key] = true
	b.order = append(b.order, key)
}

// Contains reports whether the title, after normalization, is banned.
func (b *BanList) Contains(title string) bool {
	return b.entries[textutil.NormalizeTitle(title)]
}

// Len returns the number of banned titles.
func (b *BanList) Len() int {
	return len(b.order)
}

// PromptPrefix returns up to max banned titles in insertion order, bounding
// the ban-list contribution to prompt size.
func (b *BanList) PromptPrefix(max int) []string {
	if max <= 0 || len(b.order) == 0 {
		return nil
	}
	if max > len(b.order) {
		max = len(b.order)
	}
	prefix := make([]string, max)
	copy(prefix, b.order[:max])
	return prefix
}
