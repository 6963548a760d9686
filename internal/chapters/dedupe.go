package chapters

import "github.com/brogergvhs/mangatoc/internal/providers"

// orderedSet keeps the first occurrence of every chapter identity in
// insertion order.
type orderedSet struct {
	seen  map[providers.ChapterKey]struct{}
	items []providers.Chapter
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		seen:  make(map[providers.ChapterKey]struct{}, capacity),
		items: make([]providers.Chapter, 0, capacity),
	}
}

// add reports whether c was new.
func (s *orderedSet) add(c providers.Chapter) bool {
	k := c.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, c)

	return true
}

// Dedupe drops later duplicates of (title, url), keeping order.
func Dedupe(in []providers.Chapter) []providers.Chapter {
	set := newOrderedSet(len(in))
	for _, c := range in {
		set.add(c)
	}

	return set.items
}
