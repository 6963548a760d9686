// Package chapters turns the raw per-page chapter lists gathered while
// resolving a table of contents into the final catalog, and derives the
// book's summary fields from it.
package chapters

import (
	"slices"

	"github.com/brogergvhs/mangatoc/internal/providers"
)

// Merge builds the catalog from chapters in fetch order. Sources list their
// newest chapter first unless the list rule was marked reversed, so an
// unmarked list is flipped to ascending before duplicates are dropped. The
// result is then put in display order (ascending unless displayReverse) and
// indexed from zero. The input slice is not modified.
func Merge(accumulated []providers.Chapter, reverseRequested, displayReverse bool) ([]providers.Chapter, error) {
	list := slices.Clone(accumulated)

	if !reverseRequested {
		slices.Reverse(list)
	}

	list = Dedupe(list)

	if !displayReverse {
		slices.Reverse(list)
	}

	if len(list) == 0 {
		return nil, providers.ErrEmptyCatalog
	}

	for i := range list {
		list[i].Index = i
	}

	return list, nil
}
