package chapters

import (
	"time"

	"github.com/brogergvhs/mangatoc/internal/providers"
)

// Commit derives fresh bookkeeping from a finished catalog. prev is read
// only; the returned value replaces it as a whole.
func Commit(prev providers.Bookkeeping, catalog []providers.Chapter, now time.Time) (providers.Bookkeeping, error) {
	if len(catalog) == 0 {
		return prev, providers.ErrEmptyCatalog
	}

	next := prev
	next.LatestChapterTitle = catalog[len(catalog)-1].Title

	if i := prev.CurrentChapterIndex; i >= 0 && i < len(catalog) {
		next.CurrentChapterTitle = catalog[i].Title
	} else {
		next.CurrentChapterTitle = next.LatestChapterTitle
	}

	total := len(catalog)
	if total > prev.TotalChapterCount {
		next.LastCheckCount = total - prev.TotalChapterCount
		next.LatestChapterTime = now
	}
	next.LastCheckTime = now
	next.TotalChapterCount = total

	return next, nil
}
