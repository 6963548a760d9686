package chapters

import (
	"slices"
	"testing"
	"time"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ch(title string) providers.Chapter {
	return providers.Chapter{Title: title, URL: "/" + title}
}

func titles(cs []providers.Chapter) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Title)
	}
	return out
}

func indices(cs []providers.Chapter) []int {
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Index)
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name           string
		in             []string
		reverseRule    bool
		displayReverse bool
		want           []string
	}{
		{name: "unsigned rule newest-first display", in: []string{"C1", "C2", "C3"}, displayReverse: true, want: []string{"C3", "C2", "C1"}},
		{name: "unsigned rule ascending display", in: []string{"C1", "C2", "C3"}, want: []string{"C1", "C2", "C3"}},
		{name: "reversed rule ascending display", in: []string{"C1", "C2", "C3"}, reverseRule: true, want: []string{"C3", "C2", "C1"}},
		{name: "reversed rule newest-first display", in: []string{"C1", "C2", "C3"}, reverseRule: true, displayReverse: true, want: []string{"C1", "C2", "C3"}},
		{name: "duplicates across pages", in: []string{"CA", "CB", "CA"}, reverseRule: true, displayReverse: true, want: []string{"CA", "CB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]providers.Chapter, 0, len(tt.in))
			for _, s := range tt.in {
				in = append(in, ch(s))
			}

			got, err := Merge(in, tt.reverseRule, tt.displayReverse)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))

			wantIdx := make([]int, len(tt.want))
			for i := range wantIdx {
				wantIdx[i] = i
			}
			assert.Equal(t, wantIdx, indices(got))
		})
	}
}

func TestMerge_DedupeUsesTitleAndURL(t *testing.T) {
	in := []providers.Chapter{
		{Title: "A", URL: "/1"},
		{Title: "A", URL: "/2"},
		{Title: "B", URL: "/1"},
		{Title: "A", URL: "/1", Tag: "later copy"},
	}

	got := Dedupe(in)
	require.Len(t, got, 3)
	assert.Equal(t, "", got[0].Tag, "first occurrence wins")
}

func TestMerge_DoesNotTouchInput(t *testing.T) {
	in := []providers.Chapter{ch("C1"), ch("C2"), ch("C2"), ch("C3")}
	orig := slices.Clone(in)

	first, err := Merge(in, false, false)
	require.NoError(t, err)
	second, err := Merge(in, false, false)
	require.NoError(t, err)

	assert.Equal(t, orig, in)
	assert.Equal(t, first, second)
}

func TestMerge_DisplayToggleReversesOrder(t *testing.T) {
	in := []providers.Chapter{ch("C5"), ch("C4"), ch("C4"), ch("C3"), ch("C1")}

	asc, err := Merge(in, false, false)
	require.NoError(t, err)
	desc, err := Merge(in, false, true)
	require.NoError(t, err)

	flipped := titles(desc)
	slices.Reverse(flipped)
	assert.Equal(t, titles(asc), flipped)
	assert.Equal(t, []int{0, 1, 2, 3}, indices(desc))
}

func TestMerge_Empty(t *testing.T) {
	_, err := Merge(nil, false, false)
	assert.ErrorIs(t, err, providers.ErrEmptyCatalog)
}

func TestCommit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)
	catalog := []providers.Chapter{ch("C1"), ch("C2"), ch("C3")}

	t.Run("growth refreshes latest time and delta", func(t *testing.T) {
		prev := providers.Bookkeeping{CurrentChapterIndex: 1, TotalChapterCount: 1, LatestChapterTime: earlier}

		got, err := Commit(prev, catalog, now)
		require.NoError(t, err)
		assert.Equal(t, "C3", got.LatestChapterTitle)
		assert.Equal(t, "C2", got.CurrentChapterTitle)
		assert.Equal(t, 3, got.TotalChapterCount)
		assert.Equal(t, 2, got.LastCheckCount)
		assert.Equal(t, now, got.LatestChapterTime)
		assert.Equal(t, now, got.LastCheckTime)
		assert.Equal(t, 1, got.CurrentChapterIndex)
	})

	t.Run("no growth keeps previous delta", func(t *testing.T) {
		prev := providers.Bookkeeping{TotalChapterCount: 3, LastCheckCount: 4, LatestChapterTime: earlier}

		got, err := Commit(prev, catalog, now)
		require.NoError(t, err)
		assert.Equal(t, 4, got.LastCheckCount)
		assert.Equal(t, earlier, got.LatestChapterTime)
		assert.Equal(t, now, got.LastCheckTime)
	})

	t.Run("current index out of range falls back to latest", func(t *testing.T) {
		got, err := Commit(providers.Bookkeeping{CurrentChapterIndex: 7}, catalog, now)
		require.NoError(t, err)
		assert.Equal(t, "C3", got.CurrentChapterTitle)
	})

	t.Run("empty catalog leaves bookkeeping alone", func(t *testing.T) {
		prev := providers.Bookkeeping{TotalChapterCount: 9, LastCheckTime: earlier}

		got, err := Commit(prev, nil, now)
		assert.ErrorIs(t, err, providers.ErrEmptyCatalog)
		assert.Equal(t, prev, got)
	})
}
