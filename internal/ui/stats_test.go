package ui

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	var s Stats

	var wg sync.WaitGroup
	for _, url := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Read(url, 100)
			s.Read(url, 150)
			s.PageDone(2)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, s.Pages.Load())
	assert.EqualValues(t, 6, s.Chapters.Load())
	assert.EqualValues(t, 750, s.Bytes())
}

func TestStats_RetriedURLKeepsCounting(t *testing.T) {
	var s Stats

	// first attempt breaks off after 300 bytes, the retry reads 120
	s.Read("toc", 200)
	s.Read("toc", 100)
	s.Read("toc", 120)
	s.Read("toc", 0)

	assert.EqualValues(t, 420, s.Bytes())
}
