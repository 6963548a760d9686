package ui

import "sync/atomic"

// Stats counts what a resolution run fetched. It is fed from the page and
// read hooks, which may fire concurrently.
type Stats struct {
	Pages    atomic.Int64
	Chapters atomic.Int64

	bytes atomic.Int64
}

func (s *Stats) PageDone(chapters int) {
	s.Pages.Add(1)
	s.Chapters.Add(int64(chapters))
}

// Read records n more bytes read from url. Bytes of failed attempts that
// were retried stay counted, they were transferred all the same.
func (s *Stats) Read(_ string, n int64) {
	if n > 0 {
		s.bytes.Add(n)
	}
}

func (s *Stats) Bytes() int64 {
	return s.bytes.Load()
}
