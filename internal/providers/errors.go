package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrContentFetch matches every *ContentFetchError.
	ErrContentFetch = errors.New("content fetch failed")

	// ErrSelector matches every *SelectorError.
	ErrSelector = errors.New("selector evaluation failed")

	// ErrEmptyCatalog means the source was reachable but no chapter survived
	// extraction and deduplication.
	ErrEmptyCatalog = errors.New("chapter list is empty")
)

type ContentFetchError struct {
	URL string
	Err error
}

func (e *ContentFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: no content", e.URL)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *ContentFetchError) Unwrap() error { return e.Err }

func (e *ContentFetchError) Is(target error) bool { return target == ErrContentFetch }

type SelectorError struct {
	Rule string
	Err  error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

func (e *SelectorError) Unwrap() error { return e.Err }

func (e *SelectorError) Is(target error) bool { return target == ErrSelector }
