package providers

import (
	"context"
	"time"

	"golang.org/x/net/html"
)

// TocRule is the declarative description of how a source lays out its table
// of contents. Every field is a rule string understood by a SelectorEngine.
type TocRule struct {
	ChapterList string `yaml:"chapter_list"`
	ChapterName string `yaml:"chapter_name"`
	ChapterURL  string `yaml:"chapter_url"`
	IsVip       string `yaml:"is_vip,omitempty"`
	IsPay       string `yaml:"is_pay,omitempty"`
	UpdateTime  string `yaml:"update_time,omitempty"`
	NextTocURL  string `yaml:"next_toc_url,omitempty"`
}

// Source is one configured content source.
type Source struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Toc     TocRule           `yaml:"toc"`
}

type Chapter struct {
	BookURL string // identity of the owning book
	PageURL string // toc page the entry was found on
	Title   string
	URL     string
	Tag     string // raw update-time text
	IsVip   bool
	IsPay   bool
	Index   int
}

// ChapterKey is the identity used when collapsing duplicate entries.
type ChapterKey struct {
	Title string
	URL   string
}

func (c Chapter) Key() ChapterKey {
	return ChapterKey{Title: c.Title, URL: c.URL}
}

// Bookkeeping holds the summary fields derived from a book's catalog.
type Bookkeeping struct {
	LatestChapterTitle  string
	CurrentChapterTitle string
	CurrentChapterIndex int
	TotalChapterCount   int
	LastCheckCount      int
	LatestChapterTime   time.Time
	LastCheckTime       time.Time
}

type Book struct {
	BookURL    string
	TocURL     string
	Name       string
	Origin     string // name of the source the book belongs to
	ReverseToc bool   // display the catalog newest-first

	Bookkeeping
}

// TocPageURL is the URL the table of contents starts at.
func (b Book) TocPageURL() string {
	if b.TocURL != "" {
		return b.TocURL
	}

	return b.BookURL
}

// Page is a fetched document.
type Page struct {
	RequestedURL string
	EffectiveURL string
	Body         string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (Page, error)
}

// SelectorEngine evaluates rule strings against a document fragment.
type SelectorEngine interface {
	Elements(rule string, n *html.Node, baseURL string) ([]*html.Node, error)
	String(rule string, n *html.Node, baseURL string) (string, error)
	Strings(rule string, n *html.Node, baseURL string, isURL bool) ([]string, error)
}

// DebugLog receives trace output while a catalog is resolved. Implementations
// must not fail or block for long.
type DebugLog interface {
	Log(source, msg string, state int)
}
