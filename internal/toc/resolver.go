// Package toc resolves the chapter list of a book from its table of contents
// pages using the toc rules of a source.
package toc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brogergvhs/mangatoc/internal/chapters"
	"github.com/brogergvhs/mangatoc/internal/providers"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PageHook is called once per extracted toc page. During fan-out it is
// called from several goroutines at once.
type PageHook func(url string, chapters int)

type Option func(*Resolver)

// WithDebugLog sets the sink receiving the per-step trace.
func WithDebugLog(d providers.DebugLog) Option {
	return func(r *Resolver) {
		r.debug = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFanoutLimit caps the number of toc pages fetched at once when the
// first page links to several others. Zero or less means no cap.
func WithFanoutLimit(n int) Option {
	return func(r *Resolver) {
		r.fanoutLimit = n
	}
}

func WithPageHook(h PageHook) Option {
	return func(r *Resolver) {
		r.hook = h
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

type Resolver struct {
	fetcher providers.Fetcher
	engine  providers.SelectorEngine

	debug       providers.DebugLog
	logger      *zap.Logger
	fanoutLimit int
	hook        PageHook
	now         func() time.Time
}

func NewResolver(f providers.Fetcher, e providers.SelectorEngine, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: f,
		engine:  e,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Result is a finished resolution. Book is a copy of the input book with
// refreshed bookkeeping.
type Result struct {
	Catalog []providers.Chapter
	Book    providers.Book
	Pages   int
}

// ResolveBook fetches the toc page of book and resolves from there.
func (r *Resolver) ResolveBook(ctx context.Context, src providers.Source, book providers.Book) (Result, error) {
	page, err := r.fetchPage(ctx, src, book.TocPageURL())
	if err != nil {
		return Result{Book: book}, err
	}

	return r.Resolve(ctx, src, book, page.RequestedURL, page.EffectiveURL, page.Body)
}

// Resolve builds the catalog starting from an already fetched seed page.
// Any failure aborts the whole resolution and the returned book is the
// input unchanged.
func (r *Resolver) Resolve(ctx context.Context, src providers.Source, book providers.Book, seedURL, effectiveSeedURL, seedBody string) (Result, error) {
	res := Result{Book: book}

	if strings.TrimSpace(seedBody) == "" {
		return res, &providers.ContentFetchError{URL: seedURL}
	}
	if effectiveSeedURL == "" {
		effectiveSeedURL = seedURL
	}

	log := r.logger.With(
		zap.String("run", uuid.NewString()),
		zap.String("source", src.Name),
		zap.String("url", seedURL),
	)
	trace := tracer{sink: r.debug, source: src.URL}

	directive := ParseListDirective(src.Toc.ChapterList)
	x := &extractor{
		engine: r.engine,
		rule:   src.Toc,
		list:   directive,
		book:   book,
		trace:  trace,
	}

	trace.log("≡fetched "+seedURL, StateTrace)
	trace.log(seedBody, StateBody)

	seed, err := x.extract(ctx, providers.Page{
		RequestedURL: seedURL,
		EffectiveURL: effectiveSeedURL,
		Body:         seedBody,
	}, true, true)
	if err != nil {
		return res, err
	}
	r.pageDone(seedURL, len(seed.Chapters))

	acc := seed.Chapters
	pages := 1

	switch len(seed.NextURLs) {
	case 0:
	case 1:
		log.Debug("following toc chain", zap.String("next", seed.NextURLs[0]))

		more, n, err := r.follow(ctx, x, src, seedURL, seed.NextURLs[0])
		if err != nil {
			return res, err
		}
		acc = append(acc, more...)
		pages += n
	default:
		log.Debug("fetching toc pages", zap.Int("pages", len(seed.NextURLs)))

		more, err := r.fanOut(ctx, x, src, seed.NextURLs)
		if err != nil {
			return res, err
		}
		acc = append(acc, more...)
		pages += len(seed.NextURLs)
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	trace.log(fmt.Sprintf("◇toc pages: %d", pages), StateTrace)
	trace.log(fmt.Sprintf("◇chapters found: %d", len(acc)), StateTrace)

	if len(acc) == 0 {
		return res, providers.ErrEmptyCatalog
	}

	catalog, err := chapters.Merge(acc, directive.Reverse(), book.ReverseToc)
	if err != nil {
		return res, err
	}

	bk, err := chapters.Commit(book.Bookkeeping, catalog, r.now())
	if err != nil {
		return res, err
	}

	res.Book.Bookkeeping = bk
	res.Catalog = catalog
	res.Pages = pages

	log.Info("toc resolved",
		zap.Int("pages", pages),
		zap.Int("chapters", len(catalog)),
		zap.Int("new", newChapters(book.Bookkeeping, bk)),
	)

	return res, nil
}

// follow walks a single next-page link per page until the chain ends or
// links back to a page already seen.
func (r *Resolver) follow(ctx context.Context, x *extractor, src providers.Source, seedURL, next string) ([]providers.Chapter, int, error) {
	var (
		acc   []providers.Chapter
		pages int
	)

	visited := map[string]struct{}{seedURL: {}}

	for next != "" {
		if _, ok := visited[next]; ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}
		visited[next] = struct{}{}

		page, err := r.fetchPage(ctx, src, next)
		if err != nil {
			return nil, pages, err
		}

		res, err := x.extract(ctx, page, true, false)
		if err != nil {
			return nil, pages, err
		}
		r.pageDone(page.RequestedURL, len(res.Chapters))

		acc = append(acc, res.Chapters...)
		pages++

		next = ""
		if len(res.NextURLs) > 0 {
			next = res.NextURLs[0]
		}
	}

	return acc, pages, nil
}

// fanOut fetches every url concurrently and returns their chapters joined
// in the order of urls. Pages fetched here do not contribute next links.
func (r *Resolver) fanOut(ctx context.Context, x *extractor, src providers.Source, urls []string) ([]providers.Chapter, error) {
	results := make([][]providers.Chapter, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	if r.fanoutLimit > 0 {
		g.SetLimit(r.fanoutLimit)
	}

	for i, u := range urls {
		g.Go(func() error {
			page, err := r.fetchPage(gctx, src, u)
			if err != nil {
				return err
			}

			res, err := x.extract(gctx, page, false, false)
			if err != nil {
				return err
			}
			r.pageDone(page.RequestedURL, len(res.Chapters))

			results[i] = res.Chapters
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var acc []providers.Chapter
	for _, chs := range results {
		acc = append(acc, chs...)
	}

	return acc, nil
}

func (r *Resolver) fetchPage(ctx context.Context, src providers.Source, url string) (providers.Page, error) {
	page, err := r.fetcher.Fetch(ctx, url, src.Headers)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return page, ctxErr
		}

		var fe *providers.ContentFetchError
		if errors.As(err, &fe) {
			return page, err
		}

		return page, &providers.ContentFetchError{URL: url, Err: err}
	}

	page.RequestedURL = url
	if page.EffectiveURL == "" {
		page.EffectiveURL = url
	}
	if strings.TrimSpace(page.Body) == "" {
		return page, &providers.ContentFetchError{URL: url}
	}

	return page, nil
}

func (r *Resolver) pageDone(url string, n int) {
	if r.hook != nil {
		r.hook(url, n)
	}
}

func newChapters(prev, next providers.Bookkeeping) int {
	if next.TotalChapterCount > prev.TotalChapterCount {
		return next.TotalChapterCount - prev.TotalChapterCount
	}

	return 0
}
