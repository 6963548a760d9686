package toc

import (
	"context"
	"fmt"
	"strings"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"golang.org/x/net/html"
)

type pageResult struct {
	Chapters []providers.Chapter
	NextURLs []string
}

// extractor turns one fetched toc page into chapter entries and next-page
// candidates. The list directive is parsed by the caller.
type extractor struct {
	engine providers.SelectorEngine
	rule   providers.TocRule
	list   ListDirective
	book   providers.Book
	trace  tracer
}

// extract runs the toc rules on page. baseURL is the URL the page was
// requested as; relative references resolve against the effective URL.
// verbose enables the per-step trace, used for the seed page only.
func (x *extractor) extract(ctx context.Context, page providers.Page, wantNext, verbose bool) (pageResult, error) {
	var res pageResult

	baseURL := page.RequestedURL
	redirectURL := page.EffectiveURL
	if redirectURL == "" {
		redirectURL = baseURL
	}

	root, err := html.Parse(strings.NewReader(page.Body))
	if err != nil {
		return res, &providers.ContentFetchError{URL: baseURL, Err: err}
	}

	x.trace.logIf(verbose, "┌get chapter list")
	elements, err := x.engine.Elements(x.list.Selector, root, redirectURL)
	if err != nil {
		return res, err
	}
	x.trace.logIf(verbose, fmt.Sprintf("└list size: %d", len(elements)))

	if wantNext && x.rule.NextTocURL != "" {
		x.trace.logIf(verbose, "┌get next toc urls")
		urls, err := x.engine.Strings(x.rule.NextTocURL, root, redirectURL, true)
		if err != nil {
			return res, err
		}
		for _, u := range urls {
			if u != baseURL {
				res.NextURLs = append(res.NextURLs, u)
			}
		}
		x.trace.logIf(verbose, "└"+strings.Join(res.NextURLs, ",\n"))
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if len(elements) == 0 {
		return res, nil
	}

	x.trace.logIf(verbose, "┌parse chapter list")
	for i, el := range elements {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ch, defaulted, err := x.chapter(el, baseURL, redirectURL)
		if err != nil {
			return res, err
		}
		if defaulted {
			x.trace.log(fmt.Sprintf("chapter %d has no url, using %s", i, baseURL), StateTrace)
		}
		if ch.Title == "" {
			continue
		}

		res.Chapters = append(res.Chapters, ch)
	}
	x.trace.logIf(verbose, "└chapter list parsed")

	if verbose && len(res.Chapters) > 0 {
		first := res.Chapters[0]
		x.trace.log("┌first chapter title", StateTrace)
		x.trace.log("└"+first.Title, StateTrace)
		x.trace.log("┌first chapter url", StateTrace)
		x.trace.log("└"+first.URL, StateTrace)
		x.trace.log("┌first chapter tag", StateTrace)
		x.trace.log("└"+first.Tag, StateTrace)
	}

	return res, nil
}

// chapter extracts one entry; defaulted reports that the url rule produced
// nothing and the page URL was used instead.
func (x *extractor) chapter(el *html.Node, baseURL, redirectURL string) (ch providers.Chapter, defaulted bool, err error) {
	ch = providers.Chapter{
		BookURL: x.book.BookURL,
		PageURL: baseURL,
	}

	if ch.Title, err = x.engine.String(x.rule.ChapterName, el, redirectURL); err != nil {
		return ch, false, err
	}

	urls, err := x.engine.Strings(x.rule.ChapterURL, el, redirectURL, true)
	if err != nil {
		return ch, false, err
	}
	if len(urls) > 0 {
		ch.URL = urls[0]
	}

	if ch.Tag, err = x.engine.String(x.rule.UpdateTime, el, redirectURL); err != nil {
		return ch, false, err
	}

	if ch.URL == "" {
		ch.URL = baseURL
		defaulted = true
	}

	if ch.Title == "" {
		return ch, defaulted, nil
	}

	vip, err := x.engine.String(x.rule.IsVip, el, redirectURL)
	if err != nil {
		return ch, defaulted, err
	}
	pay, err := x.engine.String(x.rule.IsPay, el, redirectURL)
	if err != nil {
		return ch, defaulted, err
	}
	ch.IsVip = classifyFlag(vip).Bool()
	ch.IsPay = classifyFlag(pay).Bool()

	return ch, defaulted, nil
}
