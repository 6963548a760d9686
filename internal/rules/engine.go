package rules

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"golang.org/x/net/html"
)

const defaultScriptTimeout = 2 * time.Second

var errScriptElements = errors.New("script rules cannot select elements")

// Engine is the default providers.SelectorEngine. It is safe for concurrent
// use; parsed rules are cached.
type Engine struct {
	ScriptTimeout time.Duration

	cache sync.Map // rule string -> []step
}

func NewEngine() *Engine {
	return &Engine{ScriptTimeout: defaultScriptTimeout}
}

var _ providers.SelectorEngine = (*Engine)(nil)

// Parse turns a document body into the root fragment rules are evaluated on.
func Parse(body string) (*html.Node, error) {
	return html.Parse(strings.NewReader(body))
}

func (e *Engine) steps(rule string) ([]step, error) {
	if v, ok := e.cache.Load(rule); ok {
		return v.([]step), nil
	}

	st, err := parseRule(rule)
	if err != nil {
		return nil, err
	}
	e.cache.Store(rule, st)

	return st, nil
}

func (e *Engine) Elements(rule string, n *html.Node, _ string) ([]*html.Node, error) {
	if strings.TrimSpace(rule) == "" || n == nil {
		return nil, nil
	}

	steps, err := e.steps(rule)
	if err != nil {
		return nil, err
	}

	for _, st := range steps {
		var nodes []*html.Node

		switch st.mode {
		case modeXPath:
			nodes, err = queryXPath(n, st.selector)
		case modeJS:
			err = errScriptElements
		default:
			nodes, err = selectCSS(n, st.selector)
		}
		if err != nil {
			return nil, &providers.SelectorError{Rule: rule, Err: err}
		}
		if len(nodes) > 0 {
			return nodes, nil
		}
	}

	return nil, nil
}

func (e *Engine) String(rule string, n *html.Node, baseURL string) (string, error) {
	vals, err := e.values(rule, n, baseURL)
	if err != nil {
		return "", err
	}

	return strings.Join(vals, "\n"), nil
}

func (e *Engine) Strings(rule string, n *html.Node, baseURL string, isURL bool) ([]string, error) {
	vals, err := e.values(rule, n, baseURL)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if isURL {
			v = resolveURL(baseURL, v)
		}
		out = append(out, v)
	}

	return out, nil
}

// values returns the result of the first alternative that yields anything
// non-blank.
func (e *Engine) values(rule string, n *html.Node, baseURL string) ([]string, error) {
	if strings.TrimSpace(rule) == "" || n == nil {
		return nil, nil
	}

	steps, err := e.steps(rule)
	if err != nil {
		return nil, err
	}

	for _, st := range steps {
		vals, err := e.evalStep(st, n, baseURL)
		if err != nil {
			return nil, &providers.SelectorError{Rule: rule, Err: err}
		}
		if hasContent(vals) {
			return vals, nil
		}
	}

	return nil, nil
}

func (e *Engine) evalStep(st step, n *html.Node, baseURL string) ([]string, error) {
	var (
		vals []string
		err  error
	)

	switch st.mode {
	case modeXPath:
		vals, err = xpathValues(n, st.selector)
	case modeJS:
		vals = []string{outerHTML(n)}
	default:
		vals, err = cssValues(n, st.selector, st.extractor)
	}
	if err != nil {
		return nil, err
	}

	if st.pattern != nil {
		for i, v := range vals {
			vals[i] = st.pattern.ReplaceAllString(v, st.replacement)
		}
	}

	if st.script != "" {
		return runScript(st.script, strings.Join(vals, "\n"), baseURL, e.scriptTimeout())
	}

	return vals, nil
}

func (e *Engine) scriptTimeout() time.Duration {
	if e.ScriptTimeout <= 0 {
		return defaultScriptTimeout
	}

	return e.ScriptTimeout
}

func hasContent(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}

	return false
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
