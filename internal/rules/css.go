package rules

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// selectCSS returns the descendants of n matching sel. An empty selector
// selects n itself.
func selectCSS(n *html.Node, sel string) ([]*html.Node, error) {
	if sel == "" {
		return []*html.Node{n}, nil
	}

	// goquery swallows compile errors, so compile up front to report them.
	m, err := cascadia.Compile(sel)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromNode(n).FindMatcher(m).Nodes, nil
}

func cssValues(n *html.Node, sel, extractor string) ([]string, error) {
	nodes, err := selectCSS(n, sel)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		s := goquery.NewDocumentFromNode(node).Selection
		if v, ok := extract(s, extractor); ok {
			out = append(out, v)
		}
	}

	return out, nil
}

func extract(s *goquery.Selection, extractor string) (string, bool) {
	switch strings.ToLower(extractor) {
	case "", "text":
		return collapse(s.Text()), true
	case "owntext":
		return collapse(ownText(s)), true
	case "textnodes":
		return textNodes(s), true
	case "html":
		h, err := s.Html()
		return strings.TrimSpace(h), err == nil
	case "outerhtml", "all":
		h, err := goquery.OuterHtml(s)
		return h, err == nil
	default:
		return s.Attr(extractor)
	}
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}

	return b.String()
}

func textNodes(s *goquery.Selection) string {
	var lines []string
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				continue
			}
			if t := strings.TrimSpace(c.Data); t != "" {
				lines = append(lines, t)
			}
		}
	}

	return strings.Join(lines, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func outerHTML(n *html.Node) string {
	h, err := goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
	if err != nil {
		return ""
	}

	return h
}
