package rules

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

func queryXPath(n *html.Node, expr string) ([]*html.Node, error) {
	// Compile separately so syntax errors surface instead of an empty match.
	if _, err := xpath.Compile(expr); err != nil {
		return nil, err
	}

	return htmlquery.QueryAll(n, expr)
}

// xpathValues returns the inner text of every match; attribute and text()
// steps come back from htmlquery as nodes whose text is the value.
func xpathValues(n *html.Node, expr string) ([]string, error) {
	nodes, err := queryXPath(n, expr)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, strings.TrimSpace(htmlquery.InnerText(node)))
	}

	return out, nil
}
