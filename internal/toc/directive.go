package toc

import "strings"

// Order is the direction marker carried by a chapter list rule.
type Order int

const (
	// Native means the rule had no sign or an explicit "+".
	Native Order = iota
	// Reversed means the rule was prefixed with "-".
	Reversed
)

// ListDirective is the chapter list rule with its sign already consumed.
// It is parsed once per resolution and shared by every page.
type ListDirective struct {
	Selector string
	Order    Order
}

func ParseListDirective(rule string) ListDirective {
	d := ListDirective{Selector: rule}

	if strings.HasPrefix(d.Selector, "-") {
		d.Order = Reversed
		d.Selector = d.Selector[1:]
	}
	if strings.HasPrefix(d.Selector, "+") {
		d.Selector = d.Selector[1:]
	}

	return d
}

func (d ListDirective) Reverse() bool {
	return d.Order == Reversed
}
