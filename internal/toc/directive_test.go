package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListDirective(t *testing.T) {
	tests := []struct {
		rule     string
		selector string
		reverse  bool
	}{
		{rule: "ul li", selector: "ul li"},
		{rule: "-ul li", selector: "ul li", reverse: true},
		{rule: "+ul li", selector: "ul li"},
		{rule: "-+ul li", selector: "ul li", reverse: true},
		{rule: "+-ul li", selector: "-ul li"},
		{rule: "", selector: ""},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			d := ParseListDirective(tt.rule)
			assert.Equal(t, tt.selector, d.Selector)
			assert.Equal(t, tt.reverse, d.Reverse())
		})
	}
}

func TestClassifyFlag(t *testing.T) {
	tests := []struct {
		raw  string
		want flagValue
	}{
		{"", flagEmpty},
		{"0", flagFalsy},
		{" false ", flagFalsy},
		{"NULL", flagFalsy},
		{"\tFalse\n", flagFalsy},
		{"1", flagSet},
		{"vip", flagSet},
		{"00", flagSet},
		{"not false", flagSet},
	}

	for _, tt := range tests {
		got := classifyFlag(tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
		assert.Equal(t, tt.want == flagSet, got.Bool(), "raw %q", tt.raw)
	}
}
