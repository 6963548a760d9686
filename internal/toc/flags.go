package toc

import "regexp"

type flagValue int

const (
	flagEmpty flagValue = iota
	flagFalsy
	flagSet
)

var falsy = regexp.MustCompile(`(?i)^\s*(null|false|0)\s*$`)

// classifyFlag sorts the raw output of a vip/pay rule into one of three
// states. Only flagSet counts as true.
func classifyFlag(raw string) flagValue {
	switch {
	case raw == "":
		return flagEmpty
	case falsy.MatchString(raw):
		return flagFalsy
	default:
		return flagSet
	}
}

func (v flagValue) Bool() bool {
	return v == flagSet
}
