package rules

import (
	"errors"
	"regexp"
	"strings"

	"github.com/brogergvhs/mangatoc/internal/providers"
)

type mode int

const (
	modeCSS mode = iota
	modeXPath
	modeJS
)

func (m mode) String() string {
	switch m {
	case modeXPath:
		return "xpath"
	case modeJS:
		return "js"
	default:
		return "css"
	}
}

// step is one parsed alternative of a rule.
type step struct {
	mode        mode
	selector    string
	extractor   string
	pattern     *regexp.Regexp
	replacement string
	script      string
}

var errEmptyScript = errors.New("empty script")

// parseRule splits a rule into its alternatives. Rules carrying a script are
// never split on "||" since the operator is valid inside the script.
func parseRule(rule string) ([]step, error) {
	var alts []string
	if strings.Contains(strings.ToLower(rule), "@js:") {
		alts = []string{rule}
	} else {
		alts = strings.Split(rule, "||")
	}

	out := make([]step, 0, len(alts))
	for _, alt := range alts {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}

		st, err := parseStep(alt)
		if err != nil {
			return nil, &providers.SelectorError{Rule: rule, Err: err}
		}
		out = append(out, st)
	}

	return out, nil
}

func parseStep(alt string) (step, error) {
	var st step

	if i := strings.Index(strings.ToLower(alt), "@js:"); i >= 0 {
		st.script = strings.TrimSpace(alt[i+len("@js:"):])
		if st.script == "" {
			return st, errEmptyScript
		}
		alt = strings.TrimSpace(alt[:i])
	}

	if i := strings.Index(alt, "##"); i >= 0 {
		parts := strings.SplitN(alt[i+2:], "##", 2)
		re, err := regexp.Compile(parts[0])
		if err != nil {
			return st, err
		}
		st.pattern = re
		if len(parts) == 2 {
			st.replacement = parts[1]
		}
		alt = alt[:i]
	}

	lower := strings.ToLower(alt)
	switch {
	case strings.HasPrefix(lower, "@xpath:"):
		st.mode = modeXPath
		st.selector = strings.TrimSpace(alt[len("@xpath:"):])
		return st, nil
	case strings.HasPrefix(alt, "/"):
		st.mode = modeXPath
		st.selector = alt
		return st, nil
	case strings.HasPrefix(lower, "@css:"):
		alt = alt[len("@css:"):]
	case alt == "" && st.script != "":
		st.mode = modeJS
		return st, nil
	}

	st.mode = modeCSS
	if i := strings.LastIndex(alt, "@"); i >= 0 {
		st.selector = strings.TrimSpace(alt[:i])
		st.extractor = strings.TrimSpace(alt[i+1:])
	} else {
		st.selector = strings.TrimSpace(alt)
	}

	return st, nil
}
