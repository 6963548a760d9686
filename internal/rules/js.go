package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/robertkrimen/otto"
)

var errScriptTimeout = errors.New("script timed out")

// runScript evaluates a rule script with result and baseUrl bound. A string
// value yields one result, an array one result per element; undefined and
// null yield none.
func runScript(script, result, baseURL string, timeout time.Duration) (out []string, err error) {
	vm := otto.New()
	if err := vm.Set("result", result); err != nil {
		return nil, err
	}
	if err := vm.Set("baseUrl", baseURL); err != nil {
		return nil, err
	}

	halt := errors.New("halt")
	vm.Interrupt = make(chan func(), 1)
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt <- func() { panic(halt) }
	})
	defer timer.Stop()

	defer func() {
		if r := recover(); r != nil {
			if r == halt {
				out, err = nil, errScriptTimeout
				return
			}
			panic(r)
		}
	}()

	v, err := vm.Run(script)
	if err != nil {
		return nil, err
	}

	return exportStrings(v)
}

func exportStrings(v otto.Value) ([]string, error) {
	if v.IsUndefined() || v.IsNull() {
		return nil, nil
	}

	if v.IsObject() && v.Class() == "Array" {
		exp, err := v.Export()
		if err != nil {
			return nil, err
		}

		switch t := exp.(type) {
		case []string:
			return t, nil
		case []any:
			out := make([]string, 0, len(t))
			for _, item := range t {
				if item == nil {
					continue
				}
				out = append(out, fmt.Sprint(item))
			}
			return out, nil
		default:
			return []string{fmt.Sprint(t)}, nil
		}
	}

	s, err := v.ToString()
	if err != nil {
		return nil, err
	}

	return []string{s}, nil
}
