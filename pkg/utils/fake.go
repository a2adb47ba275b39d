package utils

import (
	"strings"

	"github.com/pkg/errors"
)

// FakeResult is the canned answer of a FakeRunner for one command line.
type FakeResult struct {
	Stdout string
	Rc     int
	Err    error
}

// FakeRunner answers commands from a table keyed by the space-joined
// command line and records every call.  Unknown commands fail to start.
type FakeRunner struct {
	Results map[string]FakeResult
	Calls   [][]string
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Results: map[string]FakeResult{}}
}

// On registers the result for @args.
func (f *FakeRunner) On(res FakeResult, args ...string) *FakeRunner {
	f.Results[strings.Join(args, " ")] = res
	return f
}

func (f *FakeRunner) Run(args ...string) (string, int, error) {
	f.Calls = append(f.Calls, args)
	res, ok := f.Results[strings.Join(args, " ")]
	if !ok {
		return "", 127, errors.Errorf("Failed running %v: unexpected command", args)
	}
	return res.Stdout, res.Rc, res.Err
}

func (f *FakeRunner) Stream(logf func(string, ...interface{}), args ...string) (int, error) {
	out, rc, err := f.Run(args...)
	if err != nil {
		return rc, err
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if line != "" {
			logf("%s", line)
		}
	}
	return rc, nil
}

// Count returns how many times @args was run.
func (f *FakeRunner) Count(args ...string) int {
	want := strings.Join(args, " ")
	n := 0
	for _, c := range f.Calls {
		if strings.Join(c, " ") == want {
			n++
		}
	}
	return n
}

// CountPrefix returns how many calls started with @name.
func (f *FakeRunner) CountPrefix(name string) int {
	n := 0
	for _, c := range f.Calls {
		if len(c) > 0 && c[0] == name {
			n++
		}
	}
	return n
}
