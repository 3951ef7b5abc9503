// Package timeparse turns user-entered "since" filters into timestamps.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognized is returned when no layout or rule matches the input.
var ErrUnrecognized = errors.New("unrecognized time expression")

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Parser resolves absolute dates and natural-language expressions such as
// "yesterday" or "last friday".
type Parser struct {
	w     *when.Parser
	clock Clock
	loc   *time.Location
}

// New creates a Parser. A nil clock means the system clock; a nil location
// means UTC.
func New(clock Clock, loc *time.Location) *Parser {
	if clock == nil {
		clock = RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Parser{w: w, clock: clock, loc: loc}
}

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseSince returns the instant described by input. An empty input yields
// the zero time, meaning no filter.
func (p *Parser) ParseSince(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, input, p.loc); err == nil {
			return t.UTC(), nil
		}
	}

	r, err := p.w.Parse(strings.ToLower(input), p.clock.Now().In(p.loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, input)
	}
	return r.Time.UTC(), nil
}
