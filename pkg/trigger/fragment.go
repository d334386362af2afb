// Package trigger builds the combined trigger pattern and scans message text for matches.
package trigger

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how trigger strings are interpreted
type Mode string

const (
	// Plain matches triggers literally
	Plain Mode = "plain"
	// Regex inserts triggers as raw regular expression fragments
	Regex Mode = "regex"
)

// ParseMode parses a trigger mode setting
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Plain, "":
		return Plain, nil
	case Regex:
		return Regex, nil
	default:
		return "", fmt.Errorf("invalid trigger type %q (use plain or regex)", s)
	}
}

// The delimiters are spelled out in both cases instead of relying on (?i):
// Go folds K (U+212A) and ſ (U+017F) into [A-Z] under case folding, and those
// must stay delimiters.
const (
	startBoundary = `(^|[^A-Za-z0-9]+)`
	endBoundary   = `([^A-Za-z0-9]+|$)`
)

// Fragment is one branch of the trigger alternation
type Fragment interface {
	source() string
}

// Literal is a trigger matched character for character
type Literal string

func (l Literal) source() string {
	return regexp.QuoteMeta(string(l))
}

// Raw is a user supplied regular expression fragment
type Raw string

func (r Raw) source() string {
	return string(r)
}

// FragmentFor wraps a trigger according to the mode
func FragmentFor(trigger string, mode Mode) Fragment {
	if mode == Regex {
		return Raw(trigger)
	}
	return Literal(trigger)
}

// Fragments wraps every trigger in the list
func Fragments(triggers []string, mode Mode) []Fragment {
	frags := make([]Fragment, 0, len(triggers))
	for _, t := range triggers {
		frags = append(frags, FragmentFor(t, mode))
	}
	return frags
}

// Source returns the combined expression for the fragments.
// Group 1 is the leading delimiter and group 2 the trigger itself.
func Source(frags []Fragment) string {
	branches := make([]string, len(frags))
	for i, f := range frags {
		branches[i] = f.source()
	}
	return startBoundary + "((?i:" + strings.Join(branches, "|") + "))" + endBoundary
}
