package trigger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Pattern is a compiled trigger list
type Pattern struct {
	re *regexp.Regexp
}

// Compile builds one pattern from the trigger list. An empty list yields a nil
// pattern, which scans to an empty MatchSet.
func Compile(triggers []string, mode Mode) (*Pattern, error) {
	if len(triggers) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile(Source(Fragments(triggers, mode)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &Pattern{re: re}, nil
}

// MustCompile is like Compile but panics if the list does not compile.
// Triggers are validated before they are stored, so a failure here is a bug.
func MustCompile(triggers []string, mode Mode) *Pattern {
	p, err := Compile(triggers, mode)
	if err != nil {
		panic(err)
	}
	return p
}

// Find compiles the list and scans text in one step
func Find(triggers []string, mode Mode, text string) *MatchSet {
	return MustCompile(triggers, mode).Scan(text)
}

// Scan finds all non-overlapping trigger matches from left to right.
// Adjacent matches share the delimiter between them, so "cat dog" yields
// both cat and dog.
func (p *Pattern) Scan(text string) *MatchSet {
	set := NewMatchSet()
	if p == nil {
		return set
	}

	pos := 0
	for pos <= len(text) {
		loc := p.re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		delimStart, delimEnd := pos+loc[2], pos+loc[3]
		start, end := pos+loc[4], pos+loc[5]

		// ^ matched at the search offset rather than at the start of the text
		if delimStart == delimEnd && delimStart > 0 && isAlnum(text[delimStart-1]) {
			pos = advance(text, delimStart)
			continue
		}

		if end > start {
			surface := text[start:end]
			set.add(Normalize(surface), surface)
		}

		// Resume at the trailing delimiter so it can lead the next match
		next := end
		if next <= pos {
			next = advance(text, pos)
		}
		pos = next
		if pos == len(text) {
			break
		}
	}
	return set
}

// Normalize lowercases a matched string and strips everything but ASCII letters and digits
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func advance(text string, pos int) int {
	if pos >= len(text) {
		return len(text) + 1
	}
	_, size := utf8.DecodeRuneInString(text[pos:])
	return pos + size
}
