// Package excerpt extracts the words surrounding matched triggers.
package excerpt

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/word-ntfy/pkg/trigger"
)

// DefaultRadius is the number of words kept on each side of a match
const DefaultRadius = 5

const ellipsis = "..."

// Extract returns the ±radius word windows around every match in raw, with
// matched triggers upper-cased and gaps marked by an ellipsis.
func Extract(matches *trigger.MatchSet, raw string, radius int) string {
	if matches.Empty() {
		return ""
	}
	if radius < 0 {
		radius = 0
	}

	words := strings.Fields(anchor(matches, raw))

	hits := make(map[int]bool)
	for i, w := range words {
		if matches.Has(w) {
			hits[i] = true
		}
	}
	if len(hits) == 0 {
		return ""
	}

	window := make(map[int]struct{})
	for i := range hits {
		lo, hi := max(0, i-radius), min(len(words)-1, i+radius)
		for j := lo; j <= hi; j++ {
			window[j] = struct{}{}
		}
	}
	indexes := make([]int, 0, len(window))
	for i := range window {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]string, 0, len(indexes)+2)
	last := -1
	for _, idx := range indexes {
		if idx-last != 1 {
			out = append(out, ellipsis)
		}
		if hits[idx] {
			surface, _ := matches.Surface(words[idx])
			out = append(out, strings.ToUpper(surface))
		} else {
			out = append(out, words[idx])
		}
		last = idx
	}
	if last != len(words)-1 {
		out = append(out, ellipsis)
	}
	return strings.Join(out, " ")
}

// anchor replaces every matched surface form with its key padded by spaces so
// whitespace splitting yields the key as a standalone word.
func anchor(matches *trigger.MatchSet, raw string) string {
	text := raw
	for _, key := range matches.Keys() {
		surface, _ := matches.Surface(key)
		if surface == "" || key == "" {
			continue
		}
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(surface))
		text = re.ReplaceAllLiteralString(text, " "+key+" ")
	}
	return text
}
