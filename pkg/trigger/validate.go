package trigger

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrEmptyTrigger      = errors.New("trigger is empty")
	ErrDuplicateTrigger  = errors.New("trigger already exists")
	ErrInvalidPattern    = errors.New("invalid trigger pattern")
	ErrMatchesEverything = errors.New("trigger matches arbitrary text")
)

// probe is nonsense text a sensible regex trigger will never match
const probe = "jisjkaskjkjsjkaskajksjajkoskjoasjkjkasjksjkaskjakjjks"

// Validate checks a trigger before it is added to existing
func Validate(trigger string, mode Mode, existing []string) error {
	if strings.TrimSpace(trigger) == "" {
		return ErrEmptyTrigger
	}
	if slices.Contains(existing, trigger) {
		return fmt.Errorf("%w: %q", ErrDuplicateTrigger, trigger)
	}
	if mode != Regex {
		return nil
	}

	re, err := regexp.Compile(Source([]Fragment{Raw(trigger)}))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, trigger, err)
	}
	if re.MatchString(probe) {
		return fmt.Errorf("%w: %q", ErrMatchesEverything, trigger)
	}
	return nil
}

// ValidateAll checks a whole list, reporting the first offending trigger
func ValidateAll(triggers []string, mode Mode) error {
	for i, t := range triggers {
		if err := Validate(t, mode, triggers[:i]); err != nil {
			return err
		}
	}
	return nil
}
