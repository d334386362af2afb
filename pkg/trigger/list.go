package trigger

import (
	"fmt"
	"slices"
	"strings"
)

// Store reads and writes the persisted trigger list
type Store interface {
	Triggers() []string
	TriggerMode() Mode
	SetTriggers(triggers []string) error
}

// AddResult reports the outcome of Add
type AddResult struct {
	Added   []string
	Skipped []Skipped
	All     []string
}

// Skipped is an input Add rejected and why
type Skipped struct {
	Input string
	Err   error
}

// Add validates and appends triggers. Input is lowercased; invalid or
// duplicate triggers are skipped rather than failing the whole call.
func Add(s Store, inputs ...string) (AddResult, error) {
	triggers := slices.Clone(s.Triggers())
	mode := s.TriggerMode()

	var res AddResult
	for _, in := range inputs {
		t := strings.ToLower(in)
		if err := Validate(t, mode, triggers); err != nil {
			res.Skipped = append(res.Skipped, Skipped{Input: in, Err: err})
			continue
		}
		triggers = append(triggers, t)
		res.Added = append(res.Added, t)
	}
	res.All = triggers

	if len(res.Added) == 0 {
		return res, nil
	}
	if err := s.SetTriggers(triggers); err != nil {
		return res, fmt.Errorf("failed to save triggers: %w", err)
	}
	return res, nil
}

// Remove deletes the given triggers, returning the ones that existed
func Remove(s Store, inputs ...string) (removed []string, remaining []string, err error) {
	triggers := slices.Clone(s.Triggers())
	for _, in := range inputs {
		t := strings.ToLower(in)
		idx := slices.Index(triggers, t)
		if idx < 0 {
			continue
		}
		triggers = slices.Delete(triggers, idx, idx+1)
		removed = append(removed, t)
	}

	if len(removed) == 0 {
		return nil, triggers, nil
	}
	if err := s.SetTriggers(triggers); err != nil {
		return nil, nil, fmt.Errorf("failed to save triggers: %w", err)
	}
	return removed, triggers, nil
}

// Clear removes every trigger
func Clear(s Store) error {
	if err := s.SetTriggers([]string{}); err != nil {
		return fmt.Errorf("failed to save triggers: %w", err)
	}
	return nil
}
