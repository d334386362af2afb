package trigger

// MatchSet maps normalized trigger keys to the first surface form that matched.
// Keys keep the order in which they were first seen.
type MatchSet struct {
	keys    []string
	surface map[string]string
}

// NewMatchSet returns an empty set
func NewMatchSet() *MatchSet {
	return &MatchSet{surface: make(map[string]string)}
}

// MatchSetOf builds a set from surface forms, keyed by their normalized form
func MatchSetOf(surfaces ...string) *MatchSet {
	set := NewMatchSet()
	for _, s := range surfaces {
		set.add(Normalize(s), s)
	}
	return set
}

func (m *MatchSet) add(key, surface string) bool {
	if _, ok := m.surface[key]; ok {
		return false
	}
	m.keys = append(m.keys, key)
	m.surface[key] = surface
	return true
}

// Len returns the number of distinct keys
func (m *MatchSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Empty reports whether nothing matched
func (m *MatchSet) Empty() bool {
	return m.Len() == 0
}

// Has reports whether key is in the set
func (m *MatchSet) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.surface[key]
	return ok
}

// Surface returns the surface form recorded for key
func (m *MatchSet) Surface(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m.surface[key]
	return s, ok
}

// Keys returns the normalized keys in first-seen order
func (m *MatchSet) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Surfaces returns the surface forms in first-seen order
func (m *MatchSet) Surfaces() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.surface[k]
	}
	return out
}

// Equal reports whether both sets hold the same keys and surface forms
func (m *MatchSet) Equal(other *MatchSet) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if other.keys[i] != k || other.surface[k] != m.surface[k] {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every key of m is present in keys
func (m *MatchSet) SubsetOf(keys map[string]struct{}) bool {
	for _, k := range m.Keys() {
		if _, ok := keys[k]; !ok {
			return false
		}
	}
	return true
}
