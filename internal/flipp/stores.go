package flipp

import (
	"slices"
	"strings"
)

// StoreMatcher maps merchant names onto tracked store categories by
// case-insensitive substring match against each category's variants.
type StoreMatcher struct {
	keys     []string
	variants map[string][]string
}

// NewStoreMatcher builds a matcher from a category -> variants map.
// Categories are tried in lexical order so matching is deterministic.
func NewStoreMatcher(stores map[string][]string) *StoreMatcher {
	m := &StoreMatcher{variants: make(map[string][]string, len(stores))}
	for key, variants := range stores {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		for _, v := range variants {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				m.variants[key] = append(m.variants[key], v)
			}
		}
		if len(m.variants[key]) > 0 {
			m.keys = append(m.keys, key)
		}
	}
	slices.Sort(m.keys)
	m.keys = slices.Compact(m.keys)
	return m
}

// Match returns the store category whose variants occur in any of names.
func (m *StoreMatcher) Match(names ...string) (string, bool) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(n); n != "" {
			lowered = append(lowered, n)
		}
	}
	for _, key := range m.keys {
		for _, v := range m.variants[key] {
			for _, n := range lowered {
				if strings.Contains(n, v) {
					return key, true
				}
			}
		}
	}
	return "", false
}

// MatchFlyer matches a flyer by merchant name or flyer name.
func (m *StoreMatcher) MatchFlyer(f *Flyer) (string, bool) {
	return m.Match(f.MerchantName, f.Name)
}

// Categories returns the tracked store categories in lexical order.
func (m *StoreMatcher) Categories() []string {
	return slices.Clone(m.keys)
}
