package catalog

import (
	"slices"
	"strings"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// fieldSep separates indexed fields so a term cannot match across them.
const fieldSep = "\x00"

// index is a case-insensitive trigram index over the searchable text of each
// product. Posting lists hold product positions in ascending order.
type index struct {
	docs     []string
	postings map[string][]int
}

func newIndex(products []domain.Product) *index {
	idx := &index{
		docs:     make([]string, len(products)),
		postings: make(map[string][]int),
	}
	for i := range products {
		doc := searchText(&products[i])
		idx.docs[i] = doc
		for _, g := range trigrams(doc) {
			idx.postings[g] = append(idx.postings[g], i)
		}
	}
	return idx
}

func searchText(p *domain.Product) string {
	return strings.ToLower(strings.Join(
		[]string{p.Name, p.Brand, p.Category, p.Description},
		fieldSep,
	))
}

// trigrams returns the distinct byte trigrams of s, excluding any that span
// a field separator.
func trigrams(s string) []string {
	if len(s) < 3 {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for i := 0; i+3 <= len(s); i++ {
		g := s[i : i+3]
		if strings.Contains(g, fieldSep) {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// lookup returns the positions of documents containing term, which must
// already be lowercased and trimmed.
func (idx *index) lookup(term string) []int {
	if term == "" {
		return nil
	}

	candidates := idx.candidates(term)
	out := make([]int, 0, len(candidates))
	for _, i := range candidates {
		if strings.Contains(idx.docs[i], term) {
			out = append(out, i)
		}
	}
	return out
}

func (idx *index) candidates(term string) []int {
	grams := trigrams(term)
	if len(grams) == 0 {
		all := make([]int, len(idx.docs))
		for i := range all {
			all[i] = i
		}
		return all
	}

	lists := make([][]int, 0, len(grams))
	for _, g := range grams {
		list, ok := idx.postings[g]
		if !ok {
			return nil
		}
		lists = append(lists, list)
	}
	slices.SortFunc(lists, func(a, b []int) int { return len(a) - len(b) })

	result := lists[0]
	for _, list := range lists[1:] {
		result = intersect(result, list)
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

// intersect merges two ascending posting lists.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
