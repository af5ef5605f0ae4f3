package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/Makepad-fr/cafe/internal/model"
)

// Filter keeps the dishes whose name contains query, ignoring case.
// Order is preserved; an empty query keeps everything.
func Filter(dishes []model.Dish, query string) []model.Dish {
	q := []rune(strings.TrimSpace(query))
	if len(q) == 0 {
		return dishes
	}
	out := make([]model.Dish, 0, len(dishes))
	for _, d := range dishes {
		if index([]rune(d.Name), q) >= 0 {
			out = append(out, d)
		}
	}
	return out
}

// ListFilter is a list.FilterFunc with the same substring semantics, so the
// picker does not fall back to fuzzy matching. Matched indexes are rune
// offsets into the target as given.
func ListFilter(term string, targets []string) []list.Rank {
	q := []rune(strings.TrimSpace(term))
	ranks := make([]list.Rank, 0, len(targets))
	for i, t := range targets {
		start := index([]rune(t), q)
		if start < 0 {
			continue
		}
		matched := make([]int, len(q))
		for j := range matched {
			matched[j] = start + j
		}
		ranks = append(ranks, list.Rank{Index: i, MatchedIndexes: matched})
	}
	return ranks
}

// index returns the rune offset of the first window of s equal to q under
// case folding, or -1.
func index(s, q []rune) int {
	want := string(q)
	for at := 0; at+len(q) <= len(s); at++ {
		if strings.EqualFold(string(s[at:at+len(q)]), want) {
			return at
		}
	}
	return -1
}
