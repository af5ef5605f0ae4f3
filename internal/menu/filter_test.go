package menu

import (
	"reflect"
	"testing"

	"github.com/Makepad-fr/cafe/internal/model"
)

var dishes = []model.Dish{
	{ID: "1", Name: "Борщ"},
	{ID: "2", Name: "Pelmeni"},
	{ID: "3", Name: "Борщ зелёный"},
	{ID: "4", Name: "Chai"},
}

func ids(ds []model.Dish) []string {
	out := []string{}
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"борщ", []string{"1", "3"}},
		{"БОРЩ", []string{"1", "3"}},
		{"  elm ", []string{"2"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		if got := ids(Filter(dishes, tt.query)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestListFilterMatchesRunes(t *testing.T) {
	targets := []string{"Борщ зелёный", "Pelmeni", "Chai"}
	ranks := ListFilter("ЗЕЛ", targets)
	if len(ranks) != 1 || ranks[0].Index != 0 {
		t.Fatalf("ranks = %+v", ranks)
	}
	if want := []int{5, 6, 7}; !reflect.DeepEqual(ranks[0].MatchedIndexes, want) {
		t.Errorf("matched = %v, want %v", ranks[0].MatchedIndexes, want)
	}
	if got := ListFilter("a", targets); len(got) != 1 || got[0].Index != 2 {
		t.Errorf("ListFilter(a) = %+v", got)
	}
}

func TestListFilterOffsetsOnOriginalText(t *testing.T) {
	// İ lowercases to two runes; offsets must still index the shown name
	ranks := ListFilter("KEBAB", []string{"İstanbul kebab"})
	if len(ranks) != 1 {
		t.Fatalf("ranks = %+v", ranks)
	}
	if want := []int{9, 10, 11, 12, 13}; !reflect.DeepEqual(ranks[0].MatchedIndexes, want) {
		t.Errorf("matched = %v, want %v", ranks[0].MatchedIndexes, want)
	}
	if got := Filter([]model.Dish{{Name: "İstanbul kebab"}}, "kebab"); len(got) != 1 {
		t.Errorf("Filter = %v", got)
	}
}
