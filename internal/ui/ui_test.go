package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/page"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Да\n", true},
		{" yes ", true},
		{"\n", false},
		{"n\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := PromptConfirmer{In: strings.NewReader(tt.in), Out: &out}.Confirm(context.Background(), "Завершить заказ?")
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("answer %q = %v, want %v", tt.in, got, tt.want)
		}
		if !strings.Contains(out.String(), "Завершить заказ? [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestOrderLines(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	start := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	p := &page.OrderPage{
		Order: model.Order{
			ID: "42", TableNumber: 7, CreatedAt: start,
			Lines: []model.OrderLine{{ID: "901", Quantity: 2, Dish: model.Dish{Name: "Chai", Price: decimal.RequireFromString("120.5")}}},
		},
	}
	lines := OrderLines(p, start.Add(65*time.Second))
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"Table 7", "#42", "00:01:05", "241.00", "[901]", "Chai", "2 × 120.50", "no csrf token"} {
		if !strings.Contains(joined, want) {
			t.Errorf("output lacks %q:\n%s", want, joined)
		}
	}
}

func TestListTexts(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	start := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		got  string
		want []string
	}{
		{OrderSummaryText(page.OrderSummary{ID: "42", TableNumber: 3, CreatedAt: start, Total: "700.00"}, start.Add(time.Hour)),
			[]string{"[42]", "Table 3", "01:00:00", "open", "Total 700.00"}},
		{OrderSummaryText(page.OrderSummary{ID: "7", Completed: true}, start),
			[]string{"[7]", "--:--:--", "completed"}},
		{TableText(page.Table{ID: "3", Number: 3, Seats: 4, Occupied: true}),
			[]string{"Table 3", " 4 seats", "occupied"}},
		{strings.Join(DashboardLines(page.Dashboard{"tables_count": 5, "active_orders_count": 2}), "\n"),
			[]string{"Open orders  2", "Tables       5"}},
	}
	for _, tt := range tests {
		for _, w := range tt.want {
			if !strings.Contains(tt.got, w) {
				t.Errorf("%q lacks %q", tt.got, w)
			}
		}
	}
}

func TestOKAndFailSinks(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")
	var out, errb bytes.Buffer
	origOut, origErr := Stdout, Stderr
	Stdout, Stderr = &out, &errb
	defer func() { Stdout, Stderr = origOut, origErr }()

	OK("added")
	Fail("nope")
	if !strings.Contains(out.String(), "ok added") || !strings.Contains(errb.String(), "error: nope") {
		t.Errorf("stdout=%q stderr=%q", out.String(), errb.String())
	}
}
