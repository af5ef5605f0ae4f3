package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/cafe/internal/page"
)

type fakeLister struct {
	fakeBackend
	orders  []page.OrderSummary
	listErr error
	opened  []string
}

func (f *fakeLister) Fetch(ctx context.Context, u string) (*page.OrderPage, error) {
	f.opened = append(f.opened, u)
	return f.fakeBackend.Fetch(ctx, u)
}

func (f *fakeLister) FetchOrders(context.Context, string) ([]page.OrderSummary, error) {
	return f.orders, f.listErr
}

func pressOrders(t *testing.T, o Orders, msg tea.Msg) (Orders, tea.Cmd) {
	t.Helper()
	next, cmd := o.Update(msg)
	no, ok := next.(Orders)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return no, cmd
}

func loadedOrders(t *testing.T, b *fakeLister, opt Options) Orders {
	t.Helper()
	o := NewOrders(context.Background(), b, "http://cafe.local/orders/", opt)
	o, _ = pressOrders(t, o, o.Init()())
	if o.loading {
		t.Fatal("still loading")
	}
	return o
}

func TestOrdersListsOpenOnly(t *testing.T) {
	b := &fakeLister{orders: []page.OrderSummary{
		{ID: "41", TableNumber: 2, Completed: true},
		{ID: "42", TableNumber: 7, URL: "http://cafe.local/orders/42/"},
	}}
	o := loadedOrders(t, b, Options{})
	if n := len(o.list.Items()); n != 1 {
		t.Fatalf("items = %d, want 1", n)
	}
	if v := o.View(); !strings.Contains(v, "Table 7") || strings.Contains(v, "[41]") {
		t.Errorf("view:\n%s", v)
	}
}

func TestOrdersEnterOpensScreen(t *testing.T) {
	b := &fakeLister{
		fakeBackend: fakeBackend{next: orderPage(3, "tok")},
		orders:      []page.OrderSummary{{ID: "42", TableNumber: 7, URL: "http://cafe.local/orders/42/"}},
	}
	o := loadedOrders(t, b, Options{})

	o, cmd := pressOrders(t, o, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !o.loading {
		t.Fatal("enter did not load the order")
	}
	o, _ = pressOrders(t, o, cmd())
	if o.screen == nil {
		t.Fatal("order screen not shown")
	}
	if len(b.opened) != 1 || b.opened[0] != "http://cafe.local/orders/42/" {
		t.Errorf("opened = %v", b.opened)
	}

	// keys now drive the order screen
	o, _ = pressOrders(t, o, keys("+"))
	if got := displayed(*o.screen); got != "4" {
		t.Errorf("display = %q, want 4", got)
	}
	if !strings.Contains(o.View(), "Борщ") {
		t.Errorf("view:\n%s", o.View())
	}
}

func TestOrdersFallbackURL(t *testing.T) {
	b := &fakeLister{
		fakeBackend: fakeBackend{next: orderPage(3, "tok")},
		orders:      []page.OrderSummary{{ID: "43", TableNumber: 1}},
	}
	o := loadedOrders(t, b, Options{})
	o, cmd := pressOrders(t, o, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || o.err == nil {
		t.Fatal("expected an error for an order without a link")
	}

	o = loadedOrders(t, b, Options{OrderURL: func(id string) (string, error) {
		return "http://cafe.local/orders/" + id + "/", nil
	}})
	o, cmd = pressOrders(t, o, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter did not load the order")
	}
	pressOrders(t, o, cmd())
	if len(b.opened) != 1 || b.opened[0] != "http://cafe.local/orders/43/" {
		t.Errorf("opened = %v", b.opened)
	}
}

func TestOrdersListError(t *testing.T) {
	b := &fakeLister{listErr: errors.New("403 forbidden")}
	o := loadedOrders(t, b, Options{})
	if !strings.Contains(o.View(), "403 forbidden") {
		t.Errorf("view:\n%s", o.View())
	}
}
