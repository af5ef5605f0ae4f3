package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/cafe/internal/elapsed"
	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/page"
)

// PanelString frames content with the theme border.
func PanelString(content string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(content)
}

// Panel prints lines inside a frame.
func Panel(lines []string) {
	fmt.Fprintln(Stdout, PanelString(strings.Join(lines, "\n")))
}

// OrderHeader is the one-line summary above the lines of an order.
func OrderHeader(p *page.OrderPage, now time.Time) string {
	t := Current()
	status := t.Pending.Render("open")
	if p.Order.Completed {
		status = t.Success.Render("completed")
	}
	return fmt.Sprintf("%s  %s  %s %s  %s %s",
		t.Title.Render(fmt.Sprintf("Table %d", p.Order.TableNumber)),
		t.Muted.Render("#"+p.Order.ID),
		t.Accent.Render("⏱"), elapsed.Since(p.Since(), now),
		t.Accent.Render("Total"), p.Order.Total().StringFixed(2),
	) + "  " + status
}

// LineText renders one order line; qty is passed separately so the TUI can
// show its optimistic value.
func LineText(l model.OrderLine, qty string) string {
	t := Current()
	name := l.Dish.Name
	if r := []rune(name); len(r) > 40 {
		name = string(r[:37]) + "..."
	}
	return fmt.Sprintf("%s %-40s %s × %s",
		t.Muted.Render(fmt.Sprintf("[%s]", l.ID)),
		name,
		t.Accent.Render(qty),
		l.Dish.Price.StringFixed(2),
	)
}

func DishText(d model.Dish) string {
	t := Current()
	return fmt.Sprintf("%s %s  %s", t.Muted.Render(fmt.Sprintf("[%s]", d.ID)), d.Name, d.Price.StringFixed(2))
}

// OrderLines renders a whole order page for the one-shot commands.
func OrderLines(p *page.OrderPage, now time.Time) []string {
	lines := []string{OrderHeader(p, now), ""}
	if len(p.Order.Lines) == 0 {
		lines = append(lines, Current().Muted.Render("no dishes yet"))
	}
	for _, l := range p.Order.Lines {
		lines = append(lines, LineText(l, fmt.Sprint(l.Quantity)))
	}
	if p.CSRF.Empty() {
		lines = append(lines, "", Current().Error.Render("page has no csrf token: changes are disabled"))
	}
	return lines
}

// OrderSummaryText renders one row of the orders list.
func OrderSummaryText(o page.OrderSummary, now time.Time) string {
	t := Current()
	status := t.Pending.Render("open")
	since := elapsed.Since(o.CreatedAt, now)
	if o.Completed {
		status = t.Success.Render("completed")
	}
	if o.CreatedAt.IsZero() {
		since = "--:--:--"
	}
	return fmt.Sprintf("%s %-9s %s %s  %s",
		t.Muted.Render(fmt.Sprintf("[%s]", o.ID)),
		fmt.Sprintf("Table %d", o.TableNumber),
		t.Accent.Render("⏱"), since,
		status,
	) + totalSuffix(o.Total)
}

func totalSuffix(total string) string {
	if total == "" {
		return ""
	}
	return "  " + Current().Accent.Render("Total") + " " + total
}

// TableText renders one row of the tables list.
func TableText(tb page.Table) string {
	t := Current()
	state := t.Success.Render("free")
	if tb.Occupied {
		state = t.Pending.Render("occupied")
	}
	return fmt.Sprintf("%s %-9s %2d seats  %s",
		t.Muted.Render(fmt.Sprintf("[%s]", tb.ID)),
		fmt.Sprintf("Table %d", tb.Number),
		tb.Seats,
		state,
	)
}

// DashboardLines renders the index counters in a stable order.
func DashboardLines(d page.Dashboard) []string {
	t := Current()
	labels := []struct{ key, label string }{
		{"active_orders_count", "Open orders"},
		{"tables_count", "Tables"},
		{"dishes_count", "Dishes"},
		{"products_count", "Products"},
	}
	lines := []string{t.Title.Render("Cafe")}
	for _, l := range labels {
		if n, ok := d[l.key]; ok {
			lines = append(lines, fmt.Sprintf("%-12s %s", l.label, t.Accent.Render(fmt.Sprint(n))))
		}
	}
	return lines
}
