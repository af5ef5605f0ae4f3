package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/ui"
)

// lineRow is one order line on screen. It is the quantity display its
// controller writes to, so the list holds pointers.
type lineRow struct {
	line model.OrderLine
	qty  string
}

func newLineRow(l model.OrderLine) *lineRow {
	return &lineRow{line: l, qty: strconv.Itoa(l.Quantity)}
}

func (r *lineRow) QuantityText() string     { return r.qty }
func (r *lineRow) SetQuantityText(s string) { r.qty = s }
func (r *lineRow) FilterValue() string      { return r.line.Dish.Name }

// dishItem adapts a menu dish to bubbles/list.Item
type dishItem struct{ dish model.Dish }

func (d dishItem) FilterValue() string { return d.dish.Name }

// rowDelegate renders single-line rows with a cursor.
type rowDelegate struct{}

func (rowDelegate) Height() int                             { return 1 }
func (rowDelegate) Spacing() int                            { return 0 }
func (rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var text string
	switch it := item.(type) {
	case *lineRow:
		text = ui.LineText(it.line, it.qty)
	case dishItem:
		text = ui.DishText(it.dish)
	case orderItem:
		text = ui.OrderSummaryText(it.order, it.now)
	default:
		return
	}
	t := ui.Current()
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor)
	}
	fmt.Fprint(w, prefix+text)
}
