package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/cafe/internal/page"
	"github.com/Makepad-fr/cafe/internal/ui"
)

// OrdersBackend also loads the orders list.
type OrdersBackend interface {
	Backend
	FetchOrders(ctx context.Context, listURL string) ([]page.OrderSummary, error)
}

type ordersMsg struct {
	orders []page.OrderSummary
	err    error
}

// orderItem adapts an orders list row to bubbles/list.Item
type orderItem struct {
	order page.OrderSummary
	now   time.Time
}

func (o orderItem) FilterValue() string {
	return fmt.Sprintf("%d %s", o.order.TableNumber, o.order.ID)
}

var openBind = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))

// Orders lists the open orders; enter loads the selected one into the
// order screen, which then owns the program.
type Orders struct {
	ctx     context.Context
	backend OrdersBackend
	listURL string
	opt     Options

	list    list.Model
	screen  *Model
	loading bool
	err     error

	width, height int
}

// NewOrders builds the picker; Init loads the list.
func NewOrders(ctx context.Context, b OrdersBackend, listURL string, opt Options) Orders {
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.Title = "Open orders"
	l.Styles.Title = ui.Current().Title
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("order", "orders")
	bindings := func() []key.Binding { return []key.Binding{openBind, reloadBind, quitBind} }
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	o := Orders{
		ctx:     ctx,
		backend: b,
		listURL: listURL,
		opt:     opt,
		list:    l,
		loading: true,
		width:   80,
		height:  24,
	}
	o.list.SetSize(o.width-4, o.height-4)
	return o
}

func (o Orders) Init() tea.Cmd { return o.load() }

func (o Orders) load() tea.Cmd {
	ctx, b, u := o.ctx, o.backend, o.listURL
	return func() tea.Msg {
		orders, err := b.FetchOrders(ctx, u)
		return ordersMsg{orders: orders, err: err}
	}
}

func (o Orders) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if o.screen != nil {
		next, cmd := o.screen.Update(msg)
		if m, ok := next.(Model); ok {
			o.screen = &m
		}
		return o, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width, o.height = msg.Width, msg.Height
		o.list.SetSize(o.width-4, o.height-4)
		return o, nil

	case ordersMsg:
		o.loading = false
		o.err = msg.err
		if msg.err != nil {
			return o, nil
		}
		now := time.Now()
		open := page.Open(msg.orders)
		items := make([]list.Item, 0, len(open))
		for _, s := range open {
			items = append(items, orderItem{order: s, now: now})
		}
		return o, o.list.SetItems(items)

	case pageMsg:
		o.loading = false
		if msg.err != nil {
			o.err = msg.err
			return o, nil
		}
		m := New(o.ctx, o.backend, msg.page, o.opt)
		m.width, m.height = o.width, o.height
		m.resize()
		o.screen = &m
		return o, m.Init()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return o, tea.Quit
		}
		if o.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, quitBind):
			return o, tea.Quit
		case o.loading:
			return o, nil
		case key.Matches(msg, reloadBind):
			o.loading = true
			o.err = nil
			return o, o.load()
		case key.Matches(msg, openBind):
			it, ok := o.list.SelectedItem().(orderItem)
			if !ok {
				return o, nil
			}
			u := it.order.URL
			if u == "" && o.opt.OrderURL != nil {
				var err error
				if u, err = o.opt.OrderURL(it.order.ID); err != nil {
					o.err = err
					return o, nil
				}
			}
			if u == "" {
				o.err = fmt.Errorf("order %s: no link on the list page", it.order.ID)
				return o, nil
			}
			o.loading = true
			o.err = nil
			ctx, b := o.ctx, o.backend
			return o, func() tea.Msg {
				p, err := b.Fetch(ctx, u)
				return pageMsg{page: p, err: err}
			}
		}
	}

	var cmd tea.Cmd
	o.list, cmd = o.list.Update(msg)
	return o, cmd
}

func (o Orders) View() string {
	if o.screen != nil {
		return o.screen.View()
	}
	t := ui.Current()
	var b strings.Builder
	b.WriteString(o.list.View())
	b.WriteString("\n")
	switch {
	case o.err != nil:
		b.WriteString(t.Error.Render(t.SymFail + " " + o.err.Error()))
	case o.loading:
		b.WriteString(t.Muted.Render("loading…"))
	case len(o.list.Items()) == 0:
		b.WriteString(t.Muted.Render("no open orders"))
	}
	return ui.PanelString(b.String())
}

// RunOrders drives the picker and the order screen opened from it.
func RunOrders(ctx context.Context, b OrdersBackend, listURL string, opt Options) error {
	final, err := tea.NewProgram(NewOrders(ctx, b, listURL, opt), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fo, ok := final.(Orders); ok && fo.screen != nil && fo.screen.closed {
		ui.OK("order completed")
	}
	return nil
}
