// Package tui is the interactive order screen. Every mutation goes through
// the order package exactly as the one-shot commands do; this package only
// decides when to ask and what to show.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/cafe/internal/logger"
	"github.com/Makepad-fr/cafe/internal/menu"
	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/order"
	"github.com/Makepad-fr/cafe/internal/page"
	"github.com/Makepad-fr/cafe/internal/ui"
)

// Backend loads order pages and posts forms to them.
type Backend interface {
	Fetch(ctx context.Context, pageURL string) (*page.OrderPage, error)
	Submit(ctx context.Context, pageURL string, form url.Values) (*page.OrderPage, error)
}

type Options struct {
	Locale string
	Tick   time.Duration
	Log    *logger.Logger

	// OrderURL resolves an order id when the orders list renders no link.
	OrderURL func(id string) (string, error)
}

type (
	tickMsg    time.Time
	pageMsg    struct {
		page *page.OrderPage
		err  error
	}
	outcomeMsg struct {
		out order.Outcome
		err error
	}
)

// pageTarget binds a backend to the page currently shown.
type pageTarget struct {
	b   Backend
	url string
}

func (t pageTarget) Submit(ctx context.Context, form url.Values) (*page.OrderPage, error) {
	return t.b.Submit(ctx, t.url, form)
}

var (
	incBind      = key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more"))
	decBind      = key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "less"))
	removeBind   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove"))
	completeBind = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete"))
	addBind      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add dish"))
	reloadBind   = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	quitBind     = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
)

type Model struct {
	ctx     context.Context
	backend Backend
	opt     Options

	page  *page.OrderPage
	disp  *order.Dispatcher
	ctrls map[string]*order.QuantityController
	lines list.Model

	// menu picker
	picking bool
	picker  list.Model

	// pending confirmation of a guarded action
	confirming *model.Action

	busy   bool // a mutation is in flight; gestures are ignored
	status string
	err    error
	closed bool

	now           time.Time
	width, height int
}

// New builds the screen for an already loaded page.
func New(ctx context.Context, b Backend, p *page.OrderPage, opt Options) Model {
	if opt.Tick <= 0 {
		opt.Tick = time.Second
	}
	if opt.Log == nil {
		opt.Log = logger.Nop()
	}

	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("dish", "dishes")
	l.Styles.HelpStyle = ui.Current().Muted
	bindings := func() []key.Binding {
		return []key.Binding{incBind, decBind, removeBind, completeBind, addBind, reloadBind, quitBind}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	pk := list.New(nil, rowDelegate{}, 0, 0)
	pk.Title = "Menu"
	pk.Styles.Title = ui.Current().Title
	pk.SetFilteringEnabled(true)
	pk.Filter = menu.ListFilter
	pk.FilterInput.Prompt = "/ "
	pk.DisableQuitKeybindings()
	pk.SetStatusBarItemName("dish", "dishes")

	m := Model{
		ctx:     ctx,
		backend: b,
		opt:     opt,
		lines:   l,
		picker:  pk,
		now:     time.Now(),
		width:   80,
		height:  24,
	}
	m.setPage(p)
	m.resize()
	return m
}

// Run fetches the page and drives the screen until the user quits.
func Run(ctx context.Context, b Backend, pageURL string, opt Options) error {
	p, err := b.Fetch(ctx, pageURL)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(New(ctx, b, p, opt), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.closed {
		ui.OK("order completed")
	}
	return nil
}

// setPage replaces all client state with the page the server rendered.
func (m *Model) setPage(p *page.OrderPage) {
	m.page = p
	m.disp = order.NewDispatcher(pageTarget{b: m.backend, url: p.URL}, nil, m.opt.Locale, m.opt.Log)
	m.ctrls = make(map[string]*order.QuantityController, len(p.Order.Lines))

	idx := m.lines.Index()
	items := make([]list.Item, 0, len(p.Order.Lines))
	for _, l := range p.Order.Lines {
		row := newLineRow(l)
		m.ctrls[l.ID] = order.NewQuantityController(l.ID, row, m.disp)
		items = append(items, row)
	}
	m.lines.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.lines.Select(idx)
	}

	dishes := make([]list.Item, 0, len(p.Menu))
	for _, d := range p.Menu {
		dishes = append(dishes, dishItem{dish: d})
	}
	m.picker.SetItems(dishes)
}

func (m *Model) resize() {
	// header, status line and frame
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.lines.SetSize(m.width-4, h)
	m.picker.SetSize(m.width-4, h)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opt.Tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case pageMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setPage(msg.page)
		return m, nil

	case outcomeMsg:
		return m.applyOutcome(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirming != nil {
			return m.updateConfirm(msg)
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateLines(msg)
	}

	var cmd tea.Cmd
	if m.picking {
		m.picker, cmd = m.picker.Update(msg)
	} else {
		m.lines, cmd = m.lines.Update(msg)
	}
	return m, cmd
}

func (m Model) updateLines(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, quitBind) {
		return m, tea.Quit
	}
	if m.busy {
		// one mutation per page; wait for the reload
		return m, nil
	}
	switch {
	case key.Matches(msg, incBind):
		return m.requestDelta(1)
	case key.Matches(msg, decBind):
		return m.requestDelta(-1)
	case key.Matches(msg, removeBind):
		if row, ok := m.lines.SelectedItem().(*lineRow); ok {
			return m.askConfirm(model.RemoveItem(row.line.ID))
		}
		return m, nil
	case key.Matches(msg, completeBind):
		return m.askConfirm(model.CompleteOrder())
	case key.Matches(msg, addBind):
		m.picking = true
		m.err = nil
		return m, nil
	case key.Matches(msg, reloadBind):
		m.busy = true
		m.status = "reloading…"
		return m, m.fetch()
	}
	var cmd tea.Cmd
	m.lines, cmd = m.lines.Update(msg)
	return m, cmd
}

func (m Model) requestDelta(delta int) (tea.Model, tea.Cmd) {
	row, ok := m.lines.SelectedItem().(*lineRow)
	if !ok {
		return m, nil
	}
	if m.page.CSRF.Empty() {
		m.err = order.ErrMissingCSRF
		return m, nil
	}
	a, ok, err := m.ctrls[row.line.ID].Step(delta)
	if err != nil {
		m.err = err
		return m, nil
	}
	if !ok {
		// below the floor: silently ignored
		return m, nil
	}
	return m.submit(m.disp, a)
}

func (m Model) askConfirm(a model.Action) (tea.Model, tea.Cmd) {
	// a page that cannot take the mutation never shows the prompt
	if _, err := order.Encode(a, m.page.CSRF); err != nil {
		m.err = err
		return m, nil
	}
	m.confirming = &a
	m.err = nil
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := *m.confirming
	switch strings.ToLower(msg.String()) {
	case "y", "д":
		m.confirming = nil
		return m.submit(m.disp.WithConfirmer(order.Answer(true)), a)
	case "n", "н", "esc", "enter":
		m.confirming = nil
		out, err := m.disp.WithConfirmer(order.Answer(false)).Dispatch(m.ctx, a, m.page.CSRF)
		if err != nil {
			m.err = err
		} else if out.Declined {
			m.status = "cancelled"
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.picker.FilterState() == list.Filtering
	switch msg.String() {
	case "esc":
		if m.picker.FilterState() == list.Unfiltered {
			m.picking = false
			return m, nil
		}
	case "enter":
		if filtering {
			break
		}
		it, ok := m.picker.SelectedItem().(dishItem)
		if !ok || m.busy {
			return m, nil
		}
		m.picking = false
		m.picker.ResetFilter()
		return m.submit(m.disp, model.AddItem(it.dish.ID))
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// submit runs the dispatch off the update loop.
func (m Model) submit(d *order.Dispatcher, a model.Action) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	m.status = "sending " + a.String() + "…"
	ctx := logger.WithRequestID(m.ctx, logger.NewRequestID())
	tok := m.page.CSRF
	return m, func() tea.Msg {
		out, err := d.Dispatch(ctx, a, tok)
		return outcomeMsg{out: out, err: err}
	}
}

func (m Model) fetch() tea.Cmd {
	ctx, b, u := m.ctx, m.backend, m.page.URL
	return func() tea.Msg {
		p, err := b.Fetch(ctx, u)
		return pageMsg{page: p, err: err}
	}
}

func (m Model) applyOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		// the optimistic display may now lie; the server's page decides
		m.err = msg.err
		m.status = ""
		if errors.Is(msg.err, order.ErrMissingCSRF) || errors.Is(msg.err, order.ErrBusy) {
			return m, nil
		}
		m.busy = true
		return m, m.fetch()
	}
	switch {
	case msg.out.Declined:
		m.status = "cancelled"
	case msg.out.Page != nil && msg.out.Page.Closed:
		m.closed = true
		return m, tea.Quit
	case msg.out.Page != nil:
		m.status = "saved"
		m.setPage(msg.out.Page)
	}
	return m, nil
}

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(ui.OrderHeader(m.page, m.now))
	b.WriteString("\n\n")

	if m.picking {
		b.WriteString(m.picker.View())
	} else {
		b.WriteString(m.lines.View())
	}

	if m.confirming != nil {
		prompt := order.ConfirmMessage(m.confirming.Kind, m.opt.Locale)
		box := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		b.WriteString("\n" + box.Render(t.Pending.Render(prompt)+"  [y/N]"))
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(t.Error.Render(t.SymFail + " " + m.err.Error()))
	case m.status != "":
		b.WriteString(t.Muted.Render(m.status))
	}
	if m.page.CSRF.Empty() {
		b.WriteString("\n" + t.Error.Render(fmt.Sprintf("%s page has no csrf token: changes are disabled", t.SymFail)))
	}
	return ui.PanelString(b.String())
}
