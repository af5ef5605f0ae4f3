package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Makepad-fr/cafe/internal/auth"
	"github.com/Makepad-fr/cafe/internal/config"
	"github.com/Makepad-fr/cafe/internal/logger"
	"github.com/Makepad-fr/cafe/internal/menu"
	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/order"
	"github.com/Makepad-fr/cafe/internal/page"
	"github.com/Makepad-fr/cafe/internal/tui"
	"github.com/Makepad-fr/cafe/internal/ui"
	"github.com/Makepad-fr/cafe/internal/webclient"
)

// Options tune behavior from root flags.
type Options struct {
	ConfigPath string
	Yes        bool      // accept confirmations without asking
	Stdin      io.Reader // answers to confirmations; os.Stdin when nil
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "auth":
		return runAuth(a)
	case "config":
		return runConfig(a, opt)
	}

	need := map[string]int{"show": 1, "complete": 1, "add": 2, "rm": 2, "qty": 3, "tables": 0, "stats": 0}
	if n, ok := need[cmd]; ok && len(a) != n {
		ui.Fail("usage: " + usage[cmd])
		return 2
	}
	switch {
	case cmd == "menu" && len(a) == 0,
		cmd == "open" && len(a) > 1,
		cmd == "orders" && (len(a) > 1 || len(a) == 1 && a[0] != "all"):
		ui.Fail("usage: " + usage[cmd])
		return 2
	}
	if _, ok := usage[cmd]; !ok {
		ui.Fail("unknown subcommand: " + cmd)
		fmt.Fprintln(ui.Stderr)
		PrintHelp()
		return 2
	}

	var delta int
	if cmd == "qty" {
		d, err := strconv.Atoi(a[2])
		if err != nil {
			ui.Fail("qty: not a number: " + a[2])
			return 2
		}
		delta = d
	}

	e, code := setup(opt)
	if code != 0 {
		return code
	}
	defer e.close()

	switch cmd {
	case "orders":
		return e.doOrders(ctx, len(a) == 1)
	case "tables":
		return e.doTables(ctx)
	case "dishes":
		return e.doDishes(ctx, strings.Join(a, " "))
	case "stats":
		return e.doStats(ctx)
	case "open":
		if len(a) == 0 {
			return e.doPick(ctx)
		}
	}

	pageURL, err := e.cfg.OrderURL(a[0])
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}

	if cmd == "open" {
		if err := tui.Run(ctx, e.client, pageURL, e.tuiOptions()); err != nil {
			return e.failed("open", err)
		}
		return 0
	}

	p, err := e.client.Fetch(ctx, pageURL)
	if err != nil {
		return e.failed("load", err)
	}

	switch cmd {
	case "show":
		ui.Panel(ui.OrderLines(p, time.Now()))
		return 0
	case "menu":
		return doMenu(p, strings.Join(a[1:], " "))
	case "add":
		return e.dispatch(ctx, p, model.AddItem(a[1]))
	case "rm":
		if _, err := p.Line(a[1]); err != nil {
			return e.failed("rm", err)
		}
		return e.dispatch(ctx, p, model.RemoveItem(a[1]))
	case "complete":
		return e.dispatch(ctx, p, model.CompleteOrder())
	case "qty":
		return e.quantity(ctx, p, a[1], delta)
	}
	return 2
}

var usage = map[string]string{
	"show":     "cafe show <order>",
	"menu":     "cafe menu <order> [query...]",
	"add":      "cafe add <order> <dish-id>",
	"qty":      "cafe qty <order> <item-id> <delta>",
	"rm":       "cafe rm <order> <item-id>",
	"complete": "cafe complete <order>",
	"open":     "cafe open [order]",
	"orders":   "cafe orders [all]",
	"tables":   "cafe tables",
	"dishes":   "cafe dishes [query...]",
	"stats":    "cafe stats",
}

func PrintHelp() {
	fmt.Fprint(ui.Stdout, `cafe - table orders from the terminal

Usage:
  cafe [flags] <subcommand> [args]

<order> is an order id or the full URL of the order page.

Subcommands:
  show <order>                    Show the order
  menu <order> [query...]         List dishes whose name contains query
  add <order> <dish-id>           Add a dish
  qty <order> <item-id> <delta>   Change a line's quantity (+1, -1, ...)
  rm <order> <item-id>            Remove a line (asks first)
  complete <order>                Complete the order (asks first)
  open [order]                    Interactive order screen; picks from open orders without one
  orders [all]                    List open orders (all: completed too)
  tables                          List tables
  dishes [query...]               List the menu
  stats                           Counters from the start page
  auth <login|logout|status>      Server session
  config init                     Write a default config file

Examples:
  cafe show 42
  cafe menu 42 борщ
  cafe qty 42 901 -1
  cafe --yes complete 42
  cafe open
`)
}

// env is what every networked subcommand needs.
type env struct {
	cfg     *config.Config
	client  *webclient.Client
	log     *logger.Logger
	confirm order.Confirmer
	close   func()
}

func setup(opt Options) (*env, int) {
	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return nil, 2
	}
	ui.SetTheme(cfg.UI.Theme)

	log, closer, err := logger.Open("cafe", cfg.Log.Path, cfg.Log.Level)
	closeFn := func() {}
	if err != nil {
		ui.Hint("logging disabled: " + err.Error())
		log = logger.Nop()
	} else {
		closeFn = func() { closer.Close() }
	}

	sess, err := auth.Get()
	if err != nil {
		ui.Fail("session: " + err.Error())
		closeFn()
		return nil, 1
	}
	value := ""
	if sess != nil {
		value = sess.Value
	}
	client, err := webclient.New(cfg.Server, value, log)
	if err != nil {
		ui.Fail(err.Error())
		closeFn()
		return nil, 1
	}

	var confirm order.Confirmer = order.Answer(true)
	if !opt.Yes {
		in := opt.Stdin
		if in == nil {
			in = os.Stdin
		}
		confirm = ui.PromptConfirmer{In: in, Out: ui.Stdout}
	}
	return &env{cfg: cfg, client: client, log: log, confirm: confirm, close: closeFn}, 0
}

func (e *env) tuiOptions() tui.Options {
	return tui.Options{
		Locale:   e.cfg.UI.Locale,
		Tick:     e.cfg.UI.Tick,
		Log:      e.log,
		OrderURL: e.cfg.OrderURL,
	}
}

func (e *env) dispatcher(p *page.OrderPage) *order.Dispatcher {
	return order.NewDispatcher(e.client.Target(p.URL), e.confirm, e.cfg.UI.Locale, e.log)
}

func (e *env) dispatch(ctx context.Context, p *page.OrderPage, a model.Action) int {
	out, err := e.dispatcher(p).Dispatch(ctx, a, p.CSRF)
	if err != nil {
		return e.failed(string(a.Kind), err)
	}
	return report(out)
}

// quantityText is the display of a line for a one-shot command.
type quantityText struct{ text string }

func (q *quantityText) QuantityText() string     { return q.text }
func (q *quantityText) SetQuantityText(s string) { q.text = s }

func (e *env) quantity(ctx context.Context, p *page.OrderPage, itemID string, delta int) int {
	line, err := p.Line(itemID)
	if err != nil {
		return e.failed("qty", err)
	}
	view := &quantityText{text: strconv.Itoa(line.Quantity)}
	out, err := order.NewQuantityController(itemID, view, e.dispatcher(p)).RequestDelta(ctx, delta, p.CSRF)
	if err != nil {
		return e.failed("qty", err)
	}
	return report(out)
}

func report(out order.Outcome) int {
	switch {
	case out.Declined, out.Rejected:
		return 0
	case out.Page != nil && out.Page.Closed:
		ui.OK("order completed")
	case out.Page != nil:
		ui.OK("saved")
		ui.Panel(ui.OrderLines(out.Page, time.Now()))
	}
	return 0
}

func (e *env) failed(action string, err error) int {
	e.log.Error(action, "", "command failed", err)
	var se *webclient.StatusError
	switch {
	case errors.Is(err, order.ErrMissingCSRF):
		ui.Fail(action + ": the page has no csrf token, nothing was sent")
	case errors.As(err, &se) && se.Code == http.StatusForbidden:
		ui.Fail(fmt.Sprintf("%s: server refused (%d)", action, se.Code))
		ui.Hint("Hint: log in again with `cafe auth login`")
	case errors.Is(err, page.ErrLoginPage), errors.Is(err, page.ErrNoOrder):
		ui.Fail(action + ": " + err.Error())
		ui.Hint("Hint: the server did not show the order; log in again with `cafe auth login`")
	case errors.Is(err, page.ErrMissingAnchor):
		ui.Fail(action + ": " + err.Error())
		ui.Hint("Hint: run `cafe show <order>` to see valid item ids")
	default:
		ui.Fail(action + ": " + err.Error())
	}
	return 1
}

func doMenu(p *page.OrderPage, query string) int {
	ui.Panel(dishLines(p.Menu, query))
	return 0
}

func dishLines(all []model.Dish, query string) []string {
	dishes := menu.Filter(all, query)
	lines := []string{ui.Current().Title.Render("Menu")}
	if len(dishes) == 0 {
		lines = append(lines, ui.Current().Muted.Render("no dishes match"))
	}
	for _, d := range dishes {
		lines = append(lines, ui.DishText(d))
	}
	return lines
}
