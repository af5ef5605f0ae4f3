package cli

import (
	"context"
	"time"

	"github.com/Makepad-fr/cafe/internal/page"
	"github.com/Makepad-fr/cafe/internal/tui"
	"github.com/Makepad-fr/cafe/internal/ui"
)

func (e *env) doOrders(ctx context.Context, all bool) int {
	u, err := e.cfg.PageURL(e.cfg.Server.OrdersPath)
	if err != nil {
		return e.failed("orders", err)
	}
	orders, err := e.client.FetchOrders(ctx, u)
	if err != nil {
		return e.failed("orders", err)
	}

	title := "All orders"
	if !all {
		title = "Open orders"
		orders = page.Open(orders)
	}
	lines := []string{ui.Current().Title.Render(title)}
	if len(orders) == 0 {
		lines = append(lines, ui.Current().Muted.Render("no orders"))
	}
	now := time.Now()
	for _, o := range orders {
		lines = append(lines, ui.OrderSummaryText(o, now))
	}
	ui.Panel(lines)
	return 0
}

func (e *env) doTables(ctx context.Context) int {
	u, err := e.cfg.PageURL(e.cfg.Server.TablesPath)
	if err != nil {
		return e.failed("tables", err)
	}
	tables, err := e.client.FetchTables(ctx, u)
	if err != nil {
		return e.failed("tables", err)
	}
	lines := []string{ui.Current().Title.Render("Tables")}
	if len(tables) == 0 {
		lines = append(lines, ui.Current().Muted.Render("no tables"))
	}
	for _, t := range tables {
		lines = append(lines, ui.TableText(t))
	}
	ui.Panel(lines)
	return 0
}

func (e *env) doDishes(ctx context.Context, query string) int {
	u, err := e.cfg.PageURL(e.cfg.Server.MenuPath)
	if err != nil {
		return e.failed("dishes", err)
	}
	dishes, err := e.client.FetchMenu(ctx, u)
	if err != nil {
		return e.failed("dishes", err)
	}
	ui.Panel(dishLines(dishes, query))
	return 0
}

func (e *env) doStats(ctx context.Context) int {
	u, err := e.cfg.PageURL(e.cfg.Server.IndexPath)
	if err != nil {
		return e.failed("stats", err)
	}
	d, err := e.client.FetchDashboard(ctx, u)
	if err != nil {
		return e.failed("stats", err)
	}
	ui.Panel(ui.DashboardLines(d))
	return 0
}

// doPick opens the interactive screen on an order chosen from the open ones.
func (e *env) doPick(ctx context.Context) int {
	u, err := e.cfg.PageURL(e.cfg.Server.OrdersPath)
	if err != nil {
		return e.failed("open", err)
	}
	if err := tui.RunOrders(ctx, e.client, u, e.tuiOptions()); err != nil {
		return e.failed("open", err)
	}
	return 0
}
