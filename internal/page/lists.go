package page

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Makepad-fr/cafe/internal/model"
)

// Markup of the read-only list pages.
const (
	orderRowSelector = `[data-order-link]`
	tableRowSelector = `[data-table-id]`
	statSelector     = `[data-stat]`
	loginSelector    = `input[type=password], input[name=password]`
)

// OrderSummary is one row of the orders list.
type OrderSummary struct {
	ID          string
	TableNumber int
	CreatedAt   time.Time
	Completed   bool
	Total       string // as rendered
	URL         string // absolute link to the order page; empty when not rendered
}

// Table is one row of the tables list.
type Table struct {
	ID       string
	Number   int
	Seats    int
	Occupied bool
}

// Dashboard holds the counters of the index page, keyed by data-stat name
// (dishes_count, products_count, tables_count, active_orders_count).
type Dashboard map[string]int

// ParseOrders reads the orders list, newest first as the server renders it.
func ParseOrders(r io.Reader, pageURL string) ([]OrderSummary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if isLogin(doc) {
		return nil, ErrLoginPage
	}
	base, _ := url.Parse(pageURL)

	out := []OrderSummary{}
	doc.Find(orderRowSelector).Each(func(_ int, s *goquery.Selection) {
		o := OrderSummary{
			ID:        s.AttrOr("data-order-link", ""),
			CreatedAt: parseTime(s.AttrOr("data-created-at", "")),
			Total:     strings.TrimSpace(s.Find(".order-total").First().Text()),
		}
		o.TableNumber, _ = strconv.Atoi(strings.TrimSpace(s.AttrOr("data-table-number", "")))
		o.Completed, _ = strconv.ParseBool(strings.TrimSpace(s.AttrOr("data-completed", "false")))
		href, ok := s.Attr("href")
		if !ok {
			href, ok = s.Find("a[href]").First().Attr("href")
		}
		if ok && base != nil {
			if ref, err := url.Parse(href); err == nil {
				o.URL = base.ResolveReference(ref).String()
			}
		}
		out = append(out, o)
	})
	return out, nil
}

// ParseTables reads the tables list.
func ParseTables(r io.Reader) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if isLogin(doc) {
		return nil, ErrLoginPage
	}
	out := []Table{}
	doc.Find(tableRowSelector).Each(func(_ int, s *goquery.Selection) {
		t := Table{ID: s.AttrOr("data-table-id", "")}
		t.Number, _ = strconv.Atoi(strings.TrimSpace(s.AttrOr("data-table-number", "")))
		t.Seats, _ = strconv.Atoi(strings.TrimSpace(s.AttrOr("data-seats", "")))
		t.Occupied, _ = strconv.ParseBool(strings.TrimSpace(s.AttrOr("data-occupied", "false")))
		out = append(out, t)
	})
	return out, nil
}

// ParseMenu reads the dishes of the menu page.
func ParseMenu(r io.Reader) ([]model.Dish, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if isLogin(doc) {
		return nil, ErrLoginPage
	}
	return menuOf(doc), nil
}

// ParseDashboard reads the index counters. A page without any is not the
// dashboard.
func ParseDashboard(r io.Reader) (Dashboard, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if isLogin(doc) {
		return nil, ErrLoginPage
	}
	d := Dashboard{}
	doc.Find(statSelector).Each(func(_ int, s *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil {
			d[s.AttrOr("data-stat", "")] = n
		}
	})
	if len(d) == 0 {
		return nil, fmt.Errorf("dashboard %s: %w", statSelector, ErrMissingAnchor)
	}
	return d, nil
}

// Open keeps the orders not yet completed.
func Open(orders []OrderSummary) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		if !o.Completed {
			out = append(out, o)
		}
	}
	return out
}
