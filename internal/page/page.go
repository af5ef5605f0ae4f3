// Package page reads the server-rendered order page. It is the only place
// that knows the markup; everything else works on the typed OrderPage.
package page

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/cafe/internal/model"
)

// Markup contract with the server templates.
const (
	csrfSelector  = `input[name="csrfmiddlewaretoken"]`
	orderSelector = `[data-order-id]`
	lineSelector  = `[data-order-item-id]`
	menuSelector  = `[data-menu-dish-id]`
	nameSelector  = `.dish-name`
	priceSelector = `.dish-price`
	qtySelector   = `.quantity`
)

// ErrMissingAnchor means the page lacks an element the client relies on.
// The page is malformed relative to the client; nothing is recoverable locally.
var ErrMissingAnchor = errors.New("required page element missing")

// ErrNoOrder means the document is not an order page at all, which is what
// the server renders once an order is closed.
var ErrNoOrder = fmt.Errorf("order root %s: %w", orderSelector, ErrMissingAnchor)

// ErrLoginPage means the server answered with its login form: the session
// is missing or expired.
var ErrLoginPage = errors.New("server answered with the login page")

// OrderPage is one rendered order page: the client's whole view of the truth
// until the next page replaces it.
type OrderPage struct {
	URL      string
	CSRF     model.CSRFToken // empty when the hidden field is absent
	Order    model.Order
	Menu     []model.Dish
	LoadedAt time.Time

	// Closed is set when completing the order navigated away from its page.
	Closed bool
}

// Parse reads an order page. A missing csrf field is not a parse error:
// the page can still be shown, but every dispatch against it will refuse.
func Parse(r io.Reader, pageURL string, loadedAt time.Time) (*OrderPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := &OrderPage{URL: pageURL, LoadedAt: loadedAt}
	if tok, ok := doc.Find(csrfSelector).First().Attr("value"); ok {
		p.CSRF = model.CSRFToken(strings.TrimSpace(tok))
	}

	root := doc.Find(orderSelector).First()
	if root.Length() == 0 {
		if isLogin(doc) {
			return nil, fmt.Errorf("%w: %w", ErrLoginPage, ErrNoOrder)
		}
		return nil, ErrNoOrder
	}
	p.Order.ID = root.AttrOr("data-order-id", "")
	if n, err := strconv.Atoi(strings.TrimSpace(root.AttrOr("data-table-number", ""))); err == nil {
		p.Order.TableNumber = n
	}
	p.Order.CreatedAt = parseTime(root.AttrOr("data-created-at", ""))
	p.Order.Completed, _ = strconv.ParseBool(strings.TrimSpace(root.AttrOr("data-completed", "false")))

	var lineErr error
	root.Find(lineSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		line, err := parseLine(s)
		if err != nil {
			lineErr = err
			return false
		}
		p.Order.Lines = append(p.Order.Lines, line)
		return true
	})
	if lineErr != nil {
		return nil, lineErr
	}

	p.Menu = menuOf(doc)
	return p, nil
}

func isLogin(doc *goquery.Document) bool {
	return doc.Find(loginSelector).Length() > 0
}

func menuOf(doc *goquery.Document) []model.Dish {
	var dishes []model.Dish
	doc.Find(menuSelector).Each(func(_ int, s *goquery.Selection) {
		dishes = append(dishes, model.Dish{
			ID:    s.AttrOr("data-menu-dish-id", ""),
			Name:  strings.TrimSpace(s.Find(nameSelector).First().Text()),
			Price: parsePrice(s.Find(priceSelector).First().Text()),
		})
	})
	return dishes
}

func parseLine(s *goquery.Selection) (model.OrderLine, error) {
	id := s.AttrOr("data-order-item-id", "")
	qtyNode := s.Find(qtySelector).First()
	if qtyNode.Length() == 0 {
		return model.OrderLine{}, fmt.Errorf("line %s quantity: %w", id, ErrMissingAnchor)
	}
	txt := strings.TrimSpace(qtyNode.Text())
	qty, err := strconv.Atoi(txt)
	if err != nil || qty < 1 {
		return model.OrderLine{}, fmt.Errorf("line %s: bad quantity %q", id, txt)
	}
	return model.OrderLine{
		ID:       id,
		Quantity: qty,
		Dish: model.Dish{
			ID:    s.AttrOr("data-dish-id", ""),
			Name:  strings.TrimSpace(s.Find(nameSelector).First().Text()),
			Price: parsePrice(s.Find(priceSelector).First().Text()),
		},
	}, nil
}

// Line returns the order line with the given id.
func (p *OrderPage) Line(id string) (model.OrderLine, error) {
	for _, l := range p.Order.Lines {
		if l.ID == id {
			return l, nil
		}
	}
	return model.OrderLine{}, fmt.Errorf("order line %s: %w", id, ErrMissingAnchor)
}

// Dish returns the menu entry with the given id.
func (p *OrderPage) Dish(id string) (model.Dish, bool) {
	for _, d := range p.Menu {
		if d.ID == id {
			return d, true
		}
	}
	return model.Dish{}, false
}

// Since is the start of the elapsed-time display: order creation when the
// server rendered it, page load otherwise.
func (p *OrderPage) Since() time.Time {
	if !p.Order.CreatedAt.IsZero() {
		return p.Order.CreatedAt
	}
	return p.LoadedAt
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// naive datetimes are rendered in server local time
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// parsePrice accepts "350.00", "350,00 руб." and the like.
func parsePrice(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	d, err := decimal.NewFromString(strings.Trim(b.String(), "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}
