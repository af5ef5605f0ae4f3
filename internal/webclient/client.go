// Package webclient talks to the cafe web application the way a browser
// tab does: it loads order pages and posts url-encoded forms back to them.
package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Makepad-fr/cafe/internal/config"
	"github.com/Makepad-fr/cafe/internal/logger"
	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/page"
)

const maxErrorBody = 2048

// StatusError is a non-2xx answer, e.g. a stale csrf token (403) or an
// unknown order item (404).
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Client keeps the cookies of one server session.
type Client struct {
	http          *http.Client
	sessionCookie string
	session       string
	log           *logger.Logger
	now           func() time.Time
}

// New creates a client. session may be empty for servers without login.
func New(cfg config.ServerConfig, session string, log *logger.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:          &http.Client{Timeout: cfg.Timeout, Jar: jar},
		sessionCookie: cfg.SessionCookie,
		session:       session,
		log:           log,
		now:           time.Now,
	}, nil
}

// Fetch loads and parses an order page.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*page.OrderPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Submit posts form to pageURL. The page the server answers with, after
// following its redirect, is the new truth. Landing anywhere but an order
// page yields page.ErrNoOrder; what that means depends on the action and is
// decided by the caller.
func (c *Client) Submit(ctx context.Context, pageURL string, form url.Values) (*page.OrderPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Django checks the referer on https posts.
	req.Header.Set("Referer", pageURL)
	return c.do(req)
}

// FetchOrders loads the orders list.
func (c *Client) FetchOrders(ctx context.Context, listURL string) ([]page.OrderSummary, error) {
	var out []page.OrderSummary
	err := c.get(ctx, listURL, func(body io.Reader, final string) (err error) {
		out, err = page.ParseOrders(body, final)
		return err
	})
	return out, err
}

// FetchTables loads the tables list.
func (c *Client) FetchTables(ctx context.Context, listURL string) ([]page.Table, error) {
	var out []page.Table
	err := c.get(ctx, listURL, func(body io.Reader, _ string) (err error) {
		out, err = page.ParseTables(body)
		return err
	})
	return out, err
}

// FetchMenu loads the dishes of the menu page.
func (c *Client) FetchMenu(ctx context.Context, menuURL string) ([]model.Dish, error) {
	var out []model.Dish
	err := c.get(ctx, menuURL, func(body io.Reader, _ string) (err error) {
		out, err = page.ParseMenu(body)
		return err
	})
	return out, err
}

// FetchDashboard loads the counters of the index page.
func (c *Client) FetchDashboard(ctx context.Context, indexURL string) (page.Dashboard, error) {
	var out page.Dashboard
	err := c.get(ctx, indexURL, func(body io.Reader, _ string) (err error) {
		out, err = page.ParseDashboard(body)
		return err
	})
	return out, err
}

// Target binds Submit to one page URL.
func (c *Client) Target(pageURL string) Target {
	return Target{client: c, url: pageURL}
}

// Target submits to a fixed page.
type Target struct {
	client *Client
	url    string
}

func (t Target) Submit(ctx context.Context, form url.Values) (*page.OrderPage, error) {
	return t.client.Submit(ctx, t.url, form)
}

func (c *Client) get(ctx context.Context, u string, parse func(io.Reader, string) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.roundTrip(req, parse)
}

func (c *Client) do(req *http.Request) (*page.OrderPage, error) {
	var p *page.OrderPage
	err := c.roundTrip(req, func(body io.Reader, final string) (err error) {
		p, err = page.Parse(body, final, c.now())
		return err
	})
	return p, err
}

// roundTrip sends req and hands a 2xx body, with the URL it was finally
// served from, to parse.
func (c *Client) roundTrip(req *http.Request, parse func(io.Reader, string) error) error {
	c.seedSession(req.URL)
	req.Header.Set("Accept", "text/html")
	reqID := logger.RequestID(req.Context())
	if reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("http_request", reqID, req.Method+" "+req.URL.String(), err)
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("http_request", reqID, fmt.Sprintf("%s %s -> %d in %s",
		req.Method, req.URL, resp.StatusCode, c.now().Sub(start).Round(time.Millisecond)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: req.Method,
			URL:    req.URL.String(),
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	final := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return parse(resp.Body, final)
}

// seedSession puts the stored session cookie into the jar for u's host.
func (c *Client) seedSession(u *url.URL) {
	if c.session == "" || c.sessionCookie == "" {
		return
	}
	root := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	c.http.Jar.SetCookies(root, []*http.Cookie{{
		Name:  c.sessionCookie,
		Value: c.session,
		Path:  "/",
	}})
}
