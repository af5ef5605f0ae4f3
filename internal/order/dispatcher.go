// Package order implements the client side of the table-order protocol:
// turning a user gesture into exactly one form submission against the
// current order page, with an optimistic quantity display in front of it.
package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/Makepad-fr/cafe/internal/logger"
	"github.com/Makepad-fr/cafe/internal/model"
	"github.com/Makepad-fr/cafe/internal/page"
)

var (
	// ErrMissingCSRF means the rendered page carries no csrf token.
	// Submitting would only be rejected by the server, so nothing is sent.
	ErrMissingCSRF = errors.New("csrf token missing from page")
	// ErrBusy means another mutation of this page is still in flight.
	ErrBusy = errors.New("a mutation is already in flight")
)

// Submitter posts a url-encoded form to the current page URL and returns
// the page the server renders in response.
type Submitter interface {
	Submit(ctx context.Context, form url.Values) (*page.OrderPage, error)
}

// Confirmer asks the user to agree to a guarded action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Answer is a Confirmer that always gives the same reply. The TUI uses it
// once its own modal has been answered; --yes uses Answer(true).
type Answer bool

func (a Answer) Confirm(context.Context, string) (bool, error) { return bool(a), nil }

// Outcome describes what a gesture led to. At most one of Declined,
// Rejected and Submitted is true.
type Outcome struct {
	Action    model.Action
	Declined  bool            // user said no to the confirmation
	Rejected  bool            // quantity would drop below 1
	Submitted bool            // the form was posted
	Page      *page.OrderPage // authoritative page after submission
}

// Dispatcher translates actions into submissions, and nothing else.
type Dispatcher struct {
	submit   Submitter
	confirm  Confirmer
	locale   string
	log      *logger.Logger
	inFlight *atomic.Bool
}

// NewDispatcher wires a dispatcher. A nil confirmer declines every guarded
// action; a nil logger discards.
func NewDispatcher(s Submitter, c Confirmer, locale string, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		submit:   s,
		confirm:  c,
		locale:   locale,
		log:      log,
		inFlight: &atomic.Bool{},
	}
}

// WithConfirmer returns a dispatcher sharing the submitter and the in-flight
// guard but asking c for confirmations.
func (d *Dispatcher) WithConfirmer(c Confirmer) *Dispatcher {
	cp := *d
	cp.confirm = c
	return &cp
}

// Busy reports whether a submission is in flight.
func (d *Dispatcher) Busy() bool { return d.inFlight.Load() }

// Dispatch validates, confirms and submits one action. Declining is not an
// error: the outcome says Declined and nothing is sent.
func (d *Dispatcher) Dispatch(ctx context.Context, a model.Action, token model.CSRFToken) (Outcome, error) {
	out := Outcome{Action: a}

	// The form is built first so a malformed page aborts before any prompt.
	form, err := Encode(a, token)
	if err != nil {
		return out, err
	}

	if a.NeedsConfirmation() {
		ok := false
		if d.confirm != nil {
			ok, err = d.confirm.Confirm(ctx, ConfirmMessage(a.Kind, d.locale))
			if err != nil {
				return out, fmt.Errorf("confirm %s: %w", a.Kind, err)
			}
		}
		if !ok {
			d.log.Debug("dispatch_declined", logger.RequestID(ctx), a.String())
			out.Declined = true
			return out, nil
		}
	}

	if !d.inFlight.CompareAndSwap(false, true) {
		return out, ErrBusy
	}
	defer d.inFlight.Store(false)

	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, logger.NewRequestID())
	}
	reqID := logger.RequestID(ctx)
	d.log.Info("dispatch", reqID, a.String())

	p, err := d.submit.Submit(ctx, form)
	if a.Kind == model.KindCompleteOrder && errors.Is(err, page.ErrNoOrder) && !errors.Is(err, page.ErrLoginPage) {
		// completing leaves the order page; any other landing off it was not
		// applied
		p, err = &page.OrderPage{LoadedAt: time.Now(), Closed: true}, nil
	}
	if err != nil {
		d.log.Error("dispatch_failed", reqID, a.String(), err)
		return out, fmt.Errorf("submit %s: %w", a.Kind, err)
	}
	out.Submitted = true
	out.Page = p
	return out, nil
}
