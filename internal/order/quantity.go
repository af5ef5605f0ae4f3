package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/cafe/internal/model"
)

// ErrBadQuantity means the quantity display does not hold a positive integer.
var ErrBadQuantity = errors.New("quantity display is not a positive integer")

// QuantityView is the display of one order line's quantity, handed to the
// controller at wiring time.
type QuantityView interface {
	QuantityText() string
	SetQuantityText(string)
}

// QuantityController owns the optimistic quantity of one order line.
// Its state lives only until the next page replaces it.
type QuantityController struct {
	itemID string
	view   QuantityView
	disp   *Dispatcher
}

func NewQuantityController(itemID string, view QuantityView, d *Dispatcher) *QuantityController {
	return &QuantityController{itemID: itemID, view: view, disp: d}
}

// Current reads the displayed quantity.
func (c *QuantityController) Current() (int, error) {
	txt := strings.TrimSpace(c.view.QuantityText())
	n, err := strconv.Atoi(txt)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("line %s: %q: %w", c.itemID, txt, ErrBadQuantity)
	}
	return n, nil
}

// Step applies delta to the display. A result below 1 leaves the display
// untouched and returns ok=false; otherwise the display shows the new value
// and the SetQuantity action to send is returned.
func (c *QuantityController) Step(delta int) (model.Action, bool, error) {
	cur, err := c.Current()
	if err != nil {
		return model.Action{}, false, err
	}
	next := cur + delta
	if next < 1 {
		return model.Action{}, false, nil
	}
	c.view.SetQuantityText(strconv.Itoa(next))
	return model.SetQuantity(c.itemID, next), true, nil
}

// RequestDelta is Step followed by a dispatch of the resulting action.
// A page without a csrf token aborts before the display changes.
func (c *QuantityController) RequestDelta(ctx context.Context, delta int, token model.CSRFToken) (Outcome, error) {
	if token.Empty() {
		return Outcome{}, ErrMissingCSRF
	}
	a, ok, err := c.Step(delta)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Rejected: true}, nil
	}
	return c.disp.Dispatch(ctx, a, token)
}
