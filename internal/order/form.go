package order

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Makepad-fr/cafe/internal/model"
)

// Form field names expected by the server.
const (
	FieldCSRF        = "csrfmiddlewaretoken"
	FieldAction      = "action"
	FieldDishID      = "dish_id"
	FieldOrderItemID = "order_item_id"
	FieldQuantity    = "quantity"
)

// Encode builds the form for one action. The result carries exactly the
// fields of that action kind and nothing else.
func Encode(a model.Action, token model.CSRFToken) (url.Values, error) {
	if token.Empty() {
		return nil, ErrMissingCSRF
	}
	form := url.Values{}
	form.Set(FieldCSRF, string(token))
	form.Set(FieldAction, string(a.Kind))

	switch a.Kind {
	case model.KindAddItem:
		if a.DishID == "" {
			return nil, fmt.Errorf("%s: empty dish id", a.Kind)
		}
		form.Set(FieldDishID, a.DishID)
	case model.KindUpdateQuantity:
		if a.OrderItemID == "" {
			return nil, fmt.Errorf("%s: empty order item id", a.Kind)
		}
		if a.Quantity < 1 {
			return nil, fmt.Errorf("%s: quantity %d below 1", a.Kind, a.Quantity)
		}
		form.Set(FieldOrderItemID, a.OrderItemID)
		form.Set(FieldQuantity, strconv.Itoa(a.Quantity))
	case model.KindRemoveItem:
		if a.OrderItemID == "" {
			return nil, fmt.Errorf("%s: empty order item id", a.Kind)
		}
		form.Set(FieldOrderItemID, a.OrderItemID)
	case model.KindCompleteOrder:
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return form, nil
}
