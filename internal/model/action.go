package model

import "strconv"

// Kind names a pending action on the wire.
type Kind string

const (
	KindAddItem        Kind = "add_item"
	KindUpdateQuantity Kind = "update_quantity"
	KindRemoveItem     Kind = "remove_item"
	KindCompleteOrder  Kind = "complete_order"
)

// Action is a mutation of the current order, built in response to one
// user gesture and serialized straight into one submission.
// Only the fields relevant to Kind are set; use the constructors.
type Action struct {
	Kind        Kind
	DishID      string
	OrderItemID string
	Quantity    int
}

func AddItem(dishID string) Action {
	return Action{Kind: KindAddItem, DishID: dishID}
}

func SetQuantity(orderItemID string, quantity int) Action {
	return Action{Kind: KindUpdateQuantity, OrderItemID: orderItemID, Quantity: quantity}
}

func RemoveItem(orderItemID string) Action {
	return Action{Kind: KindRemoveItem, OrderItemID: orderItemID}
}

func CompleteOrder() Action {
	return Action{Kind: KindCompleteOrder}
}

// NeedsConfirmation reports whether the user must agree before dispatch.
func (a Action) NeedsConfirmation() bool {
	return a.Kind == KindRemoveItem || a.Kind == KindCompleteOrder
}

func (a Action) String() string {
	switch a.Kind {
	case KindAddItem:
		return string(a.Kind) + " dish=" + a.DishID
	case KindUpdateQuantity:
		return string(a.Kind) + " item=" + a.OrderItemID + " qty=" + strconv.Itoa(a.Quantity)
	case KindRemoveItem:
		return string(a.Kind) + " item=" + a.OrderItemID
	}
	return string(a.Kind)
}
