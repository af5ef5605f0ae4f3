package order

import "github.com/Makepad-fr/cafe/internal/model"

var confirmMessages = map[string]map[model.Kind]string{
	"ru": {
		model.KindRemoveItem:    "Удалить это блюдо из заказа?",
		model.KindCompleteOrder: "Завершить заказ?",
	},
	"en": {
		model.KindRemoveItem:    "Remove this dish from the order?",
		model.KindCompleteOrder: "Complete this order?",
	},
}

// ConfirmMessage returns the prompt shown before a guarded action.
// Unknown locales fall back to Russian, the server's language.
func ConfirmMessage(k model.Kind, locale string) string {
	msgs, ok := confirmMessages[locale]
	if !ok {
		msgs = confirmMessages["ru"]
	}
	return msgs[k]
}
