package model

// RelationKind selects one of the per-user recipe bookmark lists. Favorites
// and the shopping cart share the same shape and rules; only the kind
// differs.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationShoppingCart RelationKind = "shopping_cart"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	return k == RelationFavorite || k == RelationShoppingCart
}

// Label is the human-readable name used in error messages.
func (k RelationKind) Label() string {
	switch k {
	case RelationFavorite:
		return "favorites"
	case RelationShoppingCart:
		return "the shopping list"
	default:
		return string(k)
	}
}

// ShoppingItem is one aggregated product line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}
