package cart

import (
	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// Line pairs one product with a positive quantity. A cart never holds two
// lines for the same product id.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// State is the full cart content plus panel visibility. It serializes to the
// JSON slot the persister owns.
type State struct {
	Items  []Line `json:"items"`
	IsOpen bool   `json:"isOpen"`
}

// clone returns a deep copy safe to hand to subscribers and callers.
func (s State) clone() State {
	out := State{IsOpen: s.IsOpen}
	if s.Items != nil {
		out.Items = make([]Line, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

func (s State) indexOf(productID uuid.UUID) int {
	for i, line := range s.Items {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}
