// Package cart holds the client-side cart state machine: a mapping from item
// id to line item plus pure derivations for the order summary. Transitions
// are total — they never fail, whatever the input.
package cart

import (
	"encoding/json"
	"strconv"
)

// TaxRate is the flat rate applied to the subtotal.
const TaxRate = 0.10

// Item is one cart line. Price carries the catalog's decimal string form
// ("10.00"); quantity is always >= 1 while the item is present.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

// State is the cart. The zero value is not usable; construct with New.
type State struct {
	items map[string]Item
	order []string
}

func New() *State {
	return &State{items: map[string]Item{}}
}

// Add inserts the item, or bumps the quantity when the id is already present.
// A non-positive quantity on the incoming item counts as 1.
func (s *State) Add(it Item) {
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	if cur, ok := s.items[it.ID]; ok {
		cur.Quantity += it.Quantity
		s.items[it.ID] = cur
		return
	}
	s.items[it.ID] = it
	s.order = append(s.order, it.ID)
}

// UpdateQuantity sets the quantity for id. Anything below 1 removes the item
// instead.
func (s *State) UpdateQuantity(id string, qty int) {
	if qty < 1 {
		s.Remove(id)
		return
	}
	it, ok := s.items[id]
	if !ok {
		return
	}
	it.Quantity = qty
	s.items[id] = it
}

// Remove deletes the line for id; absent ids are a no-op.
func (s *State) Remove(id string) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear resets to the empty cart. Idempotent.
func (s *State) Clear() {
	s.items = map[string]Item{}
	s.order = nil
}

// Items returns the lines in insertion order.
func (s *State) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *State) Len() int { return len(s.items) }

// Subtotal is recomputed from the lines on every call; nothing is cached.
func (s *State) Subtotal() float64 {
	sum := 0.0
	for _, id := range s.order {
		it := s.items[id]
		price, _ := strconv.ParseFloat(it.Price, 64)
		sum += price * float64(it.Quantity)
	}
	return sum
}

func (s *State) Tax() float64 { return s.Subtotal() * TaxRate }

func (s *State) Total() float64 { return s.Subtotal() + s.Tax() }

// Format renders a money amount with exactly two decimals.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// MarshalJSON serializes the lines in insertion order so a persisted mirror
// restores the same iteration order.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.Clear()
	for _, it := range items {
		s.Add(it)
	}
	return nil
}
