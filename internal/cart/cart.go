// Package cart holds the per-session shopping cart.
package cart

import (
	"errors"
	"sync"
)

// ErrInvalidQuantity is returned when adding fewer than one unit.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Product is the snapshot of a catalogue product captured when it is added.
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

// Line is one product entry of the cart.
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() float64 {
	return l.Product.UnitPrice * float64(l.Quantity)
}

// Store is an in-memory cart. It never holds two lines for the same product id.
type Store struct {
	mu    sync.Mutex
	lines []Line
}

// New returns an empty cart.
func New() *Store {
	return &Store{}
}

// Add merges quantity into the line for product.ID, appending a new line when absent.
func (s *Store) Add(product Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
		return nil
	}
	s.lines = append(s.lines, Line{Product: product, Quantity: quantity})
	return nil
}

// Remove deletes the line for productID. Absent lines are ignored.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

// UpdateQuantity sets the line quantity, clamped to a minimum of 1.
// A quantity of 0 does not remove the line; callers use Remove for that.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = max(1, quantity)
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}

// Deduct subtracts ordered quantities from the matching lines and drops lines that
// reach zero. Units added after ordered was taken stay in the cart.
func (s *Store) Deduct(ordered []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ordered {
		i := s.indexOf(o.Product.ID)
		if i < 0 {
			continue
		}
		s.lines[i].Quantity -= o.Quantity
		if s.lines[i].Quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
	}
}

// TotalPrice sums unit price times quantity over all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count returns the number of distinct lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
