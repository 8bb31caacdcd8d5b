// Package cart holds the client-side shopping cart.  A Store is private to
// one shopper, never persisted and never sent to the server.  Amounts are
// kept in integer cents so that repeated additions stay exact.
package cart

import (
	"math"
	"sync"
)

// Notices returned by Checkout.
const (
	NoticeEmpty    = "your cart is empty"
	NoticeThankYou = "thank you for your purchase"
)

// MaxUnitCents is the largest unit price a line accepts, 9999999999.99.
const MaxUnitCents = 999_999_999_999

// Line is one product in the cart.  Lines are keyed by Name.
type Line struct {
	Name      string
	UnitCents int64
	Quantity  int
}

// Notice is a message for the shopper.  Completed reports whether a
// checkout actually took place.
type Notice struct {
	Text      string
	Completed bool
}

// Store is the cart state machine.  It is safe for concurrent use;
// subscribers are called after the lock has been released.
type Store struct {
	mu         sync.Mutex
	lines      []Line
	totalCents int64

	subs   map[int]func(View)
	nextID int
}

// New returns an empty cart.
func New() *Store {
	return &Store{subs: map[int]func(View){}}
}

// AddItem adds one unit of name at price.  An existing line with the same
// name has its quantity bumped and keeps its original unit price.  A price
// that is not finite, exceeds MaxUnitCents in magnitude or would overflow
// the total leaves the cart untouched and AddItem reports false.
func (s *Store) AddItem(name string, price float64) bool {
	cents, ok := toCents(price)
	if !ok {
		return false
	}
	s.mu.Lock()
	if (cents > 0 && s.totalCents > math.MaxInt64-cents) ||
		(cents < 0 && s.totalCents < math.MinInt64-cents) {
		s.mu.Unlock()
		return false
	}
	found := false
	for i := range s.lines {
		if s.lines[i].Name == name {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, Line{Name: name, UnitCents: cents, Quantity: 1})
	}
	s.totalCents += cents
	s.mu.Unlock()
	s.notify()
	return true
}

// RemoveItem drops the line shown at position index.  It reports false and
// leaves the cart untouched when index is out of range.
func (s *Store) RemoveItem(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.lines) {
		s.mu.Unlock()
		return false
	}
	l := s.lines[index]
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	s.totalCents -= l.UnitCents * int64(l.Quantity)
	s.mu.Unlock()
	s.notify()
	return true
}

// Checkout empties the cart and thanks the shopper.  Checking out an empty
// cart changes nothing.  No payment is taken.
func (s *Store) Checkout() Notice {
	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return Notice{Text: NoticeEmpty}
	}
	s.lines = nil
	s.totalCents = 0
	s.mu.Unlock()
	s.notify()
	return Notice{Text: NoticeThankYou, Completed: true}
}

// Clear resets the cart to its initial state.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.lines) == 0 && s.totalCents == 0 {
		s.mu.Unlock()
		return
	}
	s.lines = nil
	s.totalCents = 0
	s.mu.Unlock()
	s.notify()
}

// Lines returns a copy of the current lines in display order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalCents returns the running total.
func (s *Store) TotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCents
}

// Subscribe registers fn to receive a fresh View after every change.  The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(View)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	v := s.renderLocked()
	fns := make([]func(View), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func toCents(price float64) (int64, bool) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	c := math.Round(price * 100)
	if c > MaxUnitCents || c < -MaxUnitCents {
		return 0, false
	}
	return int64(c), true
}
