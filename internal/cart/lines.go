package cart

import (
	"errors"

	"github.com/google/uuid"
)

// MaxLineQuantity caps a single cart line. It fits the integer column.
const MaxLineQuantity = 10000

var (
	// ErrNonPositiveQuantity rejects creating a new line with quantity <= 0.
	ErrNonPositiveQuantity = errors.New("quantity must be greater than zero")
	// ErrLineNotFound is returned by Set when the product has no line.
	ErrLineNotFound = errors.New("item not found in cart")
	// ErrQuantityTooLarge is returned when a line would exceed MaxLineQuantity.
	ErrQuantityTooLarge = errors.New("quantity exceeds the per-item limit")
)

// Line is a single product entry in a cart.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Lines keeps insertion order. Every operation returns a new slice and keeps
// the invariant of at most one line per product with a positive quantity.
type Lines []Line

// Index returns the position of productID, or -1.
func (l Lines) Index(productID uuid.UUID) int {
	for i, line := range l {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// Merge adds delta to an existing line, dropping it when the result is not
// positive. A missing line is appended only when delta is positive. A zero
// delta leaves an existing line unchanged.
func (l Lines) Merge(productID uuid.UUID, delta int) (Lines, error) {
	idx := l.Index(productID)
	if idx < 0 {
		if delta <= 0 {
			return l.clone(), ErrNonPositiveQuantity
		}
		if delta > MaxLineQuantity {
			return l.clone(), ErrQuantityTooLarge
		}
		return append(l.clone(), Line{ProductID: productID, Quantity: delta}), nil
	}
	// compared before adding so a huge delta cannot wrap around
	if delta > MaxLineQuantity-l[idx].Quantity {
		return l.clone(), ErrQuantityTooLarge
	}
	next := l.clone()
	next[idx].Quantity += delta
	if next[idx].Quantity <= 0 {
		return next.Remove(productID), nil
	}
	return next, nil
}

// Set overwrites the quantity of an existing line. A quantity <= 0 removes it.
func (l Lines) Set(productID uuid.UUID, qty int) (Lines, error) {
	idx := l.Index(productID)
	if idx < 0 {
		return l.clone(), ErrLineNotFound
	}
	if qty <= 0 {
		return l.Remove(productID), nil
	}
	if qty > MaxLineQuantity {
		return l.clone(), ErrQuantityTooLarge
	}
	next := l.clone()
	next[idx].Quantity = qty
	return next, nil
}

// Remove drops the line for productID. Missing lines are ignored.
func (l Lines) Remove(productID uuid.UUID) Lines {
	out := make(Lines, 0, len(l))
	for _, line := range l {
		if line.ProductID != productID {
			out = append(out, line)
		}
	}
	return out
}

// Clear returns an empty set of lines.
func (l Lines) Clear() Lines {
	return Lines{}
}

// TotalQuantity sums the quantities of all lines.
func (l Lines) TotalQuantity() int {
	total := 0
	for _, line := range l {
		total += line.Quantity
	}
	return total
}

func (l Lines) clone() Lines {
	out := make(Lines, len(l))
	copy(out, l)
	return out
}
