// Package money provides exact decimal price and size types for the
// order book. No binary floating point is used anywhere on this path:
// every value is parsed from its wire-format decimal string and compared
// with exact equality.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePrice = errors.New("money: price must be > 0")
	ErrNegativeSize     = errors.New("money: size must be >= 0")
)

// Price is an exact decimal price, always > 0.
type Price struct{ d decimal.Decimal }

// Size is an exact decimal size, always >= 0.
type Size struct{ d decimal.Decimal }

// ParsePrice parses a decimal-string price as sent over the wire.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("money: parse price %q: %w", s, err)
	}
	if !d.IsPositive() {
		return Price{}, ErrNonPositivePrice
	}
	return Price{d}, nil
}

// ParseSize parses a decimal-string size as sent over the wire.
func ParseSize(s string) (Size, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Size{}, fmt.Errorf("money: parse size %q: %w", s, err)
	}
	if d.IsNegative() {
		return Size{}, ErrNegativeSize
	}
	return Size{d}, nil
}

// ZeroSize is the canonical empty size.
var ZeroSize = Size{decimal.Zero}

func (p Price) String() string { return p.d.String() }
func (s Size) String() string  { return s.d.String() }

func (p Price) Equal(o Price) bool      { return p.d.Equal(o.d) }
func (p Price) LessThan(o Price) bool   { return p.d.LessThan(o.d) }
func (p Price) GreaterThan(o Price) bool { return p.d.GreaterThan(o.d) }

func (s Size) Equal(o Size) bool        { return s.d.Equal(o.d) }
func (s Size) IsZero() bool             { return s.d.IsZero() }
func (s Size) LessThan(o Size) bool     { return s.d.LessThan(o.d) }
func (s Size) Sub(o Size) Size          { return Size{s.d.Sub(o.d)} }
func (s Size) Add(o Size) Size          { return Size{s.d.Add(o.d)} }
