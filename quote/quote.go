package quote

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultQuantity  = "1"
	DefaultUnitPrice = "0"
	DateLayout       = "2006-01-02"
)

type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldUnitPrice   Field = "unit_price"
	FieldRemarks     Field = "remarks"
)

var (
	ErrLineNotFound = errors.New("line not found")
	ErrUnknownField = errors.New("unknown field")
)

// LineItem keeps quantity and unit price as the text shown in the sheet.
// The canonical numbers are derived from that text on every recalculation.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Remarks     string `json:"remarks,omitempty"`
}

// Line is a LineItem with its 1-based position in the sheet.
type Line struct {
	Index int `json:"index"`
	LineItem
}

type Header struct {
	Date      string `json:"date"`
	Issuer    string `json:"issuer"`
	Recipient string `json:"recipient"`
}

func NewHeader(now time.Time) Header {
	return Header{Date: now.Format(DateLayout)}
}

type Option func(*Sheet)

// WithDefaults sets the quantity and unit price text of newly added lines.
func WithDefaults(quantity, unitPrice string) Option {
	return func(s *Sheet) {
		s.defaultQuantity = quantity
		s.defaultUnitPrice = unitPrice
	}
}

func WithHeader(h Header) Option {
	return func(s *Sheet) {
		s.Header = h
	}
}

// Sheet is the ordered set of line items of one quote. It always holds at
// least one line and line numbers are always 1..N.
type Sheet struct {
	Header Header

	items            []LineItem
	norm             *Normalizer
	defaultQuantity  string
	defaultUnitPrice string
}

// NewSheet returns a sheet holding a single default line.
func NewSheet(n *Normalizer, opts ...Option) *Sheet {
	s := &Sheet{
		Header:           NewHeader(time.Now()),
		norm:             n,
		defaultQuantity:  DefaultQuantity,
		defaultUnitPrice: DefaultUnitPrice,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = append(s.items, s.newItem())
	return s
}

func (s *Sheet) newItem() LineItem {
	return LineItem{
		Quantity:  s.norm.NormalizeQuantity(s.defaultQuantity).Text,
		UnitPrice: s.norm.Normalize(s.defaultUnitPrice).Text,
	}
}

func (s *Sheet) Len() int { return len(s.items) }

// Lines returns a copy of the lines numbered by position.
func (s *Sheet) Lines() []Line {
	lines := make([]Line, len(s.items))
	for i, item := range s.items {
		lines[i] = Line{Index: i + 1, LineItem: item}
	}
	return lines
}

func (s *Sheet) Line(index int) (Line, error) {
	if index < 1 || index > len(s.items) {
		return Line{}, fmt.Errorf("%w: %d", ErrLineNotFound, index)
	}
	return Line{Index: index, LineItem: s.items[index-1]}, nil
}

// Add appends a default line numbered len+1.
func (s *Sheet) Add() Totals {
	s.items = append(s.items, s.newItem())
	return s.Totals()
}

// Remove drops the last line. With a single line left it does nothing.
func (s *Sheet) Remove() Totals {
	if len(s.items) > 1 {
		s.items = s.items[:len(s.items)-1]
	}
	return s.Totals()
}

// Update stores raw text into one field of a line. Numeric fields are
// normalized first, so the returned line holds the text to display.
func (s *Sheet) Update(index int, field Field, raw string) (Line, Totals, error) {
	if index < 1 || index > len(s.items) {
		return Line{}, Totals{}, fmt.Errorf("%w: %d", ErrLineNotFound, index)
	}
	item := &s.items[index-1]
	switch field {
	case FieldDescription:
		item.Description = raw
	case FieldRemarks:
		item.Remarks = raw
	case FieldQuantity:
		item.Quantity = s.norm.NormalizeQuantity(raw).Text
	case FieldUnitPrice:
		item.UnitPrice = s.norm.Normalize(raw).Text
	default:
		return Line{}, Totals{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return Line{Index: index, LineItem: *item}, s.Totals(), nil
}

// Replace swaps every line for the given items, normalizing numeric text.
// An empty slice leaves one default line so the sheet is never empty.
func (s *Sheet) Replace(items []LineItem) Totals {
	s.items = s.items[:0]
	for _, it := range items {
		it.Quantity = s.norm.NormalizeQuantity(it.Quantity).Text
		it.UnitPrice = s.norm.Normalize(it.UnitPrice).Text
		s.items = append(s.items, it)
	}
	if len(s.items) == 0 {
		s.items = append(s.items, s.newItem())
	}
	return s.Totals()
}

func (s *Sheet) Totals() Totals {
	return Recalculate(s.norm, s.items)
}
