package quote

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLanguage       = "ko"
	DefaultCurrencySuffix = "원"
)

// Value is a normalized numeric field: the amount used for arithmetic and
// the text shown back in the field.
type Value struct {
	Amount decimal.Decimal `json:"amount"`
	Text   string          `json:"text"`
}

// Normalizer turns typed numeric text into canonical values and renders
// amounts with the locale's digit grouping.
type Normalizer struct {
	printer  *message.Printer
	group    rune
	decimal  rune
	currency string
}

func NewNormalizer(tag language.Tag, currencySuffix string) *Normalizer {
	p := message.NewPrinter(tag)
	return &Normalizer{
		printer:  p,
		group:    firstNonDigit(p.Sprintf("%v", number.Decimal(1000000)), ','),
		decimal:  firstNonDigit(p.Sprintf("%v", number.Decimal(1.5)), '.'),
		currency: currencySuffix,
	}
}

// DefaultNormalizer formats Korean won.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(language.Korean, DefaultCurrencySuffix)
}

func firstNonDigit(s string, fallback rune) rune {
	for _, r := range s {
		if r < '0' || r > '9' {
			return r
		}
	}
	return fallback
}

// Normalize handles unit price text, which is a whole number. A lone minus
// sign is kept as typed so a negative number can be entered one keystroke
// at a time.
func (n *Normalizer) Normalize(raw string) Value {
	s, lone := n.sanitize(raw, true, false)
	if lone {
		return Value{Amount: decimal.Zero, Text: "-"}
	}
	amount := parse(s)
	return Value{Amount: amount, Text: n.Format(amount)}
}

// NormalizeQuantity handles quantity text: never negative, fractions
// allowed.
func (n *Normalizer) NormalizeQuantity(raw string) Value {
	s, _ := n.sanitize(raw, false, true)
	amount := parse(s)
	return Value{Amount: amount, Text: n.Format(amount)}
}

// Amount returns only the arithmetic value of previously stored text.
func (n *Normalizer) Amount(text string) decimal.Decimal {
	return n.Normalize(text).Amount
}

func (n *Normalizer) QuantityAmount(text string) decimal.Decimal {
	return n.NormalizeQuantity(text).Amount
}

// sanitize reduces raw to an optional '-', digits and, when fraction is
// set, one '.' taken from the first locale decimal separator. Grouping
// separators are dropped. A minus sign counts when signed is set and no
// digit came before it. lone reports that the minus sign was the only
// character kept.
func (n *Normalizer) sanitize(raw string, signed, fraction bool) (s string, lone bool) {
	var b strings.Builder
	b.Grow(len(raw))
	neg, point, grouped := false, false, false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case fraction && r == n.decimal && !point:
			point = true
			b.WriteByte('.')
		case r == n.group || r == ',':
			grouped = true
		case r == '-' && signed && b.Len() == 0:
			neg = true
		}
	}
	if !neg {
		return b.String(), false
	}
	return "-" + b.String(), b.Len() == 0 && !grouped
}

func parse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders an amount with digit grouping and no forced decimals.
func (n *Normalizer) Format(d decimal.Decimal) string {
	if d.IsInteger() && d.Abs().LessThan(maxExactInt) {
		return n.printer.Sprintf("%v", number.Decimal(d.IntPart()))
	}
	return n.group3(d.String())
}

// group3 groups the integer digits of a plain decimal string, keeping
// every digit.
func (n *Normalizer) group3(s string) string {
	var b strings.Builder
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		b.WriteByte('-')
		s = rest
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteRune(n.group)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteRune(n.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// FormatCurrency is Format followed by the currency suffix.
func (n *Normalizer) FormatCurrency(d decimal.Decimal) string {
	return n.Format(d) + n.currency
}

// GroupingSeparator is the rune the locale uses between digit groups.
func (n *Normalizer) GroupingSeparator() string {
	return string(n.group)
}

var maxExactInt = decimal.New(1, 18)
