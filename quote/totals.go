package quote

import "github.com/shopspring/decimal"

type LineTotal struct {
	Index     int             `json:"index"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
	Display   string          `json:"display"`
}

// Totals is derived from the line items every time and never stored.
type Totals struct {
	Lines        []LineTotal     `json:"lines"`
	Grand        decimal.Decimal `json:"grand"`
	GrandDisplay string          `json:"grand_display"`
}

// Recalculate multiplies quantity by unit price on normalized values and
// sums the results. Empty or non-numeric fields count as zero.
func Recalculate(n *Normalizer, items []LineItem) Totals {
	t := Totals{
		Lines: make([]LineTotal, 0, len(items)),
		Grand: decimal.Zero,
	}
	for i, item := range items {
		qty := n.QuantityAmount(item.Quantity)
		price := n.Amount(item.UnitPrice)
		amount := qty.Mul(price)
		t.Lines = append(t.Lines, LineTotal{
			Index:     i + 1,
			Quantity:  qty,
			UnitPrice: price,
			Amount:    amount,
			Display:   n.Format(amount),
		})
		t.Grand = t.Grand.Add(amount)
	}
	t.GrandDisplay = n.FormatCurrency(t.Grand)
	return t
}
