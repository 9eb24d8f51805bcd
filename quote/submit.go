package quote

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

const SubmittedNotice = "견적서를 제출했습니다"

type SubmittedLine struct {
	Index       int             `json:"index"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Remarks     string          `json:"remarks,omitempty"`
}

// Submission is the diagnostic record emitted when a sheet is submitted.
// It is logged, never transmitted.
type Submission struct {
	Header     Header          `json:"header"`
	Lines      []SubmittedLine `json:"lines"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

func (s *Sheet) Submission() Submission {
	totals := s.Totals()
	sub := Submission{
		Header:     s.Header,
		Lines:      make([]SubmittedLine, len(s.items)),
		GrandTotal: totals.Grand,
	}
	for i, item := range s.items {
		sub.Lines[i] = SubmittedLine{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    totals.Lines[i].Quantity,
			UnitPrice:   totals.Lines[i].UnitPrice,
			Remarks:     item.Remarks,
		}
	}
	return sub
}

// Log writes the submission as one header record and one record per line.
func (sub Submission) Log(logger *slog.Logger) {
	logger.Info("quote submitted",
		"date", sub.Header.Date,
		"issuer", sub.Header.Issuer,
		"recipient", sub.Header.Recipient,
		"lines", len(sub.Lines),
		"grand_total", sub.GrandTotal.String(),
	)
	for _, l := range sub.Lines {
		logger.Info("quote line",
			"index", l.Index,
			"description", l.Description,
			"quantity", l.Quantity.String(),
			"unit_price", l.UnitPrice.String(),
			"remarks", l.Remarks,
		)
	}
}
