// Package export renders a quote sheet into a shareable artifact (PNG or
// PDF) and delivers it, either through a configured share target or as a
// direct download.
package export

import (
	"strconv"

	"github.com/billbatista/acasinha-quotes/quote"
)

const DefaultLabel = "견적서"

// Row is one printed line of the sheet, already formatted for display.
type Row struct {
	Index       int
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
	Remarks     string
}

// View is what gets drawn: the sheet snapshot plus whether the editing
// controls (chrome) are visible.
type View struct {
	Title      string
	Header     quote.Header
	Rows       []Row
	GrandTotal string
	Notice     string

	chromeHidden bool
}

// NewView snapshots the sheet. The caller must hold the sheet's session
// lock while calling it.
func NewView(title string, s *quote.Sheet) *View {
	totals := s.Totals()
	lines := s.Lines()
	rows := make([]Row, len(lines))
	for i, l := range lines {
		rows[i] = Row{
			Index:       l.Index,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       totals.Lines[i].Display,
			Remarks:     l.Remarks,
		}
	}
	return &View{
		Title:      title,
		Header:     s.Header,
		Rows:       rows,
		GrandTotal: totals.GrandDisplay,
	}
}

// ShowChrome reports whether add/remove/submit/capture controls are drawn.
func (v *View) ShowChrome() bool { return !v.chromeHidden }

// hideChrome hides the controls and returns the func restoring the
// previous state.
func (v *View) hideChrome() (restore func()) {
	prev := v.chromeHidden
	v.chromeHidden = true
	return func() { v.chromeHidden = prev }
}

// columns are the printed table headings, in row order.
var columns = []string{"No", "품명", "수량", "단가", "금액", "비고"}

func (r Row) cells() []string {
	return []string{strconv.Itoa(r.Index), r.Description, r.Quantity, r.UnitPrice, r.Total, r.Remarks}
}
