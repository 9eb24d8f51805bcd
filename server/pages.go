package server

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/billbatista/acasinha-quotes/eventlogger"
	"github.com/billbatista/acasinha-quotes/export"
	"github.com/billbatista/acasinha-quotes/metrics"
	"github.com/billbatista/acasinha-quotes/quote"
)

// Form field names shared with templates/sheet.html.
const (
	formDate        = "date"
	formIssuer      = "issuer"
	formRecipient   = "recipient"
	formDescription = "description"
	formQuantity    = "quantity"
	formUnitPrice   = "unit_price"
	formRemarks     = "remarks"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var view *export.View
	sess.Do(func(sheet *quote.Sheet) error {
		view = export.NewView(s.opts.Label, sheet)
		return nil
	})
	view.Notice = r.URL.Query().Get("notice")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "base.html", view); err != nil {
		s.log.Error("failed to render sheet", "error", err)
	}
}

// applyForm copies the posted fields into the sheet. Header fields absent
// from the form keep their value. The rows arrive as parallel value lists
// in display order and replace the sheet's lines only when at least one
// description was posted.
func applyForm(r *http.Request, sheet *quote.Sheet) {
	setIfPosted(r, formDate, &sheet.Header.Date)
	setIfPosted(r, formIssuer, &sheet.Header.Issuer)
	setIfPosted(r, formRecipient, &sheet.Header.Recipient)

	descriptions := r.PostForm[formDescription]
	if len(descriptions) == 0 {
		return
	}
	quantities := r.PostForm[formQuantity]
	prices := r.PostForm[formUnitPrice]
	remarks := r.PostForm[formRemarks]

	items := make([]quote.LineItem, len(descriptions))
	for i := range items {
		items[i] = quote.LineItem{
			Description: descriptions[i],
			Quantity:    at(quantities, i),
			UnitPrice:   at(prices, i),
			Remarks:     at(remarks, i),
		}
	}
	sheet.Replace(items)
}

func setIfPosted(r *http.Request, key string, dst *string) {
	if values, ok := r.PostForm[key]; ok && len(values) > 0 {
		*dst = values[0]
	}
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	target := "/"
	if notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleForm applies the posted sheet, then runs op on it.
func (s *Server) handleForm(op func(sheet *quote.Sheet)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}

		sess.Do(func(sheet *quote.Sheet) error {
			applyForm(r, sheet)
			if op != nil {
				op(sheet)
			}
			return nil
		})
		metrics.Recalculations.Inc()

		redirectHome(w, r, "")
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	var sub quote.Submission
	sess.Do(func(sheet *quote.Sheet) error {
		applyForm(r, sheet)
		sub = sheet.Submission()
		return nil
	})
	metrics.Recalculations.Inc()
	metrics.Submissions.Inc()

	sub.Log(s.log)
	s.opts.Queue.Log(eventlogger.NewEvent(
		eventlogger.WithType(eventlogger.TypeQuoteSubmitted),
		eventlogger.WithData(sub),
		eventlogger.WithSession(sess.ID),
	))

	redirectHome(w, r, quote.SubmittedNotice)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	var view *export.View
	sess.Do(func(sheet *quote.Sheet) error {
		applyForm(r, sheet)
		view = export.NewView(s.opts.Label, sheet)
		return nil
	})
	metrics.Recalculations.Inc()

	res, err := s.opts.Capturer.Capture(r.Context(), view)
	if err != nil {
		s.opts.Queue.Log(eventlogger.NewEvent(
			eventlogger.WithType(eventlogger.TypeCaptureFailed),
			eventlogger.WithData(map[string]string{"error": err.Error()}),
			eventlogger.WithSession(sess.ID),
		))
		redirectHome(w, r, export.CaptureFailedNotice)
		return
	}

	s.opts.Queue.Log(eventlogger.NewEvent(
		eventlogger.WithType(eventlogger.TypeQuoteCaptured),
		eventlogger.WithData(map[string]string{
			"method": string(res.Method),
			"file":   res.Artifact.Name,
			"url":    res.URL,
		}),
		eventlogger.WithSession(sess.ID),
	))

	if res.Method == export.MethodShared {
		redirectHome(w, r, export.CapturedNotice+" "+res.URL)
		return
	}

	w.Header().Set("Content-Type", res.Artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Artifact.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Artifact.Data)))
	w.Write(res.Artifact.Data)
}
