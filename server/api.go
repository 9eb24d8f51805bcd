package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/billbatista/acasinha-quotes/metrics"
	"github.com/billbatista/acasinha-quotes/quote"
)

type sheetResponse struct {
	Header quote.Header `json:"header"`
	Lines  []quote.Line `json:"lines"`
	Totals quote.Totals `json:"totals"`
}

func snapshot(sheet *quote.Sheet) sheetResponse {
	return sheetResponse{
		Header: sheet.Header,
		Lines:  sheet.Lines(),
		Totals: sheet.Totals(),
	}
}

type patchItemRequest struct {
	Field quote.Field `json:"field"`
	Value string      `json:"value"`
}

type patchItemResponse struct {
	Line   quote.Line   `json:"line"`
	Totals quote.Totals `json:"totals"`
}

type recalculateRequest struct {
	Items []quote.LineItem `json:"items"`
}

func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var resp sheetResponse
	sess.Do(func(sheet *quote.Sheet) error {
		resp = snapshot(sheet)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutHeader(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var h quote.Header
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var resp sheetResponse
	sess.Do(func(sheet *quote.Sheet) error {
		sheet.Header = h
		resp = snapshot(sheet)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var resp sheetResponse
	sess.Do(func(sheet *quote.Sheet) error {
		sheet.Add()
		resp = snapshot(sheet)
		return nil
	})
	metrics.Recalculations.Inc()
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var resp sheetResponse
	sess.Do(func(sheet *quote.Sheet) error {
		sheet.Remove()
		resp = snapshot(sheet)
		return nil
	})
	metrics.Recalculations.Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatchItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "line index must be a number")
		return
	}
	var req patchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var resp patchItemResponse
	err = sess.Do(func(sheet *quote.Sheet) error {
		line, totals, err := sheet.Update(index, req.Field, req.Value)
		resp = patchItemResponse{Line: line, Totals: totals}
		return err
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	metrics.Recalculations.Inc()
	writeJSON(w, http.StatusOK, resp)
}

// handleRecalculate works on a throwaway sheet; nothing is kept.
func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sheet := s.opts.NewSheet()
	sheet.Replace(req.Items)
	metrics.Recalculations.Inc()
	writeJSON(w, http.StatusOK, snapshot(sheet))
}
