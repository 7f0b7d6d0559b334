// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/toolpanel/internal/codec"
	"github.com/jeranaias/toolpanel/internal/diff"
	"github.com/jeranaias/toolpanel/internal/history"
	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/locate"
	"github.com/jeranaias/toolpanel/internal/texttools"
	"github.com/jeranaias/toolpanel/internal/timeconv"
)

// ============================================================================
// DIFF
// ============================================================================

// DiffRequest is the body of POST /v1/diff.
type DiffRequest struct {
	Left    string `json:"left"`
	Right   string `json:"right"`
	Swap    bool   `json:"swap,omitempty"`
	Unified bool   `json:"unified,omitempty"`
	Context *int   `json:"context,omitempty"`
	Inline  bool   `json:"inline,omitempty"`
}

// InlineRow carries character-level spans for one changed row pair.
type InlineRow struct {
	LeftLine  int         `json:"left_line"`
	RightLine int         `json:"right_line"`
	Left      []diff.Span `json:"left"`
	Right     []diff.Span `json:"right"`
}

// DiffResponse is the result of POST /v1/diff.
type DiffResponse struct {
	Entries []diff.Entry `json:"entries"`
	Stats   diff.Stats   `json:"stats"`
	Summary string       `json:"summary"`
	Unified string       `json:"unified,omitempty"`
	Inline  []InlineRow  `json:"inline,omitempty"`
}

// handleDiff handles POST /v1/diff.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req DiffRequest
	if !s.decode(w, r, &req) {
		return
	}

	left, right := req.Left, req.Right
	if req.Swap {
		left, right = right, left
	}
	res := diff.AlignText(left, right)
	s.stats.Diffs.Add(1)

	resp := DiffResponse{
		Entries: res.Entries,
		Stats:   diff.Tally(res),
		Summary: res.Summary(),
	}
	if resp.Entries == nil {
		resp.Entries = []diff.Entry{}
	}
	if req.Unified {
		context := s.diffContext
		if req.Context != nil {
			if *req.Context < 0 {
				s.writeError(w, r, http.StatusBadRequest, "context must not be negative")
				return
			}
			context = *req.Context
		}
		resp.Unified = diff.FormatUnified("left", "right", res, context)
	}
	if req.Inline {
		for _, row := range res.Rows() {
			if !row.Changed() {
				continue
			}
			ls, rs := diff.InlineChanges(row.Left.Content, row.Right.Content)
			resp.Inline = append(resp.Inline, InlineRow{
				LeftLine:  row.Left.LeftLine,
				RightLine: row.Right.RightLine,
				Left:      ls,
				Right:     rs,
			})
		}
	}

	s.record(r, history.KindDiff, statusOf(resp.Stats.Changed() == 0, "identical", "modified"), resp.Summary, started)
	s.writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// JSON
// ============================================================================

// JSONRequest is the body of the validate, format and compress endpoints.
// Nil option fields fall back to the server defaults.
type JSONRequest struct {
	Text         string `json:"text"`
	Indent       *int   `json:"indent,omitempty"`
	UseTabs      bool   `json:"use_tabs,omitempty"`
	AutoWrap     *bool  `json:"auto_wrap,omitempty"`
	RemoveEscape *bool  `json:"remove_escape,omitempty"`
}

// JSONResponse carries the outcome and, for format and compress, the output.
type JSONResponse struct {
	Outcome jsonfmt.Outcome `json:"outcome"`
	Output  string          `json:"output,omitempty"`
}

func (s *Server) validatorFor(req JSONRequest) (*jsonfmt.Validator, error) {
	opts := s.jsonOpts
	if req.Indent != nil {
		if *req.Indent < 1 || *req.Indent > 8 {
			return nil, errors.New("indent must be between 1 and 8")
		}
		opts.Indent = strings.Repeat(" ", *req.Indent)
	}
	if req.UseTabs {
		opts.Indent = "\t"
	}
	if req.AutoWrap != nil {
		opts.AutoWrap = *req.AutoWrap
	}
	if req.RemoveEscape != nil {
		opts.RemoveEscape = *req.RemoveEscape
	}
	return jsonfmt.NewValidator(nil, opts), nil
}

// handleValidate handles POST /v1/validate.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.handleJSON(w, r, history.KindValidate, func(v *jsonfmt.Validator, text string) (string, jsonfmt.Outcome) {
		return "", v.Validate(text)
	})
}

// handleFormat handles POST /v1/format.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	s.handleJSON(w, r, history.KindFormat, (*jsonfmt.Validator).Format)
}

// handleCompress handles POST /v1/compress.
func (s *Server) handleCompress(w http.ResponseWriter, r *http.Request) {
	s.handleJSON(w, r, history.KindCompress, (*jsonfmt.Validator).Compress)
}

// handleJSON runs one validator operation. An invalid document is a
// successful request whose outcome says so.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request, kind history.Kind,
	op func(*jsonfmt.Validator, string) (string, jsonfmt.Outcome)) {
	started := time.Now()
	var req JSONRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.validatorFor(req)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	out, outcome := op(v, req.Text)
	s.stats.Validations.Add(1)
	if outcome.Status == jsonfmt.StatusInvalid {
		s.stats.Invalid.Add(1)
	}

	s.record(r, kind, outcome.Status.String(), outcome.String(), started)
	s.writeJSON(w, http.StatusOK, JSONResponse{Outcome: outcome, Output: out})
}

// ============================================================================
// LOCATE
// ============================================================================

// LocateRequest is the body of POST /v1/locate.
type LocateRequest struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Raw    bool   `json:"raw,omitempty"`
}

// LocateResponse is the result of POST /v1/locate.
type LocateResponse struct {
	Line     int  `json:"line"`
	Column   int  `json:"column"`
	Repaired bool `json:"repaired"`
}

// handleLocate handles POST /v1/locate.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req LocateRequest
	if !s.decode(w, r, &req) {
		return
	}

	raw := locate.Locate(req.Text, req.Offset)
	loc := raw
	if !req.Raw {
		loc = locate.RepairColumn(req.Text, raw)
	}
	s.stats.Transforms.Add(1)

	s.record(r, history.KindLocate, "ok", loc.String(), started)
	s.writeJSON(w, http.StatusOK, LocateResponse{Line: loc.Line, Column: loc.Column, Repaired: loc != raw})
}

// ============================================================================
// TEXT TOOLS
// ============================================================================

// TextRequest is the body of POST /v1/text. Op "count" returns counts
// instead of output.
type TextRequest struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// TextResponse is the result of POST /v1/text.
type TextResponse struct {
	Output string            `json:"output,omitempty"`
	Counts *texttools.Counts `json:"counts,omitempty"`
}

// handleText handles POST /v1/text.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}

	var resp TextResponse
	if req.Op == "count" {
		c := texttools.Count(req.Text)
		resp.Counts = &c
	} else {
		out, err := texttools.Apply(texttools.Op(req.Op), req.Text)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		resp.Output = out
	}
	s.stats.Transforms.Add(1)

	s.record(r, history.KindText, "ok", req.Op, started)
	s.writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// BASE64
// ============================================================================

// Base64Request is the body of POST /v1/base64.
type Base64Request struct {
	Mode    string `json:"mode"` // encode or decode
	Text    string `json:"text"`
	Variant string `json:"variant,omitempty"`
}

// OutputResponse carries a single converted value.
type OutputResponse struct {
	Output string `json:"output"`
}

// handleBase64 handles POST /v1/base64.
func (s *Server) handleBase64(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req Base64Request
	if !s.decode(w, r, &req) {
		return
	}
	variant, err := codec.ParseVariant(req.Variant)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var out string
	switch req.Mode {
	case "encode":
		out = codec.Encode(req.Text, variant)
	case "decode":
		out, err = codec.Decode(req.Text, variant)
		if err != nil {
			s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
	default:
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown mode %q (encode, decode)", req.Mode))
		return
	}
	s.stats.Transforms.Add(1)

	s.record(r, history.KindBase64, "ok", req.Mode+" "+variant.String(), started)
	s.writeJSON(w, http.StatusOK, OutputResponse{Output: out})
}

// ============================================================================
// TIMESTAMPS
// ============================================================================

// TimeRequest is the body of POST /v1/time.
type TimeRequest struct {
	Mode     string `json:"mode"` // to-date, to-timestamp or now
	Value    string `json:"value,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// handleTime handles POST /v1/time.
func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req TimeRequest
	if !s.decode(w, r, &req) {
		return
	}
	unit, err := timeconv.ParseUnit(req.Unit)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	loc := time.UTC
	if req.Timezone != "" {
		if loc, err = time.LoadLocation(req.Timezone); err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown timezone %q", req.Timezone))
			return
		}
	}

	var out string
	switch req.Mode {
	case "to-date":
		out, err = timeconv.ToDate(req.Value, unit, loc)
	case "to-timestamp":
		var ts int64
		ts, err = timeconv.ToTimestamp(req.Value, unit, loc)
		out = fmt.Sprint(ts)
	case "now":
		out = fmt.Sprint(timeconv.Now(unit))
	default:
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown mode %q (to-date, to-timestamp, now)", req.Mode))
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.stats.Transforms.Add(1)

	s.record(r, history.KindTime, "ok", req.Mode, started)
	s.writeJSON(w, http.StatusOK, OutputResponse{Output: out})
}

func statusOf(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
