// Package http provides the platform HTTP surface: router, server,
// response envelopes and JSON binding helpers
package http

import (
	"encoding/json"
	"net/http"

	pnet "equilex/internal/platform/net"

	perr "equilex/internal/platform/errors"
)

// Page carries list pagination metadata
type Page struct {
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Envelope is the uniform JSON wrapper for every API response
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Code       int    `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Data       any    `json:"data,omitempty"`
	Page       *Page  `json:"page,omitempty"`
}

// Response is what handlers return; WriteResponse turns it into an Envelope
type Response struct {
	Status int
	Body   any
	Header http.Header
	page   *Page
	err    error
}

// OK returns a 200 response with no body
func OK() Response { return Response{Status: http.StatusOK} }

// Created returns a 201 response carrying v
func Created(v any) Response { return Response{Status: http.StatusCreated, Body: v} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: http.StatusNoContent} }

// Data returns a 200 response carrying v
func Data(v any) Response { return Response{Status: http.StatusOK, Body: v} }

// List returns a 200 response carrying items plus pagination metadata
func List(items any, total, limit, offset int) Response {
	return Response{
		Status: http.StatusOK,
		Body:   items,
		page:   &Page{Total: total, Limit: limit, Offset: offset},
	}
}

// Error maps err to a Response via the platform error taxonomy
func Error(err error) Response {
	if err == nil {
		return OK()
	}
	return Response{Status: perr.HTTPStatus(err), err: err}
}

// ErrorStatus builds an error Response with an explicit HTTP status
func ErrorStatus(status int, err error) Response {
	return Response{Status: status, err: err}
}

// Handle adapts a Response-returning handler to http.HandlerFunc
func Handle(fn func(r *http.Request) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteResponse(w, r, fn(r))
	}
}

// WriteResponse serializes res into the Envelope wire shape
func WriteResponse(w http.ResponseWriter, r *http.Request, res Response) {
	for k, vals := range res.Header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}

	if res.Status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	env := Envelope{
		StatusCode: res.Status,
		Status:     http.StatusText(res.Status),
		RequestID:  pnet.RequestID(r.Context()),
		Data:       res.Body,
		Page:       res.page,
	}
	if res.err != nil {
		wire := perr.WireFrom(res.err)
		env.Code = int(wire.Code)
		env.Error = wire.Message
		env.Data = nil
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(res.Status)
	_ = json.NewEncoder(w).Encode(env)
}
