package rest

import "net/http"

// Response is the result of a handler, written out by dispatch during
// finalization.
type Response struct {
	Status  int
	Data    any
	Headers http.Header
}

func NewResponse(status int, data any) *Response {
	return &Response{Status: status, Data: data}
}

func OK(data any) *Response {
	return NewResponse(http.StatusOK, data)
}

func Created(data any) *Response {
	return NewResponse(http.StatusCreated, data)
}

func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// WithHeader sets a response header and returns the response for chaining.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Headers == nil {
		r.Headers = http.Header{}
	}
	r.Headers.Set(key, value)
	return r
}
