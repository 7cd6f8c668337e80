// Package resttest provides an httptest-backed client for exercising views
// the way handler tests in this repo do, with optional forced
// authentication.
package resttest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"asyncrest/rest"
)

// Client drives an http.Handler (usually a gin engine) in-process.
type Client struct {
	handler http.Handler
	headers http.Header
	user    *rest.User
}

func NewClient(handler http.Handler) *Client {
	return &Client{handler: handler, headers: http.Header{}}
}

// ForceAuthenticate pins the identity for every subsequent request,
// bypassing the view's authenticator chain. Passing nil removes the pin.
func (c *Client) ForceAuthenticate(u *rest.User) {
	c.user = u
}

// SetHeader sets a header sent with every subsequent request.
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Response is a decoded test response.
type Response struct {
	Code   int
	Header http.Header
	Body   []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Map decodes the response body as a JSON object.
func (r *Response) Map() (map[string]any, error) {
	out := make(map[string]any)
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(path string) *Response {
	return c.Do(http.MethodGet, path, nil)
}

func (c *Client) Post(path string, body any) *Response {
	return c.Do(http.MethodPost, path, body)
}

func (c *Client) Put(path string, body any) *Response {
	return c.Do(http.MethodPut, path, body)
}

func (c *Client) Patch(path string, body any) *Response {
	return c.Do(http.MethodPatch, path, body)
}

func (c *Client) Delete(path string) *Response {
	return c.Do(http.MethodDelete, path, nil)
}

// Do sends a request with a JSON-encoded body and records the response.
func (c *Client) Do(method, path string, body any) *Response {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if c.user != nil {
		req = req.WithContext(rest.ForceUserContext(req.Context(), c.user))
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	return &Response{
		Code:   w.Code,
		Header: w.Header(),
		Body:   w.Body.Bytes(),
	}
}
