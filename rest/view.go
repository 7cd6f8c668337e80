// Package rest layers DRF-style views on top of Gin, with every extension
// point usable in a synchronous or an awaitable form. Dispatch detects which
// form a handler, authenticator, permission, or throttle supplies and
// normalizes both to a single result path; routing, request parsing, and
// response writing stay Gin's.
package rest

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

// View binds handlers to HTTP methods and carries the checks that gate them.
// A nil method slot answers 405. HEAD falls back to the GET handler and
// OPTIONS is synthesized from the bound methods.
type View struct {
	Name string

	Authenticators []Authenticator
	Permissions    []Permission
	Throttles      []Throttle

	Get    Handler
	Post   Handler
	Put    Handler
	Patch  Handler
	Delete Handler
}

// AsView returns the gin handler that dispatches into this view.
func (v *View) AsView() gin.HandlerFunc {
	return func(g *gin.Context) {
		c := newContext(g, v.Name, v.Authenticators)
		resp, err := v.run(c)
		if err != nil {
			v.finalizeError(c, err)
			return
		}
		v.finalize(c, resp)
	}
}

// run performs the dispatch sequence: resolve the handler, run permission
// checks, run throttle checks, invoke the handler (awaiting it when it is
// the async form). OPTIONS is synthesized but still passes through the
// checks. Errors from any step share one exit path.
func (v *View) run(c *Context) (*Response, error) {
	var h Handler
	if c.Method() != http.MethodOptions {
		h = v.handlerFor(c.Method())
		if h == nil {
			return nil, ErrMethodNotAllowed
		}
	}

	if err := checkPermissions(c, v.Permissions); err != nil {
		return nil, err
	}
	if err := checkThrottles(c, v.Throttles); err != nil {
		return nil, err
	}

	if h == nil {
		return v.options(), nil
	}
	return invoke(c, h)
}

func (v *View) handlerFor(method string) Handler {
	switch method {
	case http.MethodGet:
		return v.Get
	case http.MethodHead:
		return v.Get
	case http.MethodPost:
		return v.Post
	case http.MethodPut:
		return v.Put
	case http.MethodPatch:
		return v.Patch
	case http.MethodDelete:
		return v.Delete
	}
	return nil
}

func (v *View) allowedMethods() []string {
	methods := []string{http.MethodOptions}
	if v.Get != nil {
		methods = append(methods, http.MethodGet, http.MethodHead)
	}
	if v.Post != nil {
		methods = append(methods, http.MethodPost)
	}
	if v.Put != nil {
		methods = append(methods, http.MethodPut)
	}
	if v.Patch != nil {
		methods = append(methods, http.MethodPatch)
	}
	if v.Delete != nil {
		methods = append(methods, http.MethodDelete)
	}
	sort.Strings(methods)
	return methods
}

func (v *View) options() *Response {
	methods := v.allowedMethods()
	resp := OK(gin.H{
		"name":            v.Name,
		"allowed_methods": methods,
	})
	return resp.WithHeader("Allow", joinMethods(methods))
}

func (v *View) finalize(c *Context, resp *Response) {
	if resp == nil {
		resp = NoContent()
	}
	for key, values := range resp.Headers {
		for _, value := range values {
			c.gin.Header(key, value)
		}
	}
	if resp.Data == nil {
		c.gin.Status(resp.Status)
		return
	}
	c.gin.JSON(resp.Status, resp.Data)
}

func (v *View) finalizeError(c *Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		c.Logger().WithError(err).Error("unhandled view error")
		c.gin.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	switch apiErr.Code {
	case ErrMethodNotAllowed.Code:
		c.gin.Header("Allow", joinMethods(v.allowedMethods()))
	case ErrThrottled.Code:
		if apiErr.Wait > 0 {
			c.gin.Header("Retry-After", strconv.Itoa(int(math.Ceil(apiErr.Wait.Seconds()))))
		}
	}

	body := gin.H{"error": apiErr.Message}
	if len(apiErr.Fields) > 0 {
		body["fields"] = apiErr.Fields
	}
	c.gin.JSON(apiErr.Status, body)
}

func joinMethods(methods []string) string {
	out := ""
	for i, m := range methods {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}
