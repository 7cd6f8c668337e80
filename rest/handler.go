package rest

import (
	"fmt"

	"asyncrest/await"
)

// Handler is the unit of request-processing logic bound to a view method.
// It comes in exactly two forms: HandlerFunc returns its response directly,
// AsyncHandlerFunc returns a promise that dispatch awaits. Dispatch branches
// on which form is bound and normalizes both to a single result path.
type Handler interface {
	handler()
}

// HandlerFunc is a synchronous handler. Invoking it through dispatch calls
// it directly, with no suspension introduced.
type HandlerFunc func(c *Context) (*Response, error)

func (HandlerFunc) handler() {}

// AsyncHandlerFunc is an awaitable handler. Dispatch awaits the returned
// promise; an error or panic inside it surfaces exactly as it would from a
// HandlerFunc.
type AsyncHandlerFunc func(c *Context) *await.Promise[*Response]

func (AsyncHandlerFunc) handler() {}

// IsAsync reports whether h is the awaitable handler form.
func IsAsync(h Handler) bool {
	_, ok := h.(AsyncHandlerFunc)
	return ok
}

// invoke is the dispatch adapter: it runs a handler of either form and
// returns its result through one code path.
func invoke(c *Context, h Handler) (*Response, error) {
	switch h := h.(type) {
	case HandlerFunc:
		return h(c)
	case AsyncHandlerFunc:
		return h(c).Await(c.RequestContext())
	default:
		return nil, fmt.Errorf("rest: unsupported handler type %T", h)
	}
}
