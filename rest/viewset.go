package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"asyncrest/await"
)

// ViewSet groups named actions sharing one set of checks. Actions are bound
// to HTTP methods at registration time through a bindings map, so the same
// viewset can serve a collection route and a detail route with different
// method-to-action maps. The bound action name is visible to handlers via
// Context.Action.
type ViewSet struct {
	Name string

	Authenticators []Authenticator
	Permissions    []Permission
	Throttles      []Throttle

	Actions map[string]Handler
}

// HasAction reports whether the viewset defines the named action.
func (vs *ViewSet) HasAction(name string) bool {
	_, ok := vs.Actions[name]
	return ok
}

// Handler builds a gin handler from a method-to-action bindings map, for
// example {"GET": "list", "POST": "create"}. Unknown actions, unknown
// methods, and an empty map are registration-time errors.
func (vs *ViewSet) Handler(bindings map[string]string) (gin.HandlerFunc, error) {
	if len(bindings) == 0 {
		return nil, fmt.Errorf("rest: viewset %q needs a non-empty bindings map", vs.Name)
	}

	v := &View{
		Name:           vs.Name,
		Authenticators: vs.Authenticators,
		Permissions:    vs.Permissions,
		Throttles:      vs.Throttles,
	}

	for method, action := range bindings {
		h, ok := vs.Actions[action]
		if !ok {
			return nil, fmt.Errorf("rest: viewset %q has no action %q", vs.Name, action)
		}
		bound := bindAction(h, action)
		switch method {
		case http.MethodGet:
			v.Get = bound
		case http.MethodPost:
			v.Post = bound
		case http.MethodPut:
			v.Put = bound
		case http.MethodPatch:
			v.Patch = bound
		case http.MethodDelete:
			v.Delete = bound
		default:
			return nil, fmt.Errorf("rest: viewset %q cannot bind method %q", vs.Name, method)
		}
	}

	return v.AsView(), nil
}

// MustHandler is Handler, panicking on invalid bindings.
func (vs *ViewSet) MustHandler(bindings map[string]string) gin.HandlerFunc {
	h, err := vs.Handler(bindings)
	if err != nil {
		panic(err)
	}
	return h
}

// bindAction stamps the action name onto the context before invoking the
// handler, preserving the handler's form: a synchronous action stays
// synchronous, an awaitable one stays awaitable.
func bindAction(h Handler, action string) Handler {
	switch h := h.(type) {
	case HandlerFunc:
		return HandlerFunc(func(c *Context) (*Response, error) {
			c.Action = action
			return h(c)
		})
	case AsyncHandlerFunc:
		return AsyncHandlerFunc(func(c *Context) *await.Promise[*Response] {
			c.Action = action
			return h(c)
		})
	default:
		return h
	}
}
