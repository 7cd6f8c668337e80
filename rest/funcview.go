package rest

import (
	"fmt"
	"net/http"
)

// Func wraps a plain handler function, synchronous or awaitable, into a View
// allowing only the listed methods. With no methods it allows GET. Fields on
// the returned View (Name, Authenticators, Permissions, Throttles) can be
// set before calling AsView.
//
//	search := rest.Func(rest.AsyncHandlerFunc(searchArticles), http.MethodGet)
//	r.GET("/articles/search", search.AsView())
//
// An unknown method name panics at registration time, like a bad gin route.
func Func(h Handler, methods ...string) *View {
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	v := &View{}
	for _, m := range methods {
		switch m {
		case http.MethodGet, http.MethodHead:
			v.Get = h
		case http.MethodPost:
			v.Post = h
		case http.MethodPut:
			v.Put = h
		case http.MethodPatch:
			v.Patch = h
		case http.MethodDelete:
			v.Delete = h
		default:
			panic(fmt.Sprintf("rest: Func does not support method %q", m))
		}
	}
	return v
}
