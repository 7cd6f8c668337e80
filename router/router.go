// Package router registers viewsets on a gin router group using the
// conventional route table: the collection route maps GET to list and POST
// to create, the detail route maps GET/PUT/PATCH/DELETE to
// retrieve/update/partial_update/destroy. Only actions the viewset actually
// defines are bound.
package router

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"asyncrest/rest"
)

var collectionBindings = map[string]string{
	http.MethodGet:  "list",
	http.MethodPost: "create",
}

var detailBindings = map[string]string{
	http.MethodGet:    "retrieve",
	http.MethodPut:    "update",
	http.MethodPatch:  "partial_update",
	http.MethodDelete: "destroy",
}

// Router registers viewsets under prefixes.
type Router struct {
	prefixes []string
}

func New() *Router {
	return &Router{}
}

// Register binds vs under prefix on group. The detail route uses the :pk
// parameter, matching the default GenericView lookup.
func (r *Router) Register(group *gin.RouterGroup, prefix string, vs *rest.ViewSet) error {
	collection := prune(collectionBindings, vs)
	detail := prune(detailBindings, vs)

	if len(collection) > 0 {
		h, err := vs.Handler(collection)
		if err != nil {
			return err
		}
		for method := range collection {
			group.Handle(method, prefix, h)
		}
		if _, ok := collection[http.MethodGet]; ok {
			group.Handle(http.MethodHead, prefix, h)
		}
		group.Handle(http.MethodOptions, prefix, h)
	}

	if len(detail) > 0 {
		h, err := vs.Handler(detail)
		if err != nil {
			return err
		}
		for method := range detail {
			group.Handle(method, prefix+"/:pk", h)
		}
		if _, ok := detail[http.MethodGet]; ok {
			group.Handle(http.MethodHead, prefix+"/:pk", h)
		}
		group.Handle(http.MethodOptions, prefix+"/:pk", h)
	}

	r.prefixes = append(r.prefixes, prefix)
	return nil
}

// MustRegister is Register, panicking on error.
func (r *Router) MustRegister(group *gin.RouterGroup, prefix string, vs *rest.ViewSet) {
	if err := r.Register(group, prefix, vs); err != nil {
		panic(err)
	}
}

// Root installs an index route on group listing the registered prefixes,
// keyed by prefix name.
func (r *Router) Root(group *gin.RouterGroup) {
	group.GET("", func(g *gin.Context) {
		prefixes := append([]string(nil), r.prefixes...)
		sort.Strings(prefixes)

		base := group.BasePath()
		index := make(gin.H, len(prefixes))
		for _, p := range prefixes {
			name := p
			for len(name) > 0 && name[0] == '/' {
				name = name[1:]
			}
			index[name] = base + p
		}
		g.JSON(http.StatusOK, index)
	})
}

// prune drops bindings whose action the viewset does not define, so a
// read-only viewset registers only its list and retrieve routes.
func prune(bindings map[string]string, vs *rest.ViewSet) map[string]string {
	out := make(map[string]string, len(bindings))
	for method, action := range bindings {
		if vs.HasAction(action) {
			out[method] = action
		}
	}
	return out
}
