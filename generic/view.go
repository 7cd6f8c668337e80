// Package generic composes stores, serializers, and paginators into the
// usual CRUD views and viewsets. The actions it generates run synchronously
// by default; setting Async on a GenericView turns every generated action
// into its awaitable form, with identical behavior either way.
package generic

import (
	"asyncrest/await"
	"asyncrest/pagination"
	"asyncrest/rest"
	"asyncrest/serializer"
)

// GenericView bundles everything the generated CRUD actions need. Zero
// LookupParam means the detail routes read the "pk" URL parameter.
type GenericView[T any] struct {
	Name string

	Store      Store[T]
	Serializer *serializer.Serializer[T]
	Paginator  pagination.Paginator

	// PK extracts an object's key, used for the Location header on create.
	PK func(obj T) string

	LookupParam string

	Authenticators    []rest.Authenticator
	Permissions       []rest.Permission
	ObjectPermissions []rest.ObjectPermission
	Throttles         []rest.Throttle

	// Async exposes every generated action as an awaitable handler.
	Async bool
}

func (g *GenericView[T]) lookupParam() string {
	if g.LookupParam == "" {
		return "pk"
	}
	return g.LookupParam
}

// GetObject loads the object a detail route addresses: 404 on a missing or
// malformed key, then object permission checks, awaitable ones detected per
// check.
func (g *GenericView[T]) GetObject(c *rest.Context) (T, error) {
	obj, err := GetOr404(c.RequestContext(), g.Store, c.Param(g.lookupParam()))
	if err != nil {
		return obj, err
	}
	if err := rest.CheckObjectPermissions(c, g.ObjectPermissions, obj); err != nil {
		return obj, err
	}
	return obj, nil
}

// paginate computes the window for a list request, awaiting the paginator
// when it supplies the awaitable form.
func (g *GenericView[T]) paginate(c *rest.Context, count int) (pagination.Window, error) {
	if g.Paginator == nil {
		return pagination.Window{Disabled: true}, nil
	}
	if ap, ok := g.Paginator.(pagination.AsyncPaginator); ok {
		return ap.WindowAsync(c, count).Await(c.RequestContext())
	}
	return g.Paginator.Window(c, count)
}

// action wraps a generated action in the handler form the view is declared
// with.
func (g *GenericView[T]) action(fn func(c *rest.Context) (*rest.Response, error)) rest.Handler {
	if !g.Async {
		return rest.HandlerFunc(fn)
	}
	return rest.AsyncHandlerFunc(func(c *rest.Context) *await.Promise[*rest.Response] {
		return await.Go(func() (*rest.Response, error) { return fn(c) })
	})
}

func (g *GenericView[T]) baseView() *rest.View {
	return &rest.View{
		Name:           g.Name,
		Authenticators: g.Authenticators,
		Permissions:    g.Permissions,
		Throttles:      g.Throttles,
	}
}

// ListView serves GET as the list action.
func (g *GenericView[T]) ListView() *rest.View {
	v := g.baseView()
	v.Get = g.action(g.list)
	return v
}

// CreateView serves POST as the create action.
func (g *GenericView[T]) CreateView() *rest.View {
	v := g.baseView()
	v.Post = g.action(g.create)
	return v
}

// ListCreateView serves GET as list and POST as create.
func (g *GenericView[T]) ListCreateView() *rest.View {
	v := g.baseView()
	v.Get = g.action(g.list)
	v.Post = g.action(g.create)
	return v
}

// RetrieveView serves GET as the retrieve action.
func (g *GenericView[T]) RetrieveView() *rest.View {
	v := g.baseView()
	v.Get = g.action(g.retrieve)
	return v
}

// UpdateView serves PUT as update and PATCH as partial update.
func (g *GenericView[T]) UpdateView() *rest.View {
	v := g.baseView()
	v.Put = g.action(g.update)
	v.Patch = g.action(g.partialUpdate)
	return v
}

// DestroyView serves DELETE as the destroy action.
func (g *GenericView[T]) DestroyView() *rest.View {
	v := g.baseView()
	v.Delete = g.action(g.destroy)
	return v
}

// RetrieveUpdateView serves GET, PUT, and PATCH on a detail route.
func (g *GenericView[T]) RetrieveUpdateView() *rest.View {
	v := g.RetrieveView()
	v.Put = g.action(g.update)
	v.Patch = g.action(g.partialUpdate)
	return v
}

// RetrieveDestroyView serves GET and DELETE on a detail route.
func (g *GenericView[T]) RetrieveDestroyView() *rest.View {
	v := g.RetrieveView()
	v.Delete = g.action(g.destroy)
	return v
}

// RetrieveUpdateDestroyView serves GET, PUT, PATCH, and DELETE on a detail
// route.
func (g *GenericView[T]) RetrieveUpdateDestroyView() *rest.View {
	v := g.RetrieveUpdateView()
	v.Delete = g.action(g.destroy)
	return v
}

// ViewSet returns the full CRUD action set for router registration.
func (g *GenericView[T]) ViewSet() *rest.ViewSet {
	return &rest.ViewSet{
		Name:           g.Name,
		Authenticators: g.Authenticators,
		Permissions:    g.Permissions,
		Throttles:      g.Throttles,
		Actions: map[string]rest.Handler{
			"list":           g.action(g.list),
			"create":         g.action(g.create),
			"retrieve":       g.action(g.retrieve),
			"update":         g.action(g.update),
			"partial_update": g.action(g.partialUpdate),
			"destroy":        g.action(g.destroy),
		},
	}
}

// ReadOnlyViewSet returns only the list and retrieve actions.
func (g *GenericView[T]) ReadOnlyViewSet() *rest.ViewSet {
	return &rest.ViewSet{
		Name:           g.Name,
		Authenticators: g.Authenticators,
		Permissions:    g.Permissions,
		Throttles:      g.Throttles,
		Actions: map[string]rest.Handler{
			"list":     g.action(g.list),
			"retrieve": g.action(g.retrieve),
		},
	}
}
