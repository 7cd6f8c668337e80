package rest

import (
	"golang.org/x/sync/errgroup"

	"asyncrest/await"
)

// Permission gates a request before its handler runs. A false result blocks
// the request with 403 (or 401 for anonymous callers when the permission
// reports so via a Detail).
type Permission interface {
	HasPermission(c *Context) (bool, error)
}

// AsyncPermission is the awaitable permission form. When implemented,
// dispatch awaits HasPermissionAsync and never calls HasPermission.
type AsyncPermission interface {
	Permission
	HasPermissionAsync(c *Context) *await.Promise[bool]
}

// ObjectPermission gates access to a single loaded object; generic views run
// these after fetching the row.
type ObjectPermission interface {
	HasObjectPermission(c *Context, obj any) (bool, error)
}

// AsyncObjectPermission is the awaitable object-permission form.
type AsyncObjectPermission interface {
	ObjectPermission
	HasObjectPermissionAsync(c *Context, obj any) *await.Promise[bool]
}

// Detailer lets a permission customize its denial message.
type Detailer interface {
	Detail() string
}

// PermissionFunc adapts a function to the Permission interface.
type PermissionFunc func(c *Context) (bool, error)

func (f PermissionFunc) HasPermission(c *Context) (bool, error) { return f(c) }

// AsyncPermissionFunc adapts a promise-returning function to the
// AsyncPermission interface. Its synchronous form awaits the same promise,
// so both forms gate identically.
type AsyncPermissionFunc func(c *Context) *await.Promise[bool]

func (f AsyncPermissionFunc) HasPermission(c *Context) (bool, error) {
	return f(c).Await(c.RequestContext())
}

func (f AsyncPermissionFunc) HasPermissionAsync(c *Context) *await.Promise[bool] {
	return f(c)
}

// ObjectPermissionFunc adapts a function to the ObjectPermission interface.
type ObjectPermissionFunc func(c *Context, obj any) (bool, error)

func (f ObjectPermissionFunc) HasObjectPermission(c *Context, obj any) (bool, error) {
	return f(c, obj)
}

// AsyncObjectPermissionFunc adapts a promise-returning function to the
// AsyncObjectPermission interface.
type AsyncObjectPermissionFunc func(c *Context, obj any) *await.Promise[bool]

func (f AsyncObjectPermissionFunc) HasObjectPermission(c *Context, obj any) (bool, error) {
	return f(c, obj).Await(c.RequestContext())
}

func (f AsyncObjectPermissionFunc) HasObjectPermissionAsync(c *Context, obj any) *await.Promise[bool] {
	return f(c, obj)
}

// AllowAny permits every request.
type AllowAny struct{}

func (AllowAny) HasPermission(*Context) (bool, error) { return true, nil }

// IsAuthenticated permits only requests with a non-anonymous identity.
type IsAuthenticated struct{}

func (IsAuthenticated) HasPermission(c *Context) (bool, error) {
	u, err := c.User()
	if err != nil {
		return false, err
	}
	return u.IsAuthenticated(), nil
}

// IsAuthenticatedOrReadOnly permits safe methods for everyone and write
// methods only for authenticated callers.
type IsAuthenticatedOrReadOnly struct{}

func (IsAuthenticatedOrReadOnly) HasPermission(c *Context) (bool, error) {
	switch c.Method() {
	case "GET", "HEAD", "OPTIONS":
		return true, nil
	}
	u, err := c.User()
	if err != nil {
		return false, err
	}
	return u.IsAuthenticated(), nil
}

func denial(c *Context, p any) error {
	if u, err := c.User(); err == nil && !u.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if d, ok := p.(Detailer); ok {
		return PermissionDenied(d.Detail())
	}
	return ErrPermissionDenied
}

// checkPermissions splits the view's permissions into awaitable and
// synchronous sets, gathers the awaitable ones concurrently, then evaluates
// the synchronous ones in order. Either kind blocking the request yields the
// same denial.
func checkPermissions(c *Context, permissions []Permission) error {
	var syncPerms []Permission
	var asyncPerms []AsyncPermission

	for _, p := range permissions {
		if ap, ok := p.(AsyncPermission); ok {
			asyncPerms = append(asyncPerms, ap)
		} else {
			syncPerms = append(syncPerms, p)
		}
	}

	if len(asyncPerms) > 0 {
		allowed := make([]bool, len(asyncPerms))
		g, gctx := errgroup.WithContext(c.RequestContext())
		for i, p := range asyncPerms {
			i, p := i, p
			g.Go(func() error {
				ok, err := p.HasPermissionAsync(c).Await(gctx)
				allowed[i] = ok
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i, ok := range allowed {
			if !ok {
				return denial(c, asyncPerms[i])
			}
		}
	}

	for _, p := range syncPerms {
		ok, err := p.HasPermission(c)
		if err != nil {
			return err
		}
		if !ok {
			return denial(c, p)
		}
	}

	return nil
}

// CheckObjectPermissions runs object-level permissions against a loaded
// object, awaitable checks first, mirroring checkPermissions.
func CheckObjectPermissions(c *Context, permissions []ObjectPermission, obj any) error {
	var syncPerms []ObjectPermission
	var asyncPerms []AsyncObjectPermission

	for _, p := range permissions {
		if ap, ok := p.(AsyncObjectPermission); ok {
			asyncPerms = append(asyncPerms, ap)
		} else {
			syncPerms = append(syncPerms, p)
		}
	}

	if len(asyncPerms) > 0 {
		allowed := make([]bool, len(asyncPerms))
		g, gctx := errgroup.WithContext(c.RequestContext())
		for i, p := range asyncPerms {
			i, p := i, p
			g.Go(func() error {
				ok, err := p.HasObjectPermissionAsync(c, obj).Await(gctx)
				allowed[i] = ok
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i, ok := range allowed {
			if !ok {
				return denial(c, asyncPerms[i])
			}
		}
	}

	for _, p := range syncPerms {
		ok, err := p.HasObjectPermission(c, obj)
		if err != nil {
			return err
		}
		if !ok {
			return denial(c, p)
		}
	}

	return nil
}
