package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type forcedUserKey struct{}

// User is the identity attached to a request by an authenticator.
type User struct {
	ID        uuid.UUID
	Username  string
	Anonymous bool
}

// Anonymous is the identity used when no authenticator claims the request.
var Anonymous = &User{Anonymous: true}

func (u *User) IsAuthenticated() bool {
	return u != nil && !u.Anonymous
}

// Context carries per-request state through dispatch. It wraps the
// underlying gin context; all dispatch state is request-scoped, nothing is
// shared across requests. The lazy caches are safe to hit from concurrently
// gathered async checks.
type Context struct {
	// Action is the bound viewset action name, empty for plain views.
	Action string

	gin            *gin.Context
	view           string
	authenticators []Authenticator

	bodyMu sync.Mutex
	body   []byte

	authMu        sync.Mutex
	user          *User
	authErr       error
	authenticated bool
}

func newContext(g *gin.Context, view string, authenticators []Authenticator) *Context {
	return &Context{gin: g, view: view, authenticators: authenticators}
}

// Gin exposes the underlying gin context for anything the wrapper does not
// cover.
func (c *Context) Gin() *gin.Context { return c.gin }

func (c *Context) Request() *http.Request { return c.gin.Request }

// RequestContext is the context.Context governing this request's lifecycle;
// awaits during dispatch are bound to it.
func (c *Context) RequestContext() context.Context { return c.gin.Request.Context() }

func (c *Context) Method() string { return c.gin.Request.Method }

func (c *Context) Param(name string) string { return c.gin.Param(name) }

func (c *Context) Query(name string) string { return c.gin.Query(name) }

func (c *Context) DefaultQuery(name, fallback string) string {
	return c.gin.DefaultQuery(name, fallback)
}

func (c *Context) Header(name string) string { return c.gin.GetHeader(name) }

// Body returns the raw request body, reading it once and caching it so the
// body can be consumed more than once during dispatch, including from
// concurrent async checks.
func (c *Context) Body() ([]byte, error) {
	c.bodyMu.Lock()
	defer c.bodyMu.Unlock()
	if c.body == nil {
		b, err := io.ReadAll(c.gin.Request.Body)
		if err != nil {
			return nil, err
		}
		c.body = b
	}
	return c.body, nil
}

// BindJSON decodes the request body into v.
func (c *Context) BindJSON(v any) error {
	b, err := c.Body()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// RequestID returns the correlation identifier middleware attached to the
// request, empty when none did.
func (c *Context) RequestID() string {
	return c.gin.GetString("request_id")
}

// Logger returns an entry scoped to this request.
func (c *Context) Logger() *log.Entry {
	fields := log.Fields{
		"view":   c.view,
		"method": c.Method(),
		"path":   c.gin.FullPath(),
	}
	if rid := c.RequestID(); rid != "" {
		fields["request_id"] = rid
	}
	if c.Action != "" {
		fields["action"] = c.Action
	}
	return log.WithFields(fields)
}

// User returns the identity associated with the request, running the view's
// authenticator chain lazily on first access. The first authenticator that
// claims the request wins; each authenticator may be synchronous or
// awaitable, detected independently. With no claim the request proceeds as
// Anonymous. Concurrent callers share one chain run; authenticators must not
// call User themselves.
func (c *Context) User() (*User, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if !c.authenticated {
		if forced, ok := c.RequestContext().Value(forcedUserKey{}).(*User); ok {
			c.user = forced
		} else {
			c.user, c.authErr = authenticate(c, c.authenticators)
		}
		c.authenticated = true
	}
	return c.user, c.authErr
}

// ForceUserContext pins the request identity carried by ctx, bypassing the
// authenticator chain. Intended for tests; see the resttest package.
func ForceUserContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, forcedUserKey{}, u)
}
