package rest_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"asyncrest/await"
	"asyncrest/rest"
)

func authedRequest(method string) *http.Request {
	req := httptest.NewRequest(method, "/t", nil)
	user := &rest.User{ID: uuid.New(), Username: "alice"}
	return req.WithContext(rest.ForceUserContext(req.Context(), user))
}

func TestPermissionSyncDeny(t *testing.T) {
	v := &rest.View{
		Name:        "guarded",
		Permissions: []rest.Permission{rest.IsAuthenticated{}},
		Get:         rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	// Anonymous callers get 401, not 403.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissionSyncAllow(t *testing.T) {
	v := &rest.View{
		Name:        "guarded",
		Permissions: []rest.Permission{rest.IsAuthenticated{}},
		Get:         rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, authedRequest(http.MethodGet))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPermissionAsyncMatchesSync(t *testing.T) {
	deny := func(verdict bool) (sync, async rest.Permission) {
		sync = rest.PermissionFunc(func(c *rest.Context) (bool, error) {
			return verdict, nil
		})
		async = rest.AsyncPermissionFunc(func(c *rest.Context) *await.Promise[bool] {
			return await.Go(func() (bool, error) { return verdict, nil })
		})
		return sync, async
	}

	for _, verdict := range []bool{true, false} {
		syncPerm, asyncPerm := deny(verdict)
		sv := &rest.View{Name: "p", Permissions: []rest.Permission{syncPerm}, Get: rest.HandlerFunc(syncEcho)}
		av := &rest.View{Name: "p", Permissions: []rest.Permission{asyncPerm}, Get: rest.HandlerFunc(syncEcho)}

		sw := serve(t, sv, authedRequest(http.MethodGet))
		aw := serve(t, av, authedRequest(http.MethodGet))

		assert.Equal(t, sw.Code, aw.Code)
		assert.JSONEq(t, sw.Body.String(), aw.Body.String())
	}
}

func TestPermissionAllMustAllow(t *testing.T) {
	allow := rest.PermissionFunc(func(c *rest.Context) (bool, error) { return true, nil })
	deny := rest.AsyncPermissionFunc(func(c *rest.Context) *await.Promise[bool] {
		return await.Resolved(false)
	})

	v := &rest.View{
		Name:        "strict",
		Permissions: []rest.Permission{allow, deny},
		Get:         rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, authedRequest(http.MethodGet))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

type detailedPermission struct{}

func (detailedPermission) HasPermission(*rest.Context) (bool, error) { return false, nil }
func (detailedPermission) Detail() string                            { return "editors only" }

func TestPermissionDenialDetail(t *testing.T) {
	v := &rest.View{
		Name:        "editors",
		Permissions: []rest.Permission{detailedPermission{}},
		Get:         rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, authedRequest(http.MethodGet))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"editors only"}`, w.Body.String())
}

func TestIsAuthenticatedOrReadOnly(t *testing.T) {
	v := &rest.View{
		Name:        "articles",
		Permissions: []rest.Permission{rest.IsAuthenticatedOrReadOnly{}},
		Get:         rest.HandlerFunc(syncEcho),
		Post:        rest.HandlerFunc(syncEcho),
	}

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"anonymous read", httptest.NewRequest(http.MethodGet, "/t", nil), http.StatusOK},
		{"anonymous write", httptest.NewRequest(http.MethodPost, "/t", nil), http.StatusUnauthorized},
		{"authenticated write", authedRequest(http.MethodPost), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, v, tt.req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPermissionsConcurrentLazyAuth(t *testing.T) {
	requireUser := rest.AsyncPermissionFunc(func(c *rest.Context) *await.Promise[bool] {
		return await.Go(func() (bool, error) {
			u, err := c.User()
			if err != nil {
				return false, err
			}
			return u.IsAuthenticated(), nil
		})
	})

	var calls atomic.Int32
	v := &rest.View{
		Name: "concurrent",
		Authenticators: []rest.Authenticator{
			rest.AuthenticatorFunc(func(c *rest.Context) (*rest.User, error) {
				calls.Add(1)
				time.Sleep(time.Millisecond)
				return &rest.User{ID: uuid.New(), Username: "alice"}, nil
			}),
		},
		// Both checks run in the concurrent gather and both resolve the user.
		Permissions: []rest.Permission{requireUser, requireUser},
		Get:         rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestPermissionsConcurrentBodyReads(t *testing.T) {
	wantsJSON := rest.AsyncPermissionFunc(func(c *rest.Context) *await.Promise[bool] {
		return await.Go(func() (bool, error) {
			b, err := c.Body()
			if err != nil {
				return false, err
			}
			return strings.Contains(string(b), "token"), nil
		})
	})

	v := &rest.View{
		Name:        "body",
		Permissions: []rest.Permission{wantsJSON, wantsJSON},
		Post: rest.HandlerFunc(func(c *rest.Context) (*rest.Response, error) {
			b, err := c.Body()
			if err != nil {
				return nil, err
			}
			return rest.OK(gin.H{"len": len(b)}), nil
		}),
	}

	body := `{"token":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/t", strings.NewReader(body))
	req = req.WithContext(rest.ForceUserContext(req.Context(), &rest.User{Username: "alice"}))
	w := serve(t, v, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"len":%d}`, len(body)), w.Body.String())
}

func TestCheckObjectPermissions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	denyMine := rest.AsyncObjectPermissionFunc(func(c *rest.Context, obj any) *await.Promise[bool] {
		return await.Go(func() (bool, error) {
			owner, _ := obj.(string)
			u, err := c.User()
			if err != nil {
				return false, err
			}
			return u.Username == owner, nil
		})
	})

	v := &rest.View{
		Name: "owned",
		Get: rest.HandlerFunc(func(c *rest.Context) (*rest.Response, error) {
			if err := rest.CheckObjectPermissions(c, []rest.ObjectPermission{denyMine}, "alice"); err != nil {
				return nil, err
			}
			return rest.OK(gin.H{"ok": true}), nil
		}),
	}

	w := serve(t, v, authedRequest(http.MethodGet))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
