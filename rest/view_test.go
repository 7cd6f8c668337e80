package rest_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asyncrest/await"
	"asyncrest/rest"
)

func serve(t *testing.T, v *rest.View, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Any("/t", v.AsView())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func syncEcho(c *rest.Context) (*rest.Response, error) {
	return rest.OK(gin.H{"message": "hello"}), nil
}

func asyncEcho(c *rest.Context) *await.Promise[*rest.Response] {
	return await.Go(func() (*rest.Response, error) {
		return rest.OK(gin.H{"message": "hello"}), nil
	})
}

func TestDispatchSyncHandler(t *testing.T) {
	v := &rest.View{Name: "echo", Get: rest.HandlerFunc(syncEcho)}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"hello"}`, w.Body.String())
}

func TestDispatchAsyncHandlerMatchesSync(t *testing.T) {
	syncView := &rest.View{Name: "echo", Get: rest.HandlerFunc(syncEcho)}
	asyncView := &rest.View{Name: "echo", Get: rest.AsyncHandlerFunc(asyncEcho)}

	sw := serve(t, syncView, httptest.NewRequest(http.MethodGet, "/t", nil))
	aw := serve(t, asyncView, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, sw.Code, aw.Code)
	assert.JSONEq(t, sw.Body.String(), aw.Body.String())
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	v := &rest.View{Name: "echo", Get: rest.HandlerFunc(syncEcho)}

	w := serve(t, v, httptest.NewRequest(http.MethodPost, "/t", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Header().Get("Allow"), http.MethodGet)
	assert.NotContains(t, w.Header().Get("Allow"), http.MethodPost)
}

func TestDispatchHeadFallsBackToGet(t *testing.T) {
	v := &rest.View{Name: "echo", Get: rest.HandlerFunc(syncEcho)}

	w := serve(t, v, httptest.NewRequest(http.MethodHead, "/t", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDispatchOptions(t *testing.T) {
	v := &rest.View{
		Name: "echo",
		Get:  rest.HandlerFunc(syncEcho),
		Post: rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodOptions, "/t", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	allow := w.Header().Get("Allow")
	assert.Contains(t, allow, http.MethodGet)
	assert.Contains(t, allow, http.MethodPost)
	assert.NotContains(t, allow, http.MethodDelete)
}

func TestDispatchOptionsRunsChecks(t *testing.T) {
	v := &rest.View{
		Name:        "guarded",
		Permissions: []rest.Permission{rest.IsAuthenticated{}},
		Get:         rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodOptions, "/t", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/t", nil)
	user := &rest.User{Username: "alice"}
	w = serve(t, v, req.WithContext(rest.ForceUserContext(req.Context(), user)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Allow"), http.MethodGet)
}

func TestDispatchOptionsThrottled(t *testing.T) {
	v := &rest.View{
		Name: "busy",
		Throttles: []rest.Throttle{fixedThrottle{allow: false, wait: time.Second}},
		Get: rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodOptions, "/t", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestDispatchSyncErrorMapsToStatus(t *testing.T) {
	v := &rest.View{
		Name: "boom",
		Get: rest.HandlerFunc(func(c *rest.Context) (*rest.Response, error) {
			return nil, rest.NotFound("nothing here")
		}),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"nothing here"}`, w.Body.String())
}

func TestDispatchAsyncErrorMatchesSync(t *testing.T) {
	boom := errors.New("backend unavailable")
	syncView := &rest.View{
		Name: "boom",
		Get: rest.HandlerFunc(func(c *rest.Context) (*rest.Response, error) {
			return nil, boom
		}),
	}
	asyncView := &rest.View{
		Name: "boom",
		Get: rest.AsyncHandlerFunc(func(c *rest.Context) *await.Promise[*rest.Response] {
			return await.Failed[*rest.Response](boom)
		}),
	}

	sw := serve(t, syncView, httptest.NewRequest(http.MethodGet, "/t", nil))
	aw := serve(t, asyncView, httptest.NewRequest(http.MethodGet, "/t", nil))

	// Both collapse to an opaque 500.
	assert.Equal(t, http.StatusInternalServerError, sw.Code)
	assert.Equal(t, sw.Code, aw.Code)
	assert.JSONEq(t, sw.Body.String(), aw.Body.String())
}

func TestDispatchAsyncPanicReachesRecovery(t *testing.T) {
	v := &rest.View{
		Name: "panic",
		Get: rest.AsyncHandlerFunc(func(c *rest.Context) *await.Promise[*rest.Response] {
			return await.Go(func() (*rest.Response, error) {
				panic("handler exploded")
			})
		}),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	// The promise re-raises on the serving goroutine, where gin.Recovery
	// turns it into a 500, the same as a panicking sync handler.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDispatchValidationErrorBody(t *testing.T) {
	v := &rest.View{
		Name: "invalid",
		Post: rest.HandlerFunc(func(c *rest.Context) (*rest.Response, error) {
			return nil, rest.ValidationError(map[string]string{"title": "required"})
		}),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodPost, "/t", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid input","fields":{"title":"required"}}`, w.Body.String())
}

func TestResponseHeadersWritten(t *testing.T) {
	v := &rest.View{
		Name: "headers",
		Get: rest.HandlerFunc(func(c *rest.Context) (*rest.Response, error) {
			return rest.Created(gin.H{"id": 1}).WithHeader("Location", "/t/1"), nil
		}),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/t/1", w.Header().Get("Location"))
}

func TestIsAsync(t *testing.T) {
	assert.False(t, rest.IsAsync(rest.HandlerFunc(syncEcho)))
	assert.True(t, rest.IsAsync(rest.AsyncHandlerFunc(asyncEcho)))
}
