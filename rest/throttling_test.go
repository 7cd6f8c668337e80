package rest_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"asyncrest/await"
	"asyncrest/rest"
)

type fixedThrottle struct {
	allow bool
	wait  time.Duration
}

func (t fixedThrottle) AllowRequest(*rest.Context) (bool, error) { return t.allow, nil }

func (t fixedThrottle) Wait() time.Duration { return t.wait }

type asyncFixedThrottle struct{ fixedThrottle }

func (t asyncFixedThrottle) AllowRequestAsync(*rest.Context) *await.Promise[bool] {
	return await.Go(func() (bool, error) { return t.allow, nil })
}

func TestThrottleAllowed(t *testing.T) {
	v := &rest.View{
		Name:      "open",
		Throttles: []rest.Throttle{fixedThrottle{allow: true}},
		Get:       rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestThrottleDeniedUsesLargestWait(t *testing.T) {
	v := &rest.View{
		Name: "busy",
		Throttles: []rest.Throttle{
			fixedThrottle{allow: false, wait: 2 * time.Second},
			asyncFixedThrottle{fixedThrottle{allow: false, wait: 30 * time.Second}},
			fixedThrottle{allow: true},
		},
		Get: rest.HandlerFunc(syncEcho),
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestThrottleAsyncMatchesSync(t *testing.T) {
	syncView := &rest.View{
		Name:      "busy",
		Throttles: []rest.Throttle{fixedThrottle{allow: false, wait: time.Second}},
		Get:       rest.HandlerFunc(syncEcho),
	}
	asyncView := &rest.View{
		Name:      "busy",
		Throttles: []rest.Throttle{asyncFixedThrottle{fixedThrottle{allow: false, wait: time.Second}}},
		Get:       rest.HandlerFunc(syncEcho),
	}

	sw := serve(t, syncView, httptest.NewRequest(http.MethodGet, "/t", nil))
	aw := serve(t, asyncView, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, sw.Code, aw.Code)
	assert.Equal(t, sw.Header().Get("Retry-After"), aw.Header().Get("Retry-After"))
	assert.JSONEq(t, sw.Body.String(), aw.Body.String())
}

func TestRateThrottleBurst(t *testing.T) {
	throttle := rest.NewRateThrottle(rate.Limit(1), 2)
	throttle.KeyFunc = func(c *rest.Context) string { return "test" }

	v := &rest.View{
		Name:      "limited",
		Throttles: []rest.Throttle{throttle},
		Get:       rest.HandlerFunc(syncEcho),
	}

	for i := 0; i < 2; i++ {
		w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d within burst", i)
	}

	w := serve(t, v, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateThrottleKeysIsolated(t *testing.T) {
	throttle := rest.NewRateThrottle(rate.Limit(1), 1)
	throttle.KeyFunc = func(c *rest.Context) string { return c.Header("X-Client") }

	v := &rest.View{
		Name:      "limited",
		Throttles: []rest.Throttle{throttle},
		Get:       rest.HandlerFunc(syncEcho),
	}

	reqA := httptest.NewRequest(http.MethodGet, "/t", nil)
	reqA.Header.Set("X-Client", "a")
	reqB := httptest.NewRequest(http.MethodGet, "/t", nil)
	reqB.Header.Set("X-Client", "b")

	assert.Equal(t, http.StatusOK, serve(t, v, reqA).Code)
	assert.Equal(t, http.StatusOK, serve(t, v, reqB).Code)

	reqA2 := httptest.NewRequest(http.MethodGet, "/t", nil)
	reqA2.Header.Set("X-Client", "a")
	assert.Equal(t, http.StatusTooManyRequests, serve(t, v, reqA2).Code)
}
