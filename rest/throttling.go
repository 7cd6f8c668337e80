package rest

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"asyncrest/await"
)

// Throttle decides whether a request should be rate limited. Every throttle
// on a view is consulted; when any denies, the request is rejected with 429
// and a Retry-After of the largest suggested wait.
type Throttle interface {
	AllowRequest(c *Context) (bool, error)

	// Wait is the suggested delay before retrying after a denial.
	Wait() time.Duration
}

// AsyncThrottle is the awaitable throttle form. When implemented, dispatch
// awaits AllowRequestAsync and never calls AllowRequest.
type AsyncThrottle interface {
	Throttle
	AllowRequestAsync(c *Context) *await.Promise[bool]
}

// checkThrottles evaluates every throttle, synchronous or awaitable per
// throttle, and collects wait durations for the ones that denied.
func checkThrottles(c *Context, throttles []Throttle) error {
	var waits []time.Duration

	for _, t := range throttles {
		var (
			ok  bool
			err error
		)
		if at, isAsync := t.(AsyncThrottle); isAsync {
			ok, err = at.AllowRequestAsync(c).Await(c.RequestContext())
		} else {
			ok, err = t.AllowRequest(c)
		}
		if err != nil {
			return err
		}
		if !ok {
			waits = append(waits, t.Wait())
		}
	}

	if len(waits) == 0 {
		return nil
	}

	max := waits[0]
	for _, w := range waits[1:] {
		if w > max {
			max = w
		}
	}
	return Throttled(max)
}

// RateThrottle is a token-bucket throttle keyed per client. The zero KeyFunc
// keys on the client IP.
type RateThrottle struct {
	Rate    rate.Limit
	Burst   int
	KeyFunc func(c *Context) string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateThrottle(r rate.Limit, burst int) *RateThrottle {
	return &RateThrottle{Rate: r, Burst: burst}
}

func (t *RateThrottle) AllowRequest(c *Context) (bool, error) {
	return t.limiter(t.key(c)).Allow(), nil
}

func (t *RateThrottle) Wait() time.Duration {
	if t.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(t.Rate))
}

func (t *RateThrottle) key(c *Context) string {
	if t.KeyFunc != nil {
		return t.KeyFunc(c)
	}
	return c.Gin().ClientIP()
}

func (t *RateThrottle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limiters == nil {
		t.limiters = make(map[string]*rate.Limiter)
	}
	lim, ok := t.limiters[key]
	if !ok {
		lim = rate.NewLimiter(t.Rate, t.Burst)
		t.limiters[key] = lim
	}
	return lim
}
