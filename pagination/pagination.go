// Package pagination slices list results and wraps them in count/next/
// previous envelopes. A paginator may be synchronous or awaitable; generic
// views detect the awaitable form per paginator and await it.
package pagination

import (
	"fmt"
	"strconv"

	"asyncrest/await"
	"asyncrest/rest"
)

// Window is the slice of a collection selected for one request. A disabled
// window means the request is served unpaginated.
type Window struct {
	Offset   int
	Limit    int
	Disabled bool
}

// Paginator computes the window for a request and wraps a page of results.
type Paginator interface {
	Window(c *rest.Context, count int) (Window, error)
	Envelope(c *rest.Context, results any, count int, w Window) map[string]any
}

// AsyncPaginator is the awaitable paginator form. When implemented, generic
// views await WindowAsync and never call Window.
type AsyncPaginator interface {
	Paginator
	WindowAsync(c *rest.Context, count int) *await.Promise[Window]
}

// Async wraps a paginator so its window computation is exposed as an
// awaitable. The wrapped paginator produces identical windows in both forms.
func Async(p Paginator) Paginator {
	return &asyncPaginator{p}
}

type asyncPaginator struct {
	Paginator
}

func (a *asyncPaginator) WindowAsync(c *rest.Context, count int) *await.Promise[Window] {
	return await.Go(func() (Window, error) {
		return a.Paginator.Window(c, count)
	})
}

// PageNumber paginates with page/page_size query parameters.
type PageNumber struct {
	PageParam   string // default "page"
	SizeParam   string // default "page_size"
	PageSize    int    // default 20
	MaxPageSize int    // 0 means no client override cap beyond PageSize*10
}

func (p *PageNumber) params() (pageParam, sizeParam string, size, maxSize int) {
	pageParam = p.PageParam
	if pageParam == "" {
		pageParam = "page"
	}
	sizeParam = p.SizeParam
	if sizeParam == "" {
		sizeParam = "page_size"
	}
	size = p.PageSize
	if size <= 0 {
		size = 20
	}
	maxSize = p.MaxPageSize
	if maxSize <= 0 {
		maxSize = size * 10
	}
	return
}

func (p *PageNumber) Window(c *rest.Context, count int) (Window, error) {
	pageParam, sizeParam, size, maxSize := p.params()

	if raw := c.Query(sizeParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil && n > 0 {
			size = n
			if size > maxSize {
				size = maxSize
			}
		}
	}

	page := 1
	if raw := c.Query(pageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Window{}, rest.NotFound("invalid page %q", raw)
		}
		page = n
	}

	totalPages := (count + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		return Window{}, rest.NotFound("page %d contains no results", page)
	}

	return Window{Offset: (page - 1) * size, Limit: size}, nil
}

func (p *PageNumber) Envelope(c *rest.Context, results any, count int, w Window) map[string]any {
	pageParam, _, _, _ := p.params()
	page := w.Offset/w.Limit + 1
	totalPages := (count + w.Limit - 1) / w.Limit

	var next, previous any
	if page < totalPages {
		next = replaceParam(c, pageParam, strconv.Itoa(page+1))
	}
	if page > 1 {
		previous = replaceParam(c, pageParam, strconv.Itoa(page-1))
	}

	return map[string]any{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

// LimitOffset paginates with limit/offset query parameters. A request
// without a limit, and with no DefaultLimit configured, is unpaginated.
type LimitOffset struct {
	LimitParam   string // default "limit"
	OffsetParam  string // default "offset"
	DefaultLimit int
	MaxLimit     int
}

func (p *LimitOffset) params() (limitParam, offsetParam string) {
	limitParam = p.LimitParam
	if limitParam == "" {
		limitParam = "limit"
	}
	offsetParam = p.OffsetParam
	if offsetParam == "" {
		offsetParam = "offset"
	}
	return
}

func (p *LimitOffset) Window(c *rest.Context, count int) (Window, error) {
	limitParam, offsetParam := p.params()

	limit := p.DefaultLimit
	if raw := c.Query(limitParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit <= 0 {
		return Window{Disabled: true}, nil
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	offset := 0
	if raw := c.Query(offsetParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}

	return Window{Offset: offset, Limit: limit}, nil
}

func (p *LimitOffset) Envelope(c *rest.Context, results any, count int, w Window) map[string]any {
	limitParam, offsetParam := p.params()

	var next, previous any
	if w.Offset+w.Limit < count {
		next = replaceParams(c, map[string]string{
			limitParam:  strconv.Itoa(w.Limit),
			offsetParam: strconv.Itoa(w.Offset + w.Limit),
		})
	}
	if w.Offset > 0 {
		prevOffset := w.Offset - w.Limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		previous = replaceParams(c, map[string]string{
			limitParam:  strconv.Itoa(w.Limit),
			offsetParam: strconv.Itoa(prevOffset),
		})
	}

	return map[string]any{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

func replaceParam(c *rest.Context, key, value string) string {
	return replaceParams(c, map[string]string{key: value})
}

func replaceParams(c *rest.Context, params map[string]string) string {
	r := c.Request()
	u := *r.URL
	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, u.RequestURI())
}
