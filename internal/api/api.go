// Package api wires the article endpoints out of the toolkit's building
// blocks: a model viewset over the article store, plus an awaitable search
// view, all gated by token authentication for writes.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"asyncrest/await"
	"asyncrest/generic"
	"asyncrest/internal/domain"
	"asyncrest/pagination"
	"asyncrest/rest"
	"asyncrest/router"
)

// API owns the demo endpoints.
type API struct {
	view *generic.GenericView[domain.Article]
}

// Options configures the demo API surface.
type Options struct {
	Store generic.Store[domain.Article]

	// Tokens maps static API tokens to usernames.
	Tokens map[string]string

	// Throttles apply to every article endpoint; empty disables throttling.
	Throttles []rest.Throttle
}

func New(opts Options) *API {
	view := &generic.GenericView[domain.Article]{
		Name:       "articles",
		Store:      mappedStore{Store: opts.Store},
		Serializer: newArticleSerializer(),
		Paginator:  &pagination.PageNumber{PageSize: 20},
		PK:         func(a domain.Article) string { return a.ID.String() },
		Authenticators: []rest.Authenticator{
			&TokenAuthenticator{Tokens: opts.Tokens},
		},
		Permissions: []rest.Permission{rest.IsAuthenticatedOrReadOnly{}},
		Throttles:   opts.Throttles,
		// The article actions run as awaitable handlers end to end.
		Async: true,
	}
	return &API{view: view}
}

// RegisterRoutes installs the article routes on group.
func (a *API) RegisterRoutes(group *gin.RouterGroup) error {
	r := router.New()
	if err := r.Register(group, "/articles", a.view.ViewSet()); err != nil {
		return err
	}
	r.Root(group)

	search := rest.Func(rest.AsyncHandlerFunc(a.search), http.MethodGet)
	search.Name = "article-search"
	search.Authenticators = a.view.Authenticators
	search.Throttles = a.view.Throttles
	group.GET("/search", search.AsView())

	log.WithField("prefix", group.BasePath()).Info("article routes registered")
	return nil
}

// search filters articles by a case-insensitive substring of the title.
func (a *API) search(c *rest.Context) *await.Promise[*rest.Response] {
	return await.Go(func() (*rest.Response, error) {
		q := strings.ToLower(c.Query("q"))

		articles, err := a.view.Store.List(c.RequestContext())
		if err != nil {
			return nil, err
		}

		var matches []domain.Article
		for _, article := range articles {
			if q == "" || strings.Contains(strings.ToLower(article.Title), q) {
				matches = append(matches, article)
			}
		}

		data, err := a.view.Serializer.RepresentMany(c.RequestContext(), matches)
		if err != nil {
			return nil, err
		}
		return rest.OK(gin.H{"count": len(matches), "results": data}), nil
	})
}
