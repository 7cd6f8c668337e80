package api

import (
	"context"
	"errors"
	"strings"

	"asyncrest/await"
	"asyncrest/internal/domain"
	"asyncrest/serializer"
)

const summaryLength = 140

// newArticleSerializer builds the article serializer: struct-tag validation
// on domain.Article, a title sanity validator, an awaitable moderation
// check, a synchronous summary field, and an awaitable word-count field.
func newArticleSerializer() *serializer.Serializer[domain.Article] {
	return &serializer.Serializer[domain.Article]{
		Validators: []serializer.Validator[domain.Article]{
			serializer.ValidatorFunc[domain.Article](validateTitle),
			serializer.AsyncValidatorFunc[domain.Article](moderateBody),
		},
		Fields: map[string]serializer.Field[domain.Article]{
			"summary":    serializer.FieldFunc[domain.Article](summaryField),
			"word_count": serializer.AsyncFieldFunc[domain.Article](wordCountField),
		},
	}
}

func validateTitle(_ context.Context, a domain.Article) error {
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("title must not be blank")
	}
	return nil
}

// moderateBody stands in for a call to a moderation backend; it runs as an
// awaitable so dispatch exercises the async validator path.
func moderateBody(_ context.Context, a domain.Article) *await.Promise[await.Void] {
	return await.Do(func() error {
		if strings.Contains(strings.ToLower(a.Body), "lorem ipsum") {
			return errors.New("body looks like placeholder text")
		}
		return nil
	})
}

func summaryField(_ context.Context, a domain.Article) (any, error) {
	body := strings.TrimSpace(a.Body)
	runes := []rune(body)
	if len(runes) <= summaryLength {
		return body, nil
	}
	return string(runes[:summaryLength]) + "…", nil
}

func wordCountField(_ context.Context, a domain.Article) *await.Promise[any] {
	return await.Go(func() (any, error) {
		return len(strings.Fields(a.Body)), nil
	})
}
