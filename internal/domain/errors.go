package domain

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleConflict   = errors.New("article with this title already exists")
)
