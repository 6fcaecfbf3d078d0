package articles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTitleRequired   = errors.New("articles: title is required")
	ErrDateRequired    = errors.New("articles: date is missing or invalid")
	ErrSlugRequired    = errors.New("articles: slug is required")
	ErrSlugInvalid     = errors.New("articles: slug contains invalid characters")
	ErrDuplicateSlug   = errors.New("articles: slug already exists")
	ErrSchemaViolation = errors.New("articles: custom front matter fields failed schema validation")
	ErrArticleNotFound = errors.New("articles: article not found")
)

// ValidationError reports a document that cannot become an Article. It names
// the offending source path and front-matter field so authors can fix the
// content; the whole load fails rather than silently dropping the document.
type ValidationError struct {
	Path  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "articles: validation failed"
	}
	path := strings.TrimSpace(e.Path)
	field := strings.TrimSpace(e.Field)
	switch {
	case path != "" && field != "":
		return fmt.Sprintf("%v: path=%s field=%s", e.Err, path, field)
	case path != "":
		return fmt.Sprintf("%v: path=%s", e.Err, path)
	default:
		return e.Err.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError captures slug lookups that matched nothing. It is a normal,
// non-fatal outcome callers are expected to branch on (e.g. render a 404).
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Slug) == "" {
		return ErrArticleNotFound.Error()
	}
	return fmt.Sprintf("%s: slug=%s", ErrArticleNotFound.Error(), e.Slug)
}

func (e *NotFoundError) Unwrap() error {
	return ErrArticleNotFound
}

func newValidationError(path, field string, sentinel error) *ValidationError {
	return &ValidationError{
		Path:  path,
		Field: field,
		Err:   sentinel,
	}
}
