package articles

import "github.com/goliatone/go-slug"

// SlugNormalizer turns article titles into URL-safe slugs.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the normalizer used when a load does not
// provide its own.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules to a value.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether an explicit front matter slug is acceptable
// as-is, without normalization.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}
