package media

import (
	"strings"

	"gocatalog/internal/config"
)

// Resolver maps stored media paths to public URLs.
type Resolver struct {
	baseURL string
}

func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func NewResolverFromConfig(cfg *config.Config) *Resolver {
	return NewResolver(cfg.Server.MediaBaseURL)
}

// PublicURL returns path unchanged when it is already absolute (http, https
// or data:), "" for an empty path, and otherwise the path under the media
// base URL.
func (r *Resolver) PublicURL(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if IsAbsolute(trimmed) {
		return path
	}
	return r.baseURL + "/" + strings.TrimLeft(trimmed, "/")
}

// IsAbsolute reports whether path already is a fetchable URL.
func IsAbsolute(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "data:")
}
