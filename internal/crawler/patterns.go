package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PatternFilter restricts which in-scope URLs are crawled, matched against
// the URL path with glob syntax:
//   - "*" matches any run of non-separator characters
//   - "?" matches a single character
//   - "/admin/*" matches "/admin" and anything below it
//   - "*.pdf" matches any path ending in ".pdf"
//
// Ignore patterns are checked first; a URL matching any of them is skipped.
// If follow patterns are set, the URL must additionally match at least one
// of them. An empty filter allows everything.
type PatternFilter struct {
	ignore []string
	follow []string
}

// NewPatternFilter creates a filter from ignore and follow pattern lists.
// Either list may be nil.
func NewPatternFilter(ignore, follow []string) *PatternFilter {
	return &PatternFilter{ignore: ignore, follow: follow}
}

// Empty reports whether the filter has no patterns and allows everything.
func (pf *PatternFilter) Empty() bool {
	return pf == nil || (len(pf.ignore) == 0 && len(pf.follow) == 0)
}

// Allow reports whether the URL should be crawled.
func (pf *PatternFilter) Allow(normalizedURL string) bool {
	if pf.Empty() {
		return true
	}

	u, err := url.Parse(normalizedURL)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}

	for _, pattern := range pf.ignore {
		if globMatch(pattern, p) {
			return false
		}
	}

	if len(pf.follow) == 0 {
		return true
	}
	for _, pattern := range pf.follow {
		if globMatch(pattern, p) {
			return true
		}
	}
	return false
}

// globMatch matches a path against one glob pattern. Prefix patterns
// ("/admin/*") and bare extension patterns ("*.pdf") get dedicated handling
// because filepath.Match treats "/" as a segment boundary.
func globMatch(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(p, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if ok, err := filepath.Match(pattern, p); err == nil && ok {
		return true
	}

	// A bare filename pattern like "*.txt" should also match deep paths.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if ok, err := filepath.Match(pattern, filepath.Base(p)); err == nil && ok {
			return true
		}
	}

	return false
}
