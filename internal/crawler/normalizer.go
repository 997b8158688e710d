package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Classification is the outcome of normalizing a discovered link.
type Classification int

const (
	// LinkInScope means the link resolved to a crawlable page on the seed
	// host and may be enqueued.
	LinkInScope Classification = iota

	// LinkOutOfScope means the link is well-formed but points at a
	// different host. It is never crawled.
	LinkOutOfScope

	// LinkInvalid means the link is not a crawl target at all: a
	// non-http(s) scheme, an unparsable reference, or a non-page resource
	// recognized by its extension. Invalid links are silently dropped.
	LinkInvalid
)

// String returns the human-readable classification name.
func (c Classification) String() string {
	switch c {
	case LinkInScope:
		return "in-scope"
	case LinkOutOfScope:
		return "out-of-scope"
	case LinkInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// nonPageExtensions lists path extensions that identify non-HTML resources.
// The renderer still loads these for page correctness (stylesheets, scripts,
// images), but they must never be enqueued as crawl targets.
var nonPageExtensions = map[string]struct{}{
	".css":   {},
	".js":    {},
	".mjs":   {},
	".json":  {},
	".xml":   {},
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".svg":   {},
	".ico":   {},
	".webp":  {},
	".woff":  {},
	".woff2": {},
	".ttf":   {},
	".pdf":   {},
	".zip":   {},
	".gz":    {},
	".mp3":   {},
	".mp4":   {},
}

// Normalizer canonicalizes discovered links and classifies them against the
// crawl scope (the seed URL's host).
//
// Normalization is deterministic and idempotent: semantically identical URLs
// always produce the same canonical string, and normalizing an already
// canonical URL is a no-op. The canonical string is the frontier's dedup key.
type Normalizer struct {
	// host is the seed's canonical host (lowercase, default port stripped).
	host string
}

// NewNormalizer creates a Normalizer scoped to the given seed URL's host.
// The seed must already have been validated with ParseSeed.
func NewNormalizer(seed *url.URL) *Normalizer {
	return &Normalizer{host: canonicalHost(seed)}
}

// ParseSeed validates and canonicalizes a seed URL. It returns the parsed
// URL and its canonical string form, or ErrInvalidSeed if the value is not
// an absolute http(s) URL with a host.
func ParseSeed(rawURL string) (*url.URL, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, "", fmt.Errorf("%w: scheme %q", ErrInvalidSeed, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, "", fmt.Errorf("%w: missing host", ErrInvalidSeed)
	}

	canonicalize(u)
	return u, u.String(), nil
}

// Normalize resolves a raw link against the page it was found on and
// classifies it. On LinkInScope the returned string is the canonical form to
// use as the dedup key; for every other classification it is empty.
func (n *Normalizer) Normalize(rawLink string, base *url.URL) (string, Classification) {
	rawLink = strings.TrimSpace(rawLink)
	if rawLink == "" || rawLink == "#" {
		return "", LinkInvalid
	}

	ref, err := url.Parse(rawLink)
	if err != nil {
		return "", LinkInvalid
	}

	resolved := base.ResolveReference(ref)

	scheme := strings.ToLower(resolved.Scheme)
	if scheme != "http" && scheme != "https" {
		// mailto:, javascript:, tel:, data: and friends.
		return "", LinkInvalid
	}

	if ext := strings.ToLower(path.Ext(resolved.Path)); ext != "" {
		if _, ok := nonPageExtensions[ext]; ok {
			return "", LinkInvalid
		}
	}

	canonicalize(resolved)

	if !strings.EqualFold(resolved.Host, n.host) {
		return "", LinkOutOfScope
	}

	return resolved.String(), LinkInScope
}

// canonicalize rewrites u in place into its canonical form: lowercase
// scheme and host, no fragment, no default port, and "/" for an empty path.
// Query strings are preserved because distinct queries are distinct pages.
func canonicalize(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if port := u.Port(); port != "" && port == defaultPort(u.Scheme) {
		u.Host = u.Hostname()
	}

	if u.Path == "" {
		u.Path = "/"
	}
}

// canonicalHost returns the host of u after canonicalization, for scope
// comparison.
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Host)
	if port := u.Port(); port != "" && port == defaultPort(strings.ToLower(u.Scheme)) {
		host = strings.ToLower(u.Hostname())
	}
	return host
}

// defaultPort returns the implied port for an http(s) scheme.
func defaultPort(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	default:
		return ""
	}
}
