// Package config provides configuration structures and utilities for
// nightcrawler. It defines the crawl options populated from CLI flags, the
// optional .nightcrawler YAML file with per-site overrides, and the XDG
// directory helpers used for persistent storage.
package config
