package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per site without repeating flags.
type SiteConfig struct {
	// ExcludedHeaders overrides the global excluded-header list for this
	// site. If empty, the global list is used.
	ExcludedHeaders []string `yaml:"excludedHeaders,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// UserAgents overrides the user-agent rotation pool for this site.
	UserAgents []string `yaml:"userAgents,omitempty"`

	// MaxRequests overrides the global request cap for this site.
	// If zero, the global value is used.
	MaxRequests int `yaml:"maxRequests,omitempty"`
}

// File represents the structure of the .nightcrawler configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if len(siteConfig.ExcludedHeaders) > 0 {
			result.ExcludedHeaders = siteConfig.ExcludedHeaders
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.FollowPatterns) > 0 {
			result.FollowPatterns = siteConfig.FollowPatterns
		}
		if len(siteConfig.UserAgents) > 0 {
			result.UserAgents = siteConfig.UserAgents
		}
		if siteConfig.MaxRequests != 0 {
			result.MaxRequests = siteConfig.MaxRequests
		}
	}

	return result
}
