package rest

import (
	"net/http"
	"net/url"
	"time"
)

// Config holds configuration for the Client
type Config struct {
	// BaseURL is the versioned API root
	// default: "https://pokeapi.co/api/v2"
	BaseURL string `mapstructure:"base_url"`
	// UserAgent is sent with every request
	// default: "pokecat"
	UserAgent string `mapstructure:"user_agent"`
	// PageLimit is the page size used to fetch a whole category listing in one call
	// default: 10000
	PageLimit int `mapstructure:"page_limit"`
	// AssetCacheSize bounds the LRU cache of fetched binary assets
	// default: 128
	AssetCacheSize int `mapstructure:"asset_cache_size"`
	// AllowedAssetTypes is the content-type allow-list for FetchBinary
	// default: png, jpeg, gif, svg, ogg
	AllowedAssetTypes []string `mapstructure:"allowed_asset_types"`
	// Timeout bounds each HTTP request; there are no internal retries
	// default: 30s
	Timeout time.Duration `mapstructure:"timeout"`
	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client `mapstructure:"-"`
}

// DefaultConfig returns the default configuration for the Client
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://pokeapi.co/api/v2",
		UserAgent:      "pokecat",
		PageLimit:      10000,
		AssetCacheSize: 128,
		AllowedAssetTypes: []string{
			"image/png",
			"image/jpeg",
			"image/gif",
			"image/svg+xml",
			"audio/ogg",
		},
		Timeout: 30 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return ErrInvalidBaseURL(c.BaseURL, err)
	}
	if c.PageLimit < 1 {
		return ErrInvalidPageLimit(c.PageLimit)
	}
	if c.AssetCacheSize < 1 {
		return ErrInvalidAssetCacheSize(c.AssetCacheSize)
	}
	return nil
}

// merge fills zero values from defaults
func (c *Config) merge(defaults *Config) {
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.PageLimit == 0 {
		c.PageLimit = defaults.PageLimit
	}
	if c.AssetCacheSize == 0 {
		c.AssetCacheSize = defaults.AssetCacheSize
	}
	if len(c.AllowedAssetTypes) == 0 {
		c.AllowedAssetTypes = defaults.AllowedAssetTypes
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
}
