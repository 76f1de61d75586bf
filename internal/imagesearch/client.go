// Package imagesearch resolves garment descriptions to product image URLs.
// Providers are tried in a fixed priority order; a provider is present in
// the chain only when its credential is configured. A total miss resolves
// to a deterministic placeholder URL rather than an error; the only failure
// mode is the request context expiring mid-lookup.
package imagesearch

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"outfit-advisor/internal/common/cache"
	"outfit-advisor/internal/common/config"
	"outfit-advisor/internal/common/httpclient"
	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/common/metrics"
)

// Provider is one image search backend in the fallback chain.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}

type Client struct {
	providers      []Provider
	cache          *cache.Cache
	placeholderURL string
	logger         logger.Logger
}

// New builds the provider chain from config. Order is fixed: pexels,
// unsplash, duckduckgo.
func New(cfg config.ImageSearchConfig, c *cache.Cache, log logger.Logger) *Client {
	httpClient := httpclient.New(config.GetDuration(cfg.Timeout))

	var providers []Provider
	if cfg.PexelsAPIKey != "" {
		providers = append(providers, &pexelsProvider{apiKey: cfg.PexelsAPIKey, client: httpClient})
	}
	if cfg.UnsplashAccessKey != "" {
		providers = append(providers, &unsplashProvider{accessKey: cfg.UnsplashAccessKey, client: httpClient})
	}
	if cfg.DuckDuckGo {
		providers = append(providers, &duckduckgoProvider{client: httpClient})
	}

	return &Client{
		providers:      providers,
		cache:          c,
		placeholderURL: strings.TrimSuffix(cfg.PlaceholderURL, "/"),
		logger:         log.WithFields(map[string]interface{}{"component": "imagesearch"}),
	}
}

// NewWithProviders builds a client around an explicit chain (used by tests).
func NewWithProviders(providers []Provider, c *cache.Cache, placeholderURL string, log logger.Logger) *Client {
	return &Client{
		providers:      providers,
		cache:          c,
		placeholderURL: strings.TrimSuffix(placeholderURL, "/"),
		logger:         log,
	}
}

// FindImage resolves a garment description to an image URL. The first
// provider returning a usable URL wins; every provider missing or failing
// yields the category placeholder. The returned error is non-nil only when
// the context expired before a result was found.
func (c *Client) FindImage(ctx context.Context, description, category string) (string, error) {
	query := BuildQuery(description, category)
	key := cache.Key("img", query)

	if cached, ok := c.cache.Get(ctx, key); ok {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		imageURL, err := p.Search(ctx, query)
		if err != nil {
			metrics.ImageLookups.WithLabelValues(p.Name(), "miss").Inc()
			c.logger.Warn("image lookup failed", map[string]interface{}{
				"provider": p.Name(),
				"query":    query,
				"error":    err.Error(),
			})
			continue
		}
		if usableURL(imageURL) {
			metrics.ImageLookups.WithLabelValues(p.Name(), "ok").Inc()
			c.cache.Set(ctx, key, imageURL)
			return imageURL, nil
		}
		metrics.ImageLookups.WithLabelValues(p.Name(), "miss").Inc()
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	metrics.ImageLookups.WithLabelValues("placeholder", "ok").Inc()
	return c.Placeholder(category), nil
}

// Placeholder returns the deterministic stand-in URL for a category.
func (c *Client) Placeholder(category string) string {
	return c.placeholderURL + "?text=" + url.QueryEscape(category)
}

// OutfitImages holds resolved image URLs for one outfit.
type OutfitImages struct {
	TopImageURL    string `json:"top_image_url"`
	BottomImageURL string `json:"bottom_image_url"`
	ShoesImageURL  string `json:"shoes_image_url"`
}

// FindOutfitImages resolves all three garment slots concurrently. Each
// lookup writes a disjoint field, so no locking is needed beyond the wait.
// A slot whose lookup fails gets the placeholder.
func (c *Client) FindOutfitImages(ctx context.Context, top, bottom, shoes string) OutfitImages {
	var images OutfitImages
	var wg sync.WaitGroup

	lookup := func(dst *string, description, category string) {
		defer wg.Done()
		imageURL, err := c.FindImage(ctx, description, category)
		if err != nil {
			imageURL = c.Placeholder(category)
		}
		*dst = imageURL
	}

	wg.Add(3)
	go lookup(&images.TopImageURL, top, "top")
	go lookup(&images.BottomImageURL, bottom, "bottom")
	go lookup(&images.ShoesImageURL, shoes, "shoes")
	wg.Wait()

	return images
}
