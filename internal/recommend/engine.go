// Package recommend sequences the analysis pipeline: model call with
// provider fallback, reply parsing, and per-garment image lookups.
package recommend

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	cerrors "outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/common/metrics"
	"outfit-advisor/internal/vision"
)

// ImageFinder resolves one garment description to an image URL. The
// production implementation is imagesearch.Client.
type ImageFinder interface {
	FindImage(ctx context.Context, description, category string) (string, error)
}

// Engine orchestrates one analysis request end to end. It holds no
// per-request state; a single Engine serves all requests.
type Engine struct {
	providers []vision.Provider
	images    ImageFinder
	logger    logger.Logger
}

// NewEngine creates the orchestrator. Providers are tried in slice order;
// the chain is built by the caller from the configured credentials.
func NewEngine(providers []vision.Provider, images ImageFinder, log logger.Logger) *Engine {
	return &Engine{
		providers: providers,
		images:    images,
		logger:    log.WithFields(map[string]interface{}{"component": "recommend"}),
	}
}

// Analyze runs the full pipeline and returns the assembled CritiqueResult.
// Only a total model-provider outage fails the request; parsing degradation
// and image-lookup misses degrade the result, never error it.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*CritiqueResult, error) {
	start := time.Now()

	// Encode once; both providers receive the same data URL.
	imageDataURL := dataURL(req.Image, req.MimeType)
	prompt := buildAnalysisPrompt(req.Occasion, req.Style, req.IncludeBrands)

	raw, usedProvider, err := e.describe(ctx, imageDataURL, prompt)
	if err != nil {
		return nil, cerrors.NewModelUnavailableError(err)
	}

	result := Parse(raw)
	e.attachImages(ctx, result.Recommendations)

	result.Success = true
	result.Occasion = req.Occasion
	result.Style = req.Style
	result.UsedProvider = usedProvider
	result.ProcessingTimeSeconds = time.Since(start).Seconds()
	metrics.AnalyzeDuration.Observe(result.ProcessingTimeSeconds)

	e.logger.Info("analysis completed", map[string]interface{}{
		"occasion":        req.Occasion,
		"style":           req.Style,
		"usedProvider":    usedProvider,
		"isAppropriate":   result.IsAppropriate,
		"recommendations": len(result.Recommendations),
		"seconds":         result.ProcessingTimeSeconds,
	})

	return result, nil
}

// QuickAnalyze returns a short free-text outfit description and the name
// of the provider that answered.
func (e *Engine) QuickAnalyze(ctx context.Context, image []byte, mimeType string) (string, string, error) {
	description, usedProvider, err := e.describe(ctx, dataURL(image, mimeType), buildQuickPrompt())
	if err != nil {
		return "", "", cerrors.NewModelUnavailableError(err)
	}
	return description, usedProvider, nil
}

// describe walks the provider chain. Each provider is invoked at most once
// per request: retry policy is "next provider", never "same provider again".
func (e *Engine) describe(ctx context.Context, imageDataURL, prompt string) (string, string, error) {
	if len(e.providers) == 0 {
		return "", "", fmt.Errorf("no model providers configured")
	}

	var lastErr error
	for _, p := range e.providers {
		text, err := p.DescribeOutfit(ctx, imageDataURL, prompt)
		if err == nil {
			return text, p.Name(), nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// The request deadline is spent; the fallback would only
			// inherit the same dead context.
			return "", "", lastErr
		}

		e.logger.Warn("model provider failed, trying next", map[string]interface{}{
			"provider": p.Name(),
			"error":    err.Error(),
		})
	}

	return "", "", lastErr
}

// attachImages fans out one lookup per garment slot, up to nine concurrent
// lookups for three recommendations. Each goroutine writes a disjoint
// field, so awaiting them is the only synchronization needed. A failed
// lookup leaves that slot's URL absent; it never fails the request.
func (e *Engine) attachImages(ctx context.Context, recs []OutfitRecommendation) {
	var wg sync.WaitGroup

	for i := range recs {
		rec := &recs[i]
		slots := []struct {
			description string
			category    string
			dst         *string
		}{
			{rec.Top, "top", &rec.TopImageURL},
			{rec.Bottom, "bottom", &rec.BottomImageURL},
			{rec.Shoes, "shoes", &rec.ShoesImageURL},
		}

		for _, slot := range slots {
			wg.Add(1)
			go func(description, category string, dst *string) {
				defer wg.Done()
				imageURL, err := e.images.FindImage(ctx, description, category)
				if err != nil {
					e.logger.Warn("garment image lookup failed", map[string]interface{}{
						"category": category,
						"error":    err.Error(),
					})
					return
				}
				*dst = imageURL
			}(slot.description, slot.category, slot.dst)
		}
	}

	wg.Wait()
}

func dataURL(image []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
