// internal/recommend/models.go
package recommend

// AnalysisRequest carries one outfit analysis request through the pipeline.
// Occasion and style are open strings: unrecognized values are passed to
// the model verbatim, since the model, not this code, interprets them.
type AnalysisRequest struct {
	Image         []byte
	MimeType      string
	Occasion      string
	Style         string
	IncludeBrands bool
}

// OutfitRecommendation is one of up to three alternative outfits parsed
// from the model reply. Top, Bottom and Shoes are always non-empty: a
// partially parsed block is dropped rather than emitted with blanks.
type OutfitRecommendation struct {
	OutfitName   string   `json:"outfit_name"`
	Top          string   `json:"top"`
	Bottom       string   `json:"bottom"`
	Shoes        string   `json:"shoes"`
	WhyItWorks   string   `json:"why_it_works"`
	ColorPalette []string `json:"colors"`
	MatchScore   int      `json:"match_score,omitempty"`

	// Populated by the image search stage; absent before it runs and for
	// slots whose lookup failed.
	TopImageURL    string `json:"top_image_url,omitempty"`
	BottomImageURL string `json:"bottom_image_url,omitempty"`
	ShoesImageURL  string `json:"shoes_image_url,omitempty"`
}

// CritiqueResult is the single authoritative output record of an analysis.
// It has no persisted identity; one is created per request and discarded
// once rendered.
type CritiqueResult struct {
	Success                bool                   `json:"success"`
	IsAppropriate          bool                   `json:"is_appropriate"`
	Critique               string                 `json:"critique"`
	ImprovementSuggestions string                 `json:"improvement_suggestions,omitempty"`
	Recommendations        []OutfitRecommendation `json:"recommendations"`
	Occasion               string                 `json:"occasion,omitempty"`
	Style                  string                 `json:"style,omitempty"`
	ProcessingTimeSeconds  float64                `json:"processing_time,omitempty"`
	UsedProvider           string                 `json:"used_api,omitempty"`
}
