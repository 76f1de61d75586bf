// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outfit-advisor/internal/common/config"
	cerrors "outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/common/observability"
	"outfit-advisor/internal/imagesearch"
	"outfit-advisor/internal/recommend"
)

// ==========================
// Test Doubles
// ==========================

type stubEngine struct {
	result      *recommend.CritiqueResult
	err         error
	lastRequest recommend.AnalysisRequest
}

func (s *stubEngine) Analyze(ctx context.Context, req recommend.AnalysisRequest) (*recommend.CritiqueResult, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEngine) QuickAnalyze(ctx context.Context, image []byte, mimeType string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return "Blue jeans and a white tee.", "groq", nil
}

type stubImages struct{}

func (stubImages) FindOutfitImages(ctx context.Context, top, bottom, shoes string) imagesearch.OutfitImages {
	return imagesearch.OutfitImages{
		TopImageURL:    "https://images.test/top",
		BottomImageURL: "https://images.test/bottom",
		ShoesImageURL:  "https://images.test/shoes",
	}
}

func newTestRouter(t *testing.T, engine Analyzer) http.Handler {
	app := config.AppConfig{Name: "outfit-advisor", Version: "2.0.0"}
	cfg := config.ServerConfig{
		RequestTimeout: 5000,
		MaxImageBytes:  1 << 20,
		AllowedOrigins: []string{"*"},
	}
	server := NewServer(app, cfg, engine, stubImages{}, logger.NewTestLogger(t))
	return NewRouter(server, &observability.Observability{})
}

func successResult() *recommend.CritiqueResult {
	return &recommend.CritiqueResult{
		IsAppropriate: false,
		Critique:      "Too casual for a wedding.",
		Recommendations: []recommend.OutfitRecommendation{
			{
				OutfitName: "Classic Guest",
				Top:        "Light blue dress shirt",
				Bottom:     "Charcoal suit trousers",
				Shoes:      "Black leather oxfords",
			},
		},
	}
}

// Minimal valid magic bytes, enough for content sniffing.
var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 64)...)
)

func multipartImage(t *testing.T, image []byte, fields map[string]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if image != nil {
		fw, err := mw.CreateFormFile("image", "outfit.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ==========================
// /api/analyze
// ==========================

func TestAnalyzeEndpoint_Success(t *testing.T) {
	engine := &stubEngine{result: successResult()}
	router := newTestRouter(t, engine)

	body, contentType := multipartImage(t, pngBytes, map[string]string{
		"occasion":       "wedding",
		"style":          "classic",
		"include_brands": "true",
	})
	rec := doRequest(t, router, http.MethodPost, "/api/analyze", body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result recommend.CritiqueResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsAppropriate)
	assert.Len(t, result.Recommendations, 1)

	assert.Equal(t, "wedding", engine.lastRequest.Occasion)
	assert.Equal(t, "classic", engine.lastRequest.Style)
	assert.True(t, engine.lastRequest.IncludeBrands)
	assert.Equal(t, "image/png", engine.lastRequest.MimeType)
}

func TestAnalyzeEndpoint_DefaultsOccasionAndStyle(t *testing.T) {
	engine := &stubEngine{result: successResult()}
	router := newTestRouter(t, engine)

	body, contentType := multipartImage(t, jpegBytes, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/analyze", body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "casual", engine.lastRequest.Occasion)
	assert.Equal(t, "modern", engine.lastRequest.Style)
	assert.False(t, engine.lastRequest.IncludeBrands)
	assert.Equal(t, "image/jpeg", engine.lastRequest.MimeType)
}

func TestAnalyzeEndpoint_MissingImage(t *testing.T) {
	router := newTestRouter(t, &stubEngine{result: successResult()})

	body, contentType := multipartImage(t, nil, map[string]string{"occasion": "casual"})
	rec := doRequest(t, router, http.MethodPost, "/api/analyze", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(cerrors.ErrCodeValidationError), resp.Code)
}

func TestAnalyzeEndpoint_OversizedImage(t *testing.T) {
	router := newTestRouter(t, &stubEngine{result: successResult()})

	huge := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 2<<20)...)
	body, contentType := multipartImage(t, huge, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/analyze", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The capped body reader must surface as a size rejection, not a
	// generic parse failure.
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(cerrors.ErrCodeValidationError), resp.Code)
	assert.Contains(t, resp.Error, "too large")
}

func TestAnalyzeEndpoint_RejectsNonImagePayload(t *testing.T) {
	router := newTestRouter(t, &stubEngine{result: successResult()})

	body, contentType := multipartImage(t, []byte("just some plain text, not an image"), nil)
	rec := doRequest(t, router, http.MethodPost, "/api/analyze", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "JPEG or PNG")
}

func TestAnalyzeEndpoint_ModelUnavailable(t *testing.T) {
	engine := &stubEngine{err: cerrors.NewModelUnavailableError(fmt.Errorf("all providers down"))}
	router := newTestRouter(t, engine)

	body, contentType := multipartImage(t, pngBytes, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/analyze", body, contentType)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(cerrors.ErrCodeModelUnavailable), resp.Code)
}

// ==========================
// /api/quick-analyze
// ==========================

func TestQuickAnalyzeEndpoint_Success(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	body, contentType := multipartImage(t, jpegBytes, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/quick-analyze", body, contentType)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp quickAnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Blue jeans and a white tee.", resp.Description)
	assert.Equal(t, "groq", resp.UsedAPI)
}

func TestQuickAnalyzeEndpoint_MissingImage(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	body, contentType := multipartImage(t, nil, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/quick-analyze", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// /api/clothing-images
// ==========================

func TestClothingImagesEndpoint_Success(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	body := bytes.NewBufferString(`{"top":"blue shirt","bottom":"gray trousers","shoes":"black oxfords"}`)
	rec := doRequest(t, router, http.MethodPost, "/api/clothing-images", body, "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)

	var images imagesearch.OutfitImages
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &images))
	assert.Equal(t, "https://images.test/top", images.TopImageURL)
	assert.Equal(t, "https://images.test/bottom", images.BottomImageURL)
	assert.Equal(t, "https://images.test/shoes", images.ShoesImageURL)
}

func TestClothingImagesEndpoint_MissingField(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	body := bytes.NewBufferString(`{"top":"blue shirt","bottom":"gray trousers"}`)
	rec := doRequest(t, router, http.MethodPost, "/api/clothing-images", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClothingImagesEndpoint_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	body := bytes.NewBufferString(`{not json`)
	rec := doRequest(t, router, http.MethodPost, "/api/clothing-images", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Metadata Endpoints
// ==========================

func TestOccasionsEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	rec := doRequest(t, router, http.MethodGet, "/api/occasions", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, Occasions, resp["occasions"])
	assert.Contains(t, resp["occasions"], "wedding")
}

func TestStylesEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	rec := doRequest(t, router, http.MethodGet, "/api/styles", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, Styles, resp["styles"])
	assert.Contains(t, resp["styles"], "streetwear")
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	rec := doRequest(t, router, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRootEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	rec := doRequest(t, router, http.MethodGet, "/", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "outfit-advisor", resp["message"])
	assert.Equal(t, "2.0.0", resp["version"])
	assert.Equal(t, "operational", resp["status"])
}

// ==========================
// Middleware
// ==========================

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})

	rec := doRequest(t, router, http.MethodGet, "/health", nil, "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, "caller-supplied-id", rec2.Header().Get("X-Request-ID"))
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t, &stubEngine{})
	rec := doRequest(t, router, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
