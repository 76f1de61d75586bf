// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"outfit-advisor/internal/common/config"
	cerrors "outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/imagesearch"
	"outfit-advisor/internal/recommend"
)

const (
	defaultOccasion = "casual"
	defaultStyle    = "modern"
)

// Occasions and Styles are the accepted request vocabularies. They are
// advertised, not enforced: unknown values still reach the model verbatim.
var (
	Occasions = []string{
		"casual", "formal", "business", "party", "wedding",
		"date_night", "beach", "sports", "travel",
	}
	Styles = []string{
		"minimalist", "streetwear", "classic", "bohemian", "preppy",
		"edgy", "romantic", "athletic", "vintage", "modern",
	}
)

// Analyzer is the pipeline surface the handlers need; recommend.Engine is
// the production implementation.
type Analyzer interface {
	Analyze(ctx context.Context, req recommend.AnalysisRequest) (*recommend.CritiqueResult, error)
	QuickAnalyze(ctx context.Context, image []byte, mimeType string) (string, string, error)
}

// ImageService resolves garment triples; imagesearch.Client is the
// production implementation.
type ImageService interface {
	FindOutfitImages(ctx context.Context, top, bottom, shoes string) imagesearch.OutfitImages
}

// Server holds the handler dependencies. One instance serves all requests.
type Server struct {
	app    config.AppConfig
	cfg    config.ServerConfig
	engine Analyzer
	images ImageService
	logger logger.Logger
}

func NewServer(app config.AppConfig, cfg config.ServerConfig, engine Analyzer, images ImageService, log logger.Logger) *Server {
	return &Server{
		app:    app,
		cfg:    cfg,
		engine: engine,
		images: images,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

type quickAnalyzeResponse struct {
	Success     bool   `json:"success"`
	Description string `json:"description"`
	UsedAPI     string `json:"used_api,omitempty"`
}

type clothingImagesRequest struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
	Shoes  string `json:"shoes"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": s.app.Name,
		"version": s.app.Version,
		"status":  "operational",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleOccasions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"occasions": Occasions})
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"styles": Styles})
}

// handleAnalyze runs the full pipeline: multipart validation, model call
// with fallback, parse, image lookups.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	image, mimeType, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	occasion := formValue(r, "occasion", defaultOccasion)
	style := formValue(r, "style", defaultStyle)
	includeBrands, _ := strconv.ParseBool(r.FormValue("include_brands"))

	result, err := s.engine.Analyze(ctx, recommend.AnalysisRequest{
		Image:         image,
		MimeType:      mimeType,
		Occasion:      occasion,
		Style:         style,
		IncludeBrands: includeBrands,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleQuickAnalyze returns a short free-text description of the outfit,
// skipping the recommendation and image stages.
func (s *Server) handleQuickAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	image, mimeType, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	description, usedProvider, err := s.engine.QuickAnalyze(ctx, image, mimeType)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quickAnalyzeResponse{
		Success:     true,
		Description: description,
		UsedAPI:     usedProvider,
	})
}

// handleClothingImages resolves a garment triple to image URLs without an
// analysis round trip. All three fields are required.
func (s *Server) handleClothingImages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	var req clothingImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, cerrors.NewValidationError("invalid JSON body"))
		return
	}
	if req.Top == "" || req.Bottom == "" || req.Shoes == "" {
		s.writeError(w, cerrors.NewValidationError("top, bottom and shoes are required"))
		return
	}

	images := s.images.FindOutfitImages(ctx, req.Top, req.Bottom, req.Shoes)
	writeJSON(w, http.StatusOK, images)
}

// readImage extracts and validates the uploaded image. The request body is
// capped before parsing so an oversized upload is rejected during the read,
// not spooled to disk first. Content is sniffed: only JPEG and PNG pass.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	// +1KB headroom for the multipart framing around the image part.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxImageBytes+1024)

	if err := r.ParseMultipartForm(s.cfg.MaxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", cerrors.NewValidationError(
				fmt.Sprintf("image too large, max %d bytes", s.cfg.MaxImageBytes))
		}
		return nil, "", cerrors.NewValidationError("invalid multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", cerrors.NewValidationError("image file is required")
	}
	defer file.Close()

	if header.Size > s.cfg.MaxImageBytes {
		return nil, "", cerrors.NewValidationError(
			fmt.Sprintf("image too large, max %d bytes", s.cfg.MaxImageBytes))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxImageBytes+1))
	if err != nil {
		return nil, "", cerrors.NewValidationError("could not read image")
	}
	if int64(len(data)) > s.cfg.MaxImageBytes {
		return nil, "", cerrors.NewValidationError(
			fmt.Sprintf("image too large, max %d bytes", s.cfg.MaxImageBytes))
	}

	// Sniff the actual bytes rather than trusting the declared type.
	mimeType := http.DetectContentType(data)
	if mimeType != "image/jpeg" && mimeType != "image/png" {
		return nil, "", cerrors.NewValidationError("image must be JPEG or PNG")
	}

	return data, mimeType, nil
}

// requestContext bounds the whole pipeline for one request.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), config.GetDuration(s.cfg.RequestTimeout))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := cerrors.HTTPStatus(err)

	message := "internal error"
	code := ""
	var std *cerrors.StandardError
	if errors.As(err, &std) {
		code = string(std.Code)
		message = std.Message
		if std.Details != "" {
			message = std.Message + ": " + std.Details
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"status": status,
			"error":  err.Error(),
		})
	}

	writeJSON(w, status, errorResponse{Success: false, Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}
