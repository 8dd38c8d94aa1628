package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sp3dr4/dovelink/internal/application"
	"github.com/sp3dr4/dovelink/internal/domain"
	"github.com/sp3dr4/dovelink/internal/pkg/logging"
)

const maxShortenBodyBytes = 64 << 10

type Handlers struct {
	service    *application.ShortenerService
	topDomains int
}

func NewHandlers(service *application.ShortenerService, topDomains int) *Handlers {
	return &Handlers{
		service:    service,
		topDomains: topDomains,
	}
}

// HandleHealth handles the health check endpoint.
//
//	@Summary		Health check endpoint
//	@Description	Check if the service is running
//	@Tags			health
//	@Produce		plain
//	@Success		200	{string}	string	"OK"
//	@Router			/health [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// HandleReady handles the readiness check endpoint.
//
//	@Summary		Readiness check endpoint
//	@Description	Check if the service is ready to serve requests (store and shared cache reachable)
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	object{status=string,timestamp=string}	"Service is ready"
//	@Failure		503	{object}	ErrorResponse							"Service is not ready"
//	@Router			/ready [get]
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.HealthCheck(ctx); err != nil {
		logging.FromContext(ctx).Error("Readiness check failed", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Service not ready")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleShorten handles the URL shortening endpoint.
//
//	@Summary		Shorten a URL
//	@Description	Returns the short URL for the raw URL sent as the request body. Repeated calls return the same code.
//	@Tags			urls
//	@Accept			plain
//	@Produce		plain,json
//	@Param			request	body		string						true	"URL to shorten"
//	@Success		200		{object}	application.ShortenResult	"Short URL (plain text unless JSON is accepted)"
//	@Failure		400		{object}	ErrorResponse				"Empty URL"
//	@Failure		500		{object}	ErrorResponse				"Internal failure"
//	@Router			/api/shorten [post]
func (h *Handlers) HandleShorten(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxShortenBodyBytes))
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Shorten(r.Context(), string(body))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, "URL cannot be empty")
			return
		}

		logger.Error("Failed to shorten URL", "domain", domain.ExtractDomain(string(body)), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to shorten URL")
		return
	}

	if wantsJSON(r) {
		respondWithJSON(w, http.StatusOK, result)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.ShortURL)
}

// HandleRedirect handles the redirect endpoint.
//
//	@Summary		Redirect to original URL
//	@Description	Redirect to the original URL using the short code
//	@Tags			urls
//	@Param			code	path	string	true	"Short code"
//	@Success		302		"Redirect to original URL"
//	@Failure		404		{object}	ErrorResponse	"Short code not found"
//	@Failure		500		{object}	ErrorResponse	"Internal failure"
//	@Router			/api/r/{code} [get]
func (h *Handlers) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	code := chi.URLParam(r, "code")
	if decoded, err := url.PathUnescape(code); err == nil {
		code = decoded
	}

	originalURL, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Short URL not found")
			return
		}
		logger.Error("Failed to resolve short code", "short_code", code, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve short code")
		return
	}

	logger.Info("Redirecting", "short_code", code)

	// Location is set verbatim; http.Redirect would rewrite scheme-less targets
	// as paths relative to this route.
	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusFound)
}

// HandleTopDomains handles the top domains endpoint.
//
//	@Summary		Most shortened domains
//	@Description	Domains ordered by shorten count descending, ties alphabetically
//	@Tags			metrics
//	@Produce		json
//	@Param			limit	query		int					false	"Maximum entries (capped at the configured limit)"
//	@Success		200		{array}		domain.DomainCount	"Top domains"
//	@Router			/api/metrics/top-domains [get]
func (h *Handlers) HandleTopDomains(w http.ResponseWriter, r *http.Request) {
	k := h.topDomains
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < k {
			k = n
		}
	}

	respondWithJSON(w, http.StatusOK, h.service.TopDomains(k))
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     map[string]string `json:"error"`
	Timestamp string            `json:"timestamp" example:"2024-01-31T12:00:00Z"`
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{
		Error: map[string]string{
			"message": message,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
