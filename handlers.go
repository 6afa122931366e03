package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/audit"
	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// HTTPStatuser provides HTTP status information for errors
type HTTPStatuser interface {
	Status() (int, string)
}

// partnerCenter is the set of calls exposed as single endpoint routes.
type partnerCenter interface {
	enhance.Source
	PartnerProgramRequirements(ctx context.Context) (*partnercenter.PartnerProgramRequirements, error)
}

type enhancer interface {
	EnhanceResearch(ctx context.Context, req enhance.ResearchRequest) enhance.ResearchResult
	EnhanceSpecification(ctx context.Context, req enhance.SpecificationRequest) enhance.SpecificationResult
}

// handleEnhanceResearch always answers 200: a failure upstream is reported
// in the result's outcome rather than the status.
func handleEnhanceResearch(svc enhancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		var req enhance.ResearchRequest
		if err := decodeBody(r, &req); err != nil {
			writeDecodeError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, svc.EnhanceResearch(r.Context(), req))
	})
}

func handleEnhanceSpecification(svc enhancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		var req enhance.SpecificationRequest
		if err := decodeBody(r, &req); err != nil {
			writeDecodeError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, svc.EnhanceSpecification(r.Context(), req))
	})
}

// handleGet proxies a single Partner Center call that takes its arguments
// from the request path.
func handleGet[T any](call func(r *http.Request) (*T, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		result, err := call(r)
		if err != nil {
			writeCallError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, result)
	})
}

// handlePost proxies a single Partner Center call whose request is the JSON
// body.
func handlePost[Req, Resp any](call func(ctx context.Context, req Req) (*Resp, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		var req Req
		if err := decodeBody(r, &req); err != nil {
			writeDecodeError(r.Context(), w, err)
			return
		}

		result, err := call(r.Context(), req)
		if err != nil {
			writeCallError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, result)
	})
}

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func maxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

func accessLog() func(http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request completed")
	})
}

var errEmptyBody = errors.New("request body is required")

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}

	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func writeDecodeError(ctx context.Context, w http.ResponseWriter, err error) {
	zerolog.Ctx(ctx).Info().Err(err).Msg("invalid request body")
	audit.Log(ctx).AppendError(fmt.Sprintf("invalid request body: %v", err))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSONError(ctx, w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}

	writeJSONError(ctx, w, http.StatusBadRequest, "invalid request body")
}

func writeCallError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	zerolog.Ctx(ctx).Info().Err(err).Int("status", status).Msg("partner center call failed")
	audit.Log(ctx).AppendError(err.Error())
	writeJSONError(ctx, w, status, message)
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSONError writes a JSON error response with the given status code and message.
func writeJSONError(ctx context.Context, w http.ResponseWriter, statusCode int, message string) {
	writeJSON(ctx, w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to marshal response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		// record failure to log: trying to respond to the client at this
		// point will likely fail
		zerolog.Ctx(ctx).Info().Err(err).Msg("failed to write response")
	}
}

// errorStatus extracts HTTP status code and message from an error.
// Returns (StatusInternalServerError, StatusText) for errors that don't implement HTTPStatuser.
func errorStatus(err error) (int, string) {
	var statuser HTTPStatuser
	if errors.As(err, &statuser) {
		return statuser.Status()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// drainRequestBody drains the request body by reading and discarding the contents.
// This is useful to ensure the request body is fully consumed, which is important
// for connection reuse in HTTP/1 clients.
func drainRequestBody(r *http.Request) {
	if r.Body != nil {
		_, _ = io.Copy(io.Discard, r.Body)
	}
}
