// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keytool.
//
// go-keytool is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-keytool/pkg/correlation"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Transport errors. Each is also its own error kind on the wire.
var (
	ErrNotFound         = errors.New("NotFound")
	ErrMethodNotAllowed = errors.New("MethodNotAllowed")
	ErrBodyTooLarge     = errors.New("BodyTooLarge")
	ErrRateLimited      = errors.New("RateLimited")
	ErrUnsupportedMedia = errors.New("UnsupportedMediaType")
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id,omitempty"`

	// State is the ECIES step that failed, set only by /api/v1/ecies.
	State string `json:"state,omitempty"`
}

var transportErrors = map[error]int{
	ErrNotFound:         http.StatusNotFound,
	ErrMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrBodyTooLarge:     http.StatusRequestEntityTooLarge,
	ErrRateLimited:      http.StatusTooManyRequests,
	ErrUnsupportedMedia: http.StatusUnsupportedMediaType,
}

// mapErrorToStatusCode maps errors to HTTP status codes.
func mapErrorToStatusCode(err error) int {
	for target, code := range transportErrors {
		if errors.Is(err, target) {
			return code
		}
	}
	switch {
	case errors.Is(err, types.ErrMalformedInput),
		errors.Is(err, types.ErrInvalidEncoding),
		errors.Is(err, types.ErrInvalidInputLength),
		errors.Is(err, types.ErrMalformedKey),
		errors.Is(err, types.ErrAuthenticationFailed):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUnsupportedContainer),
		errors.Is(err, types.ErrUnsupportedAlgorithm):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names err for the response body.
func errorKind(err error) string {
	for target := range transportErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return types.ErrorKind(err)
}

// handleError maps err to a status code and writes the error response.
// Internal errors are reported without detail.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, resp := errorResponse(r, err)
	writeJSON(w, resp, statusCode)
}

func errorResponse(r *http.Request, err error) (int, ErrorResponse) {
	statusCode := mapErrorToStatusCode(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "An unexpected error occurred"
	}
	return statusCode, ErrorResponse{
		Error:         errorKind(err),
		Message:       message,
		CorrelationID: correlation.GetCorrelationID(r.Context()),
	}
}

// writeErrorWithMessage writes an error response with a custom message.
func writeErrorWithMessage(w http.ResponseWriter, r *http.Request, kind, message string, statusCode int) {
	resp := ErrorResponse{
		Error:         kind,
		Message:       message,
		CorrelationID: correlation.GetCorrelationID(r.Context()),
	}
	writeJSON(w, resp, statusCode)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// decodeRequest reads a single JSON object into dst. Unknown fields and
// trailing data are rejected.
func decodeRequest(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", types.ErrMalformedInput)
		}
		return fmt.Errorf("%w: invalid request body: %v", types.ErrMalformedInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", types.ErrMalformedInput)
	}
	return nil
}
