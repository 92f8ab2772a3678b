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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-keytool/pkg/health"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// HealthChecker is the probe surface used by the health endpoints.
type HealthChecker interface {
	Live(ctx context.Context) health.CheckResult
	Ready(ctx context.Context) []health.CheckResult
	Startup(ctx context.Context) health.CheckResult
}

// HandlerContext holds the dependencies shared by all handlers.
type HandlerContext struct {
	service       *keytool.Service
	HealthChecker HealthChecker
	version       string
}

// NewHandlerContext creates handlers for svc.
func NewHandlerContext(svc *keytool.Service, version string) *HandlerContext {
	return &HandlerContext{
		service: svc,
		version: version,
	}
}

// SetHealthChecker sets the probe implementation. A nil checker reports
// healthy for every probe.
func (h *HandlerContext) SetHealthChecker(checker HealthChecker) {
	h.HealthChecker = checker
}

// serve decodes a T from the body, runs call and writes its response.
func serve[T any](w http.ResponseWriter, r *http.Request, call func(context.Context, T) (any, error)) {
	var req T
	if err := decodeRequest(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	resp, err := call(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// SymmetricKeyHandler handles POST /api/v1/symmetric/key.
func (h *HandlerContext) SymmetricKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.SymmetricKeyRequest) (any, error) {
		v, err := h.service.GenerateSymmetricKey(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// IVHandler handles POST /api/v1/symmetric/iv.
func (h *HandlerContext) IVHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.IVRequest) (any, error) {
		v, err := h.service.GenerateIV(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// AESHandler handles POST /api/v1/symmetric/crypto.
func (h *HandlerContext) AESHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.AESRequest) (any, error) {
		v, err := h.service.AESCrypto(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// GenerateKeyHandler handles POST /api/v1/asymmetric/generate.
func (h *HandlerContext) GenerateKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.GenerateKeyRequest) (any, error) {
		return h.service.GenerateAsymmetricKey(ctx, req)
	})
}

// DerivePublicKeyHandler handles POST /api/v1/asymmetric/derive.
func (h *HandlerContext) DerivePublicKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.DerivePublicKeyRequest) (any, error) {
		v, err := h.service.DerivePublicKey(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// ConvertKeyHandler handles POST /api/v1/keys/convert.
func (h *HandlerContext) ConvertKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.TransferKeyRequest) (any, error) {
		v, err := h.service.TransferKeyFormat(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// ParseKeyHandler handles POST /api/v1/keys/parse.
func (h *HandlerContext) ParseKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req ParseKeyRequest) (any, error) {
		return h.service.ParseKey(ctx, req.Key)
	})
}

// ProtectKeyHandler handles POST /api/v1/keys/protect.
func (h *HandlerContext) ProtectKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.ProtectKeyRequest) (any, error) {
		v, err := h.service.ProtectKey(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// UnprotectKeyHandler handles POST /api/v1/keys/unprotect.
func (h *HandlerContext) UnprotectKeyHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.UnprotectKeyRequest) (any, error) {
		v, err := h.service.UnprotectKey(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// ECIESHandler handles POST /api/v1/ecies. Failures report the state whose
// step failed.
func (h *HandlerContext) ECIESHandler(w http.ResponseWriter, r *http.Request) {
	var req keytool.ECIESRequest
	if err := decodeRequest(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	v, state, err := h.service.ECIES(r.Context(), req)
	if err != nil {
		statusCode, resp := errorResponse(r, err)
		resp.State = state.String()
		writeJSON(w, resp, statusCode)
		return
	}
	writeJSON(w, ECIESResponse{Result: v, State: state.String()}, http.StatusOK)
}

// RSAHandler handles POST /api/v1/rsa/crypto.
func (h *HandlerContext) RSAHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.RSARequest) (any, error) {
		v, err := h.service.RSACrypto(ctx, req)
		return ValueResponse{Result: v}, err
	})
}

// EmitJWKHandler handles POST /api/v1/jwk/emit.
func (h *HandlerContext) EmitJWKHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.EmitJWKRequest) (any, error) {
		out, err := h.service.GenerateJWK(ctx, req)
		return JWKResponse{JWK: json.RawMessage(out)}, err
	})
}

// GenerateJWKHandler handles POST /api/v1/jwk/generate.
func (h *HandlerContext) GenerateJWKHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.CreateJWKRequest) (any, error) {
		out, err := h.service.CreateJWK(ctx, req)
		return JWKResponse{JWK: json.RawMessage(out)}, err
	})
}

// ThumbprintHandler handles POST /api/v1/jwk/thumbprint.
func (h *HandlerContext) ThumbprintHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func(ctx context.Context, req keytool.ThumbprintRequest) (any, error) {
		out, err := h.service.Thumbprint(ctx, req)
		return ThumbprintResponse{Thumbprint: out}, err
	})
}

// ListEnumsHandler handles GET /api/v1/enums.
func (h *HandlerContext) ListEnumsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Enumerations(r.Context()), http.StatusOK)
}

// GetEnumHandler handles GET /api/v1/enums/{name}. Unknown names are 404.
func (h *HandlerContext) GetEnumHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	values, err := h.service.Enumeration(r.Context(), name)
	if err != nil {
		if errors.Is(err, types.ErrMalformedInput) {
			err = fmt.Errorf("%w: unknown enumeration %q", ErrNotFound, name)
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, EnumResponse{Name: name, Values: values}, http.StatusOK)
}

// VersionHandler handles GET /api/v1/version.
func (h *HandlerContext) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, VersionResponse{Version: h.version}, http.StatusOK)
}
