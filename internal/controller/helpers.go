package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/fields"
	"github.com/cassiomorais/pixgateway/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20

	configErrorMessage = "Configure ASSET_SECRET_KEY e ASSET_COMPANY_ID nas variaveis de ambiente"
	internalMessage    = "internal server error"
)

// errorMapping ties a sentinel error to a status. An empty message means the
// route's own fallback message is used.
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrGatewayNotConfigured, http.StatusInternalServerError, configErrorMessage},
	{domainErrors.ErrProviderUnavailable, http.StatusServiceUnavailable, ""},
	{domainErrors.ErrProviderRequest, http.StatusBadGateway, ""},
}

func lookupMapping(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return errorMapping{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writePaymentError answers the payment routes with {success:false, error}.
// Upstream rejections keep the provider's status and body text.
func writePaymentError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
		return
	}

	var upstream *domainErrors.UpstreamError
	if errors.As(err, &upstream) {
		msg := string(upstream.Body)
		if msg == "" {
			msg = fallback
		}
		writeJSON(w, upstream.StatusCode, ErrorResponse{Error: msg})
		return
	}

	if m, ok := lookupMapping(err); ok {
		msg := m.message
		if msg == "" {
			msg = fallback
		}
		writeJSON(w, m.status, ErrorResponse{Error: msg})
		return
	}

	log.Ctx(r.Context()).Error().Err(err).Msg("unhandled error in handler")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: internalMessage})
}

// writeLookupError answers the identity route with {status, statusMsg}, or
// with the provider's own body when the provider rejected the lookup.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, LookupErrorResponse{Status: http.StatusBadRequest, StatusMsg: validationErr.Message})
		return
	}

	var upstream *domainErrors.UpstreamError
	if errors.As(err, &upstream) {
		writeJSON(w, upstream.StatusCode, upstreamPayload(upstream.Body))
		return
	}

	if m, ok := lookupMapping(err); ok {
		msg := m.message
		if msg == "" {
			msg = fallback
		}
		writeJSON(w, m.status, LookupErrorResponse{Status: m.status, StatusMsg: msg})
		return
	}

	log.Ctx(r.Context()).Error().Err(err).Msg("unhandled error in handler")
	writeJSON(w, http.StatusInternalServerError, LookupErrorResponse{Status: http.StatusInternalServerError, StatusMsg: internalMessage})
}

// upstreamPayload relays any valid JSON document as is, arrays and null
// included. Anything else is wrapped as {"raw": text}.
func upstreamPayload(body []byte) any {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return service.ProviderPayload(body)
}

// readBody decodes a JSON object body. Empty, oversized or malformed bodies
// read as an empty object; clients are never rejected for their body.
func readBody(w http.ResponseWriter, r *http.Request) map[string]any {
	if r.Body == nil {
		return map[string]any{}
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("request body unreadable, using empty object")
		return map[string]any{}
	}
	body, err := fields.DecodeObject(data)
	if err != nil {
		if len(data) > 0 {
			log.Ctx(r.Context()).Debug().Err(err).Msg("request body is not a JSON object, using empty object")
		}
		return map[string]any{}
	}
	return body
}
