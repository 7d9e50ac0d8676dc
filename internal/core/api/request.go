package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/solatis/roundsapi/internal/core/auth"
	"github.com/solatis/roundsapi/internal/logging"
	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
)

// maxBodyBytes bounds a write request's JSON body.
const maxBodyBytes = 1 << 20

// input flattens a request into the resolver's raw parameter map.
// Precedence, lowest first: query string, JSON body, path parameters.
// A query parameter given once is a string; repeated, it is a list.
func input(r *http.Request) (params.Input, error) {
	raw := make(map[string]any)

	for name, values := range r.URL.Query() {
		if len(values) == 1 {
			raw[name] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		raw[name] = list
	}

	if hasBody(r) {
		body, err := decodeBody(r)
		if err != nil {
			return params.Input{}, err
		}
		for name, v := range body {
			raw[name] = v
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, name := range rctx.URLParams.Keys {
			if name != "" && name != "*" {
				raw[name] = rctx.URLParams.Values[i]
			}
		}
	}

	return params.Input{Params: raw, Principal: auth.PrincipalFromContext(r.Context())}, nil
}

func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	return r.Method == http.MethodPost || r.Method == http.MethodPut
}

// decodeBody reads a JSON object body. Numbers stay json.Number so integer
// fields are not rounded through float64.
func decodeBody(r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, types.InvalidArgument("", "failed to read request body")
	}
	if len(data) > maxBodyBytes {
		return nil, types.InvalidArgument("", "request body exceeds %d bytes", maxBodyBytes)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, types.InvalidArgument("", "request body must be a JSON object")
	}
	return body, nil
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode response")
	}
}
